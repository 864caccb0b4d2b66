// Package scene owns a simulation session: a set of independent beads on
// one hoop, the shared gravity, the running flag and the record capture.
//
// The scene is the only place edits are gated. Position and velocity may be
// changed only while halted. Mass and gravity follow the configured
// [EditPolicy].
package scene
