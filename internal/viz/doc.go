// Package viz is the live terminal view of a hoop scene, built on Bubble
// Tea.
//
// The hoop is drawn on a Braille [Canvas] with each bead, its trail and
// optional velocity, centripetal and gravity arrows. A side panel lists the
// beads and plots the selected bead's energies with asciigraph.
//
// # Key Bindings
//
//	Space    - Run/Pause
//	R        - Reset every bead and clear the clock
//	Tab      - Select next bead
//	↑/↓      - Nudge θ of the selected bead (halted only)
//	←/→      - Nudge ω of the selected bead (halted only)
//	g/G      - Lower/raise gravity
//	m/M      - Lower/raise mass of the selected bead
//	H        - Hide/show the selected bead
//	V        - Toggle vectors
//	C        - Start/stop recording
//	E        - Export recorded data
//	T        - Cycle color themes
//	?        - Help
//	Q        - Quit
package viz
