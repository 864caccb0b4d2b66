// Package analysis draws phase portraits of recorded hoop runs.
//
// A bead's state is (θ, ω). Plotting one against the other shows closed
// loops for a swinging bead and open bands for one that goes over the top:
//
//	p := analysis.PortraitOf(records, "ball1", true)
//	fmt.Print(p.ASCII(70, 20))
package analysis
