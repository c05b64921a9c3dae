// Package render provides visualization rendering for consensus analyses.
//
// # Dominance Diagrams
//
// The [dominance] subpackage renders the ParCons dominance graph with
// Graphviz, grouping elements into one cluster per strongly connected
// component.
//
//	dot := dominance.ToDOT(decomposition, dominance.Options{})
//	svg, err := dominance.RenderSVG(ctx, dot)
//
// [dominance]: github.com/matzehuels/corank/pkg/render/dominance
package render
