// Package dominance renders ParCons dominance graphs as node-link diagrams.
//
// # Overview
//
// The dominance graph has one node per element and an edge u -> v whenever
// placing v strictly before u can never be optimal. Its strongly connected
// components are the units ParCons solves independently, so the diagram
// groups nodes into one cluster per component, coloured by kind:
//
//   - singleton: white
//   - tied block: light green
//   - sub-problem: light orange (solved exactly) or light red (heuristic)
//
// # Usage
//
// Convert a decomposition to DOT format, then render to SVG:
//
//	d, err := parcons.Analyze(ds, rank.Unifying)
//	dot := dominance.ToDOT(d, dominance.Options{})
//	svg, err := dominance.RenderSVG(dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Condensed: draw one node per component instead of one per element
//   - Costs: label edges with the pairwise before/after/tied costs
//   - Result: annotate sub-problem clusters with the solver that ran
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package dominance
