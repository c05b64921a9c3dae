// Package parcons computes consensus rankings by decomposition.
//
// # The Decomposition
//
// Aggregating rankings with ties under a generalized Kemeny score is NP-hard.
// Many real datasets, however, contain groups of elements whose relative
// order is already settled by the pairwise costs. ParCons exploits this:
//
//  1. Index the dataset: dense element ids and a position matrix
//  2. Evaluate the before/after/tied cost of every pair of elements
//  3. Build the dominance graph: an edge u -> v whenever placing v strictly
//     before u is never cheapest for that pair
//  4. Split the graph into strongly connected components, in topological order
//  5. Resolve each component independently and concatenate the results
//
// Components are classified as:
//
//   - [Singleton]: one element, one bucket
//   - [TiedBlock]: tying every pair is never worse than separating it; all
//     elements form one bucket
//   - [SubProblem]: requires a real solve on the dataset projected onto the
//     component's elements
//
// # Solver Routing
//
// Sub-problems of at most [Options.ExactBound] elements (default 80) go to the
// exact solver; if it fails, the fallback exact solver is tried once. Larger
// sub-problems go to the heuristic. The result is certified optimal only when
// no heuristic was used.
//
// Because a component is usually much smaller than the whole dataset, an
// instance far beyond the reach of an exact solver can often still be solved
// optimally.
//
// # Usage
//
//	pc := parcons.New(parcons.Options{Logger: logger})
//	res, err := pc.Compute(ctx, ds, rank.Unifying)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Consensus.First(), res.Consensus.Optimal)
//
// [Analyze] returns the decomposition without solving anything; it is what
// the graph and inspect commands display.
//
// # Concurrency
//
// By default components are solved one after the other. With
// [Options.Workers] > 1 sub-problems are solved in parallel; the assembled
// ranking still follows component order.
package parcons
