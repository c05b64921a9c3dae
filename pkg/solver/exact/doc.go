// Package exact provides consensus solvers that return a provably optimal
// ranking or fail.
//
// [DP] runs a dynamic program over subsets of elements and is the fastest
// choice for small inputs; it refuses inputs with more than MaxElements
// elements. [BranchAndBound] builds the ordering bucket by bucket from the
// front, pruning with a pairwise bound that accounts for the open bucket and
// skipping partial orderings whose placed set was already reached more
// cheaply. It has no size limit but gives up once its node budget is spent.
//
// Both are meant to be chained: DP first, BranchAndBound when DP fails.
package exact
