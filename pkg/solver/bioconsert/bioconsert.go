// Package bioconsert implements the BioConsert local-search heuristic for
// consensus rankings with ties.
//
// Starting from every input ranking (missing elements appended as a final
// bucket), the search repeatedly moves a single element either into another
// bucket or into a new bucket of its own, keeping a move only if it strictly
// lowers the total cost. It stops at a local optimum and returns the best
// one over all starts. The result is never flagged optimal.
package bioconsert

import (
	"context"
	"math"
	"slices"

	"github.com/matzehuels/corank/pkg/pairwise"
	"github.com/matzehuels/corank/pkg/rank"
	"github.com/matzehuels/corank/pkg/solver"
)

// DefaultMaxPasses bounds the number of improvement sweeps per start.
const DefaultMaxPasses = 1000

const epsilon = 1e-9

// BioConsert is a local-search heuristic solver.
type BioConsert struct {
	// MaxPasses overrides DefaultMaxPasses when positive.
	MaxPasses int
}

// Name returns "BioConsert".
func (BioConsert) Name() string { return "BioConsert" }

// Solve implements solver.Solver. Cancelling ctx returns the best ranking
// found so far rather than an error, unless no start was evaluated yet.
func (bc BioConsert) Solve(ctx context.Context, ds *rank.Dataset, sc rank.ScoringScheme) (*rank.Consensus, error) {
	p, err := solver.Prepare(bc.Name(), ds, sc)
	if err != nil {
		return nil, err
	}
	passes := bc.MaxPasses
	if passes <= 0 {
		passes = DefaultMaxPasses
	}

	best := math.Inf(1)
	var bestBuckets [][]int
	for _, start := range p.CompletedInputs() {
		if bestBuckets != nil && ctx.Err() != nil {
			break
		}
		ls := newLocalSearch(p.Costs, start)
		for i := 0; i < passes && ctx.Err() == nil; i++ {
			if !ls.sweep() {
				break
			}
		}
		if c := p.Costs.Score(ls.buckets); c < best-epsilon {
			best, bestBuckets = c, ls.buckets
		}
	}
	if bestBuckets == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	solver.SortBuckets(bestBuckets)
	return p.Consensus(bc.Name(), bestBuckets, false), nil
}

type localSearch struct {
	costs   *pairwise.Table
	buckets [][]int
	where   []int // element id -> bucket index
}

func newLocalSearch(costs *pairwise.Table, start [][]int) *localSearch {
	ls := &localSearch{costs: costs, where: make([]int, costs.N())}
	for _, b := range start {
		ls.buckets = append(ls.buckets, slices.Clone(b))
	}
	ls.reindex()
	return ls
}

func (ls *localSearch) reindex() {
	for j, b := range ls.buckets {
		for _, x := range b {
			ls.where[x] = j
		}
	}
}

// sweep tries to improve the position of every element once and reports
// whether any move was applied.
func (ls *localSearch) sweep() bool {
	moved := false
	for x := range ls.where {
		if ls.improve(x) {
			moved = true
		}
	}
	return moved
}

// improve moves x to its cheapest placement if that strictly lowers the cost.
func (ls *localSearch) improve(x int) bool {
	k := len(ls.buckets)
	after := make([]float64, k)
	before := make([]float64, k)
	tied := make([]float64, k)
	for j, b := range ls.buckets {
		for _, y := range b {
			if y == x {
				continue
			}
			c := ls.costs.At(x, y)
			after[j] += c.After
			before[j] += c.Before
			tied[j] += c.Tied
		}
	}
	prefixAfter := make([]float64, k+1)
	for j := 0; j < k; j++ {
		prefixAfter[j+1] = prefixAfter[j] + after[j]
	}
	suffixBefore := make([]float64, k+1)
	for j := k - 1; j >= 0; j-- {
		suffixBefore[j] = suffixBefore[j+1] + before[j]
	}

	cur := ls.where[x]
	current := prefixAfter[cur] + tied[cur] + suffixBefore[cur+1]

	bestCost, bestPos, bestNew := current, cur, false
	for j := 0; j < k; j++ {
		if c := prefixAfter[j] + tied[j] + suffixBefore[j+1]; c < bestCost-epsilon {
			bestCost, bestPos, bestNew = c, j, false
		}
	}
	for g := 0; g <= k; g++ {
		if c := prefixAfter[g] + suffixBefore[g]; c < bestCost-epsilon {
			bestCost, bestPos, bestNew = c, g, true
		}
	}
	if bestPos == cur && !bestNew {
		return false
	}
	ls.move(x, cur, bestPos, bestNew)
	return true
}

func (ls *localSearch) move(x, from, to int, newBucket bool) {
	ls.buckets[from] = slices.DeleteFunc(ls.buckets[from], func(y int) bool { return y == x })
	if len(ls.buckets[from]) == 0 {
		ls.buckets = slices.Delete(ls.buckets, from, from+1)
		if to > from {
			to--
		}
	}
	if newBucket {
		ls.buckets = slices.Insert(ls.buckets, to, []int{x})
	} else {
		ls.buckets[to] = append(ls.buckets[to], x)
	}
	ls.reindex()
}
