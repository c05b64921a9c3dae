// Package solver defines the capability every consensus algorithm exposes.
//
// A [Solver] receives a dataset and a scoring scheme and returns at least one
// consensus ranking. Exact solvers set [rank.Consensus.Optimal]; heuristics
// never do. Solvers report input they cannot interpret with an
// UNSUPPORTED_SCORING_SCHEME error and any other failure with
// SOLVER_FAILURE, so callers can decide whether a fallback makes sense.
//
// Implementations:
//   - exact.DP and exact.BranchAndBound: optimal, bounded in size or effort
//   - bioconsert.BioConsert: local-search heuristic for large inputs
//   - parcons.ParCons: decomposition that delegates to the above
package solver

import (
	"context"
	"fmt"
	"slices"

	errs "github.com/matzehuels/corank/pkg/errors"
	"github.com/matzehuels/corank/pkg/pairwise"
	"github.com/matzehuels/corank/pkg/rank"
)

// Solver computes consensus rankings.
type Solver interface {
	// Name identifies the algorithm in results and logs.
	Name() string

	// Solve returns a consensus holding at least one ranking of every
	// element of ds. It may block for a long time; implementations should
	// honour ctx cancellation where they can.
	Solve(ctx context.Context, ds *rank.Dataset, sc rank.ScoringScheme) (*rank.Consensus, error)
}

// Func adapts a function to the Solver interface.
type Func struct {
	ID string
	Fn func(ctx context.Context, ds *rank.Dataset, sc rank.ScoringScheme) (*rank.Consensus, error)
}

// Name returns f.ID.
func (f Func) Name() string { return f.ID }

// Solve calls f.Fn.
func (f Func) Solve(ctx context.Context, ds *rank.Dataset, sc rank.ScoringScheme) (*rank.Consensus, error) {
	return f.Fn(ctx, ds, sc)
}

// Problem is a validated dataset in dense form, shared by the reference
// solvers.
type Problem struct {
	Dataset *rank.Dataset
	Scheme  rank.ScoringScheme
	Index   *pairwise.Index
	Costs   *pairwise.Table
}

// Prepare validates the inputs of a solve and evaluates the pairwise costs.
// An invalid scheme yields UNSUPPORTED_SCORING_SCHEME; a malformed dataset
// keeps its MALFORMED_INPUT code.
func Prepare(name string, ds *rank.Dataset, sc rank.ScoringScheme) (*Problem, error) {
	if err := sc.Validate(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeUnsupportedScheme, err, "%s", name)
	}
	ix, err := pairwise.NewIndex(ds)
	if err != nil {
		return nil, err
	}
	return &Problem{Dataset: ds, Scheme: sc, Index: ix, Costs: pairwise.Evaluate(ix, sc)}, nil
}

// Consensus wraps buckets of ids into a single-ranking consensus.
func (p *Problem) Consensus(name string, buckets [][]int, optimal bool) *rank.Consensus {
	return &rank.Consensus{
		Rankings:  []rank.Ranking{p.Index.Ranking(buckets)},
		Dataset:   p.Dataset,
		Scheme:    p.Scheme,
		Optimal:   optimal,
		Algorithm: name,
	}
}

// CompletedInputs returns every input ranking as buckets of ids, with the
// elements it misses appended as one final bucket. Duplicates are removed.
// These are the usual starting points and upper bounds for search.
func (p *Problem) CompletedInputs() [][][]int {
	n := p.Index.N()
	seen := make(map[string]struct{})
	var out [][][]int
	for _, r := range p.Dataset.Rankings {
		present := make([]bool, n)
		buckets := make([][]int, 0, len(r)+1)
		for _, b := range r {
			ids := make([]int, 0, len(b))
			for _, e := range b {
				id, _ := p.Index.ID(e)
				present[id] = true
				ids = append(ids, id)
			}
			buckets = append(buckets, ids)
		}
		var missing []int
		for id, ok := range present {
			if !ok {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			buckets = append(buckets, missing)
		}
		if len(buckets) == 0 {
			continue
		}
		SortBuckets(buckets)
		key := fmt.Sprint(buckets)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, buckets)
	}
	return out
}

// SortBuckets sorts the ids inside every bucket in place.
func SortBuckets(buckets [][]int) {
	for _, b := range buckets {
		slices.Sort(b)
	}
}
