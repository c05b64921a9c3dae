package pairwise

import (
	errs "github.com/matzehuels/corank/pkg/errors"
	"github.com/matzehuels/corank/pkg/rank"
)

// Score returns the total cost of a consensus given as buckets of element ids.
// Every id in [0, N) must appear exactly once; this is not checked.
func (t *Table) Score(buckets [][]int) float64 {
	var s float64
	for i, b := range buckets {
		for x := 0; x < len(b); x++ {
			for y := x + 1; y < len(b); y++ {
				s += t.At(b[x], b[y]).Tied
			}
			for _, later := range buckets[i+1:] {
				for _, y := range later {
					s += t.At(b[x], y).Before
				}
			}
		}
	}
	return s
}

// Buckets converts a ranking into buckets of ids. It fails unless r contains
// every element of ix exactly once and nothing else.
func (ix *Index) Buckets(r rank.Ranking) ([][]int, error) {
	seen := make([]bool, ix.N())
	out := make([][]int, len(r))
	count := 0
	for i, b := range r {
		ids := make([]int, len(b))
		for j, e := range b {
			id, ok := ix.ID(e)
			if !ok {
				return nil, errs.New(errs.ErrCodeInvalidInput, "element %q is not in the dataset", e)
			}
			if seen[id] {
				return nil, errs.New(errs.ErrCodeInvalidInput, "element %q appears more than once", e)
			}
			seen[id] = true
			ids[j] = id
			count++
		}
		out[i] = ids
	}
	if count != ix.N() {
		return nil, errs.New(errs.ErrCodeInvalidInput, "ranking covers %d of %d elements", count, ix.N())
	}
	return out, nil
}

// Ranking converts buckets of ids back into a ranking.
func (ix *Index) Ranking(buckets [][]int) rank.Ranking {
	r := make(rank.Ranking, 0, len(buckets))
	for _, b := range buckets {
		bucket := make(rank.Bucket, len(b))
		for i, id := range b {
			bucket[i] = ix.Element(id)
		}
		r = append(r, bucket)
	}
	return r
}

// ScoreRanking returns the cost of ranking r as a consensus of ds under sc.
// r must rank every element of ds exactly once.
func ScoreRanking(ds *rank.Dataset, sc rank.ScoringScheme, r rank.Ranking) (float64, error) {
	ix, err := NewIndex(ds)
	if err != nil {
		return 0, err
	}
	buckets, err := ix.Buckets(r)
	if err != nil {
		return 0, err
	}
	return Evaluate(ix, sc).Score(buckets), nil
}
