package exact

import (
	"context"
	"math"
	"math/bits"

	errs "github.com/matzehuels/corank/pkg/errors"
	"github.com/matzehuels/corank/pkg/rank"
	"github.com/matzehuels/corank/pkg/solver"
)

// DefaultMaxElements bounds the input size DP accepts. Time grows as 3^n.
const DefaultMaxElements = 14

// DP computes an optimal consensus by choosing, for every subset S of
// elements, the best first bucket B of S:
//
//	f(S) = min over B of tied(B) + before(B, S\B) + f(S\B)
type DP struct {
	// MaxElements overrides DefaultMaxElements when positive.
	MaxElements int
}

// Name returns "ExactDP".
func (DP) Name() string { return "ExactDP" }

// Solve implements solver.Solver.
func (d DP) Solve(ctx context.Context, ds *rank.Dataset, sc rank.ScoringScheme) (*rank.Consensus, error) {
	p, err := solver.Prepare(d.Name(), ds, sc)
	if err != nil {
		return nil, err
	}
	limit := d.MaxElements
	if limit <= 0 {
		limit = DefaultMaxElements
	}
	n := p.Index.N()
	if n > limit {
		return nil, errs.New(errs.ErrCodeSolverFailure, "%s: %d elements exceed the limit of %d", d.Name(), n, limit)
	}

	buckets, err := solveSubsets(ctx, p)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSolverFailure, err, "%s", d.Name())
	}
	return p.Consensus(d.Name(), buckets, true), nil
}

func solveSubsets(ctx context.Context, p *solver.Problem) ([][]int, error) {
	n := p.Index.N()
	if n == 0 {
		return nil, nil
	}
	full := 1<<n - 1
	size := 1 << n

	// beforeTo[x][S] = sum of Before(x, y) for y in S; tiedTo likewise.
	beforeTo := make([][]float64, n)
	tiedTo := make([][]float64, n)
	for x := 0; x < n; x++ {
		beforeTo[x] = make([]float64, size)
		tiedTo[x] = make([]float64, size)
		for s := 1; s < size; s++ {
			y := bits.TrailingZeros(uint(s))
			rest := s & (s - 1)
			c := p.Costs.At(x, y)
			if y == x {
				c.Before, c.Tied = 0, 0
			}
			beforeTo[x][s] = beforeTo[x][rest] + c.Before
			tiedTo[x][s] = tiedTo[x][rest] + c.Tied
		}
	}

	tied := make([]float64, size)
	for s := 1; s < size; s++ {
		low := bits.TrailingZeros(uint(s))
		rest := s & (s - 1)
		tied[s] = tied[rest] + tiedTo[low][rest]
	}

	f := make([]float64, size)
	choice := make([]int, size)
	for s := 1; s < size; s++ {
		if s&1023 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		best := math.Inf(1)
		bestB := s
		for b := s; b > 0; b = (b - 1) & s {
			rest := s &^ b
			cost := tied[b] + f[rest]
			for m := b; m > 0; m &= m - 1 {
				cost += beforeTo[bits.TrailingZeros(uint(m))][rest]
			}
			if cost < best {
				best, bestB = cost, b
			}
		}
		f[s], choice[s] = best, bestB
	}

	var buckets [][]int
	for s := full; s > 0; s &^= choice[s] {
		b := choice[s]
		ids := make([]int, 0, bits.OnesCount(uint(b)))
		for m := b; m > 0; m &= m - 1 {
			ids = append(ids, bits.TrailingZeros(uint(m)))
		}
		buckets = append(buckets, ids)
	}
	return buckets, nil
}
