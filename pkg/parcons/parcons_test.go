package parcons

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/corank/pkg/errors"
	"github.com/matzehuels/corank/pkg/pairwise"
	"github.com/matzehuels/corank/pkg/rank"
	"github.com/matzehuels/corank/pkg/solver"
	"github.com/matzehuels/corank/pkg/solver/exact"
)

var _ solver.Solver = (*ParCons)(nil)

func dataset(t *testing.T, rankings ...string) *rank.Dataset {
	t.Helper()
	rs := make([]rank.Ranking, len(rankings))
	for i, s := range rankings {
		r, err := rank.ParseRanking(s)
		require.NoError(t, err)
		rs[i] = r
	}
	ds, err := rank.NewDataset("test", rs)
	require.NoError(t, err)
	return ds
}

func randomDataset(t *testing.T, rng *rand.Rand, n, m int, incomplete bool) *rank.Dataset {
	t.Helper()
	rankings := make([]rank.Ranking, 0, m)
	for len(rankings) < m {
		buckets := make(map[int]rank.Bucket)
		maxPos := 0
		for e := 0; e < n; e++ {
			if incomplete && rng.IntN(4) == 0 {
				continue
			}
			pos := rng.IntN(n)
			buckets[pos] = append(buckets[pos], rank.Element(fmt.Sprintf("e%d", e)))
			maxPos = max(maxPos, pos)
		}
		var r rank.Ranking
		for p := 0; p <= maxPos; p++ {
			if b, ok := buckets[p]; ok {
				r = append(r, b)
			}
		}
		if len(r) > 0 {
			rankings = append(rankings, r)
		}
	}
	ds, err := rank.NewDataset("random", rankings)
	require.NoError(t, err)
	return ds
}

func score(t *testing.T, res *Result) float64 {
	t.Helper()
	s, err := res.Score()
	require.NoError(t, err)
	return s
}

// cycle3 has a single sub-problem component {a, b, c} under Unifying.
func cycle3(t *testing.T) *rank.Dataset {
	return dataset(t, "[[a],[b],[c]]", "[[b],[c],[a]]", "[[c],[a],[b]]")
}

// recording returns a solver that answers with every element in its own
// bucket and counts its calls.
func recording(name string, calls *atomic.Int32) solver.Solver {
	return solver.Func{ID: name, Fn: func(_ context.Context, ds *rank.Dataset, sc rank.ScoringScheme) (*rank.Consensus, error) {
		calls.Add(1)
		var r rank.Ranking
		for _, e := range ds.Elements() {
			r = append(r, rank.Bucket{e})
		}
		return &rank.Consensus{Rankings: []rank.Ranking{r}, Dataset: ds, Scheme: sc}, nil
	}}
}

func failing(name string, code errs.Code) solver.Solver {
	return solver.Func{ID: name, Fn: func(context.Context, *rank.Dataset, rank.ScoringScheme) (*rank.Consensus, error) {
		return nil, errs.New(code, "%s refuses", name)
	}}
}

func TestSingleRankingReproduced(t *testing.T) {
	tests := []struct {
		name    string
		ranking string
	}{
		{"two", "[[a], [b]]"},
		{"five", "[[c], [a], [e], [b], [d]]"},
		{"one", "[[x]]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := dataset(t, tt.ranking)
			res, err := New(Options{}).Compute(context.Background(), ds, rank.Unifying)
			require.NoError(t, err)
			assert.Equal(t, tt.ranking, res.Consensus.First().String())
			assert.True(t, res.Consensus.Optimal)
			assert.Equal(t, Algorithm, res.Consensus.Algorithm)
		})
	}
}

func TestEndToEndExactPath(t *testing.T) {
	ds := dataset(t, "[[a],[b]]")
	var calls atomic.Int32
	p := New(Options{Heuristic: recording("heuristic", &calls)})

	res, err := p.Compute(context.Background(), ds, rank.Unifying)
	require.NoError(t, err)
	assert.Equal(t, "[[a], [b]]", res.Consensus.First().String())
	assert.True(t, res.Consensus.Optimal)
	assert.Zero(t, calls.Load())
	for _, rep := range res.Components {
		assert.NotEqual(t, RouteHeuristic, rep.Route)
	}
}

func TestEndToEndOpposedRankingsTie(t *testing.T) {
	ds := dataset(t, "[[a],[b],[c]]", "[[c],[b],[a]]")
	// Tying costs 2p against 1 for either strict order.
	sc := rank.Fagin(0.25)

	res, err := New(Options{}).Compute(context.Background(), ds, sc)
	require.NoError(t, err)
	assert.Equal(t, "[[a, b, c]]", res.Consensus.First().String())
	assert.True(t, res.Consensus.Optimal)
	require.Len(t, res.Components, 1)
	assert.Equal(t, TiedBlock, res.Components[0].Kind)
	assert.Equal(t, RouteDirect, res.Components[0].Route)
}

func TestEveryElementExactlyOnce(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	p := New(Options{})
	for i := 0; i < 40; i++ {
		ds := randomDataset(t, rng, 2+rng.IntN(9), 1+rng.IntN(5), true)
		for _, sc := range []rank.ScoringScheme{rank.Unifying, rank.Induced} {
			res, err := p.Compute(context.Background(), ds, sc)
			require.NoError(t, err)

			seen := make(map[rank.Element]int)
			for _, b := range res.Consensus.First() {
				require.NotEmpty(t, b)
				for _, e := range b {
					seen[e]++
				}
			}
			for _, e := range ds.Elements() {
				assert.Equal(t, 1, seen[e], "element %s", e)
			}
			assert.Len(t, seen, len(ds.Elements()))
		}
	}
}

func TestPartitionHasNoCrossComponentCycle(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for i := 0; i < 40; i++ {
		ds := randomDataset(t, rng, 3+rng.IntN(10), 2+rng.IntN(4), i%2 == 0)
		d, err := Analyze(ds, rank.Unifying)
		require.NoError(t, err)

		count := make([]int, d.Index.N())
		for _, c := range d.Components {
			for _, id := range c.IDs {
				count[id]++
			}
		}
		for id, n := range count {
			assert.Equal(t, 1, n, "element id %d", id)
		}

		// Edges never point backwards in emission order, so no cycle can
		// span two components.
		of := d.ComponentOf()
		for _, e := range d.Edges {
			assert.LessOrEqual(t, of[e[0]], of[e[1]], "edge %v", e)
		}
	}
}

func TestMatchesExactOptimum(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1))
	p := New(Options{})
	whole := exact.DP{}
	for i := 0; i < 30; i++ {
		ds := randomDataset(t, rng, 2+rng.IntN(7), 1+rng.IntN(5), false)

		got, err := p.Compute(context.Background(), ds, rank.Unifying)
		require.NoError(t, err)
		want, err := whole.Solve(context.Background(), ds, rank.Unifying)
		require.NoError(t, err)

		wantScore, err := pairwise.ScoreRanking(ds, rank.Unifying, want.First())
		require.NoError(t, err)
		assert.InDelta(t, wantScore, score(t, got), 1e-9, "dataset %v", ds.Rankings)
		assert.True(t, got.Consensus.Optimal)
	}
}

func TestTiedBlockOrderDoesNotMatter(t *testing.T) {
	ds := dataset(t, "[[a],[b],[c]]", "[[c],[b],[a]]", "[[d]]")
	sc := rank.Fagin(0.25)
	res, err := New(Options{}).Compute(context.Background(), ds, sc)
	require.NoError(t, err)

	var tied *Report
	for i := range res.Components {
		if res.Components[i].Kind == TiedBlock {
			tied = &res.Components[i]
		}
	}
	require.NotNil(t, tied)

	base := score(t, res)
	r := res.Consensus.First().Clone()
	for i, b := range r {
		if len(b) == tied.Size() {
			for l, h := 0, len(b)-1; l < h; l, h = l+1, h-1 {
				b[l], b[h] = b[h], b[l]
			}
			r[i] = b
		}
	}
	swapped, err := pairwise.ScoreRanking(ds, sc, r)
	require.NoError(t, err)
	assert.InDelta(t, base, swapped, 1e-9)
}

func TestThresholdRouting(t *testing.T) {
	ds := cycle3(t)
	d, err := Analyze(ds, rank.Unifying)
	require.NoError(t, err)
	require.Len(t, d.Components, 1)
	require.Equal(t, SubProblem, d.Components[0].Kind)
	size := d.Components[0].Size()

	tests := []struct {
		name      string
		bound     int
		wantRoute Route
		optimal   bool
	}{
		{"size equals bound", size, RouteExact, true},
		{"size exceeds bound", size - 1, RouteHeuristic, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var exactCalls, heuristicCalls atomic.Int32
			p := New(Options{
				ExactBound: tt.bound,
				Exact:      recording("exact", &exactCalls),
				Heuristic:  recording("heuristic", &heuristicCalls),
			})
			res, err := p.Compute(context.Background(), ds, rank.Unifying)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRoute, res.Components[0].Route)
			assert.Equal(t, tt.optimal, res.Consensus.Optimal)
			if tt.wantRoute == RouteExact {
				assert.EqualValues(t, 1, exactCalls.Load())
				assert.Zero(t, heuristicCalls.Load())
			} else {
				assert.Zero(t, exactCalls.Load())
				assert.EqualValues(t, 1, heuristicCalls.Load())
			}
		})
	}
}

func TestFallbackKeepsOptimality(t *testing.T) {
	p := New(Options{
		Exact:         failing("picky", errs.ErrCodeUnsupportedScheme),
		ExactFallback: exact.BranchAndBound{},
	})
	res, err := p.Compute(context.Background(), cycle3(t), rank.Unifying)
	require.NoError(t, err)
	assert.True(t, res.Consensus.Optimal)

	rep := res.Components[0]
	assert.Equal(t, RouteExactFallback, rep.Route)
	assert.Equal(t, "ExactBranchAndBound", rep.Method)
	assert.True(t, errs.Is(rep.PrimaryErr, errs.ErrCodeUnsupportedScheme))
	assert.InDelta(t, 4.0, score(t, res), 1e-9)
}

func TestBothExactSolversFail(t *testing.T) {
	tests := []struct {
		name      string
		primary   errs.Code
		secondary errs.Code
		want      errs.Code
	}{
		{"both unsupported", errs.ErrCodeUnsupportedScheme, errs.ErrCodeUnsupportedScheme, errs.ErrCodeUnsupportedScheme},
		{"mixed", errs.ErrCodeUnsupportedScheme, errs.ErrCodeSolverFailure, errs.ErrCodeSolverFailure},
		{"both failed", errs.ErrCodeSolverFailure, errs.ErrCodeSolverFailure, errs.ErrCodeSolverFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(Options{
				Exact:         failing("first", tt.primary),
				ExactFallback: failing("second", tt.secondary),
			})
			res, err := p.Compute(context.Background(), cycle3(t), rank.Unifying)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, tt.want, errs.GetCode(err))
			assert.Contains(t, err.Error(), "first refuses")
			assert.Contains(t, err.Error(), "second refuses")
		})
	}
}

func TestInvalidSolverOutputTriggersFallback(t *testing.T) {
	bogus := solver.Func{ID: "bogus", Fn: func(_ context.Context, ds *rank.Dataset, sc rank.ScoringScheme) (*rank.Consensus, error) {
		return &rank.Consensus{Rankings: []rank.Ranking{{{"a"}, {"a"}}}}, nil
	}}
	var calls atomic.Int32
	p := New(Options{Exact: bogus, ExactFallback: recording("backup", &calls)})
	res, err := p.Compute(context.Background(), cycle3(t), rank.Unifying)
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, RouteExactFallback, res.Components[0].Route)
	assert.True(t, errs.Is(res.Components[0].PrimaryErr, errs.ErrCodeSolverFailure))
}

func TestParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	seq := New(Options{})
	par := New(Options{Workers: 4})
	for i := 0; i < 20; i++ {
		ds := randomDataset(t, rng, 4+rng.IntN(8), 2+rng.IntN(4), true)
		a, err := seq.Compute(context.Background(), ds, rank.Unifying)
		require.NoError(t, err)
		b, err := par.Compute(context.Background(), ds, rank.Unifying)
		require.NoError(t, err)
		assert.Equal(t, a.Consensus.First().String(), b.Consensus.First().String())
	}
}

func TestParallelFailureAborts(t *testing.T) {
	p := New(Options{
		Workers:       2,
		Exact:         failing("first", errs.ErrCodeSolverFailure),
		ExactFallback: failing("second", errs.ErrCodeSolverFailure),
	})
	_, err := p.Compute(context.Background(), cycle3(t), rank.Unifying)
	assert.True(t, errs.Is(err, errs.ErrCodeSolverFailure))
}

// wrapAround builds seven rankings of n elements whose majority relation is
// one cycle through every element, so the whole dataset is one component.
// The optimum breaks the cycle between the first and last element at a cost
// of 3 above the pairwise lower bound.
func wrapAround(t *testing.T, n int) *rank.Dataset {
	t.Helper()
	name := func(i int) rank.Element { return rank.Element(fmt.Sprintf("e%02d", i)) }
	build := func(lead []int, first, last int, tail []int, swap int) rank.Ranking {
		var ids []int
		ids = append(ids, lead...)
		for i := first; i <= last; i++ {
			ids = append(ids, i)
		}
		ids = append(ids, tail...)
		for i := 0; i+1 < len(ids); i++ {
			if ids[i] == swap && ids[i+1] == swap+1 {
				ids[i], ids[i+1] = ids[i+1], ids[i]
				break
			}
		}
		r := make(rank.Ranking, len(ids))
		for i, id := range ids {
			r[i] = rank.Bucket{name(id)}
		}
		return r
	}
	ds, err := rank.NewDataset("wrap", []rank.Ranking{
		build(nil, 0, n-1, nil, 2),
		build(nil, 0, n-1, nil, 4),
		build(nil, 1, n-1, []int{0}, 6),
		build(nil, 1, n-1, []int{0}, 8),
		build([]int{n - 1}, 0, n-2, nil, 10),
		build([]int{n - 1}, 0, n-2, nil, 12),
		build([]int{n - 1}, 1, n-2, []int{0}, 14),
	})
	require.NoError(t, err)
	return ds
}

func TestMidSizeComponentSolvedExactly(t *testing.T) {
	ds := wrapAround(t, 24)

	res, err := New(Options{}).Compute(context.Background(), ds, rank.Unifying)
	require.NoError(t, err)
	require.Len(t, res.Components, 1)

	rep := res.Components[0]
	assert.Equal(t, SubProblem, rep.Kind)
	assert.Equal(t, 24, rep.Size())
	assert.Equal(t, RouteExactFallback, rep.Route)
	assert.Equal(t, "ExactBranchAndBound", rep.Method)
	assert.True(t, res.Consensus.Optimal)
	assert.InDelta(t, res.Decomp.Costs.LowerBound()+3, score(t, res), 1e-9)

	want := make(rank.Ranking, 24)
	for i := range want {
		want[i] = rank.Bucket{rank.Element(fmt.Sprintf("e%02d", i))}
	}
	assert.Equal(t, want, res.Consensus.First())
}

func TestScoreRejectsIncompleteConsensus(t *testing.T) {
	res, err := New(Options{}).Compute(context.Background(), cycle3(t), rank.Unifying)
	require.NoError(t, err)

	r := res.Consensus.First()
	res.Consensus.Rankings[0] = r[:len(r)-1]
	_, err = res.Score()
	require.Error(t, err)
}

func TestInvalidInputs(t *testing.T) {
	_, err := New(Options{}).Compute(context.Background(), &rank.Dataset{}, rank.Unifying)
	assert.True(t, errs.Is(err, errs.ErrCodeMalformedInput))

	bad := rank.Unifying
	bad.Tied[0] = -1
	_, err = New(Options{}).Compute(context.Background(), cycle3(t), bad)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidScheme))
}

func TestNestedAsSolver(t *testing.T) {
	var s solver.Solver = New(Options{})
	c, err := s.Solve(context.Background(), dataset(t, "[[a],[b, c]]"), rank.Unifying)
	require.NoError(t, err)
	assert.Equal(t, "ParCons", s.Name())
	assert.Equal(t, "[[a], [b, c]]", c.First().String())
}
