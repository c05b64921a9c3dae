package solver

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/corank/pkg/errors"
	"github.com/matzehuels/corank/pkg/rank"
)

func dataset(t *testing.T, rankings ...string) *rank.Dataset {
	t.Helper()
	rs := make([]rank.Ranking, len(rankings))
	for i, s := range rankings {
		r, err := rank.ParseRanking(s)
		require.NoError(t, err)
		rs[i] = r
	}
	ds, err := rank.NewDataset("t", rs)
	require.NoError(t, err)
	return ds
}

func TestPrepareRejectsInvalidScheme(t *testing.T) {
	ds := dataset(t, "[[a], [b]]")
	bad := rank.Unifying
	bad.Tied[0] = math.NaN()

	_, err := Prepare("X", ds, bad)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeUnsupportedScheme))
}

func TestPrepareKeepsMalformedInput(t *testing.T) {
	_, err := Prepare("X", &rank.Dataset{}, rank.Unifying)
	assert.True(t, errs.Is(err, errs.ErrCodeMalformedInput))
}

func TestCompletedInputs(t *testing.T) {
	ds := dataset(t, "[[a], [b]]", "[[c], [a]]", "[[a], [b]]")
	p, err := Prepare("X", ds, rank.Unifying)
	require.NoError(t, err)

	// ids: a=0, b=1, c=2; the third ranking duplicates the first.
	assert.Equal(t, [][][]int{
		{{0}, {1}, {2}},
		{{2}, {0}, {1}},
	}, p.CompletedInputs())
}

func TestProblemConsensus(t *testing.T) {
	ds := dataset(t, "[[a], [b, c]]")
	p, err := Prepare("X", ds, rank.Induced)
	require.NoError(t, err)

	c := p.Consensus("X", [][]int{{2, 1}, {0}}, true)
	assert.Equal(t, "[[c, b], [a]]", c.First().String())
	assert.True(t, c.Optimal)
	assert.Equal(t, "X", c.Algorithm)
	assert.Equal(t, rank.Induced, c.Scheme)
}

func TestFunc(t *testing.T) {
	called := false
	f := Func{ID: "fake", Fn: func(ctx context.Context, ds *rank.Dataset, sc rank.ScoringScheme) (*rank.Consensus, error) {
		called = true
		return &rank.Consensus{Rankings: ds.Rankings}, nil
	}}
	var s Solver = f
	assert.Equal(t, "fake", s.Name())
	_, err := s.Solve(context.Background(), dataset(t, "[[a]]"), rank.Unifying)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestSortBuckets(t *testing.T) {
	b := [][]int{{3, 1, 2}, {5, 4}}
	SortBuckets(b)
	assert.Equal(t, [][]int{{1, 2, 3}, {4, 5}}, b)
}
