package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/corank/pkg/errors"
)

func TestNewDataset(t *testing.T) {
	tests := []struct {
		name     string
		rankings []Ranking
		wantErr  bool
	}{
		{"complete", []Ranking{{{"a"}, {"b"}}, {{"b", "a"}}}, false},
		{"incomplete", []Ranking{{{"a"}}, {{"b"}, {"c"}}}, false},
		{"empty ranking allowed", []Ranking{{}, {{"a"}}}, false},
		{"no rankings", nil, true},
		{"empty bucket", []Ranking{{{"a"}, {}}}, true},
		{"duplicate element", []Ranking{{{"a"}, {"b", "a"}}}, true},
		{"empty element", []Ranking{{{""}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := NewDataset("test", tt.rankings)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errs.Is(err, errs.ErrCodeMalformedInput), "got %v", err)
				assert.Nil(t, ds)
				return
			}
			require.NoError(t, err)
			assert.Len(t, ds.Rankings, len(tt.rankings))
		})
	}
}

func TestDatasetElementsFirstSeenOrder(t *testing.T) {
	ds, err := NewDataset("", []Ranking{
		{{"c", "a"}, {"d"}},
		{{"b"}, {"a"}, {"e"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []Element{"c", "a", "d", "b", "e"}, ds.Elements())
}

func TestDatasetProject(t *testing.T) {
	ds, err := NewDataset("p", []Ranking{
		{{"a", "x"}, {"b"}, {"y"}},
		{{"x"}, {"y"}},
		{{"c"}, {"b", "a"}},
	})
	require.NoError(t, err)

	keep := map[Element]bool{"a": true, "b": true, "c": true}
	got := ds.Project(func(e Element) bool { return keep[e] })

	assert.Equal(t, "p", got.Name)
	assert.Equal(t, []Ranking{
		{{"a"}, {"b"}},
		{{"c"}, {"b", "a"}},
	}, got.Rankings)
}

func TestRankingHelpers(t *testing.T) {
	r := Ranking{{"a", "b"}, {"c"}}

	assert.Equal(t, 3, r.Len())
	assert.True(t, r.Contains("c"))
	assert.False(t, r.Contains("d"))
	assert.Equal(t, map[Element]int{"a": 0, "b": 0, "c": 1}, r.Positions())
	assert.Equal(t, "[[a, b], [c]]", r.String())

	c := r.Clone()
	c[0][0] = "z"
	assert.Equal(t, Element("a"), r[0][0], "Clone must not share buckets")
}

func TestConsensusFirst(t *testing.T) {
	var nilConsensus *Consensus
	assert.Nil(t, nilConsensus.First())
	assert.Nil(t, (&Consensus{}).First())

	c := &Consensus{Rankings: []Ranking{{{"a"}}, {{"b"}}}}
	assert.Equal(t, Ranking{{"a"}}, c.First())
}
