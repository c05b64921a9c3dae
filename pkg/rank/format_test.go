package rank

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/corank/pkg/errors"
)

func TestParseRanking(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Ranking
		wantErr bool
	}{
		{"single", "[[a]]", Ranking{{"a"}}, false},
		{"ties", "[[a, b], [c]]", Ranking{{"a", "b"}, {"c"}}, false},
		{"no spaces", "[[1,2],[3]]", Ranking{{"1", "2"}, {"3"}}, false},
		{"padded", "  [ [x] , [ y ,z ] ]  ", Ranking{{"x"}, {"y", "z"}}, false},
		{"empty ranking", "[]", Ranking{}, false},
		{"missing outer", "[a]", nil, true},
		{"no brackets", "a, b", nil, true},
		{"unterminated", "[[a, b]", nil, true},
		{"nested", "[[a, [b]]]", nil, true},
		{"trailing comma", "[[a],]", nil, true},
		{"missing comma", "[[a] [b]]", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRanking(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errs.Is(err, errs.ErrCodeInvalidFormat), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadText(t *testing.T) {
	input := `# two voters
[[a], [b, c]]

[[c], [a]]
`
	ds, err := ReadText(strings.NewReader(input), "voters")
	require.NoError(t, err)
	assert.Equal(t, "voters", ds.Name)
	assert.Equal(t, []Ranking{{{"a"}, {"b", "c"}}, {{"c"}, {"a"}}}, ds.Rankings)
}

func TestReadTextErrors(t *testing.T) {
	_, err := ReadText(strings.NewReader("[[a]]\n[[b],\n"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	_, err = ReadText(strings.NewReader("# nothing\n\n"), "")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeMalformedInput))

	_, err = ReadText(strings.NewReader("[[a], []]\n"), "")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeMalformedInput))
}

func TestTextRoundTrip(t *testing.T) {
	rankings := []Ranking{{{"a", "b"}, {"c"}}, {{"c"}, {"b"}}}
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, rankings))
	assert.Equal(t, "[[a, b], [c]]\n[[c], [b]]\n", buf.String())

	ds, err := ReadText(&buf, "")
	require.NoError(t, err)
	assert.Equal(t, rankings, ds.Rankings)
}

func TestReadJSON(t *testing.T) {
	ds, err := ReadJSON(strings.NewReader(`{"name": "d1", "rankings": [[["a","b"],["c"]], [["c"],["a"]]]}`))
	require.NoError(t, err)
	assert.Equal(t, "d1", ds.Name)
	assert.Equal(t, []Ranking{{{"a", "b"}, {"c"}}, {{"c"}, {"a"}}}, ds.Rankings)

	_, err = ReadJSON(strings.NewReader(`{"rankings": 3}`))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidFormat))

	_, err = ReadJSON(strings.NewReader(`{"rankings": []}`))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeMalformedInput))
}

func TestWriteJSON(t *testing.T) {
	ds, err := NewDataset("out", []Ranking{{{"a"}, {"b"}}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, ds))

	back, err := ReadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, ds, back)
}

func TestReservedCharactersOnlyMatterInText(t *testing.T) {
	in := `{"name": "calls", "rankings": [[["f[x, y]"], ["g"]], [["g"], ["f[x, y]"]]]}`
	ds, err := ReadJSON(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, Element("f[x, y]"), ds.Rankings[0][0][0])

	var js bytes.Buffer
	require.NoError(t, WriteJSON(&js, ds))
	back, err := ReadJSON(&js)
	require.NoError(t, err)
	assert.Equal(t, ds.Rankings, back.Rankings)

	var txt bytes.Buffer
	err = WriteText(&txt, ds.Rankings)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidFormat))
}
