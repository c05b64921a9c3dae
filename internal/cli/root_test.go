package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/corank/pkg/store"
)

// runCLI executes the root command with args and returns what was written
// to the command's stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// testConfig writes a config keeping the cache and archive in temp dirs.
func testConfig(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	dir := t.TempDir()
	return writeFile(t, "corank.toml", fmt.Sprintf(`
[cache]
dir = %q

[store]
backend = "file"
dir = %q
`, filepath.Join(dir, "cache"), filepath.Join(dir, "runs")))
}

const votes = "[[a], [b], [c]]\n[[b], [a], [c]]\n[[a], [c], [b]]\n"

func TestComputeJSON(t *testing.T) {
	cfg := testConfig(t)
	data := writeFile(t, "votes.txt", votes)

	out, err := runCLI(t, "--config", cfg, "compute", "--format", "json", data)
	require.NoError(t, err)

	var run store.Run
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	assert.Equal(t, [][]string{{"a"}, {"b"}, {"c"}}, run.Consensus)
	assert.Equal(t, 2.0, run.Score)
	assert.True(t, run.Optimal)
	assert.Equal(t, "votes", run.Dataset)
}

func TestComputeSaveAndShow(t *testing.T) {
	cfg := testConfig(t)
	data := writeFile(t, "votes.txt", votes)

	out, err := runCLI(t, "--config", cfg, "compute", "--save", "--format", "json", data)
	require.NoError(t, err)
	var saved store.Run
	require.NoError(t, json.Unmarshal([]byte(out), &saved))
	require.NotEqual(t, "00000000-0000-0000-0000-000000000000", saved.ID.String())

	out, err = runCLI(t, "--config", cfg, "runs", "show", "--json", saved.ID.String())
	require.NoError(t, err)
	var shown store.Run
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, saved.Consensus, shown.Consensus)

	_, err = runCLI(t, "--config", cfg, "runs", "delete", saved.ID.String())
	require.NoError(t, err)
	_, err = runCLI(t, "--config", cfg, "runs", "show", saved.ID.String())
	assert.Error(t, err)
}

func TestComputeSchemeFlags(t *testing.T) {
	cfg := testConfig(t)
	data := writeFile(t, "opposed.txt", "[[a], [b], [c]]\n[[c], [b], [a]]\n")

	out, err := runCLI(t, "--config", cfg, "compute", "--format", "json",
		"--before", "0,1,0.25,0,0,0", "--tied", "0.25,0.25,0,0,0,0", data)
	require.NoError(t, err)
	var run store.Run
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	assert.Equal(t, [][]string{{"a", "b", "c"}}, run.Consensus)

	_, err = runCLI(t, "--config", cfg, "compute", "--before", "0,1,1,0,1,1", data)
	assert.Error(t, err, "--before requires --tied")

	_, err = runCLI(t, "--config", cfg, "compute", "--format", "yaml", data)
	assert.Error(t, err)
}

func TestGraphDOT(t *testing.T) {
	cfg := testConfig(t)
	data := writeFile(t, "votes.txt", votes)

	out, err := runCLI(t, "--config", cfg, "graph", "--format", "dot", data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph"))

	_, err = runCLI(t, "--config", cfg, "graph", "--format", "png", data)
	assert.Error(t, err)
}

func TestCachePath(t *testing.T) {
	cfg := testConfig(t)
	out, err := runCLI(t, "--config", cfg, "cache", "path")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "cache"))
}

func TestInvalidConfig(t *testing.T) {
	cfg := writeFile(t, "corank.toml", "[solver]\nscheme = \"borda\"\n")
	_, err := runCLI(t, "--config", cfg, "cache", "path")
	assert.Error(t, err)
}

func TestCompletion(t *testing.T) {
	cfg := testConfig(t)
	out, err := runCLI(t, "--config", cfg, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "corank")
}
