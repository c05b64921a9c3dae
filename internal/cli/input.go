package cli

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/corank/pkg/errors"
	"github.com/matzehuels/corank/pkg/rank"
)

// readDataset loads a dataset from path, or stdin when path is "-".
// Files ending in .json use the JSON format, everything else the text format.
func readDataset(path string, stdin io.Reader) (*rank.Dataset, error) {
	if path == "-" {
		return rank.ReadText(stdin, "stdin")
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "dataset %s", path)
		}
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if strings.EqualFold(filepath.Ext(path), ".json") {
		ds, err := rank.ReadJSON(f)
		if err != nil {
			return nil, err
		}
		if ds.Name == "" {
			ds.Name = name
		}
		return ds, nil
	}
	return rank.ReadText(f, name)
}

// schemeFlags are the flags selecting a scoring scheme.
type schemeFlags struct {
	scheme string
	before string
	tied   string
}

func (f *schemeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.scheme, "scheme", "", "scoring scheme preset: "+strings.Join(rank.SchemeNames(), ", "))
	cmd.Flags().StringVar(&f.before, "before", "", "before penalty vector, six comma-separated numbers")
	cmd.Flags().StringVar(&f.tied, "tied", "", "tied penalty vector, six comma-separated numbers")
	cmd.MarkFlagsRequiredTogether("before", "tied")
	cmd.MarkFlagsMutuallyExclusive("scheme", "before")
}

// resolve returns the scheme selected by the flags, falling back to the
// configured one.
func (f *schemeFlags) resolve(c *CLI) (rank.ScoringScheme, error) {
	switch {
	case f.before != "":
		b, err := parseVector(f.before)
		if err != nil {
			return rank.ScoringScheme{}, err
		}
		t, err := parseVector(f.tied)
		if err != nil {
			return rank.ScoringScheme{}, err
		}
		sc := rank.ScoringScheme{Before: b, Tied: t}
		return sc, sc.Validate()
	case f.scheme != "":
		return rank.SchemeByName(f.scheme)
	default:
		return c.Config.Solver.ScoringScheme()
	}
}

// parseVector parses "0,1,1,0,1,1" into a penalty vector.
func parseVector(s string) (rank.PenaltyVector, error) {
	var v rank.PenaltyVector
	parts := strings.Split(s, ",")
	if len(parts) != rank.NumRelations {
		return v, errs.New(errs.ErrCodeInvalidScheme, "penalty vector %q needs %d values, got %d", s, rank.NumRelations, len(parts))
	}
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return v, errs.Wrap(errs.ErrCodeInvalidScheme, err, "penalty vector %q", s)
		}
		v[i] = x
	}
	return v, nil
}
