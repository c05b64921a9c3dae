// Package pipeline runs consensus computations with caching and archiving.
//
// The CLI and the HTTP API both go through a [Runner], so a request behaves
// the same whichever entry point receives it: the dataset is hashed, the
// consensus cache is consulted, ParCons runs on a miss, and the resulting
// [store.Run] is cached and optionally archived.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, st, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Dataset: ds,
//	    Scheme:  rank.Unifying,
//	    Save:    true,
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Run.ConsensusRanking())
//
// Render the dominance graph with artifact caching:
//
//	svg, hit, err := runner.Graph(ctx, pipeline.GraphOptions{
//	    Dataset: ds,
//	    Scheme:  rank.Unifying,
//	    Format:  pipeline.FormatSVG,
//	})
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/corank/pkg/cache"
	errs "github.com/matzehuels/corank/pkg/errors"
	"github.com/matzehuels/corank/pkg/parcons"
	"github.com/matzehuels/corank/pkg/rank"
	"github.com/matzehuels/corank/pkg/store"
)

// Format constants for graph output.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// ValidGraphFormats is the set of supported graph output formats.
var ValidGraphFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// Options configures one consensus computation.
type Options struct {
	Dataset *rank.Dataset
	Scheme  rank.ScoringScheme

	// ExactBound and Workers are passed to parcons.Options.
	ExactBound int
	Workers    int

	// Refresh skips the cache lookup. The fresh result is still cached.
	Refresh bool

	// Save archives the run in the runner's store.
	Save bool

	// Logger receives progress events. Defaults to the runner's logger.
	Logger *log.Logger
}

// ValidateAndSetDefaults checks the inputs and fills zero values.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Dataset == nil {
		return errs.New(errs.ErrCodeInvalidInput, "dataset is required")
	}
	if err := o.Dataset.Validate(); err != nil {
		return err
	}
	if err := o.Scheme.Validate(); err != nil {
		return err
	}
	if o.ExactBound <= 0 {
		o.ExactBound = parcons.DefaultExactBound
	}
	if o.Workers < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "workers must not be negative")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// solverOptions builds the ParCons options for o.
func (o *Options) solverOptions() parcons.Options {
	return parcons.Options{
		ExactBound: o.ExactBound,
		Workers:    o.Workers,
		Logger:     o.Logger,
	}
}

// GraphOptions configures a dominance graph rendering.
type GraphOptions struct {
	Dataset   *rank.Dataset
	Scheme    rank.ScoringScheme
	Format    string
	Condensed bool
	Costs     bool
}

// ValidateAndSetDefaults checks the inputs and fills zero values.
func (o *GraphOptions) ValidateAndSetDefaults() error {
	if o.Dataset == nil {
		return errs.New(errs.ErrCodeInvalidInput, "dataset is required")
	}
	if o.Format == "" {
		o.Format = FormatSVG
	}
	return ValidateGraphFormat(o.Format)
}

// ValidateGraphFormat checks if a graph output format is supported.
func ValidateGraphFormat(format string) error {
	if !ValidGraphFormats[format] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid graph format: %s (must be dot or svg)", format)
	}
	return nil
}

// DatasetHash returns the content hash of a dataset's rankings. The dataset
// name does not contribute, so renamed copies share cache entries.
func DatasetHash(ds *rank.Dataset) string {
	data, err := json.Marshal(rank.ToStrings(ds.Rankings))
	if err != nil {
		panic(fmt.Sprintf("marshal rankings: %v", err))
	}
	return cache.Hash(data)
}

// Result is the outcome of Runner.Execute.
type Result struct {
	Run      *store.Run
	CacheHit bool
	Saved    bool
}
