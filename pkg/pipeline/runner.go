package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/corank/pkg/cache"
	"github.com/matzehuels/corank/pkg/observability"
	"github.com/matzehuels/corank/pkg/parcons"
	"github.com/matzehuels/corank/pkg/render/dominance"
	"github.com/matzehuels/corank/pkg/store"
)

// Runner encapsulates consensus execution with caching and archiving.
// Both CLI and API use it to avoid duplicating that logic.
//
// The Runner is stateless except for its backends and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store
	Logger *log.Logger

	// TTL is the lifetime of cached consensus entries.
	// Zero means cache.TTLConsensus.
	TTL time.Duration
}

// NewRunner creates a runner with the given backends.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// A nil store disables archiving.
func NewRunner(c cache.Cache, keyer cache.Keyer, st store.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Store:  st,
		Logger: logger,
	}
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.TTLConsensus
}

// Execute computes (or recalls) the consensus described by opts.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	solver := parcons.New(opts.solverOptions())
	eff := solver.Options()
	hash := DatasetHash(opts.Dataset)
	key := r.Keyer.ConsensusKey(hash, cache.ConsensusKeyOpts{
		Scheme:        opts.Scheme.String(),
		ExactBound:    eff.ExactBound,
		Exact:         eff.Exact.Name(),
		ExactFallback: eff.ExactFallback.Name(),
		Heuristic:     eff.Heuristic.Name(),
	})

	result := &Result{}
	if !opts.Refresh {
		if run, ok := r.cachedRun(ctx, key); ok {
			run.Dataset = opts.Dataset.Name
			run.CreatedAt = time.Now().UTC()
			result.Run, result.CacheHit = run, true
			opts.Logger.Debug("consensus from cache", "key", key)
		}
	}

	if result.Run == nil {
		res, err := solver.Compute(ctx, opts.Dataset, opts.Scheme)
		if err != nil {
			return nil, err
		}
		run, err := store.NewRun(res, eff.ExactBound)
		if err != nil {
			return nil, err
		}
		run.DatasetHash = hash
		result.Run = run

		opts.Logger.Info("computed consensus",
			"elements", res.Decomp.Index.N(),
			"components", len(res.Components),
			"optimal", res.Consensus.Optimal,
			"duration", res.Duration)

		if data, err := json.Marshal(run); err == nil {
			if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
				opts.Logger.Warn("cache write failed", "err", err)
			} else {
				observability.Cache().OnCacheSet(ctx, "consensus", len(data))
			}
		}
	}

	if opts.Save && r.Store != nil {
		if err := r.Store.Save(ctx, result.Run); err != nil {
			return nil, fmt.Errorf("save run: %w", err)
		}
		result.Saved = true
		opts.Logger.Debug("archived run", "id", result.Run.ID)
	}
	return result, nil
}

func (r *Runner) cachedRun(ctx context.Context, key string) (*store.Run, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "consensus")
		return nil, false
	}
	var run store.Run
	err = cache.Decode(data, &run)
	if err == nil && len(run.Consensus) == 0 {
		err = fmt.Errorf("%w: run without consensus", cache.ErrCorrupt)
	}
	if err != nil {
		r.Logger.Warn("dropping cache entry", "key", key, "err", err)
		if err := r.Cache.Delete(ctx, key); err != nil {
			r.Logger.Warn("cache delete failed", "key", key, "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "consensus")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "consensus")
	return &run, true
}

// Graph renders the dominance graph of the dataset, from cache when possible.
// The boolean reports a cache hit.
func (r *Runner) Graph(ctx context.Context, opts GraphOptions) ([]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	key := r.Keyer.GraphKey(DatasetHash(opts.Dataset), cache.GraphKeyOpts{
		Scheme:    opts.Scheme.String(),
		Format:    opts.Format,
		Condensed: opts.Condensed,
		Costs:     opts.Costs,
	})
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "graph")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "graph")

	d, err := parcons.Analyze(opts.Dataset, opts.Scheme)
	if err != nil {
		return nil, false, err
	}
	dot := dominance.ToDOT(d, dominance.Options{Condensed: opts.Condensed, Costs: opts.Costs})
	r.Logger.Debug("built dominance graph", "nodes", d.Index.N(), "edges", len(d.Edges), "components", len(d.Components))

	out := []byte(dot)
	if opts.Format == FormatSVG {
		if out, err = dominance.RenderSVG(ctx, dot); err != nil {
			return nil, false, err
		}
	}

	if err := r.Cache.Set(ctx, key, out, cache.TTLGraph); err == nil {
		observability.Cache().OnCacheSet(ctx, "graph", len(out))
	}
	return out, false, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	var first error
	if r.Cache != nil {
		first = r.Cache.Close()
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
