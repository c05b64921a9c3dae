package parcons

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/corank/pkg/observability"
	"github.com/matzehuels/corank/pkg/rank"
	"github.com/matzehuels/corank/pkg/solver"
	"github.com/matzehuels/corank/pkg/solver/bioconsert"
	"github.com/matzehuels/corank/pkg/solver/exact"
)

// Algorithm is the name ParCons reports on its consensus.
const Algorithm = "ParCons"

// DefaultExactBound is the largest component size handed to the exact solvers.
const DefaultExactBound = 80

// Options configures a ParCons solver. Zero values select the defaults.
type Options struct {
	// ExactBound is the largest sub-problem solved exactly. Larger ones go
	// to Heuristic. Defaults to DefaultExactBound.
	ExactBound int

	// Exact is the primary exact solver. Defaults to exact.DP.
	Exact solver.Solver

	// ExactFallback is tried when Exact fails. Defaults to
	// exact.BranchAndBound.
	ExactFallback solver.Solver

	// Heuristic solves sub-problems above ExactBound. Defaults to
	// bioconsert.BioConsert.
	Heuristic solver.Solver

	// Workers bounds concurrent sub-problem solves. Values below 2 solve
	// sequentially.
	Workers int

	// Logger receives decomposition and routing events. Defaults to a
	// discarding logger.
	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.ExactBound <= 0 {
		o.ExactBound = DefaultExactBound
	}
	if o.Exact == nil {
		o.Exact = exact.DP{}
	}
	if o.ExactFallback == nil {
		o.ExactFallback = exact.BranchAndBound{}
	}
	if o.Heuristic == nil {
		o.Heuristic = bioconsert.BioConsert{}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ParCons computes a consensus by splitting the dominance graph into strongly
// connected components and solving each one on its own.
type ParCons struct {
	opts Options
}

// New returns a ParCons solver configured by opts.
func New(opts Options) *ParCons {
	opts.setDefaults()
	return &ParCons{opts: opts}
}

// Options returns the effective options, defaults applied.
func (p *ParCons) Options() Options { return p.opts }

// Name implements solver.Solver.
func (p *ParCons) Name() string { return Algorithm }

// Solve implements solver.Solver.
func (p *ParCons) Solve(ctx context.Context, ds *rank.Dataset, sc rank.ScoringScheme) (*rank.Consensus, error) {
	res, err := p.Compute(ctx, ds, sc)
	if err != nil {
		return nil, err
	}
	return res.Consensus, nil
}

// Result is a consensus with the decomposition that produced it.
type Result struct {
	Consensus  *rank.Consensus
	Decomp     *Decomposition
	Components []Report // one per component, in consensus order
	Duration   time.Duration
}

// Score returns the Kemeny score of the consensus. It fails if the
// consensus does not rank every element of the dataset exactly once.
func (r *Result) Score() (float64, error) {
	b, err := r.Decomp.Index.Buckets(r.Consensus.First())
	if err != nil {
		return 0, err
	}
	return r.Decomp.Costs.Score(b), nil
}

// Compute analyses ds under sc and resolves every component. Any component
// failure aborts the whole computation; no partial consensus is returned.
func (p *ParCons) Compute(ctx context.Context, ds *rank.Dataset, sc rank.ScoringScheme) (res *Result, err error) {
	start := time.Now()
	defer func() {
		optimal, n := false, 0
		if res != nil {
			optimal, n = res.Consensus.Optimal, len(res.Components)
		}
		observability.Consensus().OnComputeComplete(ctx, optimal, n, time.Since(start), err)
	}()

	d, err := Analyze(ds, sc)
	if err != nil {
		return nil, err
	}
	observability.Consensus().OnComputeStart(ctx, d.Index.N(), d.Index.M())
	p.opts.Logger.Debug("decomposed dataset",
		"elements", d.Index.N(),
		"rankings", d.Index.M(),
		"edges", len(d.Edges),
		"components", len(d.Components),
		"singletons", d.Count(Singleton),
		"tied", d.Count(TiedBlock),
		"subproblems", d.Count(SubProblem))

	reports, err := p.dispatch(ctx, d)
	if err != nil {
		return nil, err
	}
	res = assemble(d, reports)
	res.Duration = time.Since(start)
	p.opts.Logger.Debug("consensus assembled",
		"buckets", len(res.Consensus.First()),
		"optimal", res.Consensus.Optimal,
		"duration", res.Duration)
	return res, nil
}

// dispatch resolves every component. Results land at their component index,
// so the order of completion never affects the consensus.
func (p *ParCons) dispatch(ctx context.Context, d *Decomposition) ([]Report, error) {
	reports := make([]Report, len(d.Components))

	if p.opts.Workers < 2 {
		for i, c := range d.Components {
			rep, err := p.resolve(ctx, d, c)
			if err != nil {
				return nil, err
			}
			reports[i] = rep
		}
		return reports, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, c := range d.Components {
		if c.Kind != SubProblem {
			rep, _ := p.resolve(gctx, d, c)
			reports[i] = rep
			continue
		}
		g.Go(func() error {
			rep, err := p.resolve(gctx, d, c)
			if err != nil {
				return err
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// assemble concatenates component buckets in emission order.
func assemble(d *Decomposition, reports []Report) *Result {
	var r rank.Ranking
	optimal := true
	for _, rep := range reports {
		r = append(r, rep.Buckets...)
		if rep.Route == RouteHeuristic {
			optimal = false
		}
	}
	return &Result{
		Consensus: &rank.Consensus{
			Rankings:  []rank.Ranking{r},
			Dataset:   d.Dataset,
			Scheme:    d.Scheme,
			Optimal:   optimal,
			Algorithm: Algorithm,
		},
		Decomp:     d,
		Components: reports,
	}
}
