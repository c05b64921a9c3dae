package parcons

import (
	"context"
	"errors"
	"fmt"
	"time"

	errs "github.com/matzehuels/corank/pkg/errors"
	"github.com/matzehuels/corank/pkg/observability"
	"github.com/matzehuels/corank/pkg/rank"
	"github.com/matzehuels/corank/pkg/solver"
)

// Route records how a component was resolved.
type Route int

const (
	// RouteDirect covers singletons and tied blocks, resolved without a solver.
	RouteDirect Route = iota
	// RouteExact means the primary exact solver succeeded.
	RouteExact
	// RouteExactFallback means the primary exact solver failed and the
	// fallback exact solver succeeded.
	RouteExactFallback
	// RouteHeuristic means the component exceeded the exact bound.
	RouteHeuristic
)

// String returns the lower-case name of the route.
func (r Route) String() string {
	switch r {
	case RouteDirect:
		return "direct"
	case RouteExact:
		return "exact"
	case RouteExactFallback:
		return "exact-fallback"
	case RouteHeuristic:
		return "heuristic"
	default:
		return "unknown"
	}
}

// Report describes how one component was resolved.
type Report struct {
	Component
	Route    Route
	Method   string        // name of the solver that produced the buckets
	Buckets  []rank.Bucket // the component's share of the consensus
	Duration time.Duration

	// PrimaryErr is the primary exact solver's failure when Route is
	// RouteExactFallback.
	PrimaryErr error
}

// attempt is the outcome of one solver call: a ranking or a failure.
type attempt struct {
	method  string
	ranking rank.Ranking
	err     error
}

func (a attempt) ok() bool { return a.err == nil }

// try runs s on the projected dataset and checks that the answer ranks
// exactly the projected elements. An unusable answer counts as a failure.
func try(ctx context.Context, s solver.Solver, ds *rank.Dataset, sc rank.ScoringScheme, want []rank.Element) attempt {
	a := attempt{method: s.Name()}
	c, err := s.Solve(ctx, ds, sc)
	if err != nil {
		a.err = err
		return a
	}
	if c == nil || len(c.Rankings) == 0 {
		a.err = errs.New(errs.ErrCodeSolverFailure, "%s returned no consensus", s.Name())
		return a
	}
	if err := covers(c.Rankings[0], want); err != nil {
		a.err = errs.Wrap(errs.ErrCodeSolverFailure, err, "%s returned an invalid ranking", s.Name())
		return a
	}
	a.ranking = c.Rankings[0]
	return a
}

// covers checks that r ranks every element of want exactly once and nothing else.
func covers(r rank.Ranking, want []rank.Element) error {
	expected := make(map[rank.Element]bool, len(want))
	for _, e := range want {
		expected[e] = false
	}
	for _, b := range r {
		if len(b) == 0 {
			return errors.New("empty bucket")
		}
		for _, e := range b {
			done, ok := expected[e]
			if !ok {
				return fmt.Errorf("unexpected element %q", e)
			}
			if done {
				return fmt.Errorf("element %q ranked twice", e)
			}
			expected[e] = true
		}
	}
	for e, done := range expected {
		if !done {
			return fmt.Errorf("element %q missing", e)
		}
	}
	return nil
}

// resolve produces the buckets of one component. Singletons and tied blocks
// need no solver; sub-problems are projected and routed by size.
func (p *ParCons) resolve(ctx context.Context, d *Decomposition, c Component) (Report, error) {
	start := time.Now()
	rep := Report{Component: c, Route: RouteDirect}

	switch c.Kind {
	case Singleton, TiedBlock:
		rep.Buckets = []rank.Bucket{d.Elements(c)}
		rep.Duration = time.Since(start)
		return rep, nil
	}

	members := d.Elements(c)
	inside := make(map[rank.Element]struct{}, len(members))
	for _, e := range members {
		inside[e] = struct{}{}
	}
	sub := d.Dataset.Project(func(e rank.Element) bool {
		_, ok := inside[e]
		return ok
	})

	var err error
	rep, err = p.route(ctx, rep, sub, d.Scheme, members)
	rep.Duration = time.Since(start)

	method := rep.Method
	if err != nil {
		method = ""
	}
	observability.Consensus().OnComponentSolved(ctx, rep.Route.String(), method, c.Size(), rep.Duration, err)
	return rep, err
}

func (p *ParCons) route(ctx context.Context, rep Report, sub *rank.Dataset, sc rank.ScoringScheme, members []rank.Element) (Report, error) {
	size := rep.Size()
	logger := p.opts.Logger.With("component", rep.Index, "size", size)

	if size > p.opts.ExactBound {
		rep.Route = RouteHeuristic
		h := try(ctx, p.opts.Heuristic, sub, sc, members)
		if !h.ok() {
			code := errs.ErrCodeSolverFailure
			if errs.Is(h.err, errs.ErrCodeUnsupportedScheme) {
				code = errs.ErrCodeUnsupportedScheme
			}
			return rep, errs.Wrap(code, h.err, "component %d (%d elements): heuristic %s", rep.Index, size, h.method)
		}
		logger.Debug("solved with heuristic", "method", h.method)
		rep.Method, rep.Buckets = h.method, h.ranking
		return rep, nil
	}

	primary := try(ctx, p.opts.Exact, sub, sc, members)
	if primary.ok() {
		logger.Debug("solved exactly", "method", primary.method)
		rep.Route, rep.Method, rep.Buckets = RouteExact, primary.method, primary.ranking
		return rep, nil
	}

	logger.Warn("exact solver failed, trying fallback",
		"method", primary.method, "fallback", p.opts.ExactFallback.Name(), "err", primary.err)
	observability.Consensus().OnFallback(ctx, primary.method, p.opts.ExactFallback.Name(), primary.err)

	secondary := try(ctx, p.opts.ExactFallback, sub, sc, members)
	if secondary.ok() {
		logger.Debug("solved by fallback", "method", secondary.method)
		rep.Route, rep.Method, rep.Buckets = RouteExactFallback, secondary.method, secondary.ranking
		rep.PrimaryErr = primary.err
		return rep, nil
	}

	code := errs.ErrCodeSolverFailure
	if errs.AllCodes(errs.ErrCodeUnsupportedScheme, primary.err, secondary.err) {
		code = errs.ErrCodeUnsupportedScheme
	}
	rep.Route = RouteExactFallback
	return rep, errs.Wrap(code, errors.Join(primary.err, secondary.err),
		"component %d (%d elements): %s and %s failed", rep.Index, size, primary.method, secondary.method)
}
