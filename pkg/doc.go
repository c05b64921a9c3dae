// Package pkg provides the core libraries for corank rank aggregation.
//
// # Overview
//
// corank computes a consensus ranking from many input rankings that may tie
// elements together and may omit elements. The consensus minimizes the
// generalized Kemeny score under a configurable scoring scheme. Because the
// exact problem is NP-hard, corank uses ParCons: it splits the elements
// along the strongly connected components of a dominance graph and solves
// each component on its own, exactly when small enough and heuristically
// otherwise.
//
// # Architecture
//
// The data flow of one computation:
//
//	Dataset (rankings with ties and missing elements)
//	         ↓
//	    [pairwise] package (position index + pairwise cost table)
//	         ↓
//	    [parcons] package (dominance graph → components → dispatch)
//	         ↓
//	    [solver] packages (exact DP, branch and bound, BioConsert)
//	         ↓
//	    Consensus ranking + per-component report
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/corank/pkg/parcons"
//	    "github.com/matzehuels/corank/pkg/rank"
//	)
//
//	ds, _ := rank.ReadText(strings.NewReader(`
//	    [[a], [b], [c]]
//	    [[b], [a], [c]]
//	    [[a, c], [b]]
//	`), "votes")
//
//	res, err := parcons.New(parcons.Options{}).Compute(ctx, ds, rank.Unifying)
//	if err != nil {
//	    return err
//	}
//	score, err := res.Score()
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Consensus.First(), score, res.Consensus.Optimal)
//
// # Main Packages
//
// ## Domain
//
// [rank] - Rankings, datasets, scoring schemes and the text/JSON formats.
//
// [pairwise] - Position index and the before/after/tied cost of every pair.
//
// [parcons] - The ParCons decomposition and dispatcher. [parcons.Analyze]
// exposes the decomposition without solving.
//
// [solver] - The Solver interface plus the exact (DP, branch and bound) and
// heuristic (BioConsert) implementations used by ParCons.
//
// ## Infrastructure
//
// [pipeline] - Cached, archived execution shared by the CLI and the API.
//
// [cache] - Result cache with file, Redis and null backends.
//
// [store] - Run archive with memory, file and MongoDB backends.
//
// [render/dominance] - Dominance graph export to Graphviz DOT and SVG.
//
// [observability] - Hook registry with a Prometheus implementation.
//
// [config] - TOML configuration with environment overrides.
//
// [errors] - Coded errors shared by every package.
//
// # Testing
//
//	go test ./...                            # Unit tests
//	go test -tags integration ./pkg/...      # Redis and MongoDB backends
//
// [rank]: https://pkg.go.dev/github.com/matzehuels/corank/pkg/rank
// [pairwise]: https://pkg.go.dev/github.com/matzehuels/corank/pkg/pairwise
// [parcons]: https://pkg.go.dev/github.com/matzehuels/corank/pkg/parcons
// [parcons.Analyze]: https://pkg.go.dev/github.com/matzehuels/corank/pkg/parcons#Analyze
// [solver]: https://pkg.go.dev/github.com/matzehuels/corank/pkg/solver
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/corank/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/corank/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/corank/pkg/store
// [render/dominance]: https://pkg.go.dev/github.com/matzehuels/corank/pkg/render/dominance
// [observability]: https://pkg.go.dev/github.com/matzehuels/corank/pkg/observability
// [config]: https://pkg.go.dev/github.com/matzehuels/corank/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/corank/pkg/errors
package pkg
