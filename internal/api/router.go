// Package api serves corank over HTTP.
//
// Routes:
//
//	POST   /api/v1/consensus   compute a consensus
//	POST   /api/v1/graph       render the dominance graph (dot or svg)
//	GET    /api/v1/runs        list archived runs, newest first
//	GET    /api/v1/runs/{id}   fetch an archived run
//	DELETE /api/v1/runs/{id}   delete an archived run
//	GET    /api/v1/schemes     list scoring scheme presets
//	GET    /health             liveness
//	GET    /metrics            Prometheus metrics
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/corank/pkg/buildinfo"
	"github.com/matzehuels/corank/pkg/pipeline"
	"github.com/matzehuels/corank/pkg/rank"
)

// Options configures the router.
type Options struct {
	// SolveTimeout bounds a single consensus computation. Zero means none.
	SolveTimeout time.Duration

	// MaxBodyBytes caps request bodies. Zero means 8 MiB.
	MaxBodyBytes int64

	// Gatherer serves /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Scheme, ExactBound and Workers apply when a request leaves them unset.
	// A nil Scheme means rank.Unifying.
	Scheme     *rank.ScoringScheme
	ExactBound int
	Workers    int
}

// NewRouter builds the HTTP handler for runner.
func NewRouter(runner *pipeline.Runner, logger *log.Logger, opts Options) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 8 << 20
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(Metrics)

	h := &handler{runner: runner, logger: logger, opts: opts}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))
		r.Post("/consensus", h.consensus)
		r.Post("/graph", h.graph)
		r.Get("/runs", h.listRuns)
		r.Get("/runs/{id}", h.getRun)
		r.Delete("/runs/{id}", h.deleteRun)
		r.Get("/schemes", h.schemes)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
	})
	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	return r
}
