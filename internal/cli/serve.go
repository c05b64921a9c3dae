package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/corank/internal/api"
	"github.com/matzehuels/corank/pkg/observability"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API. Backends come from the config file:
the consensus cache (file, redis or null) and the run archive
(file, memory or mongo). Prometheus metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg := c.Config.Server
			if addr != "" {
				cfg.Addr = addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			prom := observability.NewPrometheus(reg)
			observability.SetConsensusHooks(prom)
			observability.SetCacheHooks(prom)
			observability.SetHTTPHooks(prom)
			defer observability.Reset()

			runner, err := c.newRunner(ctx, runnerOpts{archive: true})
			if err != nil {
				return err
			}
			defer runner.Close()

			scheme, err := c.Config.Solver.ScoringScheme()
			if err != nil {
				return err
			}
			router := api.NewRouter(runner, logger, api.Options{
				SolveTimeout: cfg.SolveTimeout,
				MaxBodyBytes: cfg.MaxBodyBytes,
				Gatherer:     reg,
				Scheme:       &scheme,
				ExactBound:   c.Config.Solver.ExactBound,
				Workers:      c.Config.Solver.Workers,
			})
			logger.Info("starting corank API",
				"cache", c.Config.Cache.Backend,
				"store", c.Config.Store.Backend,
				"exact_bound", c.Config.Solver.ExactBound)
			return api.NewServer(cfg.Addr, router, cfg.ReadTimeout, logger).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
