package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/corank/pkg/parcons"
)

type inspectOpts struct {
	schemeFlags
	solve      bool
	exactBound int
}

func (c *CLI) inspectCommand() *cobra.Command {
	var opts inspectOpts
	cmd := &cobra.Command{
		Use:   "inspect <dataset>",
		Short: "Browse the ParCons decomposition interactively",
		Long: `Browse the components ParCons splits <dataset> into: singletons, tied
blocks and sub-problems, with the pairwise cost matrix of each component.

With --solve the dataset is also solved and each component shows the route
and solver that produced its share of the consensus.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd, args[0], &opts)
		},
	}
	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.solve, "solve", false, "solve the dataset and show per-component routes")
	cmd.Flags().IntVar(&opts.exactBound, "exact-bound", 0, "largest component sent to an exact solver (default from config)")
	return cmd
}

func (c *CLI) runInspect(cmd *cobra.Command, path string, opts *inspectOpts) error {
	ctx := cmd.Context()
	ds, err := readDataset(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	sc, err := opts.resolve(c)
	if err != nil {
		return err
	}

	var (
		d       *parcons.Decomposition
		reports []parcons.Report
	)
	if opts.solve {
		bound := opts.exactBound
		if bound == 0 {
			bound = c.Config.Solver.ExactBound
		}
		spinner := newSpinner(ctx, "Solving...")
		spinner.Start()
		res, err := parcons.New(parcons.Options{
			ExactBound: bound,
			Workers:    c.Config.Solver.Workers,
			Logger:     loggerFromContext(ctx),
		}).Compute(ctx, ds, sc)
		spinner.Stop()
		if err != nil {
			return err
		}
		d, reports = res.Decomp, res.Components
	} else if d, err = parcons.Analyze(ds, sc); err != nil {
		return err
	}

	p := tea.NewProgram(NewComponentBrowser(d, reports), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("component browser: %w", err)
	}
	return nil
}
