package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/corank/pkg/errors"
	"github.com/matzehuels/corank/pkg/pipeline"
	"github.com/matzehuels/corank/pkg/rank"
)

type computeOpts struct {
	schemeFlags
	exactBound int
	workers    int
	format     string
	noCache    bool
	refresh    bool
	save       bool
	output     string
}

func (c *CLI) computeCommand() *cobra.Command {
	var opts computeOpts

	cmd := &cobra.Command{
		Use:   "compute <dataset>",
		Short: "Compute a consensus ranking",
		Long: `Compute a consensus ranking of the rankings in <dataset>.

The dataset is a text file with one ranking per line in the notation
[[a, b], [c]] (a and b tied, both before c), or a JSON file
{"name": "...", "rankings": [[["a","b"],["c"]]]}. Use - for stdin.`,
		Example: `  corank compute votes.txt
  corank compute --scheme induced --format json votes.json
  corank compute --before 0,1,1,0,1,1 --tied 1,1,0,1,1,0 votes.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != "text" && opts.format != "json" {
				return errs.New(errs.ErrCodeInvalidInput, "invalid format %q (must be text or json)", opts.format)
			}
			return c.runCompute(cmd, args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().IntVar(&opts.exactBound, "exact-bound", 0, "largest component sent to an exact solver (default from config)")
	cmd.Flags().IntVar(&opts.workers, "workers", -1, "parallel sub-problem workers (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format: text, json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the result to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the consensus cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVar(&opts.save, "save", false, "archive the run")

	return cmd
}

func (c *CLI) runCompute(cmd *cobra.Command, path string, opts *computeOpts) error {
	ctx := cmd.Context()
	ds, err := readDataset(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	sc, err := opts.resolve(c)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, runnerOpts{noCache: opts.noCache, archive: opts.save})
	if err != nil {
		return err
	}
	defer runner.Close()

	exactBound := opts.exactBound
	if exactBound == 0 {
		exactBound = c.Config.Solver.ExactBound
	}
	workers := opts.workers
	if workers < 0 {
		workers = c.Config.Solver.Workers
	}

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Aggregating %d rankings...", len(ds.Rankings)))
	spinner.Start()
	res, err := runner.Execute(ctx, pipeline.Options{
		Dataset:    ds,
		Scheme:     sc,
		ExactBound: exactBound,
		Workers:    workers,
		Refresh:    opts.refresh,
		Save:       opts.save,
	})
	spinner.Stop()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	prog.done("consensus ready", "cached", res.CacheHit, "score", res.Run.Score)

	if opts.format == "json" {
		data, err := json.MarshalIndent(res.Run, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')
		if opts.output != "" {
			if err := os.WriteFile(opts.output, data, 0o644); err != nil {
				return err
			}
			printFile(opts.output)
			return nil
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := rank.WriteText(f, []rank.Ranking{res.Run.ConsensusRanking()}); err != nil {
			return err
		}
		printFile(opts.output)
		return nil
	}
	printRun(res)
	return nil
}

// printRun prints a human-readable report of a computation.
func printRun(res *pipeline.Result) {
	run := res.Run
	fmt.Println(StyleTitle.Render("Consensus") + " " + StyleDim.Render(run.Dataset))
	fmt.Print(formatConsensus(run.Consensus))
	fmt.Println()
	printKeyValue("Score", fmt.Sprintf("%g", run.Score))
	printKeyValue("Scheme", run.Scheme.String())
	if run.Optimal {
		printKeyValue("Optimal", StyleSuccess.Render("yes"))
	} else {
		printKeyValue("Optimal", StyleWarning.Render("no"))
		printWarning("components above the exact bound were solved heuristically")
	}
	fmt.Println(formatStats(run, res.CacheHit))
	fmt.Println(componentTable(run.Components))
	if res.Saved {
		printSuccess("Archived run %s", run.ID)
		printNextStep("Show it again", "corank runs show "+run.ID.String())
	}
}
