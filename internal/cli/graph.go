package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/corank/pkg/pipeline"
)

type graphOpts struct {
	schemeFlags
	format    string
	output    string
	condensed bool
	costs     bool
	noCache   bool
}

func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph <dataset>",
		Short: "Export the dominance graph",
		Long: `Export the dominance graph of <dataset> with one cluster per component.

An edge u -> v means placing u before v is strictly cheaper than the
alternative. Strongly connected components are the sub-problems ParCons
solves independently.`,
		Example: `  corank graph votes.txt -o votes.svg
  corank graph --format dot --costs votes.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateGraphFormat(opts.format); err != nil {
				return err
			}
			return c.runGraph(cmd, args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", pipeline.FormatSVG, "output format: svg, dot")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.condensed, "condensed", false, "draw one node per component")
	cmd.Flags().BoolVar(&opts.costs, "costs", false, "label edges with before/after/tied costs")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, path string, opts *graphOpts) error {
	ctx := cmd.Context()
	ds, err := readDataset(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	sc, err := opts.resolve(c)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, runnerOpts{noCache: opts.noCache})
	if err != nil {
		return err
	}
	defer runner.Close()

	out, hit, err := runner.Graph(ctx, pipeline.GraphOptions{
		Dataset:   ds,
		Scheme:    sc,
		Format:    opts.format,
		Condensed: opts.condensed,
		Costs:     opts.costs,
	})
	if err != nil {
		return err
	}
	c.Logger.Debug("graph ready", "format", opts.format, "bytes", len(out), "cached", hit)

	if opts.output == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return err
	}
	printSuccess("Wrote dominance graph")
	printFile(opts.output)
	return nil
}
