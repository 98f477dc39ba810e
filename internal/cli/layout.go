package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/erdlayout/pkg/diagram"
	"github.com/matzehuels/erdlayout/pkg/pipeline"
)

// layoutCommand creates the layout command, which writes positions and
// routes back into a diagram file.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [diagram.json|diagram.yaml]",
		Short: "Compute entity positions and relationship routes",
		Long: `Compute entity positions and relationship routes for a diagram.

The result is the input diagram with x/y set on every entity and points set on
every relationship. It is written next to the input as <name>.layout.json
unless -o is given; an output ending in .yaml or .yml is written as YAML.

Results are cached, so laying out an unchanged diagram again is instant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			opts.Refresh = refresh
			return c.runLayout(cmd.Context(), args[0], output, noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute and overwrite cached results")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input, output string, noCache bool, opts pipeline.Options) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, input, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == "" {
		output = defaultOutput(input, "layout.json")
	}
	if err := diagram.WriteFile(result.Diagram, output); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	prog.done("layout written", "path", output)

	printSuccess("Layout complete")
	printFile(output)
	printStats(result.Stats, result.CacheInfo.LayoutHit)
	fmt.Println()
	printNextStep("Render", appName+" render "+output)
	return nil
}

// defaultOutput replaces the extension of input with suffix.
func defaultOutput(input, suffix string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + suffix
}
