package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/erdlayout/pkg/pipeline"
)

// renderCommand creates the render command, which lays out a diagram and
// writes it in one or more output formats.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		noCache    bool
		refresh    bool
		flags      layoutFlags
	)
	opts := pipeline.Options{Engine: pipeline.EngineNative}

	cmd := &cobra.Command{
		Use:   "render [diagram.json|diagram.yaml]",
		Short: "Lay out a diagram and render it to SVG, PNG, PDF, DOT, JSON or YAML",
		Long: `Lay out a diagram and render it.

Formats are given as a comma-separated list (-f svg,png). The native engine
draws SVG directly; the graphviz engine hands the computed positions to
Graphviz (neato -n) for drawing. PNG and PDF are converted from the SVG with
rsvg-convert, which must be installed.

With one format, -o names the output file. With several, -o is the base
path and each format's extension is appended.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layoutOpts, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			opts.Layout = layoutOpts.Layout
			opts.Logger = layoutOpts.Logger
			opts.Formats = parseFormats(formatsStr)
			opts.Refresh = refresh
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if err := pipeline.ValidateEngine(opts.Engine); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], output, noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (one format) or base path (several)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, graphml, json, yaml")
	cmd.Flags().StringVarP(&opts.Engine, "engine", "e", opts.Engine, "SVG engine: native, graphviz")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show entity and relationship IDs")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute and overwrite cached results")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input, output string, noCache bool, opts pipeline.Options) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Laying out and rendering...")
	spinner.Start()

	result, err := runner.Execute(ctx, input, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths := outputPaths(input, output, opts.Formats)
	for _, format := range opts.Formats {
		if err := os.WriteFile(paths[format], result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[format], err)
		}
	}

	printSuccess("Rendered %s", strings.Join(opts.Formats, ", "))
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	printStats(result.Stats, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	c.Logger.Debug("render timing",
		"parse", result.Timing.Parse,
		"layout", result.Timing.Layout,
		"render", result.Timing.Render)
	return nil
}

// outputPaths maps each format to its destination file.
func outputPaths(input, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}

	base := strings.TrimSuffix(input, filepath.Ext(input))
	if output != "" {
		base = strings.TrimSuffix(output, filepath.Ext(output))
	}
	for _, f := range formats {
		ext := f
		if f == pipeline.FormatJSON || f == pipeline.FormatYAML {
			ext = "layout." + f
		}
		paths[f] = base + "." + ext
	}
	return paths
}
