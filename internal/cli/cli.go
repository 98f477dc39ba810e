// Package cli implements the erdlayout command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/erdlayout/pkg/buildinfo"
	"github.com/matzehuels/erdlayout/pkg/cache"
	"github.com/matzehuels/erdlayout/pkg/config"
	"github.com/matzehuels/erdlayout/pkg/observability"
	"github.com/matzehuels/erdlayout/pkg/ordering"
	"github.com/matzehuels/erdlayout/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "erdlayout"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	// Config is the loaded configuration file merged over the defaults.
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "erdlayout arranges entity-relationship diagrams in layers",
		Long: `erdlayout computes layered (Sugiyama-style) layouts for entity-relationship
diagrams: it breaks cycles, assigns levels, reduces edge crossings, places
entities and routes relationships. Results can be written back as JSON or YAML,
rendered to SVG, PNG, PDF or DOT, browsed in the terminal, or served over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $"+config.EnvVar+" or XDG config dir)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the --config file, or the discovered one, into c.Config.
func (c *CLI) loadConfig() error {
	if c.configPath != "" {
		cfg, err := config.Load(c.configPath)
		if err != nil {
			return err
		}
		c.Config = cfg
		return nil
	}
	cfg, path, err := config.LoadDefault()
	if err != nil {
		return err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
		c.configPath = path
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use and routes pipeline events
// to the debug log.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	hooks := observability.NewLogHooks(c.Logger)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)

	runner := pipeline.NewRunner(ch, nil, c.Logger)
	runner.TTL = c.Config.Cache.TTL.Duration
	return runner, nil
}

// newCache returns the configured cache: Redis when an address is set,
// otherwise the file cache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache || cfg.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		c.Logger.Debug("using redis cache", "addr", cfg.RedisAddr)
		return rc, nil
	}
	dir := cfg.Dir
	if dir == "" {
		dir = cache.DefaultDir()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags holds the layout overrides shared by several commands.
type layoutFlags struct {
	hgap          float64
	vgap          float64
	heuristic     string
	maxIterations int
	noTranspose   bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.hgap, "hgap", -1, "horizontal gap between entities (default from config)")
	cmd.Flags().Float64Var(&f.vgap, "vgap", -1, "vertical gap between levels (default from config)")
	cmd.Flags().StringVar(&f.heuristic, "heuristic", "", "crossing reduction heuristic: barycenter, median")
	cmd.Flags().IntVar(&f.maxIterations, "max-iterations", -1, "crossing reduction sweep cap, 0 for automatic")
	cmd.Flags().BoolVar(&f.noTranspose, "no-transpose", false, "disable adjacent swaps during crossing reduction")
}

// options builds pipeline options from the config with flag overrides applied.
func (c *CLI) options(cmd *cobra.Command, f *layoutFlags) (pipeline.Options, error) {
	cfg := c.Config.Layout
	opts := pipeline.Options{Layout: &cfg, Logger: c.Logger}
	if cmd.Flags().Changed("hgap") {
		opts.Layout.HorizontalGap = f.hgap
	}
	if cmd.Flags().Changed("vgap") {
		opts.Layout.VerticalGap = f.vgap
	}
	if cmd.Flags().Changed("max-iterations") {
		opts.Layout.MaxIterations = f.maxIterations
	}
	if f.heuristic != "" {
		h, err := ordering.ParseHeuristic(f.heuristic)
		if err != nil {
			return opts, err
		}
		opts.Layout.Heuristic = h
	}
	if f.noTranspose {
		opts.Layout.Transpose = false
	}
	return opts, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(parts[i]))
	}
	return parts
}
