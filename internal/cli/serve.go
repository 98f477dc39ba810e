package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/erdlayout/pkg/config"
	"github.com/matzehuels/erdlayout/pkg/observability"
	"github.com/matzehuels/erdlayout/pkg/server"
	"github.com/matzehuels/erdlayout/pkg/store"
)

const defaultDatabase = "erdlayout"

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags   config.ServerConfig
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

Stored layouts live in memory unless --db names a bbolt file or --mongo a
MongoDB deployment. The layout cache follows the [cache] configuration, so
several instances can share one Redis cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The config file is loaded after flag parsing, so flags are applied on top here.
			srv := &c.Config.Server
			if cmd.Flags().Changed("addr") {
				srv.Addr = flags.Addr
			}
			if cmd.Flags().Changed("db") {
				srv.DB = flags.DB
			}
			if cmd.Flags().Changed("mongo") {
				srv.MongoURI = flags.MongoURI
			}
			if cmd.Flags().Changed("database") {
				srv.Database = flags.Database
			}
			return c.runServe(cmd.Context(), noCache)
		},
	}

	cmd.Flags().StringVar(&flags.Addr, "addr", config.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&flags.DB, "db", "", "bbolt database file for stored layouts")
	cmd.Flags().StringVar(&flags.MongoURI, "mongo", "", "MongoDB URI for stored layouts")
	cmd.Flags().StringVar(&flags.Database, "database", defaultDatabase, "MongoDB database name")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, noCache bool) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	observability.SetHTTPHooks(observability.NewLogHooks(c.Logger))

	layoutCfg := c.Config.Layout
	s := server.New(runner, st, server.Options{
		Layout:       &layoutCfg,
		MaxBodyBytes: c.Config.Server.MaxBodyBytes,
		Logger:       c.Logger,
	})
	printInfo("Listening on %s", StyleValue.Render(c.Config.Server.Addr))
	return s.ListenAndServe(ctx, c.Config.Server.Addr)
}

// openStore picks MongoDB, bbolt or memory, in that order of preference.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg := c.Config.Server
	switch {
	case cfg.MongoURI != "":
		db := cfg.Database
		if db == "" {
			db = defaultDatabase
		}
		c.Logger.Info("using mongodb store", "database", db)
		return store.OpenMongo(ctx, cfg.MongoURI, db)
	case cfg.DB != "":
		c.Logger.Info("using bbolt store", "path", cfg.DB)
		return store.OpenBolt(cfg.DB)
	default:
		c.Logger.Warn("storing layouts in memory; they are lost on exit")
		return store.NewMemoryStore(), nil
	}
}
