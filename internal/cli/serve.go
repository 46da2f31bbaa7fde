package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/openpmx/vpc/internal/api"
	"github.com/openpmx/vpc/pkg/cache"
	"github.com/openpmx/vpc/pkg/pipeline"
	"github.com/openpmx/vpc/pkg/store"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string // listen address
	redis    string // Redis address for the shared artifact cache
	mongoURI string // MongoDB connection string for plot storage
	noCache  bool   // disable caching entirely
}

// serveCommand creates the serve command running the HTTP API.
//
// Without --redis and --mongo the server runs self-contained: file-based
// cache and in-memory plot storage. Those flags switch the backends to the
// shared production services.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080"}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for plot assembly and storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redis, "redis", "", "Redis address (host:port) for the shared cache")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo", "", "MongoDB URI for plot storage")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	ca, err := c.serveCache(ctx, opts)
	if err != nil {
		return err
	}

	st, err := c.serveStore(ctx, opts)
	if err != nil {
		_ = ca.Close()
		return err
	}
	defer func() { _ = st.Close(context.Background()) }()

	runner := pipeline.NewRunner(ca, nil, c.Logger)
	defer runner.Close()

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           api.NewServer(runner, st, c.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", opts.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// serveCache picks the cache backend from the flags.
func (c *CLI) serveCache(ctx context.Context, opts *serveOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redis != "" {
		ca, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: opts.redis})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.Logger.Info("using redis cache", "addr", opts.redis)
		return ca, nil
	}
	return newCache(false)
}

// serveStore picks the store backend from the flags.
func (c *CLI) serveStore(ctx context.Context, opts *serveOpts) (store.Store, error) {
	if opts.mongoURI == "" {
		c.Logger.Warn("no --mongo given, plots are stored in memory only")
		return store.NewMemoryStore(), nil
	}
	st, err := store.NewMongoStore(ctx, store.MongoConfig{URI: opts.mongoURI})
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	c.Logger.Info("using mongo store")
	return st, nil
}
