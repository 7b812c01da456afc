package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/crawlytics/dashgeom/internal/api"
	"github.com/crawlytics/dashgeom/pkg/archive"
	"github.com/crawlytics/dashgeom/pkg/cache"
	"github.com/crawlytics/dashgeom/pkg/policy"
)

// archiveConnectTimeout bounds the initial MongoDB connection attempt.
const archiveConnectTimeout = 10 * time.Second

// serveFlags holds the command-line flags for the serve command.
type serveFlags struct {
	addr       string // listen address
	redisURL   string // Redis URL for the shared result cache
	mongoURI   string // MongoDB URI for the layout archive
	mongoDB    string // MongoDB database name
	policyFile string // TOML policy overrides
	noCache    bool   // disable caching entirely
}

// serveCommand creates the serve command for running the layout HTTP service.
func (c *CLI) serveCommand() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the layout HTTP service",
		Long: `Run the layout HTTP service used by the monitoring dashboard.

The service accepts metrics snapshots over HTTP and returns renderer-ready
chart geometry. Computed layouts are archived to MongoDB when --mongo is set
and cached in Redis when --redis is set; without them the service keeps no
archive and falls back to the local file cache.

Prometheus metrics are exposed on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", defaultListenAddr, "listen address")
	cmd.Flags().StringVar(&flags.redisURL, "redis", "", "Redis URL for shared caching (e.g. redis://localhost:6379/0)")
	cmd.Flags().StringVar(&flags.mongoURI, "mongo", "", "MongoDB URI for the layout archive (e.g. mongodb://localhost:27017)")
	cmd.Flags().StringVar(&flags.mongoDB, "mongo-db", archive.DefaultDatabase, "MongoDB database for the layout archive")
	cmd.Flags().StringVar(&flags.policyFile, "policy", "", "TOML policy file overriding the built-in layout constants")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe assembles the service from its flags and blocks until ctx is
// canceled or the listener fails.
func (c *CLI) runServe(ctx context.Context, flags serveFlags) error {
	pol := policy.Default()
	if flags.policyFile != "" {
		p, err := policy.LoadFile(flags.policyFile)
		if err != nil {
			return fmt.Errorf("load policy %s: %w", flags.policyFile, err)
		}
		pol = p
	}

	store, err := c.newServeCache(flags)
	if err != nil {
		return err
	}

	arch, err := c.newServeArchive(ctx, flags)
	if err != nil {
		return err
	}

	srv := api.NewServer(api.Config{
		Cache:   store,
		Archive: arch,
		Policy:  pol,
		Logger:  c.Logger,
	})
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Close(closeCtx); err != nil {
			c.Logger.Warn("service shutdown left resources open", "err", err)
		}
	}()

	return srv.ListenAndServe(ctx, flags.addr)
}

// newServeCache picks the cache backend from the serve flags: Redis when a
// URL is given, the local file cache otherwise.
func (c *CLI) newServeCache(flags serveFlags) (cache.Cache, error) {
	if flags.noCache {
		return cache.NewNullCache(), nil
	}
	if flags.redisURL != "" {
		store, err := cache.NewRedisCache(flags.redisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.Logger.Info("result cache connected", "backend", "redis")
		return store, nil
	}
	return newCache(false)
}

// newServeArchive connects the MongoDB layout archive when a URI is given.
// A nil archive means the service keeps no history.
func (c *CLI) newServeArchive(ctx context.Context, flags serveFlags) (archive.Archive, error) {
	if flags.mongoURI == "" {
		return nil, nil
	}
	connectCtx, cancel := context.WithTimeout(ctx, archiveConnectTimeout)
	defer cancel()

	arch, err := archive.NewMongoArchive(connectCtx, archive.Config{
		URI:      flags.mongoURI,
		Database: flags.mongoDB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect archive: %w", err)
	}
	c.Logger.Info("layout archive connected", "database", flags.mongoDB)
	return arch, nil
}
