// Package cli implements the corank command-line interface.
//
// Commands share a [CLI] value holding the logger and the loaded
// configuration. Backends (consensus cache, run archive) are opened per
// command from the configuration, so a plain `corank compute` touches only
// the file cache while `corank serve` may talk to Redis and MongoDB.
//
// # Commands
//
//   - compute: aggregate rankings into a consensus
//   - graph: export the dominance graph as DOT or SVG
//   - inspect: browse the decomposition interactively
//   - runs: list, show and delete archived runs
//   - serve: run the HTTP API
//   - cache: manage the local consensus cache
//   - completion: shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is also attached to the command context (see loggerFromContext).
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/corank/pkg/cache"
	"github.com/matzehuels/corank/pkg/config"
	"github.com/matzehuels/corank/pkg/pipeline"
	"github.com/matzehuels/corank/pkg/store"
)

// appName is the application name used for directories and display.
const appName = "corank"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger and the built-in
// configuration. The config file is loaded before each command runs.
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

// loadConfig reads the config file and applies its log level unless
// --verbose was given.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	if c.verbose {
		c.SetLogLevel(LogDebug)
		return nil
	}
	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	c.SetLogLevel(level)
	return nil
}

// runnerOpts selects which backends a command needs.
type runnerOpts struct {
	noCache bool // use a NullCache regardless of the config
	archive bool // open the run store
}

// newRunner creates a pipeline runner from the configuration.
func (c *CLI) newRunner(ctx context.Context, opts runnerOpts) (*pipeline.Runner, error) {
	ch, err := c.openCache(ctx, opts.noCache)
	if err != nil {
		return nil, err
	}
	var st store.Store
	if opts.archive {
		if st, err = c.openStore(ctx); err != nil {
			ch.Close()
			return nil, err
		}
	}
	r := pipeline.NewRunner(ch, nil, st, c.Logger)
	r.TTL = c.Config.Cache.TTL
	return r, nil
}

func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{URL: cfg.RedisURL, Addr: cfg.RedisAddr})
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		c.Logger.Debug("using redis cache")
		return rc, nil
	case "null":
		return cache.NewNullCache(), nil
	default:
		dir := cfg.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
}

func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg := c.Config.Store
	switch cfg.Backend {
	case "mongo":
		st, err := store.NewMongoStore(ctx, store.MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
		if err != nil {
			return nil, fmt.Errorf("open mongo store: %w", err)
		}
		return st, nil
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return store.NewFileStore(cfg.Dir)
	}
}

// cacheDir returns the cache directory using XDG standard (~/.cache/corank/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
