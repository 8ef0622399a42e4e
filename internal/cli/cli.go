package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/protocomposer/pkg/buildinfo"
	"github.com/matzehuels/protocomposer/pkg/cache"
	"github.com/matzehuels/protocomposer/pkg/composer"
	"github.com/matzehuels/protocomposer/pkg/integrations/github"
	"github.com/matzehuels/protocomposer/pkg/integrations/gitremote"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "protocomposer"

	// tagsTTL is how long a tag listing stays cached.
	tagsTTL = time.Hour
)

// Environment variables read by the CLI. Flags take precedence.
const (
	envTagSource   = "PROTOCOMPOSER_TAG_SOURCE"
	envRedisURL    = "PROTOCOMPOSER_REDIS_URL"
	envGitHubToken = "GITHUB_TOKEN"
)

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

	source      string
	redisURL    string
	noCache     bool
	refresh     bool
	verbose     bool
	installRoot string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Composer plugin for the proto version manager",
		Long: `protocomposer lists, resolves and installs Composer releases for the proto
version manager. It can answer plugin calls directly, serve them over HTTP, or
act as a small standalone installer.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging on stderr")
	flags.StringVar(&c.source, "tag-source", envOr(envTagSource, gitremote.SourceName), "tag source: git or github")
	flags.StringVar(&c.redisURL, "redis", os.Getenv(envRedisURL), "share the tag cache through Redis")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the tag cache")
	flags.BoolVar(&c.refresh, "refresh", false, "bypass cached tag listings")

	root.AddCommand(c.callCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.versionsCommand())
	root.AddCommand(c.installCommand())
	root.AddCommand(c.locateCommand())
	root.AddCommand(c.envCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Plugin Factory
// =============================================================================

// newPlugin wires a Composer plugin to the configured tag source and cache.
// The returned cache must be closed by the caller.
func (c *CLI) newPlugin(ctx context.Context) (*composer.Plugin, cache.Cache, error) {
	store, err := c.newCache(ctx)
	if err != nil {
		return nil, nil, err
	}
	tags, err := newTagSource(c.source, store, c.keyer())
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	p := composer.New(tags,
		composer.WithLogger(c.Logger),
		composer.WithRefresh(c.refresh),
		composer.WithInstallRoot(c.installRoot))
	return p, store, nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	switch {
	case c.noCache:
		return cache.NewNullCache(), nil
	case c.redisURL != "":
		return cache.NewRedisCache(ctx, c.redisURL)
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("tag cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// keyer scopes cache keys to this application when they land in a shared
// Redis instance.
func (c *CLI) keyer() cache.Keyer {
	if c.redisURL != "" && !c.noCache {
		return cache.NewScopedKeyer(cache.NewDefaultKeyer(), appName+":")
	}
	return cache.NewDefaultKeyer()
}

func newTagSource(name string, store cache.Cache, keyer cache.Keyer) (composer.TagSource, error) {
	switch name {
	case gitremote.SourceName:
		return gitremote.New(store, tagsTTL).WithKeyer(keyer), nil
	case github.SourceName:
		return github.NewClient(store, os.Getenv(envGitHubToken), tagsTTL).WithKeyer(keyer), nil
	default:
		return nil, fmt.Errorf("unknown tag source %q (want %s or %s)", name, gitremote.SourceName, github.SourceName)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the directory holding cached tag listings,
// $XDG_CACHE_HOME/protocomposer/tags or ~/.cache/protocomposer/tags.
func cacheDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, appName, "tags"), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
