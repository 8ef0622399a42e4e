package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/protocomposer/pkg/cache"
)

// cacheCommand groups the tag cache maintenance subcommands.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached Composer tag listings",
		Long: `Manage cached Composer tag listings.

Tag listings are kept for one hour. With --redis the shared entries under the
protocomposer: prefix are managed instead of the local directory.`,
	}
	cmd.AddCommand(c.cacheClearCommand(), c.cachePathCommand())
	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget cached tag listings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, where, err := c.clearCache(cmd.Context())
			if err != nil {
				return err
			}
			if n == 0 {
				printInfo("No cached tag listings in %s", where)
				return nil
			}
			printSuccess("Removed %d cached tag listings", n)
			printDetail("%s", where)
			return nil
		},
	}
}

// clearCache empties whichever backend the flags select and reports where
// it looked.
func (c *CLI) clearCache(ctx context.Context) (int, string, error) {
	if c.redisURL != "" {
		store, err := cache.NewRedisCache(ctx, c.redisURL)
		if err != nil {
			return 0, "", err
		}
		defer store.Close()
		n, err := store.(*cache.RedisCache).DeletePrefix(ctx, appName+":")
		return n, c.redisURL, err
	}

	dir, err := cacheDir()
	if err != nil {
		return 0, "", fmt.Errorf("locate cache dir: %w", err)
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return 0, "", err
	}
	n, err := fc.Clear()
	return n, fc.Dir(), err
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where tag listings are cached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.redisURL != "" {
				fmt.Fprintln(cmd.OutOrStdout(), c.redisURL)
				return nil
			}
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("locate cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
