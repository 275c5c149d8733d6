package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/augustcaio/portfolio-gateway/pkg/logging"
)

var (
	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Manage the snapshot cache",
	}

	cacheClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Remove every snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			c, err := newCache(cfg, logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Env, cfg.LogLevel))
			if err != nil {
				return err
			}
			if err := c.Clear(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Cache cleared (%s)\n", cfg.Cache.Backend)
			return nil
		},
	}

	cacheStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show snapshot cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			c, err := newCache(cfg, logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Env, cfg.LogLevel))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backend:   %s\n", cfg.Cache.Backend)
			if c.Disabled() {
				fmt.Fprintln(out, "Snapshots: disabled")
				return nil
			}
			fmt.Fprintf(out, "Freshness: %s\n", c.Freshness())

			count, err := c.GetStats()
			if err != nil {
				return fmt.Errorf("failed to read cache stats: %w", err)
			}
			if count < 0 {
				fmt.Fprintln(out, "Entries:   unknown")
			} else {
				fmt.Fprintf(out, "Entries:   %d\n", count)
			}
			return nil
		},
	}
)

func init() {
	cacheCmd.AddCommand(cacheClearCmd, cacheStatsCmd)
}
