package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the price history cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached history for the active price source",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, log, err := newApp()
		if err != nil {
			return err
		}
		defer log.Sync()

		if !a.Config().Storage.Cache.Enabled {
			fmt.Fprintln(cmd.OutOrStdout(), "cache is disabled")
			return nil
		}
		n, err := a.PurgeCache(cmd.Context())
		if err != nil {
			return fmt.Errorf("purging cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached entries\n", n)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
