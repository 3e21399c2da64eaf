package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/decoda/decoda/internal/cache"
)

// cacheCmd groups verification cache maintenance subcommands
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the verification cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached verification verdicts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store := cache.NewLayered(cfg.Cache.MemoryTTL, cfg.Cache.Dir)
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Println("Verification cache cleared.")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
