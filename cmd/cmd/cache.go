package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"marketbrief/internal/config"
	"marketbrief/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local scrape cache",
	Long:  `Inspect and manage the SQLite cache of scraped articles.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Long:  `Display statistics about the scraped article cache.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Get()

		cacheStore, err := store.NewStore(cfg.Cache.Directory)
		if err != nil {
			fmt.Printf("Error opening cache: %s\n", err)
			return
		}
		defer cacheStore.Close()

		stats, err := cacheStore.GetCacheStats()
		if err != nil {
			fmt.Printf("Error getting cache stats: %s\n", err)
			return
		}

		fmt.Println("Cache Statistics:")
		fmt.Println("================")
		fmt.Printf("Articles: %d\n", stats.ArticleCount)
		fmt.Printf("Cache size: %.2f MB\n", float64(stats.CacheSize)/(1024*1024))
		if !stats.LastUpdated.IsZero() {
			fmt.Printf("Last updated: %s\n", stats.LastUpdated.Format("2006-01-02 15:04:05"))
		}
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the cache",
	Long:  `Remove all cached articles.`,
	Run: func(cmd *cobra.Command, args []string) {
		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm {
			fmt.Println("This will delete all cached articles. Use --confirm to proceed.")
			return
		}

		cfg := config.Get()

		cacheStore, err := store.NewStore(cfg.Cache.Directory)
		if err != nil {
			fmt.Printf("Error opening cache: %s\n", err)
			return
		}
		defer cacheStore.Close()

		if err := cacheStore.ClearCache(); err != nil {
			fmt.Printf("Error clearing cache: %s\n", err)
			return
		}

		fmt.Println("✅ Cache cleared successfully")
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheClearCmd.Flags().Bool("confirm", false, "Confirm cache deletion")
}
