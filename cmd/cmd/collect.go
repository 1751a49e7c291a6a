package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"marketbrief/internal/blob"
	"marketbrief/internal/collect"
	"marketbrief/internal/config"
	"marketbrief/internal/logger"
	"marketbrief/internal/store"

	"github.com/spf13/cobra"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Scrape financial news articles into a raw text blob",
	Long: `Scrape article links from a financial news section page, extract the
article text, and save everything as one annotated text blob for the
structuring stage.

Scraped articles are cached locally so repeated runs skip the network.
When the section page yields nothing the command falls back to bundled
sample articles, so the rest of the pipeline can still be exercised.

Example:
  marketbrief collect
  marketbrief collect --section https://www.wsj.com/news/markets --max 5
  marketbrief collect --no-cache --output data/raw_blob.txt`,
	Run: func(cmd *cobra.Command, args []string) {
		section, _ := cmd.Flags().GetString("section")
		maxArticles, _ := cmd.Flags().GetInt("max")
		noCache, _ := cmd.Flags().GetBool("no-cache")
		output, _ := cmd.Flags().GetString("output")

		if err := runCollect(section, maxArticles, noCache, output); err != nil {
			logger.Error("Failed to collect articles", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)
	collectCmd.Flags().String("section", "", "Section page URL to scrape (default from config)")
	collectCmd.Flags().IntP("max", "n", 0, "Maximum number of articles to scrape (default from config)")
	collectCmd.Flags().Bool("no-cache", false, "Skip the local scrape cache")
	collectCmd.Flags().StringP("output", "o", "", "Path for the raw article blob (default data/raw_blob.txt)")
}

func runCollect(section string, maxArticles int, noCache bool, output string) error {
	cfg := config.Get()
	if section == "" {
		section = cfg.Collect.SectionURL
	}
	if maxArticles <= 0 {
		maxArticles = cfg.Collect.MaxArticles
	}
	if output == "" {
		output = cfg.Output.BlobFile
	}

	logger.Info("Starting collection", "section", section, "max_articles", maxArticles)
	fmt.Printf("🔍 Collecting up to %d articles from %s\n", maxArticles, section)

	collector, cache := newCollector(cfg, section, maxArticles, noCache)
	if cache != nil {
		defer cache.Close()
	}

	articles, err := collector.Collect(context.Background())
	if err != nil {
		return fmt.Errorf("collection failed: %w", err)
	}

	for i, article := range articles {
		fmt.Printf("✅ %d/%d: %s\n", i+1, len(articles), article.Title)
	}

	blobText := blob.Build(articles, time.Now().UTC())
	if err := blob.Save(blobText, output); err != nil {
		return fmt.Errorf("failed to save article blob: %w", err)
	}

	logger.Info("Collection complete", "articles", len(articles), "blob_file", output)
	fmt.Printf("📦 Saved %d articles to %s\n", len(articles), output)
	return nil
}

// newCollector builds a collector from configuration, attaching the local
// scrape cache unless noCache is set. The returned store is nil when no
// cache is attached; callers close it when non-nil.
func newCollector(cfg *config.Config, section string, maxArticles int, noCache bool) (*collect.Collector, *store.Store) {
	collector := collect.NewCollector(collect.Config{
		SectionURL:  section,
		MaxArticles: maxArticles,
		UserAgent:   cfg.Collect.UserAgent,
		Timeout:     configDuration(cfg.Collect.Timeout, collect.DefaultTimeout),
		Delay:       configDuration(cfg.Collect.Delay, 2*time.Second),
	})

	if noCache {
		return collector, nil
	}

	cache, err := store.NewStore(cfg.Cache.Directory)
	if err != nil {
		logger.Error("Failed to initialize scrape cache", err)
		fmt.Printf("⚠️  Cache disabled due to error: %s\n", err)
		return collector, nil
	}

	return collector.WithCache(cache, configDuration(cfg.Cache.TTL, 24*time.Hour)), cache
}
