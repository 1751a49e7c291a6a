package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"marketbrief/internal/config"
	"marketbrief/internal/core"
	"marketbrief/internal/llm"
	"marketbrief/internal/logger"
	"marketbrief/internal/pipeline"
	"marketbrief/internal/sentiment"
	"marketbrief/internal/structure"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full collect, structure, and load pipeline",
	Long: `Run the pipeline stages in order: collect, structure, load.

Every stage degrades rather than aborts. Scraping without results falls
back to bundled sample articles and a failed structuring call yields
placeholder records. When the record store is unreachable the records
land in a CSV backup instead. Only a collection that produces nothing at
all fails the run.

Example:
  marketbrief run
  marketbrief run --max 5 --section https://www.wsj.com/news/markets`,
	Run: func(cmd *cobra.Command, args []string) {
		section, _ := cmd.Flags().GetString("section")
		maxArticles, _ := cmd.Flags().GetInt("max")
		noCache, _ := cmd.Flags().GetBool("no-cache")

		if err := runPipeline(section, maxArticles, noCache); err != nil {
			logger.Error("Pipeline failed", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("section", "", "Section page URL to scrape (default from config)")
	runCmd.Flags().IntP("max", "n", 0, "Maximum number of articles to scrape (default from config)")
	runCmd.Flags().Bool("no-cache", false, "Skip the local scrape cache")
}

// fallbackStructurer stands in when no LLM client could be constructed,
// synthesizing placeholder records directly from the blob.
type fallbackStructurer struct{}

func (fallbackStructurer) StructureOrFallback(_ context.Context, blobText string) (core.RecordSet, bool) {
	return structure.Synthesize(blobText, time.Now().UTC()), true
}

func runPipeline(section string, maxArticles int, noCache bool) error {
	cfg := config.Get()
	if section == "" {
		section = cfg.Collect.SectionURL
	}
	if maxArticles <= 0 {
		maxArticles = cfg.Collect.MaxArticles
	}

	fmt.Println("🚀 Starting marketbrief pipeline")
	logger.Info("Starting pipeline", "section", section, "max_articles", maxArticles)

	collector, cache := newCollector(cfg, section, maxArticles, noCache)
	if cache != nil {
		defer cache.Close()
	}

	ctx := context.Background()

	var structurer pipeline.Structurer
	if client, err := llm.New(ctx, cfg.AI); err != nil {
		logger.Error("LLM client unavailable, pipeline will synthesize fallback records", err)
		fmt.Printf("⚠️  LLM client unavailable: %s\n", err)
		structurer = fallbackStructurer{}
	} else {
		structurer = structure.New(client)
	}

	recordStore, err := openRecordStore(cfg)
	if err != nil {
		logger.Warn("Record store unavailable, records will go to the CSV backup", "error", err)
		fmt.Printf("⚠️  Record store unavailable: %s\n", err)
	} else {
		defer recordStore.Close()
	}

	p := pipeline.New(collector, structurer, recordStore, pipeline.Options{
		BlobFile:    cfg.Output.BlobFile,
		RecordsFile: cfg.Output.RecordsFile,
		CSVBackup:   cfg.Output.CSVBackup,
	})

	summary, err := p.Run(ctx)
	if err != nil {
		return err
	}

	printRunSummary(summary)
	return nil
}

func printRunSummary(summary *pipeline.RunSummary) {
	fmt.Println()
	fmt.Println("📊 Pipeline Summary")
	fmt.Println("===================")
	fmt.Printf("Run ID: %s\n", summary.RunID)
	fmt.Printf("Duration: %s\n", summary.Duration.Round(time.Millisecond))
	fmt.Printf("Stages: %s\n", strings.Join(summary.Stages, ", "))
	fmt.Printf("Collected: %d articles\n", summary.CollectedCount)
	fmt.Printf("Structured: %d records (origin: %s)\n", summary.StructuredCount, summary.Origin)
	if summary.LoadedCount > 0 {
		fmt.Printf("Loaded: %d records into the store\n", summary.LoadedCount)
	}
	if summary.CSVBackupPath != "" {
		fmt.Printf("CSV backup: %s\n", summary.CSVBackupPath)
	}

	if len(summary.Records) > 0 {
		fmt.Println()
		fmt.Print(sentiment.FormatSentimentSummary(sentiment.Summarize(summary.Records)))
	}
}
