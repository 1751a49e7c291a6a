package cmd

import (
	"context"
	"fmt"
	"os"

	"marketbrief/internal/config"
	"marketbrief/internal/logger"
	"marketbrief/internal/persistence"
	"marketbrief/internal/sentiment"
	"marketbrief/internal/structure"

	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load structured records into the Postgres store",
	Long: `Read a structured records artifact and upsert every record into the
news_articles table. Records are backfilled before writing, so partially
populated fallback records load cleanly.

When the store is unreachable the records are written to a CSV backup
instead and the command still succeeds.

Example:
  marketbrief load
  marketbrief load --input data/structured_articles.json --csv data/articles_backup.csv`,
	Run: func(cmd *cobra.Command, args []string) {
		input, _ := cmd.Flags().GetString("input")
		csvPath, _ := cmd.Flags().GetString("csv")

		if err := runLoad(input, csvPath); err != nil {
			logger.Error("Failed to load records", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().StringP("input", "i", "", "Path of the structured records artifact (default data/structured_articles.json)")
	loadCmd.Flags().String("csv", "", "Path for the CSV backup (default data/articles_backup.csv)")
}

func runLoad(input, csvPath string) error {
	cfg := config.Get()
	if input == "" {
		input = cfg.Output.RecordsFile
	}
	if csvPath == "" {
		csvPath = cfg.Output.CSVBackup
	}

	recordSet, err := structure.LoadRecordSet(input)
	if err != nil {
		return fmt.Errorf("failed to load structured records: %w", err)
	}

	if recordSet.Len() == 0 {
		fmt.Println("⚠️  No records to load")
		return nil
	}

	recordStore, err := openRecordStore(cfg)
	if err == nil {
		defer recordStore.Close()

		count, upsertErr := recordStore.UpsertRecords(context.Background(), recordSet.Articles)
		if upsertErr == nil {
			logger.Info("Records loaded", "count", count)
			fmt.Printf("✅ Loaded %d records into the store\n", count)
			printStoreBreakdown(recordStore)
			return nil
		}

		logger.Warn("Store upsert failed, writing CSV backup", "error", upsertErr)
		fmt.Printf("⚠️  Store upsert failed, writing CSV backup: %s\n", upsertErr)
	} else {
		logger.Warn("Record store unavailable, writing CSV backup", "error", err)
		fmt.Printf("⚠️  Record store unavailable, writing CSV backup: %s\n", err)
	}

	if err := persistence.WriteCSVBackup(csvPath, recordSet.Articles); err != nil {
		return fmt.Errorf("failed to write CSV backup: %w", err)
	}

	fmt.Printf("📦 Saved %d records to %s\n", recordSet.Len(), csvPath)
	return nil
}

// printStoreBreakdown shows the sentiment distribution across everything the
// store now holds, not just this load.
func printStoreBreakdown(recordStore persistence.RecordStore) {
	breakdown, err := recordStore.SentimentBreakdown(context.Background())
	if err != nil || len(breakdown) == 0 {
		return
	}

	fmt.Println("\nStore sentiment distribution:")
	for _, label := range []string{"very_positive", "positive", "neutral", "negative", "very_negative", "unknown"} {
		if count := breakdown[label]; count > 0 {
			fmt.Printf("  %s %s: %d\n", sentiment.Emoji(sentiment.SentimentClassification(label)), label, count)
		}
	}
}

// openRecordStore connects to the configured Postgres record store. A
// missing store.url is an error here; callers treat it as the signal to
// degrade to the CSV backup path.
func openRecordStore(cfg *config.Config) (persistence.RecordStore, error) {
	if cfg.Store.URL == "" {
		return nil, fmt.Errorf("store.url is not configured")
	}

	recordStore, err := persistence.NewPostgresStore(persistence.Config{URL: cfg.Store.URL, Key: cfg.Store.Key})
	if err != nil {
		return nil, err
	}
	return recordStore, nil
}
