package cmd

import (
	"context"
	"fmt"
	"os"

	"marketbrief/internal/config"
	"marketbrief/internal/core"
	"marketbrief/internal/logger"
	"marketbrief/internal/persistence"
	"marketbrief/internal/structure"
	"marketbrief/internal/tui"

	"github.com/spf13/cobra"
)

// dashboardFetchLimit caps how many store rows the dashboard loads.
const dashboardFetchLimit = 50

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Browse structured articles in a terminal dashboard",
	Long: `Launch an interactive terminal dashboard over the structured article
records, with a selectable article list and a detail pane.

Without --input the dashboard tries the record store first, then the
structured records artifact, then the CSV backup.

Example:
  marketbrief dashboard
  marketbrief dashboard --input data/structured_articles.json`,
	Run: func(cmd *cobra.Command, args []string) {
		input, _ := cmd.Flags().GetString("input")

		if err := runDashboard(input); err != nil {
			logger.Error("Failed to launch dashboard", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().StringP("input", "i", "", "Structured records artifact to browse (default: store, then local artifacts)")
}

func runDashboard(input string) error {
	records, source, err := dashboardRecords(config.Get(), input)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("⚠️  No articles available. Run 'marketbrief run' first.")
		return nil
	}

	fmt.Println("Launching dashboard...")
	return tui.StartDashboard(records, source)
}

// dashboardRecords resolves the article records to display and a label for
// where they came from. With an explicit input file only that file is
// consulted; otherwise the store is preferred, then the structured records
// artifact, then the CSV backup.
func dashboardRecords(cfg *config.Config, input string) ([]core.ArticleRecord, string, error) {
	if input != "" {
		recordSet, err := structure.LoadRecordSet(input)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load structured records: %w", err)
		}
		return recordSet.Articles, input, nil
	}

	if cfg.Store.URL != "" {
		recordStore, err := openRecordStore(cfg)
		if err == nil {
			records, queryErr := recordStore.RecentArticles(context.Background(), dashboardFetchLimit)
			recordStore.Close()
			if queryErr == nil && len(records) > 0 {
				return records, "store", nil
			}
			if queryErr != nil {
				logger.Warn("Store query failed, trying local artifacts", "error", queryErr)
			}
		} else {
			logger.Warn("Record store unavailable, trying local artifacts", "error", err)
		}
	}

	if recordSet, err := structure.LoadRecordSet(cfg.Output.RecordsFile); err == nil && recordSet.Len() > 0 {
		return recordSet.Articles, cfg.Output.RecordsFile, nil
	}

	if records, err := persistence.ReadCSVBackup(cfg.Output.CSVBackup); err == nil && len(records) > 0 {
		return records, cfg.Output.CSVBackup, nil
	}

	return nil, "", nil
}
