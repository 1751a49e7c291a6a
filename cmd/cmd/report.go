package cmd

import (
	"context"
	"fmt"
	"os"

	"marketbrief/internal/config"
	"marketbrief/internal/core"
	"marketbrief/internal/logger"
	"marketbrief/internal/render"
	"marketbrief/internal/structure"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report [store]",
	Short: "Render a markdown briefing from structured records",
	Long: `Render a dated markdown briefing with a sentiment overview and one
section per article.

Records come from the structured records artifact by default. Pass the
literal argument "store" to pull the most recent articles from Postgres
instead.

Example:
  marketbrief report
  marketbrief report --input data/structured_articles.json --output-dir briefings
  marketbrief report store --stdout`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		source := ""
		if len(args) > 0 {
			source = args[0]
		}
		input, _ := cmd.Flags().GetString("input")
		outputDir, _ := cmd.Flags().GetString("output-dir")
		toStdout, _ := cmd.Flags().GetBool("stdout")

		if err := runReport(source, input, outputDir, toStdout); err != nil {
			logger.Error("Failed to render briefing", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringP("input", "i", "", "Path of the structured records artifact (default data/structured_articles.json)")
	reportCmd.Flags().StringP("output-dir", "o", "", "Directory for briefing files (default briefings)")
	reportCmd.Flags().Bool("stdout", false, "Print the briefing instead of writing a file")
}

func runReport(source, input, outputDir string, toStdout bool) error {
	cfg := config.Get()
	if input == "" {
		input = cfg.Output.RecordsFile
	}
	if outputDir == "" {
		outputDir = cfg.Output.BriefingsDir
	}

	var records []core.ArticleRecord
	switch source {
	case "store":
		recordStore, err := openRecordStore(cfg)
		if err != nil {
			return fmt.Errorf("record store unavailable: %w", err)
		}
		defer recordStore.Close()

		records, err = recordStore.RecentArticles(context.Background(), 0)
		if err != nil {
			return fmt.Errorf("failed to query recent articles: %w", err)
		}
	case "":
		recordSet, err := structure.LoadRecordSet(input)
		if err != nil {
			return fmt.Errorf("failed to load structured records: %w", err)
		}
		records = recordSet.Articles
	default:
		return fmt.Errorf("unknown records source %q, expected \"store\"", source)
	}

	if toStdout {
		fmt.Print(render.BuildMarkdownBriefing(records))
		return nil
	}

	filePath, err := render.RenderMarkdownBriefing(records, outputDir)
	if err != nil {
		return fmt.Errorf("failed to render briefing: %w", err)
	}

	logger.Info("Briefing rendered", "path", filePath, "articles", len(records))
	fmt.Printf("✅ Briefing generated: %s\n", filePath)
	return nil
}
