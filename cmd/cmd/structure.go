package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"marketbrief/internal/blob"
	"marketbrief/internal/config"
	"marketbrief/internal/core"
	"marketbrief/internal/llm"
	"marketbrief/internal/logger"
	"marketbrief/internal/structure"

	"github.com/spf13/cobra"
)

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Structure a raw article blob into validated records",
	Long: `Send the collected article blob to the configured language model and
validate the response into structured article records.

Transport and parse failures never fail the command: the affected articles
are re-synthesized as clearly marked fallback records so downstream stages
always have something to work with.

Example:
  marketbrief structure
  marketbrief structure --input data/raw_blob.txt --output data/structured_articles.json`,
	Run: func(cmd *cobra.Command, args []string) {
		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")

		if err := runStructure(input, output); err != nil {
			logger.Error("Failed to structure articles", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(structureCmd)
	structureCmd.Flags().StringP("input", "i", "", "Path of the raw article blob (default data/raw_blob.txt)")
	structureCmd.Flags().StringP("output", "o", "", "Path for the structured records artifact (default data/structured_articles.json)")
}

func runStructure(input, output string) error {
	cfg := config.Get()
	if input == "" {
		input = cfg.Output.BlobFile
	}
	if output == "" {
		output = cfg.Output.RecordsFile
	}

	blobText, err := blob.Load(input)
	if err != nil {
		return fmt.Errorf("failed to load article blob: %w", err)
	}

	logger.Info("Starting structuring", "input", input, "provider", cfg.AI.Provider)
	fmt.Printf("🧠 Structuring articles with %s\n", cfg.AI.Provider)

	ctx := context.Background()

	var recordSet core.RecordSet
	var usedFallback bool

	client, err := llm.New(ctx, cfg.AI)
	if err != nil {
		logger.Error("LLM client unavailable, synthesizing fallback records", err)
		fmt.Printf("⚠️  LLM client unavailable: %s\n", err)
		recordSet = structure.Synthesize(blobText, time.Now().UTC())
		usedFallback = true
	} else {
		recordSet, usedFallback = structure.New(client).StructureOrFallback(ctx, blobText)
	}

	if usedFallback {
		fmt.Printf("⚠️  Model structuring failed, synthesized %d fallback records\n", recordSet.Len())
	} else {
		fmt.Printf("✅ Structured %d articles\n", recordSet.Len())
	}

	if err := structure.SaveRecordSet(recordSet, output); err != nil {
		return fmt.Errorf("failed to save structured records: %w", err)
	}

	fmt.Printf("📦 Saved structured records to %s\n", output)
	return nil
}
