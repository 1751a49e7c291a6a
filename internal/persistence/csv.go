package persistence

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"marketbrief/internal/core"
	"marketbrief/internal/logger"
)

var csvHeader = []string{
	"id", "title", "summary", "sentiment", "sentiment_score",
	"key_topics", "market_impact", "source_url", "extracted_at", "origin",
}

// WriteCSVBackup saves records to a flat CSV file, used when the record
// store is unreachable. Records are backfilled the same way the store path
// backfills them; key_topics cells hold the topic list JSON-encoded.
func WriteCSVBackup(path string, records []core.ArticleRecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create backup directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV backup %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, record := range records {
		record = BackfillRecord(record)
		topics, err := json.Marshal(record.KeyTopics)
		if err != nil {
			return fmt.Errorf("failed to encode topics for %s: %w", record.ID, err)
		}
		row := []string{
			record.ID,
			record.Title,
			record.Summary,
			record.Sentiment,
			strconv.FormatFloat(record.SentimentScore, 'f', -1, 64),
			string(topics),
			record.MarketImpact,
			record.SourceURL,
			record.ExtractedAt,
			record.Origin,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", record.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV backup: %w", err)
	}

	logger.Info("Saved CSV backup", "path", path, "count", len(records))
	return nil
}

// ReadCSVBackup loads records previously written by WriteCSVBackup. Rows
// that cannot be parsed are skipped with a warning rather than failing the
// whole read.
func ReadCSVBackup(path string) ([]core.ArticleRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV backup %s: %w", path, err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV backup %s: %w", path, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	var records []core.ArticleRecord
	for i, row := range rows[1:] {
		if len(row) < len(csvHeader) {
			logger.Warn("Skipping short CSV row", "row", i+2, "fields", len(row))
			continue
		}

		score, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			logger.Warn("Skipping CSV row with bad score", "row", i+2, "value", row[4])
			continue
		}

		var topics []string
		if err := json.Unmarshal([]byte(row[5]), &topics); err != nil {
			// Older backups stored the raw cell text.
			topics = []string{row[5]}
		}

		records = append(records, core.ArticleRecord{
			ID:             row[0],
			Title:          row[1],
			Summary:        row[2],
			Sentiment:      row[3],
			SentimentScore: score,
			KeyTopics:      topics,
			MarketImpact:   row[6],
			SourceURL:      row[7],
			ExtractedAt:    row[8],
			Origin:         row[9],
		})
	}

	return records, nil
}
