// Package persistence stores validated article records in Postgres, with a
// CSV backup path for when no store is reachable.
package persistence

import (
	"context"
	"time"

	"marketbrief/internal/core"
)

// unknownValue is the sentinel written for any string field the structuring
// stage left empty.
const unknownValue = "unknown"

// Config holds the record store connection settings. URL is a Postgres
// connection string; Key, when set, supplies the password for DSNs that are
// handed out as a url+key pair by hosted stores.
type Config struct {
	URL string
	Key string
}

// RecordStore is the durable home for structured article records.
type RecordStore interface {
	UpsertRecords(ctx context.Context, records []core.ArticleRecord) (int, error)
	RecentArticles(ctx context.Context, limit int) ([]core.ArticleRecord, error)
	SentimentBreakdown(ctx context.Context) (map[string]int, error)
	Ping(ctx context.Context) error
	Close() error
}

// BackfillRecord fills every empty field with a sentinel so the persisted
// record always has all nine fields populated: sentiment_score stays at its
// 0.0 zero value, key_topics becomes ["unknown"], extracted_at becomes the
// current time, and every other empty string becomes "unknown". The record
// is copied; the caller's value is not modified.
func BackfillRecord(record core.ArticleRecord) core.ArticleRecord {
	if record.ID == "" {
		record.ID = unknownValue
	}
	if record.Title == "" {
		record.Title = unknownValue
	}
	if record.Summary == "" {
		record.Summary = unknownValue
	}
	if record.Sentiment == "" {
		record.Sentiment = unknownValue
	}
	if len(record.KeyTopics) == 0 {
		record.KeyTopics = []string{unknownValue}
	}
	if record.MarketImpact == "" {
		record.MarketImpact = unknownValue
	}
	if record.SourceURL == "" {
		record.SourceURL = unknownValue
	}
	if record.ExtractedAt == "" {
		record.ExtractedAt = time.Now().UTC().Format(time.RFC3339)
	}
	if record.Origin == "" {
		record.Origin = unknownValue
	}
	return record
}
