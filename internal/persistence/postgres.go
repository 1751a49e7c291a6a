package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"

	"marketbrief/internal/core"
)

// news_articles mirrors the nine record fields plus provenance. The CHECK
// constraints accept the "unknown" sentinel written by BackfillRecord in
// addition to the real labels.
const createTableSQL = `
CREATE TABLE IF NOT EXISTS news_articles (
	id VARCHAR PRIMARY KEY,
	title TEXT NOT NULL,
	summary TEXT NOT NULL,
	sentiment VARCHAR(20) NOT NULL CHECK (sentiment IN ('very_positive', 'positive', 'neutral', 'negative', 'very_negative', 'unknown')),
	sentiment_score DECIMAL(3,2) NOT NULL CHECK (sentiment_score >= -1.0 AND sentiment_score <= 1.0),
	key_topics TEXT[] NOT NULL,
	market_impact VARCHAR(10) NOT NULL CHECK (market_impact IN ('bullish', 'bearish', 'neutral', 'mixed', 'unknown')),
	source_url TEXT NOT NULL,
	extracted_at TIMESTAMPTZ NOT NULL,
	origin VARCHAR(10) NOT NULL DEFAULT 'unknown',
	created_at TIMESTAMPTZ DEFAULT NOW(),
	updated_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_news_articles_sentiment ON news_articles(sentiment);
CREATE INDEX IF NOT EXISTS idx_news_articles_extracted_at ON news_articles(extracted_at);
CREATE INDEX IF NOT EXISTS idx_news_articles_market_impact ON news_articles(market_impact);
`

// PostgresStore implements RecordStore for PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to the record store, verifies it, and
// creates the news_articles table if it does not exist.
func NewPostgresStore(cfg Config) (*PostgresStore, error) {
	db, err := sql.Open("postgres", buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// buildConnString merges the optional key credential into the connection
// string. Hosted stores hand out a URL plus a separate service key, while
// the pq driver wants the password inside the DSN.
func buildConnString(cfg Config) string {
	if cfg.Key == "" {
		return cfg.URL
	}

	if u, err := url.Parse(cfg.URL); err == nil && (u.Scheme == "postgres" || u.Scheme == "postgresql") {
		if _, hasPassword := u.User.Password(); hasPassword {
			return cfg.URL
		}
		username := "postgres"
		if u.User != nil && u.User.Username() != "" {
			username = u.User.Username()
		}
		u.User = url.UserPassword(username, cfg.Key)
		return u.String()
	}

	if strings.Contains(cfg.URL, "password=") {
		return cfg.URL
	}
	return cfg.URL + " password=" + cfg.Key
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, createTableSQL)
	return err
}

// UpsertRecords writes records keyed by id, overwriting existing rows rather
// than duplicating them. Each record is backfilled before insert so every
// column is populated with at least a sentinel value. Returns the number of
// records written.
func (s *PostgresStore) UpsertRecords(ctx context.Context, records []core.ArticleRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO news_articles (
			id, title, summary, sentiment, sentiment_score,
			key_topics, market_impact, source_url, extracted_at, origin, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			sentiment = EXCLUDED.sentiment,
			sentiment_score = EXCLUDED.sentiment_score,
			key_topics = EXCLUDED.key_topics,
			market_impact = EXCLUDED.market_impact,
			source_url = EXCLUDED.source_url,
			extracted_at = EXCLUDED.extracted_at,
			origin = EXCLUDED.origin,
			updated_at = NOW()
	`

	count := 0
	for _, record := range records {
		record = BackfillRecord(record)
		_, err := s.db.ExecContext(ctx, query,
			record.ID, record.Title, record.Summary, record.Sentiment, record.SentimentScore,
			pq.Array(record.KeyTopics), record.MarketImpact, record.SourceURL,
			record.ExtractedAt, record.Origin,
		)
		if err != nil {
			return count, fmt.Errorf("failed to upsert article %s: %w", record.ID, err)
		}
		count++
	}

	return count, nil
}

// RecentArticles returns the most recently extracted records, newest first.
func (s *PostgresStore) RecentArticles(ctx context.Context, limit int) ([]core.ArticleRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, title, summary, sentiment, sentiment_score,
			   key_topics, market_impact, source_url, extracted_at, origin
		FROM news_articles
		ORDER BY extracted_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent articles: %w", err)
	}
	defer rows.Close()

	var records []core.ArticleRecord
	for rows.Next() {
		var record core.ArticleRecord
		var extractedAt time.Time
		err := rows.Scan(
			&record.ID, &record.Title, &record.Summary, &record.Sentiment, &record.SentimentScore,
			pq.Array(&record.KeyTopics), &record.MarketImpact, &record.SourceURL,
			&extractedAt, &record.Origin,
		)
		if err != nil {
			return nil, err
		}
		record.ExtractedAt = extractedAt.UTC().Format(time.RFC3339)
		records = append(records, record)
	}

	return records, rows.Err()
}

// SentimentBreakdown returns the count of stored articles per sentiment label.
func (s *PostgresStore) SentimentBreakdown(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT sentiment, COUNT(*) FROM news_articles GROUP BY sentiment`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sentiment breakdown: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var sentiment string
		var count int
		if err := rows.Scan(&sentiment, &count); err != nil {
			return nil, err
		}
		counts[sentiment] = count
	}

	return counts, rows.Err()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
