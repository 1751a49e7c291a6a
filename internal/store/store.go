package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"marketbrief/internal/core"
)

// Store is the SQLite-backed scrape cache. It keeps recently scraped
// articles so repeated pipeline runs stay polite toward the news site.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new store instance with a SQLite database under
// dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "marketbrief.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	articlesTable := `
	CREATE TABLE IF NOT EXISTS scraped_articles (
		url TEXT PRIMARY KEY,
		title TEXT,
		content TEXT,
		scraped_at DATETIME,
		content_hash TEXT
	);`

	if _, err := s.db.Exec(articlesTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// CacheArticle stores a scraped article in the cache, replacing any
// earlier scrape of the same URL.
func (s *Store) CacheArticle(article core.ScrapedArticle) error {
	query := `
	INSERT OR REPLACE INTO scraped_articles
	(url, title, content, scraped_at, content_hash)
	VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		article.URL,
		article.Title,
		article.Content,
		article.ScrapedAt.UTC(),
		generateContentHash(article.Content),
	)

	return err
}

// GetCachedArticle retrieves a scraped article from the cache. A miss,
// including entries older than maxAge, returns (nil, nil).
func (s *Store) GetCachedArticle(url string, maxAge time.Duration) (*core.ScrapedArticle, error) {
	query := `
	SELECT url, title, content, scraped_at
	FROM scraped_articles
	WHERE url = ? AND scraped_at > ?`

	cutoff := time.Now().UTC().Add(-maxAge)
	row := s.db.QueryRow(query, url, cutoff)

	var article core.ScrapedArticle
	var scrapedAt time.Time

	err := row.Scan(
		&article.URL,
		&article.Title,
		&article.Content,
		&scrapedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan article: %w", err)
	}

	article.ScrapedAt = scrapedAt
	return &article, nil
}

// CacheStats summarizes the current cache contents.
type CacheStats struct {
	ArticleCount int
	CacheSize    int64
	LastUpdated  time.Time
}

// GetCacheStats returns counts and on-disk size for the cache.
func (s *Store) GetCacheStats() (*CacheStats, error) {
	stats := &CacheStats{}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM scraped_articles").Scan(&stats.ArticleCount); err != nil {
		return nil, fmt.Errorf("failed to get count: %w", err)
	}

	if fileInfo, err := os.Stat(s.path); err == nil {
		stats.CacheSize = fileInfo.Size()
		stats.LastUpdated = fileInfo.ModTime()
	}

	return stats, nil
}

// ClearCache removes all cached articles
func (s *Store) ClearCache() error {
	if _, err := s.db.Exec("DELETE FROM scraped_articles"); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	// Vacuum to reclaim space
	if _, err := s.db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}

	return nil
}

// CleanupOldCache removes cached articles older than maxAge.
func (s *Store) CleanupOldCache(maxAge time.Duration) error {
	cutoff := time.Now().UTC().Add(-maxAge)
	if _, err := s.db.Exec("DELETE FROM scraped_articles WHERE scraped_at < ?", cutoff); err != nil {
		return fmt.Errorf("failed to clean old articles: %w", err)
	}
	return nil
}

// generateContentHash creates a simple hash of content for cache validation
func generateContentHash(content string) string {
	if len(content) == 0 {
		return "empty"
	}
	return fmt.Sprintf("%d-%c-%c", len(content), content[0], content[len(content)-1])
}
