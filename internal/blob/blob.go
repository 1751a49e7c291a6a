// Package blob builds and parses the raw text blob that carries scraped
// articles between the collection and structuring stages.
package blob

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"marketbrief/internal/core"
)

// sectionMarker introduces each article section inside a blob.
const sectionMarker = "=== ARTICLE"

// timeLayout is the human-readable timestamp format used in blob headers.
const timeLayout = "2006-01-02 15:04:05"

// Build renders scraped articles into a single text blob. Each article
// becomes a numbered section with TITLE, URL and SCRAPED header lines
// followed by the full content.
func Build(articles []core.ScrapedArticle, now time.Time) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("FINANCIAL NEWS ARTICLES - SCRAPED %s\n", now.Format(timeLayout)))
	builder.WriteString(strings.Repeat("=", 50) + "\n\n")

	for i, article := range articles {
		builder.WriteString(fmt.Sprintf("%s %d ===\n", sectionMarker, i+1))
		builder.WriteString(fmt.Sprintf("TITLE: %s\n", article.Title))
		builder.WriteString(fmt.Sprintf("URL: %s\n", article.URL))
		builder.WriteString(fmt.Sprintf("SCRAPED: %s\n", article.ScrapedAt.Format(timeLayout)))
		builder.WriteString(fmt.Sprintf("CONTENT:\n%s\n\n", article.Content))
	}

	return builder.String()
}

// Sections splits a blob into its article sections. The preamble before
// the first section marker is dropped; empty sections are kept so that
// section counts line up with article numbering.
func Sections(text string) []string {
	parts := strings.Split(text, sectionMarker)
	if len(parts) <= 1 {
		return nil
	}
	return parts[1:]
}

// ScanHeader scans the first 10 lines of a section for TITLE and URL
// header lines and returns whatever it finds. Missing headers come back
// as empty strings.
func ScanHeader(section string) (title, url string) {
	scanner := bufio.NewScanner(strings.NewReader(section))
	for i := 0; i < 10 && scanner.Scan(); i++ {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "TITLE:") {
			title = strings.TrimSpace(strings.TrimPrefix(line, "TITLE:"))
		} else if strings.HasPrefix(line, "URL:") {
			url = strings.TrimSpace(strings.TrimPrefix(line, "URL:"))
		}
	}
	return title, url
}

// Save writes a blob to the given path, creating parent directories as
// needed.
func Save(text, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write blob to %s: %w", path, err)
	}
	return nil
}

// Load reads a previously saved blob from disk.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read blob from %s: %w", path, err)
	}
	return string(data), nil
}
