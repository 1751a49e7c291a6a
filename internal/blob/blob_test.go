package blob

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"marketbrief/internal/core"
)

func sampleArticles() []core.ScrapedArticle {
	scraped := time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC)
	return []core.ScrapedArticle{
		{
			Title:     "Fed Holds Rates Steady",
			URL:       "https://example.com/fed-rates",
			Content:   "The Federal Reserve kept interest rates unchanged on Wednesday.",
			ScrapedAt: scraped,
		},
		{
			Title:     "Tech Stocks Rally",
			URL:       "https://example.com/tech-rally",
			Content:   "Major technology shares climbed in afternoon trading.",
			ScrapedAt: scraped,
		},
	}
}

func TestBuild(t *testing.T) {
	now := time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)
	text := Build(sampleArticles(), now)

	if !strings.HasPrefix(text, "FINANCIAL NEWS ARTICLES - SCRAPED 2025-06-14 10:00:00\n") {
		t.Errorf("Blob missing scrape header, got prefix: %q", text[:60])
	}

	if !strings.Contains(text, strings.Repeat("=", 50)+"\n") {
		t.Error("Blob missing separator line")
	}

	expected := []string{
		"=== ARTICLE 1 ===",
		"=== ARTICLE 2 ===",
		"TITLE: Fed Holds Rates Steady",
		"URL: https://example.com/tech-rally",
		"SCRAPED: 2025-06-14 09:30:00",
		"CONTENT:\nThe Federal Reserve kept interest rates unchanged on Wednesday.",
	}
	for _, want := range expected {
		if !strings.Contains(text, want) {
			t.Errorf("Blob missing %q", want)
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	now := time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)
	text := Build(nil, now)

	if strings.Contains(text, sectionMarker) {
		t.Error("Empty blob should not contain article sections")
	}
	if !strings.Contains(text, "FINANCIAL NEWS ARTICLES") {
		t.Error("Empty blob should still carry the scrape header")
	}
}

func TestSections(t *testing.T) {
	now := time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)
	text := Build(sampleArticles(), now)

	sections := Sections(text)
	if len(sections) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(sections))
	}

	if !strings.Contains(sections[0], "TITLE: Fed Holds Rates Steady") {
		t.Error("First section missing its title header")
	}
	if strings.Contains(sections[0], "FINANCIAL NEWS ARTICLES") {
		t.Error("Preamble should not leak into the first section")
	}
	if !strings.Contains(sections[1], "TITLE: Tech Stocks Rally") {
		t.Error("Second section missing its title header")
	}
}

func TestSectionsNoArticles(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"preamble only", "FINANCIAL NEWS ARTICLES - SCRAPED 2025-06-14 10:00:00\n" + strings.Repeat("=", 50) + "\n\n"},
		{"unrelated text", "nothing to see here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sections(tt.text); len(got) != 0 {
				t.Errorf("Expected no sections, got %d", len(got))
			}
		})
	}
}

func TestScanHeader(t *testing.T) {
	tests := []struct {
		name      string
		section   string
		wantTitle string
		wantURL   string
	}{
		{
			name:      "both headers present",
			section:   " 1 ===\nTITLE: Markets Slide\nURL: https://example.com/slide\nSCRAPED: 2025-06-14 09:30:00\nCONTENT:\nBody text.",
			wantTitle: "Markets Slide",
			wantURL:   "https://example.com/slide",
		},
		{
			name:      "missing url",
			section:   " 1 ===\nTITLE: Markets Slide\nCONTENT:\nBody text.",
			wantTitle: "Markets Slide",
			wantURL:   "",
		},
		{
			name:      "no headers",
			section:   " 1 ===\njust some text\nwith no headers",
			wantTitle: "",
			wantURL:   "",
		},
		{
			name:      "headers past the scan window",
			section:   " 1 ===\n\n\n\n\n\n\n\n\n\nTITLE: Too Late\nURL: https://example.com/late",
			wantTitle: "",
			wantURL:   "",
		},
		{
			name:      "whitespace around values",
			section:   " 1 ===\nTITLE:   Padded Headline  \nURL:  https://example.com/padded ",
			wantTitle: "Padded Headline",
			wantURL:   "https://example.com/padded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, url := ScanHeader(tt.section)
			if title != tt.wantTitle {
				t.Errorf("title = %q, want %q", title, tt.wantTitle)
			}
			if url != tt.wantURL {
				t.Errorf("url = %q, want %q", url, tt.wantURL)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "data", "raw_blob.txt")

	now := time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)
	text := Build(sampleArticles(), now)

	if err := Save(text, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("Save did not create the blob file")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != text {
		t.Error("Loaded blob does not match saved blob")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("Expected error loading missing blob file")
	}
}
