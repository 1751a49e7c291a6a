package structure

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

// fakeCompleter returns a canned response or error and records the
// prompts it was called with.
type fakeCompleter struct {
	response  string
	err       error
	gotSystem string
	gotUser   string
	calls     int
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls++
	f.gotSystem = system
	f.gotUser = user
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)
}

func newTestStructurer(client *fakeCompleter) *Structurer {
	s := New(client)
	s.now = fixedNow
	return s
}

const validResponse = `{
  "articles": [
    {
      "id": "abc123def456",
      "title": "Fed Signals Rate Cut",
      "summary": "The Federal Reserve indicated it may lower rates. Markets rallied on the news.",
      "sentiment": "very_positive",
      "sentiment_score": 0.8,
      "key_topics": ["federal reserve", "interest rates", "markets"],
      "market_impact": "bullish",
      "source_url": "https://example.com/fed",
      "extracted_at": "2025-06-14T09:30:00Z"
    },
    {
      "id": "fed789aa012bb3",
      "title": "Retail Sales Slip",
      "summary": "Consumer spending fell for the second month. Analysts expect pressure on retail stocks.",
      "sentiment": "negative",
      "sentiment_score": -0.4,
      "key_topics": ["retail", "consumer spending"],
      "market_impact": "bearish",
      "source_url": "https://example.com/retail",
      "extracted_at": "2025-06-14T09:31:00Z"
    }
  ]
}`

func TestStructureBlobValidResponse(t *testing.T) {
	client := &fakeCompleter{response: validResponse}
	s := newTestStructurer(client)

	recordSet, err := s.StructureBlob(context.Background(), "blob text")
	if err != nil {
		t.Fatalf("StructureBlob failed: %v", err)
	}

	if len(recordSet.Articles) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(recordSet.Articles))
	}

	first := recordSet.Articles[0]
	if first.ID != "abc123def456" {
		t.Errorf("Valid model-supplied ID should be kept, got %q", first.ID)
	}
	if first.Title != "Fed Signals Rate Cut" {
		t.Errorf("Unexpected title: %q", first.Title)
	}
	if first.Sentiment != "very_positive" || first.SentimentScore != 0.8 {
		t.Errorf("Unexpected sentiment: %q %v", first.Sentiment, first.SentimentScore)
	}
	if first.MarketImpact != "bullish" {
		t.Errorf("Unexpected market impact: %q", first.MarketImpact)
	}
	if len(first.KeyTopics) != 3 {
		t.Errorf("Expected 3 topics, got %v", first.KeyTopics)
	}
	if first.ExtractedAt != "2025-06-14T09:30:00Z" {
		t.Errorf("Model-supplied extracted_at should be kept, got %q", first.ExtractedAt)
	}

	for i, article := range recordSet.Articles {
		if article.ID == "" {
			t.Errorf("Record %d has empty id", i)
		}
		if article.ExtractedAt == "" {
			t.Errorf("Record %d has empty extracted_at", i)
		}
		if article.Origin != "llm" {
			t.Errorf("Record %d origin = %q, want llm", i, article.Origin)
		}
	}

	if !strings.Contains(client.gotUser, "blob text") {
		t.Error("User prompt should embed the blob")
	}
}

func TestStructureBlobIDBackfill(t *testing.T) {
	response := `{"articles": [
		{"title": "No ID Article", "source_url": "https://example.com/a"},
		{"id": "abc", "title": "Short ID Article", "source_url": "https://example.com/b"},
		{"id": "long-enough-id", "title": "Kept ID Article", "source_url": "https://example.com/c"}
	]}`

	s := newTestStructurer(&fakeCompleter{response: response})
	recordSet, err := s.StructureBlob(context.Background(), "blob")
	if err != nil {
		t.Fatalf("StructureBlob failed: %v", err)
	}

	if got, want := recordSet.Articles[0].ID, ArticleID("No ID Article", "https://example.com/a"); got != want {
		t.Errorf("Missing id backfill = %q, want %q", got, want)
	}
	if got, want := recordSet.Articles[1].ID, ArticleID("Short ID Article", "https://example.com/b"); got != want {
		t.Errorf("Short id backfill = %q, want %q", got, want)
	}
	if recordSet.Articles[2].ID != "long-enough-id" {
		t.Errorf("Valid id should be kept, got %q", recordSet.Articles[2].ID)
	}
}

func TestStructureBlobExtractedAtBackfill(t *testing.T) {
	response := `{"articles": [{"id": "valid-id-1", "title": "T"}]}`

	s := newTestStructurer(&fakeCompleter{response: response})
	recordSet, err := s.StructureBlob(context.Background(), "blob")
	if err != nil {
		t.Fatalf("StructureBlob failed: %v", err)
	}

	want := fixedNow().Format(time.RFC3339)
	if got := recordSet.Articles[0].ExtractedAt; got != want {
		t.Errorf("extracted_at backfill = %q, want %q", got, want)
	}
}

func TestStructureBlobFencedResponse(t *testing.T) {
	bare := newTestStructurer(&fakeCompleter{response: validResponse})
	plain, err := bare.StructureBlob(context.Background(), "blob")
	if err != nil {
		t.Fatalf("Unfenced response failed: %v", err)
	}

	fencedClient := &fakeCompleter{response: "```json\n" + validResponse + "\n```"}
	fenced := newTestStructurer(fencedClient)
	wrapped, err := fenced.StructureBlob(context.Background(), "blob")
	if err != nil {
		t.Fatalf("Fenced response failed: %v", err)
	}

	if !reflect.DeepEqual(plain, wrapped) {
		t.Errorf("Fenced and unfenced responses should parse identically:\n%+v\n%+v", plain, wrapped)
	}
}

func TestStructureBlobParseFailure(t *testing.T) {
	s := newTestStructurer(&fakeCompleter{response: "not json"})

	_, err := s.StructureBlob(context.Background(), "blob")
	if err == nil {
		t.Fatal("Expected parse failure")
	}
	if !errors.Is(err, ErrParseFailure) {
		t.Errorf("Expected ErrParseFailure, got %v", err)
	}
	if errors.Is(err, ErrTransportFailure) {
		t.Error("Parse failure should not match ErrTransportFailure")
	}

	var sErr *StructureError
	if !errors.As(err, &sErr) {
		t.Fatal("Expected *StructureError")
	}
	if sErr.Raw != "not json" {
		t.Errorf("Raw = %q, want the offending response", sErr.Raw)
	}
}

func TestStructureBlobTransportFailure(t *testing.T) {
	s := newTestStructurer(&fakeCompleter{err: errors.New("connection refused")})

	_, err := s.StructureBlob(context.Background(), "blob")
	if !errors.Is(err, ErrTransportFailure) {
		t.Errorf("Expected ErrTransportFailure, got %v", err)
	}
}

func TestStructureBlobEmptyResponse(t *testing.T) {
	s := newTestStructurer(&fakeCompleter{response: "  \n "})

	_, err := s.StructureBlob(context.Background(), "blob")
	if !errors.Is(err, ErrTransportFailure) {
		t.Errorf("Blank response should be a transport failure, got %v", err)
	}
}

func TestStructureBlobEmptyArticles(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"empty array", `{"articles": []}`},
		{"missing key", `{}`},
		{"null articles", `{"articles": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStructurer(&fakeCompleter{response: tt.response})
			recordSet, err := s.StructureBlob(context.Background(), "blob")
			if err != nil {
				t.Fatalf("Expected valid empty record set, got error: %v", err)
			}
			if len(recordSet.Articles) != 0 {
				t.Errorf("Expected 0 records, got %d", len(recordSet.Articles))
			}
		})
	}
}

func TestStructureBlobExtraFieldsTolerated(t *testing.T) {
	response := `{"articles": [{"id": "valid-id-1", "title": "T", "confidence": 0.9, "model": "gpt"}]}`

	s := newTestStructurer(&fakeCompleter{response: response})
	recordSet, err := s.StructureBlob(context.Background(), "blob")
	if err != nil {
		t.Fatalf("Extra fields should not fail parsing: %v", err)
	}
	if recordSet.Articles[0].Title != "T" {
		t.Errorf("Known fields should still parse, got title %q", recordSet.Articles[0].Title)
	}
}

func TestStructureOrFallbackSuccess(t *testing.T) {
	s := newTestStructurer(&fakeCompleter{response: validResponse})

	recordSet, fellBack := s.StructureOrFallback(context.Background(), "blob")
	if fellBack {
		t.Error("Valid response should not trigger fallback")
	}
	if len(recordSet.Articles) != 2 {
		t.Errorf("Expected 2 records, got %d", len(recordSet.Articles))
	}
}

func TestStructureOrFallbackUsesOriginalBlob(t *testing.T) {
	blobText := "=== ARTICLE 1 ===\nTITLE: Test\nURL: http://x\nCONTENT:\nSome body text."

	s := newTestStructurer(&fakeCompleter{response: "garbage, definitely not json"})

	recordSet, fellBack := s.StructureOrFallback(context.Background(), blobText)
	if !fellBack {
		t.Fatal("Parse failure should trigger fallback")
	}
	if len(recordSet.Articles) != 1 {
		t.Fatalf("Expected 1 fallback record, got %d", len(recordSet.Articles))
	}

	record := recordSet.Articles[0]
	if record.Title != "Test" {
		t.Errorf("Fallback should extract title from the blob, got %q", record.Title)
	}
	if record.SourceURL != "http://x" {
		t.Errorf("Fallback should extract URL from the blob, got %q", record.SourceURL)
	}
	if record.Origin != "fallback" {
		t.Errorf("Origin = %q, want fallback", record.Origin)
	}
}

func TestStructureOrFallbackTransportFailure(t *testing.T) {
	blobText := "=== ARTICLE 1 ===\nTITLE: Outage Story\nURL: https://example.com/o\nCONTENT:\nBody."

	s := newTestStructurer(&fakeCompleter{err: errors.New("dial tcp: timeout")})

	recordSet, fellBack := s.StructureOrFallback(context.Background(), blobText)
	if !fellBack {
		t.Fatal("Transport failure should trigger fallback")
	}
	if len(recordSet.Articles) != 1 || recordSet.Articles[0].Title != "Outage Story" {
		t.Errorf("Unexpected fallback records: %+v", recordSet.Articles)
	}
}

func TestArticleID(t *testing.T) {
	id1 := ArticleID("Test", "http://x")
	id2 := ArticleID("Test", "http://x")
	if id1 != id2 {
		t.Errorf("ArticleID not deterministic: %q vs %q", id1, id2)
	}

	if len(id1) != 16 {
		t.Errorf("ArticleID length = %d, want 16", len(id1))
	}
	for _, r := range id1 {
		if !strings.ContainsRune("0123456789abcdef", r) {
			t.Errorf("ArticleID contains non-hex character %q", r)
		}
	}

	if ArticleID("Test", "http://x") == ArticleID("Test", "http://y") {
		t.Error("Different URLs should yield different IDs")
	}
	if ArticleID("A", "http://x") == ArticleID("B", "http://x") {
		t.Error("Different titles should yield different IDs")
	}
}

func TestCleanJSONFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare json", `{"key": "value"}`, `{"key": "value"}`},
		{"json fence", "```json\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"fence without language", "```\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"whitespace wrapped", "  \n {\"key\": \"value\"} \n ", `{"key": "value"}`},
		{"empty", "", ""},
		{"fence with trailing newline", "```json\n{\"a\": 1}\n```\n", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONFences(tt.input); got != tt.want {
				t.Errorf("cleanJSONFences(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	system, user := BuildPrompt("THE BLOB CONTENT")

	if !strings.Contains(user, "THE BLOB CONTENT") {
		t.Error("User prompt should embed the blob")
	}
	if !strings.Contains(user, "Return ONLY the JSON structure") {
		t.Error("User prompt missing the JSON-only reminder")
	}

	fields := []string{
		`"id"`, `"title"`, `"summary"`, `"sentiment"`, `"sentiment_score"`,
		`"key_topics"`, `"market_impact"`, `"source_url"`, `"extracted_at"`,
	}
	for _, field := range fields {
		if !strings.Contains(system, field) {
			t.Errorf("System prompt missing field %s", field)
		}
	}

	bands := []string{"very_positive (0.7 to 1.0)", "very_negative (-1.0 to -0.7)", "bullish", "bearish", "mixed"}
	for _, band := range bands {
		if !strings.Contains(system, band) {
			t.Errorf("System prompt missing %q", band)
		}
	}

	// Empty input still yields a well-formed prompt
	system2, user2 := BuildPrompt("")
	if system2 != system {
		t.Error("System prompt should not depend on the blob")
	}
	if user2 == "" {
		t.Error("User prompt should not be empty for empty blob")
	}
}
