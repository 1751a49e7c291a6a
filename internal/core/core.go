package core

import "time"

// Origin values recorded on an ArticleRecord to mark how it was produced.
const (
	OriginLLM      = "llm"      // structured by the language model
	OriginFallback = "fallback" // synthesized from blob headers after an LLM failure
)

// ScrapedArticle represents one article captured by the collection stage.
type ScrapedArticle struct {
	Title     string    `json:"title"`      // Extracted headline
	URL       string    `json:"url"`        // Location the article was fetched from
	Content   string    `json:"content"`    // Cleaned body text, paragraphs joined by blank lines
	ScrapedAt time.Time `json:"scraped_at"` // Timestamp when the article was fetched
}

// ArticleRecord is the structured unit produced by the structuring stage.
// All nine analysis fields are required downstream; the persistence layer
// backfills any the model omitted with sentinel values.
type ArticleRecord struct {
	ID             string   `json:"id"`              // Unique within a record set; derived from title+URL when the model omits it
	Title          string   `json:"title"`           // Clean article title
	Summary        string   `json:"summary"`         // 2-3 sentence summary
	Sentiment      string   `json:"sentiment"`       // very_positive, positive, neutral, negative, very_negative
	SentimentScore float64  `json:"sentiment_score"` // Numeric score in [-1.0, 1.0], aligned with the sentiment band
	KeyTopics      []string `json:"key_topics"`      // 3-5 short topic strings, never empty once persisted
	MarketImpact   string   `json:"market_impact"`   // bullish, bearish, neutral, mixed
	SourceURL      string   `json:"source_url"`      // Original location; "unknown" when absent
	ExtractedAt    string   `json:"extracted_at"`    // Processing timestamp, RFC 3339
	Origin         string   `json:"origin,omitempty"` // OriginLLM or OriginFallback
}

// RecordSet is the output artifact of a structuring run: an ordered sequence
// of article records under the single "articles" key. The zero value is a
// valid empty set.
type RecordSet struct {
	Articles []ArticleRecord `json:"articles"`
}

// Len returns the number of records in the set.
func (rs RecordSet) Len() int {
	return len(rs.Articles)
}
