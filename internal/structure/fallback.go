package structure

import (
	"fmt"
	"time"

	"marketbrief/internal/blob"
	"marketbrief/internal/core"
	"marketbrief/internal/logger"
	"marketbrief/internal/sentiment"
)

const (
	// fallbackTitle stands in for a section whose TITLE header is absent.
	fallbackTitle = "Unknown Article"
	// fallbackURL is the sentinel for a missing URL header.
	fallbackURL = "unknown"
	// fallbackSummaryFormat names the failure and echoes the title.
	fallbackSummaryFormat = "Article summary not available - LLM processing failed for: %s"
)

// fallbackTopics is the fixed topic list for synthesized records.
var fallbackTopics = []string{"news", "finance"}

// Synthesize derives a minimal valid record set directly from the blob's
// section headers, without model involvement. It never fails: a blob with
// no sections yields an empty record set.
func Synthesize(blobText string, now time.Time) core.RecordSet {
	log := logger.Get()
	log.Info("Creating fallback structure from blob headers")

	sections := blob.Sections(blobText)
	records := make([]core.ArticleRecord, 0, len(sections))

	for _, section := range sections {
		title, url := blob.ScanHeader(section)
		if title == "" {
			title = fallbackTitle
		}
		if url == "" {
			url = fallbackURL
		}

		topics := make([]string, len(fallbackTopics))
		copy(topics, fallbackTopics)

		records = append(records, core.ArticleRecord{
			ID:             ArticleID(title, url),
			Title:          title,
			Summary:        fmt.Sprintf(fallbackSummaryFormat, title),
			Sentiment:      string(sentiment.SentimentNeutral),
			SentimentScore: 0.0,
			KeyTopics:      topics,
			MarketImpact:   string(sentiment.ImpactNeutral),
			SourceURL:      url,
			ExtractedAt:    now.Format(time.RFC3339),
			Origin:         core.OriginFallback,
		})
	}

	log.Info("Synthesized fallback records", "count", len(records))
	return core.RecordSet{Articles: records}
}
