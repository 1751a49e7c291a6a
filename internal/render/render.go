package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"marketbrief/internal/core"
	"marketbrief/internal/sentiment"
)

// RenderMarkdownBriefing creates a dated markdown briefing from structured
// article records: a sentiment overview followed by one section per article.
// It returns the path of the written file.
func RenderMarkdownBriefing(records []core.ArticleRecord, outputDir string) (string, error) {
	dateStr := time.Now().UTC().Format("2006-01-02")
	filename := fmt.Sprintf("briefing_%s.md", dateStr)

	if outputDir == "" {
		outputDir = "briefings" // Default output directory
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	filePath := filepath.Join(outputDir, filename)

	if err := os.WriteFile(filePath, []byte(buildBriefing(records, dateStr)), 0644); err != nil {
		return "", fmt.Errorf("failed to write briefing file %s: %w", filePath, err)
	}

	return filePath, nil
}

// BuildMarkdownBriefing returns the briefing content without writing a file,
// for callers that print to stdout.
func BuildMarkdownBriefing(records []core.ArticleRecord) string {
	return buildBriefing(records, time.Now().UTC().Format("2006-01-02"))
}

func buildBriefing(records []core.ArticleRecord, dateStr string) string {
	var content strings.Builder
	content.WriteString(fmt.Sprintf("# 📰 Market Briefing - %s\n\n", dateStr))

	if len(records) == 0 {
		content.WriteString("No articles structured for this briefing.\n")
		return content.String()
	}

	content.WriteString(fmt.Sprintf("**Articles analyzed:** %d\n\n", len(records)))

	if fallbackCount := countFallback(records); fallbackCount > 0 {
		content.WriteString(fmt.Sprintf("*%d of %d articles carry placeholder analysis because model structuring failed.*\n\n",
			fallbackCount, len(records)))
	}

	content.WriteString(sentiment.FormatSentimentSummary(sentiment.Summarize(records)))
	content.WriteString("\n---\n\n## Articles\n\n")

	for i, record := range records {
		writeArticleSection(&content, i+1, record)
	}

	return content.String()
}

func countFallback(records []core.ArticleRecord) int {
	count := 0
	for _, record := range records {
		if record.Origin == core.OriginFallback {
			count++
		}
	}
	return count
}

func writeArticleSection(content *strings.Builder, index int, record core.ArticleRecord) {
	emoji := sentiment.Emoji(sentiment.SentimentClassification(record.Sentiment))
	impact := sentiment.MarketImpact(record.MarketImpact)

	content.WriteString(fmt.Sprintf("### %d. %s %s\n\n", index, emoji, record.Title))

	if record.Summary != "" {
		content.WriteString(record.Summary + "\n\n")
	}

	content.WriteString(fmt.Sprintf("**Sentiment:** %s (%.2f) | **Market Impact:** %s %s\n\n",
		record.Sentiment, record.SentimentScore, sentiment.ImpactEmoji(impact), record.MarketImpact))

	if len(record.KeyTopics) > 0 {
		tagged := make([]string, len(record.KeyTopics))
		for i, topic := range record.KeyTopics {
			tagged[i] = "`" + topic + "`"
		}
		content.WriteString("**Topics:** " + strings.Join(tagged, " ") + "\n\n")
	}

	if record.SourceURL != "" && record.SourceURL != "unknown" {
		content.WriteString(fmt.Sprintf("[Read original article](%s)\n\n", record.SourceURL))
	}

	if record.Origin == core.OriginFallback {
		content.WriteString("*Placeholder record synthesized without model assistance.*\n\n")
	}

	content.WriteString("---\n\n")
}
