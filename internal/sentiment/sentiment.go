package sentiment

import (
	"fmt"
	"sort"
	"strings"

	"marketbrief/internal/core"
)

// SentimentClassification represents the discrete sentiment category
// assigned to an article from a financial/market perspective.
type SentimentClassification string

const (
	SentimentVeryPositive SentimentClassification = "very_positive"
	SentimentPositive     SentimentClassification = "positive"
	SentimentNeutral      SentimentClassification = "neutral"
	SentimentNegative     SentimentClassification = "negative"
	SentimentVeryNegative SentimentClassification = "very_negative"
	// SentimentUnknown marks records backfilled at the persistence
	// boundary; the structuring stage never emits it.
	SentimentUnknown SentimentClassification = "unknown"
)

// MarketImpact represents the expected market direction for an article.
type MarketImpact string

const (
	ImpactBullish MarketImpact = "bullish"
	ImpactBearish MarketImpact = "bearish"
	ImpactNeutral MarketImpact = "neutral"
	ImpactMixed   MarketImpact = "mixed"
	ImpactUnknown MarketImpact = "unknown"
)

// SentimentEmoji maps sentiment classifications to emojis
var SentimentEmoji = map[SentimentClassification]string{
	SentimentVeryPositive: "🚀",
	SentimentPositive:     "😊",
	SentimentNeutral:      "😐",
	SentimentNegative:     "😞",
	SentimentVeryNegative: "😱",
	SentimentUnknown:      "🤔",
}

// MarketImpactEmoji maps market impact categories to emojis
var MarketImpactEmoji = map[MarketImpact]string{
	ImpactBullish: "📈",
	ImpactBearish: "📉",
	ImpactNeutral: "➖",
	ImpactMixed:   "🔀",
	ImpactUnknown: "❔",
}

// Valid reports whether the classification is one the structuring stage
// may emit.
func (c SentimentClassification) Valid() bool {
	switch c {
	case SentimentVeryPositive, SentimentPositive, SentimentNeutral, SentimentNegative, SentimentVeryNegative:
		return true
	}
	return false
}

// Valid reports whether the market impact is one the structuring stage
// may emit.
func (m MarketImpact) Valid() bool {
	switch m {
	case ImpactBullish, ImpactBearish, ImpactNeutral, ImpactMixed:
		return true
	}
	return false
}

// Emoji returns the display emoji for a sentiment classification.
func Emoji(c SentimentClassification) string {
	if e, ok := SentimentEmoji[c]; ok {
		return e
	}
	return SentimentEmoji[SentimentUnknown]
}

// ImpactEmoji returns the display emoji for a market impact category.
func ImpactEmoji(m MarketImpact) string {
	if e, ok := MarketImpactEmoji[m]; ok {
		return e
	}
	return MarketImpactEmoji[ImpactUnknown]
}

// ClassifyScore maps a sentiment score in [-1.0, 1.0] to its
// classification band: very_positive [0.7, 1.0], positive [0.3, 0.7),
// neutral [-0.3, 0.3), negative (-0.7, -0.3) and very_negative
// [-1.0, -0.7].
func ClassifyScore(score float64) SentimentClassification {
	switch {
	case score >= 0.7:
		return SentimentVeryPositive
	case score >= 0.3:
		return SentimentPositive
	case score >= -0.3:
		return SentimentNeutral
	case score > -0.7:
		return SentimentNegative
	default:
		return SentimentVeryNegative
	}
}

// TopicCount pairs a key topic with how many articles mention it.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// SentimentSummary provides aggregate sentiment statistics across a set
// of article records.
type SentimentSummary struct {
	TotalArticles int                             `json:"total_articles"`
	PositiveCount int                             `json:"positive_count"`
	NegativeCount int                             `json:"negative_count"`
	NeutralCount  int                             `json:"neutral_count"`
	UnknownCount  int                             `json:"unknown_count"`
	Distribution  map[SentimentClassification]int `json:"distribution"`
	ImpactCounts  map[MarketImpact]int            `json:"impact_counts"`
	TopTopics     []TopicCount                    `json:"top_topics"`
	AverageScore  float64                         `json:"average_score"`
	DominantTone  SentimentClassification         `json:"dominant_tone"`
}

// Summarize computes aggregate sentiment statistics for article records.
func Summarize(records []core.ArticleRecord) SentimentSummary {
	summary := SentimentSummary{
		TotalArticles: len(records),
		Distribution:  make(map[SentimentClassification]int),
		ImpactCounts:  make(map[MarketImpact]int),
		DominantTone:  SentimentNeutral,
	}

	if len(records) == 0 {
		return summary
	}

	topicCounts := make(map[string]int)
	var totalScore float64

	for _, record := range records {
		classification := SentimentClassification(record.Sentiment)
		if !classification.Valid() {
			classification = SentimentUnknown
		}
		summary.Distribution[classification]++

		impact := MarketImpact(record.MarketImpact)
		if !impact.Valid() {
			impact = ImpactUnknown
		}
		summary.ImpactCounts[impact]++

		totalScore += record.SentimentScore

		for _, topic := range record.KeyTopics {
			topic = strings.ToLower(strings.TrimSpace(topic))
			if topic != "" {
				topicCounts[topic]++
			}
		}
	}

	// Count by broad categories
	for classification, count := range summary.Distribution {
		switch classification {
		case SentimentVeryPositive, SentimentPositive:
			summary.PositiveCount += count
		case SentimentVeryNegative, SentimentNegative:
			summary.NegativeCount += count
		case SentimentNeutral:
			summary.NeutralCount += count
		case SentimentUnknown:
			summary.UnknownCount += count
		}
	}

	summary.AverageScore = totalScore / float64(len(records))
	summary.TopTopics = topTopics(topicCounts, 5)
	summary.DominantTone = dominantTone(summary.Distribution)

	return summary
}

// topTopics returns the n most frequent topics, most frequent first.
// Ties break alphabetically so output stays stable across runs.
func topTopics(counts map[string]int, n int) []TopicCount {
	topics := make([]TopicCount, 0, len(counts))
	for topic, count := range counts {
		topics = append(topics, TopicCount{Topic: topic, Count: count})
	}

	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Count != topics[j].Count {
			return topics[i].Count > topics[j].Count
		}
		return topics[i].Topic < topics[j].Topic
	})

	if len(topics) > n {
		topics = topics[:n]
	}
	return topics
}

// dominantTone determines the most common sentiment classification.
// Ties resolve in order from most positive to least.
func dominantTone(distribution map[SentimentClassification]int) SentimentClassification {
	order := []SentimentClassification{
		SentimentVeryPositive,
		SentimentPositive,
		SentimentNeutral,
		SentimentNegative,
		SentimentVeryNegative,
		SentimentUnknown,
	}

	tone := SentimentNeutral
	best := 0
	for _, classification := range order {
		if count := distribution[classification]; count > best {
			best = count
			tone = classification
		}
	}
	return tone
}

// FormatSentimentSummary creates a human-readable sentiment summary
// suitable for briefings and console reports.
func FormatSentimentSummary(summary SentimentSummary) string {
	var builder strings.Builder

	builder.WriteString("## 📊 Sentiment Analysis\n\n")

	if summary.TotalArticles == 0 {
		builder.WriteString("No articles analyzed.\n")
		return builder.String()
	}

	builder.WriteString(fmt.Sprintf("**Overall Sentiment:** %s %s (Score: %.2f across %d articles)\n\n",
		Emoji(summary.DominantTone),
		strings.Title(strings.ReplaceAll(string(summary.DominantTone), "_", " ")),
		summary.AverageScore,
		summary.TotalArticles))

	builder.WriteString("**Article Breakdown:**\n")
	builder.WriteString(fmt.Sprintf("- 😊 Positive: %d articles\n", summary.PositiveCount))
	builder.WriteString(fmt.Sprintf("- 😞 Negative: %d articles\n", summary.NegativeCount))
	builder.WriteString(fmt.Sprintf("- 😐 Neutral: %d articles\n", summary.NeutralCount))
	if summary.UnknownCount > 0 {
		builder.WriteString(fmt.Sprintf("- 🤔 Unknown: %d articles\n", summary.UnknownCount))
	}
	builder.WriteString("\n")

	builder.WriteString("**Market Impact:**\n")
	for _, impact := range []MarketImpact{ImpactBullish, ImpactBearish, ImpactNeutral, ImpactMixed, ImpactUnknown} {
		if count := summary.ImpactCounts[impact]; count > 0 {
			builder.WriteString(fmt.Sprintf("- %s %s: %d articles\n", MarketImpactEmoji[impact], impact, count))
		}
	}

	if len(summary.TopTopics) > 0 {
		builder.WriteString("\n**Top Topics:**\n")
		for _, tc := range summary.TopTopics {
			builder.WriteString(fmt.Sprintf("- %s (%d)\n", tc.Topic, tc.Count))
		}
	}

	return builder.String()
}
