package sentiment

import (
	"strings"
	"testing"

	"marketbrief/internal/core"
)

func TestSentimentClassificationValid(t *testing.T) {
	valid := []SentimentClassification{
		SentimentVeryPositive,
		SentimentPositive,
		SentimentNeutral,
		SentimentNegative,
		SentimentVeryNegative,
	}
	for _, c := range valid {
		if !c.Valid() {
			t.Errorf("Expected %q to be valid", c)
		}
	}

	invalid := []SentimentClassification{SentimentUnknown, "bullish", ""}
	for _, c := range invalid {
		if c.Valid() {
			t.Errorf("Expected %q to be invalid", c)
		}
	}
}

func TestMarketImpactValid(t *testing.T) {
	valid := []MarketImpact{ImpactBullish, ImpactBearish, ImpactNeutral, ImpactMixed}
	for _, m := range valid {
		if !m.Valid() {
			t.Errorf("Expected %q to be valid", m)
		}
	}

	if ImpactUnknown.Valid() {
		t.Error("Expected unknown impact to be invalid")
	}
	if MarketImpact("high").Valid() {
		t.Error("Expected unrecognized impact to be invalid")
	}
}

func TestClassifyScore(t *testing.T) {
	tests := []struct {
		score float64
		want  SentimentClassification
	}{
		{1.0, SentimentVeryPositive},
		{0.7, SentimentVeryPositive},
		{0.69, SentimentPositive},
		{0.3, SentimentPositive},
		{0.29, SentimentNeutral},
		{0.0, SentimentNeutral},
		{-0.3, SentimentNeutral},
		{-0.31, SentimentNegative},
		{-0.69, SentimentNegative},
		{-0.7, SentimentVeryNegative},
		{-1.0, SentimentVeryNegative},
	}

	for _, tt := range tests {
		if got := ClassifyScore(tt.score); got != tt.want {
			t.Errorf("ClassifyScore(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestEmoji(t *testing.T) {
	if got := Emoji(SentimentVeryPositive); got != "🚀" {
		t.Errorf("Emoji(very_positive) = %q, want 🚀", got)
	}
	if got := Emoji(SentimentVeryNegative); got != "😱" {
		t.Errorf("Emoji(very_negative) = %q, want 😱", got)
	}
	if got := Emoji(SentimentClassification("nonsense")); got != "🤔" {
		t.Errorf("Emoji should fall back to the unknown face, got %q", got)
	}
}

func TestImpactEmoji(t *testing.T) {
	if got := ImpactEmoji(ImpactBullish); got != "📈" {
		t.Errorf("ImpactEmoji(bullish) = %q, want 📈", got)
	}
	if got := ImpactEmoji(MarketImpact("nonsense")); got != "❔" {
		t.Errorf("ImpactEmoji should fall back to the unknown mark, got %q", got)
	}
}

func summaryRecords() []core.ArticleRecord {
	return []core.ArticleRecord{
		{
			Title:          "Fed Signals Rate Cut",
			Sentiment:      "very_positive",
			SentimentScore: 0.8,
			KeyTopics:      []string{"federal reserve", "interest rates"},
			MarketImpact:   "bullish",
		},
		{
			Title:          "Tech Stocks Rally",
			Sentiment:      "positive",
			SentimentScore: 0.5,
			KeyTopics:      []string{"technology", "Interest Rates"},
			MarketImpact:   "bullish",
		},
		{
			Title:          "Retail Sales Slip",
			Sentiment:      "negative",
			SentimentScore: -0.4,
			KeyTopics:      []string{"retail"},
			MarketImpact:   "bearish",
		},
		{
			Title:          "Backfilled Record",
			Sentiment:      "unknown",
			SentimentScore: 0.0,
			KeyTopics:      []string{"unknown"},
			MarketImpact:   "unknown",
		},
	}
}

func TestSummarize(t *testing.T) {
	summary := Summarize(summaryRecords())

	if summary.TotalArticles != 4 {
		t.Errorf("TotalArticles = %d, want 4", summary.TotalArticles)
	}

	if summary.PositiveCount != 2 {
		t.Errorf("PositiveCount = %d, want 2", summary.PositiveCount)
	}
	if summary.NegativeCount != 1 {
		t.Errorf("NegativeCount = %d, want 1", summary.NegativeCount)
	}
	if summary.UnknownCount != 1 {
		t.Errorf("UnknownCount = %d, want 1", summary.UnknownCount)
	}

	if summary.Distribution[SentimentVeryPositive] != 1 {
		t.Errorf("very_positive count = %d, want 1", summary.Distribution[SentimentVeryPositive])
	}
	if summary.ImpactCounts[ImpactBullish] != 2 {
		t.Errorf("bullish count = %d, want 2", summary.ImpactCounts[ImpactBullish])
	}
	if summary.ImpactCounts[ImpactUnknown] != 1 {
		t.Errorf("unknown impact count = %d, want 1", summary.ImpactCounts[ImpactUnknown])
	}

	want := (0.8 + 0.5 - 0.4 + 0.0) / 4
	if diff := summary.AverageScore - want; diff > 0.0001 || diff < -0.0001 {
		t.Errorf("AverageScore = %v, want %v", summary.AverageScore, want)
	}

	if len(summary.TopTopics) == 0 {
		t.Fatal("Expected top topics")
	}
	if summary.TopTopics[0].Topic != "interest rates" || summary.TopTopics[0].Count != 2 {
		t.Errorf("Top topic = %+v, want interest rates x2", summary.TopTopics[0])
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)

	if summary.TotalArticles != 0 {
		t.Errorf("TotalArticles = %d, want 0", summary.TotalArticles)
	}
	if summary.DominantTone != SentimentNeutral {
		t.Errorf("DominantTone = %q, want neutral", summary.DominantTone)
	}
	if summary.AverageScore != 0 {
		t.Errorf("AverageScore = %v, want 0", summary.AverageScore)
	}
}

func TestDominantToneTie(t *testing.T) {
	records := []core.ArticleRecord{
		{Sentiment: "positive", SentimentScore: 0.5},
		{Sentiment: "negative", SentimentScore: -0.5},
	}

	if tone := Summarize(records).DominantTone; tone != SentimentPositive {
		t.Errorf("Tie should resolve toward the more positive tone, got %q", tone)
	}
}

func TestFormatSentimentSummary(t *testing.T) {
	text := FormatSentimentSummary(Summarize(summaryRecords()))

	expected := []string{
		"## 📊 Sentiment Analysis",
		"**Overall Sentiment:**",
		"😊 Positive: 2 articles",
		"😞 Negative: 1 articles",
		"🤔 Unknown: 1 articles",
		"📈 bullish: 2 articles",
		"interest rates (2)",
	}
	for _, want := range expected {
		if !strings.Contains(text, want) {
			t.Errorf("Summary missing %q", want)
		}
	}
}

func TestFormatSentimentSummaryEmpty(t *testing.T) {
	text := FormatSentimentSummary(Summarize(nil))
	if !strings.Contains(text, "No articles analyzed.") {
		t.Error("Empty summary should say no articles were analyzed")
	}
}
