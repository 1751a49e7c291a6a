// Package structure converts raw article blobs into validated record sets
// using a language model, with a deterministic fallback path when the
// model output is unusable.
package structure

import "fmt"

const (
	// systemPrompt fully specifies the extraction task: the nine record
	// fields, the sentiment score bands, the market impact categories and
	// the JSON-only output requirement.
	systemPrompt = `You are a financial news analyst. Your task is to analyze news articles and extract structured information with sentiment analysis.

INSTRUCTIONS:
1. Parse each article from the provided text blob
2. For each article, extract the required information according to the JSON schema
3. Analyze sentiment from a financial/market perspective
4. Identify key topics and market impact
5. Return ONLY valid JSON - no additional text or formatting

SENTIMENT GUIDELINES:
- very_positive (0.7 to 1.0): Exceptionally bullish news, major positive developments
- positive (0.3 to 0.7): Generally good news, positive market indicators
- neutral (-0.3 to 0.3): Balanced reporting, mixed signals, factual updates
- negative (-0.7 to -0.3): Concerning developments, bearish indicators
- very_negative (-1.0 to -0.7): Major negative events, market crashes, severe problems

MARKET IMPACT:
- bullish: Likely to drive markets/stocks higher
- bearish: Likely to drive markets/stocks lower
- neutral: Minimal expected market impact
- mixed: Could have both positive and negative effects

REQUIRED JSON STRUCTURE:
{
    "articles": [
        {
            "id": "generated-unique-id",
            "title": "Clean article title",
            "summary": "2-3 sentence summary focusing on key financial/business points",
            "sentiment": "positive|negative|neutral|very_positive|very_negative",
            "sentiment_score": 0.5,
            "key_topics": ["topic1", "topic2", "topic3"],
            "market_impact": "bullish|bearish|neutral|mixed",
            "source_url": "original URL from text",
            "extracted_at": "2025-06-14T12:00:00Z"
        }
    ]
}`

	// userPromptTemplate wraps the raw blob for the user message.
	userPromptTemplate = `Analyze the following financial news articles and return structured JSON:

%s

Remember: Return ONLY the JSON structure, no additional text.`
)

// BuildPrompt turns a raw blob into the system/user instruction pair for
// the language model. Pure transformation; any input string, including
// empty, yields a well-formed prompt.
func BuildPrompt(blobText string) (system, user string) {
	return systemPrompt, fmt.Sprintf(userPromptTemplate, blobText)
}
