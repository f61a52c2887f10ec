package analysis

import "time"

const (
	// MaxTextLength is the largest accepted input, in characters, after trimming.
	MaxTextLength = 5000
	// SummaryLimit caps the fallback summary taken from a raw model reply.
	SummaryLimit = 120
	// TimestampLayout is ISO-8601 in UTC with millisecond precision.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentUnknown  Sentiment = "Unknown"
)

// Fields are the three values extracted from a model reply.
type Fields struct {
	Sentiment Sentiment
	Topics    string
	Summary   string
}

// DefaultFields is what a reply yields when nothing usable could be read.
func DefaultFields() Fields {
	return Fields{Sentiment: SentimentUnknown}
}

// Result is the record handed back to the caller. Every field is always set.
type Result struct {
	WordCount int       `json:"wordCount"`
	CharCount int       `json:"charCount"`
	Sentiment Sentiment `json:"sentiment"`
	Topics    string    `json:"topics"`
	Summary   string    `json:"summary"`
	Timestamp string    `json:"timestamp"`
}

// FormatTimestamp renders t the way Result.Timestamp expects it. Sub-millisecond
// remainders round up so the rendered instant is never earlier than t.
func FormatTimestamp(t time.Time) string {
	t = t.UTC()
	if r := t.Truncate(time.Millisecond); !r.Equal(t) {
		t = r.Add(time.Millisecond)
	}
	return t.Format(TimestampLayout)
}
