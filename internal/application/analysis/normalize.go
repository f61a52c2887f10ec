package analysis

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	domain "github.com/bryanwahyu/textanalyzer/internal/domain/analysis"
)

// fencePattern matches markdown code-fence delimiters, with or without a
// json language tag, plus the whitespace that follows them.
var fencePattern = regexp.MustCompile("(?i)```(?:json)?\\s*")

// StripFences removes code-fence delimiters from a model reply.
func StripFences(raw string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))
}

// Normalize extracts sentiment, topics and summary from a raw model reply.
// When the reply is not a JSON object it returns the fallback fields built
// from the raw text and ok=false. It never fails.
func Normalize(raw string) (fields domain.Fields, ok bool) {
	cleaned := StripFences(raw)
	if !gjson.Valid(cleaned) {
		return fallbackFields(raw), false
	}
	doc := gjson.Parse(cleaned)
	if !doc.IsObject() {
		return fallbackFields(raw), false
	}

	fields = domain.DefaultFields()
	fields.Sentiment = sentimentField(doc.Get("sentiment"))
	fields.Topics = textField(doc.Get("topics"))
	fields.Summary = textField(doc.Get("summary"))
	return fields, true
}

func fallbackFields(raw string) domain.Fields {
	f := domain.DefaultFields()
	f.Summary = domain.Truncate(raw, domain.SummaryLimit)
	return f
}

func sentimentField(v gjson.Result) domain.Sentiment {
	if v.Type != gjson.String {
		return domain.SentimentUnknown
	}
	s := strings.TrimSpace(v.Str)
	for _, known := range []domain.Sentiment{domain.SentimentPositive, domain.SentimentNegative, domain.SentimentNeutral} {
		if strings.EqualFold(s, string(known)) {
			return known
		}
	}
	return domain.SentimentUnknown
}

// textField reads a string value. Arrays of strings are joined with ", ";
// anything else yields "".
func textField(v gjson.Result) string {
	switch {
	case v.Type == gjson.String:
		return v.Str
	case v.IsArray():
		var parts []string
		for _, item := range v.Array() {
			if item.Type == gjson.String && strings.TrimSpace(item.Str) != "" {
				parts = append(parts, strings.TrimSpace(item.Str))
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}
