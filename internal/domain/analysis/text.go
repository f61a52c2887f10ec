package analysis

import (
	"strings"
	"unicode/utf8"
)

// CountText returns the number of whitespace-delimited words and the
// number of characters of s after trimming surrounding whitespace.
func CountText(s string) (words, chars int) {
	trimmed := strings.TrimSpace(s)
	return len(strings.Fields(trimmed)), utf8.RuneCountInString(trimmed)
}

// ValidateText trims raw and checks it against the accepted bounds.
func ValidateText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", &ValidationError{Reason: ReasonEmpty}
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return "", &ValidationError{Reason: ReasonTooLong}
	}
	return text, nil
}

// Truncate keeps at most n characters of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
