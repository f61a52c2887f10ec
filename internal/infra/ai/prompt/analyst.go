package prompt

import "strings"

// Temperature keeps replies close to deterministic; the reply must be
// machine-readable JSON.
const Temperature = 0.3

// inputPlaceholder is replaced with the user's text. It is not valid in
// ordinary prose so it cannot collide with the template wording.
const inputPlaceholder = "{{inputText}}"

const analystTemplate = `You are an expert text analyst. Analyze the following text and provide detailed insights.

Text to analyze: "{{inputText}}"

Please provide your analysis in the following JSON format (respond with valid JSON only):
{
  "sentiment": "Positive/Negative/Neutral",
  "topics": "comma-separated list of 2-3 main topics",
  "summary": "concise summary in 1-2 sentences, max 120 characters"
}

Important: Respond with valid JSON only, no additional text.`

// Build renders the analyst prompt with text embedded verbatim.
func Build(text string) string {
	return strings.Replace(analystTemplate, inputPlaceholder, text, 1)
}
