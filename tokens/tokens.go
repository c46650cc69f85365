// Package tokens provides token estimation and model context limits.
//
// Estimation uses the rule-of-thumb that approximately 4 characters equals
// 1 token for English text. This is fast and tokenizer-free; backends that
// report real usage should always be preferred, with estimation as the
// fallback (see the openai provider).
package tokens

import "unicode/utf8"

// CharsPerToken is the average characters per token, ~4 for English text.
const CharsPerToken = 4.0

// Estimate returns the approximate token count of text.
// Counts runes rather than bytes so multi-byte text doesn't over-estimate.
func Estimate(text string) int {
	runes := utf8.RuneCountInString(text)
	return int(float64(runes)/CharsPerToken + 0.5)
}

// FitsInLimit reports whether text fits within limit tokens.
func FitsInLimit(text string, limit int) bool {
	return Estimate(text) <= limit
}

// ContextLimits contains context window sizes for common model families.
var ContextLimits = map[string]int{
	"opus":     200_000,
	"sonnet":   200_000,
	"haiku":    200_000,
	"gpt":      272_000,
	"gpt-mini": 272_000,
	"deepseek": 128_000,
	"gemini":   1_000_000,
}

// DefaultContextLimit is used for models with no ContextLimits entry.
const DefaultContextLimit = 100_000

// ContextLimit returns the context window size for a model family,
// or DefaultContextLimit if unknown.
func ContextLimit(family string) int {
	if limit, ok := ContextLimits[family]; ok {
		return limit
	}
	return DefaultContextLimit
}
