package budget

import "strings"

// Prices are blended (input+output) dollars per million tokens. Analyst
// calls report a single combined token count, so pricing uses one blended
// rate per model family rather than separate input/output rates.
//
// Current pricing as of 2025.
var Prices = map[string]float64{
	// Claude families
	"opus":   45.0,
	"sonnet": 9.0,
	"haiku":  0.75,

	// OpenAI families
	"gpt":      6.0,
	"gpt-mini": 0.9,
	"gpt-pro":  60.0,

	// Others commonly routed through OpenAI-compatible gateways
	"deepseek": 0.8,
	"gemini":   2.5,
}

// DefaultPricePerMillion is the blended rate applied to models with no
// entry in Prices.
const DefaultPricePerMillion = 10.0

// PriceFor returns the blended per-million-token rate for a model.
// Full model identifiers are normalized to their family name, so
// "claude-sonnet-4-20250514" prices as "sonnet". Unknown models use
// DefaultPricePerMillion.
func PriceFor(model string) float64 {
	if price, ok := Prices[model]; ok {
		return price
	}
	if price, ok := Prices[normalize(model)]; ok {
		return price
	}
	return DefaultPricePerMillion
}

// normalize converts a full model identifier to its family alias.
func normalize(model string) string {
	lower := strings.ToLower(model)

	switch {
	case strings.Contains(lower, "opus"):
		return "opus"
	case strings.Contains(lower, "sonnet"):
		return "sonnet"
	case strings.Contains(lower, "haiku"):
		return "haiku"
	case strings.Contains(lower, "deepseek"):
		return "deepseek"
	case strings.Contains(lower, "gemini"):
		return "gemini"
	}

	// GPT-5+ patterns; older names fall through to the default rate.
	if strings.HasPrefix(lower, "gpt-5") {
		if strings.Contains(lower, "-pro") {
			return "gpt-pro"
		}
		if strings.Contains(lower, "-mini") || strings.Contains(lower, "-nano") {
			return "gpt-mini"
		}
		return "gpt"
	}

	return lower
}
