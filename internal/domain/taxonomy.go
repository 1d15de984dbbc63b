package domain

import "strings"

const (
	CategoryCrypto    = "CRYPTO"
	CategoryTimeframe = "TIMEFRAME"
	CategoryRate      = "RATE"
	CategoryAmount    = "AMOUNT"
)

// IntentLabels is the fixed candidate set the intent classifier ranks.
var IntentLabels = []string{
	"price_query",
	"funding_query",
	"long_signal",
	"short_signal",
	"trend_analysis",
	"volatility_analysis",
	"market_sentiment",
}

// EntityCategories maps raw tagger categories to trading-domain categories.
// Categories not present here pass through unchanged.
var EntityCategories = map[string]string{
	"ORG":     CategoryCrypto,
	"MISC":    CategoryCrypto,
	"DATE":    CategoryTimeframe,
	"PERCENT": CategoryRate,
	"MONEY":   CategoryAmount,
}

// intentLabelSet is the membership index over IntentLabels.
var intentLabelSet map[string]bool

func init() {
	intentLabelSet = make(map[string]bool, len(IntentLabels))
	for _, label := range IntentLabels {
		intentLabelSet[label] = true
	}
}

// IsIntentLabel reports whether label belongs to the candidate set.
func IsIntentLabel(label string) bool {
	return intentLabelSet[label]
}

// MapEntityCategory remaps a raw tagger category. Unknown categories are
// returned verbatim.
func MapEntityCategory(raw string) string {
	if mapped, ok := EntityCategories[raw]; ok {
		return mapped
	}
	return raw
}

// NormalizeCryptoSymbol cleans a tagged crypto token: uppercase, every "$"
// removed, surrounding whitespace trimmed. Idempotent.
func NormalizeCryptoSymbol(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToUpper(s), "$", ""))
}
