package analysis

import (
	"fmt"

	"github.com/tridxis/price-agent/internal/domain"
	"github.com/tridxis/price-agent/internal/provider"
)

// ShapeIntent selects the primary intent and up to two runners-up from a
// ranking ordered by descending score. An empty ranking is a failed
// capability, not an empty result.
func ShapeIntent(ranked []provider.LabelScore) (domain.Intent, error) {
	if len(ranked) == 0 {
		return domain.Intent{}, fmt.Errorf("classifier returned no ranked labels")
	}

	intent := domain.Intent{
		Primary:    ranked[0].Label,
		Confidence: ranked[0].Score,
		Secondary:  []domain.RankedLabel{},
	}
	for _, ls := range ranked[1:] {
		if len(intent.Secondary) == 2 {
			break
		}
		intent.Secondary = append(intent.Secondary, domain.RankedLabel{Label: ls.Label, Score: ls.Score})
	}
	return intent, nil
}

// ShapeEntities remaps raw tagger categories to trading-domain categories
// and cleans crypto values. Every raw entity yields exactly one formatted
// entity; no confidence filtering is applied.
func ShapeEntities(raw []provider.TokenEntity) []domain.Entity {
	out := make([]domain.Entity, 0, len(raw))
	for _, e := range raw {
		entityType := domain.MapEntityCategory(e.Group)
		value := e.Word
		if entityType == domain.CategoryCrypto {
			value = domain.NormalizeCryptoSymbol(value)
		}
		out = append(out, domain.Entity{
			Type:       entityType,
			Value:      value,
			Confidence: e.Score,
		})
	}
	return out
}
