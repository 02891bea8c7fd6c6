package extractor

import (
	"errors"

	"github.com/shopspring/decimal"

	"price_bot/internal/model"
)

// ErrVariantNotFound reports that no price exists for the given option set.
// Callers must not fall back to a "closest" variant.
var ErrVariantNotFound = errors.New("variant not found")

// Resolve looks up the price for the given option ids. Input order and
// duplicates do not matter. A product with no selectable options has exactly
// one implicit variant, which an empty id set matches regardless of its key.
func Resolve(prices PriceTable, optionIDs []string) (decimal.Decimal, error) {
	key := model.NewVariantKey(optionIDs)
	if price, ok := prices[key]; ok {
		return price, nil
	}
	if key == "" && len(prices) == 1 {
		for _, price := range prices {
			return price, nil
		}
	}
	return decimal.Decimal{}, ErrVariantNotFound
}
