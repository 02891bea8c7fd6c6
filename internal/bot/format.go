package bot

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"price_bot/internal/model"
)

// FormatPriceChange formats the notification sent when a tracked price moves.
func FormatPriceChange(title string, oldPrice, newPrice decimal.Decimal) string {
	return fmt.Sprintf("The price of the product %q has changed from %s to %s.",
		title, oldPrice.String(), newPrice.String())
}

// FormatProductList formats a user's tracked products for display.
func FormatProductList(products []model.TrackedProduct) string {
	if len(products) == 0 {
		return "You are not tracking any products yet. Use /add <link> <title> to start."
	}

	var b strings.Builder
	b.WriteString("Your tracked products:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "\n%s: %s\n", p.Title, p.Price.String())
		fmt.Fprintf(&b, "   %s\n", p.Link)
	}
	return b.String()
}
