// Package model defines the domain types used across the application.
package model

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// variantSep delimits option ids both in the page's SKU records and in the
// stored form of a key.
const variantSep = ","

// VariantKey identifies one purchasable configuration of a product as a
// canonical (sorted, deduplicated) comma-delimited set of option ids.
// Two selections are the same variant iff their canonical keys are equal.
// The empty key is valid and denotes a product with no selectable options.
type VariantKey string

// NewVariantKey builds a canonical key from option ids in any order.
// Duplicate and empty ids are dropped.
func NewVariantKey(optionIDs []string) VariantKey {
	ids := make([]string, 0, len(optionIDs))
	for _, id := range optionIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)
	return VariantKey(strings.Join(ids, variantSep))
}

// ParseVariantKey re-canonicalizes a delimited key read back from storage.
func ParseVariantKey(s string) VariantKey {
	return NewVariantKey(strings.Split(s, variantSep))
}

// OptionIDs returns the option ids that make up the key.
func (k VariantKey) OptionIDs() []string {
	if k == "" {
		return nil
	}
	return strings.Split(string(k), variantSep)
}

// TrackedProduct is one (user, product, variant) price baseline.
// (UserID, Title) is unique: a user cannot track two configurations of a
// product under the same title.
type TrackedProduct struct {
	UserID    int64
	Title     string
	Link      string
	Variant   VariantKey
	Price     decimal.Decimal
	CreatedAt time.Time
}
