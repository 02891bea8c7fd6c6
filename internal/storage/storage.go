// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"price_bot/internal/model"
)

// Storage is the interface for all persistence operations. Every mutation is
// durably committed before the call returns.
type Storage interface {
	// AddProduct inserts a tracked product and reports whether it was
	// created. An existing (user, title) row is left untouched and reported
	// as not created; that is a normal outcome, not an error.
	AddProduct(ctx context.Context, p *model.TrackedProduct) (bool, error)
	GetProduct(ctx context.Context, userID int64, title string) (*model.TrackedProduct, error)
	ListProducts(ctx context.Context, userID int64) ([]model.TrackedProduct, error)
	// ListAllProducts returns every tracked product across all users; used by
	// the reconciliation cycle.
	ListAllProducts(ctx context.Context) ([]model.TrackedProduct, error)
	// UpdatePrice stores a new baseline price. Updating a row removed in the
	// meantime is a no-op.
	UpdatePrice(ctx context.Context, userID int64, title string, price decimal.Decimal) error
	// RemoveProduct deletes a tracked product; removing a missing row is a
	// no-op.
	RemoveProduct(ctx context.Context, userID int64, title string) error

	Close() error
}
