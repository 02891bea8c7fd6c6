// Package scheduler runs the periodic price reconciliation cycle.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"price_bot/internal/bot"
	"price_bot/internal/extractor"
	"price_bot/internal/fetcher"
	"price_bot/internal/model"
	"price_bot/internal/storage"
)

// Sender is the interface for sending Telegram messages.
type Sender interface {
	SendMessage(chatID int64, text string)
}

// Scheduler periodically re-checks every tracked product's price and sends a
// notification when a price has changed.
type Scheduler struct {
	store   storage.Storage
	fetcher *fetcher.Fetcher
	sender  Sender
	log     *slog.Logger
	period  time.Duration
}

// New creates a Scheduler with the default HTTP client.
func New(store storage.Storage, sender Sender, period time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		store:   store,
		fetcher: fetcher.New(http.DefaultClient),
		sender:  sender,
		log:     log,
		period:  period,
	}
}

// NewWithFetcher creates a Scheduler with a custom fetcher (useful for testing).
func NewWithFetcher(store storage.Storage, f *fetcher.Fetcher, sender Sender, period time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		store:   store,
		fetcher: f,
		sender:  sender,
		log:     log,
		period:  period,
	}
}

// Run starts the scheduler loop, blocking until ctx is cancelled. A cycle
// always runs to completion before the next tick is handled, so cycles never
// overlap.
func (s *Scheduler) Run(ctx context.Context) {
	s.refreshAll(ctx)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshAll(ctx)
		}
	}
}

func (s *Scheduler) refreshAll(ctx context.Context) {
	products, err := s.store.ListAllProducts(ctx)
	if err != nil {
		s.log.Error("list tracked products", "error", err)
		return
	}

	for _, p := range products {
		if ctx.Err() != nil {
			return
		}
		s.refreshProduct(ctx, p)
	}
}

// refreshProduct re-derives one entry's price from a fresh page fetch.
// Failures are logged and stay local to the entry, so one broken page cannot
// stall the rest of the cycle; the entry is retried on the next cycle.
func (s *Scheduler) refreshProduct(ctx context.Context, p model.TrackedProduct) {
	s.log.Debug("checking product", "user_id", p.UserID, "title", p.Title)

	page, err := s.fetcher.Fetch(ctx, p.Link)
	if err != nil {
		s.log.Error("fetch product page", "user_id", p.UserID, "title", p.Title, "link", p.Link, "error", err)
		return
	}

	snap, err := extractor.Extract(page)
	if err != nil {
		s.log.Error("extract prices", "user_id", p.UserID, "title", p.Title, "error", err)
		return
	}

	current, err := extractor.Resolve(snap.Prices, p.Variant.OptionIDs())
	if err != nil {
		if errors.Is(err, extractor.ErrVariantNotFound) {
			s.log.Warn("tracked variant no longer offered", "user_id", p.UserID, "title", p.Title, "variant", string(p.Variant))
		} else {
			s.log.Error("resolve variant", "user_id", p.UserID, "title", p.Title, "error", err)
		}
		return
	}

	if current.Equal(p.Price) {
		return
	}

	// The new baseline is committed before the notification goes out, so a
	// crash in between drops the message but never announces a price the
	// store does not hold.
	if err := s.store.UpdatePrice(ctx, p.UserID, p.Title, current); err != nil {
		s.log.Error("update price", "user_id", p.UserID, "title", p.Title, "error", err)
		return
	}

	s.sender.SendMessage(p.UserID, bot.FormatPriceChange(p.Title, p.Price, current))
	s.log.Info("price changed", "user_id", p.UserID, "title", p.Title,
		"old", p.Price.String(), "new", current.String())
}
