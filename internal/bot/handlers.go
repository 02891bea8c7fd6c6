package bot

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"price_bot/internal/extractor"
	"price_bot/internal/model"
)

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to Price Monitor Bot!

Track product prices per variant (color, size, ...) and get a message
whenever a tracked price changes.

Quick start:
1. /add <link> <title> — start tracking a product
2. pick the options from the buttons, if the product has any
3. /show — see your tracked products and their prices

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Commands:
/add <link> <title> — track a product under a unique title; if it has
selectable options you will be asked to pick each one
/show — list your tracked products with their last known prices
/check <title> — re-check one product's price right now
/delete <title> — stop tracking a product`)
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, args string) {
	link, title, err := ParseAddArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	page, err := b.fetcher.Fetch(ctx, link)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to fetch the page: %v", err))
		return
	}

	snap, err := extractor.Extract(page)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Could not read price data from that page: %v", err))
		return
	}
	if len(snap.Prices) == 0 {
		b.reply(chatID, "That link doesn't point to a product I can track.")
		return
	}

	if len(snap.Options) == 0 {
		b.saveProduct(ctx, chatID, title, link, snap.Prices, nil)
		return
	}

	b.mu.Lock()
	b.sessions[chatID] = &selection{
		title:  title,
		link:   link,
		prices: snap.Prices,
		groups: len(snap.Options),
	}
	b.mu.Unlock()

	for _, group := range snap.Options {
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Select %s", strings.ToLower(group.Name)))
		msg.ReplyMarkup = optionKeyboard(group)
		if _, err := b.api.Send(msg); err != nil {
			b.log.Error("send option keyboard", "chat_id", chatID, "error", err)
		}
	}
}

// saveProduct resolves the chosen variant against the snapshot taken at /add
// time and persists the baseline.
func (b *Bot) saveProduct(ctx context.Context, chatID int64, title, link string, prices extractor.PriceTable, chosen []string) {
	price, err := extractor.Resolve(prices, chosen)
	if err != nil {
		b.reply(chatID, "That combination of options is not available for this product.")
		return
	}

	p := &model.TrackedProduct{
		UserID:  chatID,
		Title:   title,
		Link:    link,
		Variant: model.NewVariantKey(chosen),
		Price:   price,
	}
	created, err := b.store.AddProduct(ctx, p)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to save the product: %v", err))
		return
	}
	if !created {
		b.reply(chatID, fmt.Sprintf("Product %q is already tracked.", title))
		return
	}
	b.reply(chatID, fmt.Sprintf("Product %q added. Its current price is %s.", title, price.String()))
}

func (b *Bot) handleShow(ctx context.Context, chatID int64) {
	products, err := b.store.ListProducts(ctx, chatID)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, FormatProductList(products))
}

func (b *Bot) handleCheck(ctx context.Context, chatID int64, args string) {
	title, err := ParseTitleArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /check <title>")
		return
	}

	p, err := b.store.GetProduct(ctx, chatID, title)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Product %q not found.", title))
		return
	}

	page, err := b.fetcher.Fetch(ctx, p.Link)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to fetch the page: %v", err))
		return
	}
	snap, err := extractor.Extract(page)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Could not read price data from that page: %v", err))
		return
	}
	current, err := extractor.Resolve(snap.Prices, p.Variant.OptionIDs())
	if err != nil {
		b.reply(chatID, fmt.Sprintf("The tracked configuration of %q is no longer offered.", title))
		return
	}

	if current.Equal(p.Price) {
		b.reply(chatID, fmt.Sprintf("The price of %q is unchanged at %s.", title, current.String()))
		return
	}
	if err := b.store.UpdatePrice(ctx, chatID, title, current); err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to update the price: %v", err))
		return
	}
	b.reply(chatID, FormatPriceChange(title, p.Price, current))
}

func (b *Bot) handleDelete(ctx context.Context, chatID int64, args string) {
	title, err := ParseTitleArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /delete <title>")
		return
	}

	if err := b.store.RemoveProduct(ctx, chatID, title); err != nil {
		b.reply(chatID, fmt.Sprintf("Error deleting product: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Product %q is no longer tracked.", title))
}

func optionKeyboard(group extractor.OptionGroup) tgbotapi.InlineKeyboardMarkup {
	ids := make([]string, 0, len(group.Choices))
	for id := range group.Choices {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(group.Choices[id], cbOption+":"+id),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
