package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const cbOption = "opt"

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	chatID := cb.Message.Chat.ID

	callback := tgbotapi.NewCallback(cb.ID, "")
	if _, err := b.api.Send(callback); err != nil {
		b.log.Error("send callback ack", "error", err)
	}

	// Option ids themselves contain colons, so only the prefix is split off.
	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 {
		return
	}
	action, arg := parts[0], parts[1]

	b.log.Info("callback",
		"action", action,
		"chat_id", chatID,
		"user_id", cb.From.ID,
		"username", cb.From.UserName,
	)

	switch action {
	case cbOption:
		b.handleOptionPick(ctx, chatID, cb.Message.MessageID, arg)
	}
}

// handleOptionPick records one chosen option id for the chat's selection in
// progress and saves the product once every option group has been answered.
func (b *Bot) handleOptionPick(ctx context.Context, chatID int64, messageID int, optionID string) {
	b.mu.Lock()
	sess := b.sessions[chatID]
	var done bool
	if sess != nil {
		sess.chosen = append(sess.chosen, optionID)
		done = len(sess.chosen) >= sess.groups
		if done {
			delete(b.sessions, chatID)
		}
	}
	b.mu.Unlock()

	if sess == nil {
		b.reply(chatID, "No product selection in progress. Start one with /add.")
		return
	}

	edit := tgbotapi.NewEditMessageText(chatID, messageID, "Selected")
	if _, err := b.api.Send(edit); err != nil {
		b.log.Error("edit selection message", "chat_id", chatID, "error", err)
	}

	if done {
		b.saveProduct(ctx, chatID, sess.title, sess.link, sess.prices, sess.chosen)
	}
}
