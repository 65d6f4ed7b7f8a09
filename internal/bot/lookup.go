package bot

import (
	"errors"
	"fmt"
	"html"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	"github.com/rs/zerolog/log"

	"datatrace-bot/internal/access"
	"datatrace-bot/internal/lookup"
)

// Telegram rejects messages past 4096 chars; leave headroom for markup.
const maxResultLength = 3500

func (b *Bot) registerLookupHandlers(handler *th.BotHandler) {
	for _, kind := range lookup.Kinds {
		kind := kind
		handler.Handle(func(ctx *th.Context, update telego.Update) error {
			return b.handleLookupCommand(ctx, update, kind)
		}, th.CommandEqual(kind.Command))
	}
}

func (b *Bot) handleLookupCommand(ctx *th.Context, update telego.Update, kind lookup.Kind) error {
	message := update.Message
	if message == nil || message.From == nil {
		return nil
	}
	args := commandArgs(message.Text)
	if len(args) == 0 {
		b.sendText(ctx, message.Chat.ID, "Usage: "+kind.Usage)
		return nil
	}
	query := args[0]
	if len(args) > 1 && kind.Name == "number" {
		// Numbers are often typed with spaces.
		query = ""
		for _, part := range args {
			query += part
		}
	}

	req := access.Request{
		UserID:    message.From.ID,
		Username:  message.From.Username,
		FirstName: message.From.FirstName,
		Chat:      chatTypeOf(message.Chat),
		Kind:      kind.Name,
		Query:     query,
	}
	decision := b.Pipeline.HandleRequest(ctx.Context(), req)
	if !decision.Allowed {
		if decision.Reason == access.ReasonNotMember {
			b.sendWithMarkup(ctx, message.Chat.ID, decision.Reason.Message(), b.joinKeyboard(message.From.ID))
		} else {
			b.sendText(ctx, message.Chat.ID, decision.Reason.Message())
		}
		return nil
	}

	b.sendText(ctx, message.Chat.ID, "🔍 Searching...")
	b.logToChannel(ctx.Context(), fmt.Sprintf(
		"🔍 Search\nUser: %s (%d)\nType: %s\nQuery: %s",
		html.EscapeString(message.From.FirstName), message.From.ID, kind.Name, html.EscapeString(query),
	))

	// The charge is already committed; a provider failure past this point
	// is billed on attempt and not refunded.
	result, err := b.Lookup.Lookup(ctx.Context(), kind.Name, query)
	if err != nil {
		if errors.Is(err, lookup.ErrNotConfigured) {
			b.sendText(ctx, message.Chat.ID, "This lookup is not available right now.")
			return nil
		}
		log.Error().Err(err).Str("kind", kind.Name).Msg("Lookup failed")
		b.sendText(ctx, message.Chat.ID, "Lookup failed.")
		return nil
	}
	if result == "" {
		b.sendText(ctx, message.Chat.ID, "No data returned.")
		return nil
	}
	if len(result) > maxResultLength {
		result = result[:maxResultLength] + "\n… (truncated)"
	}
	b.sendText(ctx, message.Chat.ID, html.EscapeString(result))
	return nil
}
