package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/rs/zerolog/log"

	"datatrace-bot/internal/access"
	"datatrace-bot/internal/config"
	"datatrace-bot/internal/lookup"
	"datatrace-bot/internal/membership"
	"datatrace-bot/internal/store"
)

type Bot struct {
	Instance   *telego.Bot
	Store      *store.Store
	Pipeline   *access.Pipeline
	Lookup     *lookup.Client
	Membership membership.Checker
	Cfg        *config.Config

	username string
}

func NewBot(cfg *config.Config, st *store.Store, pipeline *access.Pipeline, lookupClient *lookup.Client, checker membership.Checker) (*Bot, error) {
	tgBot, err := telego.NewBot(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		Instance:   tgBot,
		Store:      st,
		Pipeline:   pipeline,
		Lookup:     lookupClient,
		Membership: checker,
		Cfg:        cfg,
	}, nil
}

func (b *Bot) Start(ctx context.Context) error {
	if me, err := b.Instance.GetMe(ctx); err == nil {
		b.username = me.Username
	} else {
		log.Warn().Err(err).Msg("Failed to resolve bot username")
	}

	updates, err := b.Instance.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	handler, err := th.NewBotHandler(b.Instance, updates)
	if err != nil {
		return fmt.Errorf("failed to create handler: %w", err)
	}

	b.registerUserHandlers(handler)
	b.registerLookupHandlers(handler)
	b.registerAdminHandlers(handler)

	log.Info().Str("username", b.username).Msg("Bot started")
	return handler.Start()
}

// commandArgs returns everything after the command itself.
func commandArgs(text string) []string {
	parts := strings.Fields(text)
	if len(parts) <= 1 {
		return nil
	}
	return parts[1:]
}

func chatTypeOf(chat telego.Chat) access.ChatType {
	if chat.Type == telego.ChatTypePrivate {
		return access.ChatPrivate
	}
	return access.ChatGroup
}

func (b *Bot) referralLink(userID int64) string {
	if b.username == "" {
		return ""
	}
	return fmt.Sprintf("https://t.me/%s?start=%d", b.username, userID)
}

func (b *Bot) sendText(ctx *th.Context, chatID int64, text string) {
	b.sendWithMarkup(ctx, chatID, text, nil)
}

func (b *Bot) sendWithMarkup(ctx *th.Context, chatID int64, text string, markup *telego.InlineKeyboardMarkup) {
	msg := tu.Message(tu.ID(chatID), text).WithParseMode(telego.ModeHTML)
	if markup != nil {
		msg = msg.WithReplyMarkup(markup)
	}
	if _, err := ctx.Bot().SendMessage(ctx.Context(), msg); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (b *Bot) answerCallback(ctx *th.Context, callbackID string) {
	if err := ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callbackID)); err != nil {
		log.Warn().Err(err).Msg("Failed to answer callback")
	}
}

// logToChannel mirrors notable events into the configured log channel.
// Best-effort: delivery failures are logged and dropped.
func (b *Bot) logToChannel(ctx context.Context, text string) {
	if b.Cfg.LogChannelID == 0 {
		return
	}
	msg := tu.Message(tu.ID(b.Cfg.LogChannelID), text).WithParseMode(telego.ModeHTML)
	if _, err := b.Instance.SendMessage(ctx, msg); err != nil {
		log.Warn().Err(err).Msg("Failed to log to channel")
	}
}

func (b *Bot) joinKeyboard(userID int64) *telego.InlineKeyboardMarkup {
	var rows [][]telego.InlineKeyboardButton
	if b.Cfg.UpdatesLink != "" {
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("📢 Join Updates").WithURL(b.Cfg.UpdatesLink),
		))
	}
	if b.Cfg.SupportLink != "" {
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🆘 Join Support").WithURL(b.Cfg.SupportLink),
		))
	}
	rows = append(rows, tu.InlineKeyboardRow(
		tu.InlineKeyboardButton("✅ Verify Membership").WithCallbackData(fmt.Sprintf("verify_membership_%d", userID)),
	))
	markup := tu.InlineKeyboard(rows...)
	return markup
}

func (b *Bot) mainKeyboard(userID int64) *telego.InlineKeyboardMarkup {
	rows := [][]telego.InlineKeyboardButton{
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🔍 Lookups").WithCallbackData("lookups"),
			tu.InlineKeyboardButton("ℹ️ Help").WithCallbackData("help"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🎁 Referral").WithCallbackData("referral"),
			tu.InlineKeyboardButton("💎 Buy Diamonds").WithCallbackData("buy_diamonds"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🏷 Redeem Code").WithCallbackData("redeem_info"),
		),
	}
	return tu.InlineKeyboard(rows...)
}
