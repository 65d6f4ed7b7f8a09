package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/rs/zerolog/log"

	"datatrace-bot/internal/models"
	"datatrace-bot/internal/store"
)

// Admin commands call the store directly; the privilege check lives here,
// not in the core.
func (b *Bot) registerAdminHandlers(handler *th.BotHandler) {
	handler.Handle(b.adminOnly(b.handleAddDiamonds), th.CommandEqual("adddiamonds"))
	handler.Handle(b.adminOnly(b.handleRemoveDiamonds), th.CommandEqual("removediamonds"))
	handler.Handle(b.adminOnly(b.handleSetDiamonds), th.CommandEqual("setdiamonds"))
	handler.Handle(b.adminOnly(b.handleAddCredits), th.CommandEqual("addcredits"))
	handler.Handle(b.adminOnly(b.handleCreateCode), th.CommandEqual("createcode"))
	handler.Handle(b.adminOnly(b.handleGenCode), th.CommandEqual("gencode"))
	handler.Handle(b.adminOnly(b.handleBan), th.CommandEqual("ban"))
	handler.Handle(b.adminOnly(b.handleUnban), th.CommandEqual("unban"))
	handler.Handle(b.adminOnly(b.handleProtect), th.CommandEqual("protect"))
	handler.Handle(b.adminOnly(b.handleBlacklist), th.CommandEqual("blacklist"))
	handler.Handle(b.adminOnly(b.handleStats), th.CommandEqual("stats"))
	handler.Handle(b.adminOnly(b.handleBroadcast), th.CommandEqual("gcast"))
}

func (b *Bot) adminOnly(next th.Handler) th.Handler {
	return func(ctx *th.Context, update telego.Update) error {
		message := update.Message
		if message == nil || message.From == nil {
			return nil
		}
		if !b.Cfg.IsAdmin(message.From.ID) {
			b.sendText(ctx, message.Chat.ID, "Access denied.")
			return nil
		}
		return next(ctx, update)
	}
}

// parseUserAmount reads "[user_id] [amount]" command arguments.
func parseUserAmount(text string) (int64, int, error) {
	args := commandArgs(text)
	if len(args) < 2 {
		return 0, 0, fmt.Errorf("expected [user_id] [amount]")
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid user id %q", args[0])
	}
	amount, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid amount %q", args[1])
	}
	return userID, amount, nil
}

func (b *Bot) handleAdjust(ctx *th.Context, update telego.Update, field store.BalanceField, op store.AdjustOp, usage string) error {
	message := update.Message
	userID, amount, err := parseUserAmount(message.Text)
	if err != nil {
		b.sendText(ctx, message.Chat.ID, "Usage: "+usage)
		return nil
	}
	ok, err := b.Store.Adjust(userID, field, amount, op)
	if err != nil {
		log.Error().Err(err).Msg("Admin balance adjust failed")
		b.sendText(ctx, message.Chat.ID, "Storage error.")
		return nil
	}
	if !ok {
		b.sendText(ctx, message.Chat.ID, fmt.Sprintf("Failed to %s %s for %d (missing user or insufficient balance).", op, field, userID))
		return nil
	}
	b.sendText(ctx, message.Chat.ID, fmt.Sprintf("Done: %s %d %s for %d.", op, amount, field, userID))
	return nil
}

func (b *Bot) handleAddDiamonds(ctx *th.Context, update telego.Update) error {
	return b.handleAdjust(ctx, update, store.FieldDiamonds, store.OpAdd, "/adddiamonds [user_id] [amount]")
}

func (b *Bot) handleRemoveDiamonds(ctx *th.Context, update telego.Update) error {
	return b.handleAdjust(ctx, update, store.FieldDiamonds, store.OpDeduct, "/removediamonds [user_id] [amount]")
}

func (b *Bot) handleSetDiamonds(ctx *th.Context, update telego.Update) error {
	return b.handleAdjust(ctx, update, store.FieldDiamonds, store.OpSet, "/setdiamonds [user_id] [amount]")
}

func (b *Bot) handleAddCredits(ctx *th.Context, update telego.Update) error {
	return b.handleAdjust(ctx, update, store.FieldCredits, store.OpAdd, "/addcredits [user_id] [amount]")
}

func (b *Bot) handleCreateCode(ctx *th.Context, update telego.Update) error {
	message := update.Message
	args := commandArgs(message.Text)
	if len(args) < 3 {
		b.sendText(ctx, message.Chat.ID, "Usage: /createcode diamonds|credits CODE AMOUNT")
		return nil
	}
	kind := args[0]
	if kind != models.CodeKindDiamonds && kind != models.CodeKindCredits {
		b.sendText(ctx, message.Chat.ID, "Type must be diamonds or credits.")
		return nil
	}
	amount, err := strconv.Atoi(args[2])
	if err != nil || amount <= 0 {
		b.sendText(ctx, message.Chat.ID, "Amount must be a positive number.")
		return nil
	}
	code := store.NormalizeCode(args[1])
	ok, err := b.Store.CreateCode(code, kind, amount)
	if err != nil {
		log.Error().Err(err).Msg("Code creation failed")
		b.sendText(ctx, message.Chat.ID, "Storage error.")
		return nil
	}
	if !ok {
		b.sendText(ctx, message.Chat.ID, "⚠️ Code already exists.")
		return nil
	}
	b.sendText(ctx, message.Chat.ID, fmt.Sprintf("✅ Code created: %s (+%d %s)", code, amount, kind))
	return nil
}

func (b *Bot) handleGenCode(ctx *th.Context, update telego.Update) error {
	message := update.Message
	args := commandArgs(message.Text)
	if len(args) < 2 {
		b.sendText(ctx, message.Chat.ID, "Usage: /gencode diamonds|credits AMOUNT")
		return nil
	}
	kind := args[0]
	if kind != models.CodeKindDiamonds && kind != models.CodeKindCredits {
		b.sendText(ctx, message.Chat.ID, "Type must be diamonds or credits.")
		return nil
	}
	amount, err := strconv.Atoi(args[1])
	if err != nil || amount <= 0 {
		b.sendText(ctx, message.Chat.ID, "Amount must be a positive number.")
		return nil
	}
	code, err := b.Store.GenerateCode(kind, amount)
	if err != nil {
		log.Error().Err(err).Msg("Code generation failed")
		b.sendText(ctx, message.Chat.ID, "Storage error.")
		return nil
	}
	b.sendText(ctx, message.Chat.ID, fmt.Sprintf("✅ Code generated: <code>%s</code> (+%d %s)", code, amount, kind))
	return nil
}

func (b *Bot) handleSetBanned(ctx *th.Context, update telego.Update, banned bool, usage string) error {
	message := update.Message
	args := commandArgs(message.Text)
	if len(args) == 0 {
		b.sendText(ctx, message.Chat.ID, "Usage: "+usage)
		return nil
	}
	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.sendText(ctx, message.Chat.ID, "Invalid user id.")
		return nil
	}
	ok, err := b.Store.SetBanned(targetID, banned)
	if err != nil {
		log.Error().Err(err).Msg("Ban update failed")
		b.sendText(ctx, message.Chat.ID, "Storage error.")
		return nil
	}
	if !ok {
		b.sendText(ctx, message.Chat.ID, "User not found.")
		return nil
	}
	verb := "Unbanned"
	if banned {
		verb = "Banned"
	}
	b.sendText(ctx, message.Chat.ID, fmt.Sprintf("%s %d.", verb, targetID))
	return nil
}

func (b *Bot) handleBan(ctx *th.Context, update telego.Update) error {
	return b.handleSetBanned(ctx, update, true, "/ban [user_id]")
}

func (b *Bot) handleUnban(ctx *th.Context, update telego.Update) error {
	return b.handleSetBanned(ctx, update, false, "/unban [user_id]")
}

func (b *Bot) handleProtect(ctx *th.Context, update telego.Update) error {
	message := update.Message
	args := commandArgs(message.Text)
	if len(args) == 0 {
		b.sendText(ctx, message.Chat.ID, "Usage: /protect [number]")
		return nil
	}
	ok, err := b.Store.AddProtectedNumber(args[0], message.From.ID)
	if err != nil {
		log.Error().Err(err).Msg("Protect failed")
		b.sendText(ctx, message.Chat.ID, "Storage error.")
		return nil
	}
	if !ok {
		b.sendText(ctx, message.Chat.ID, "Already protected.")
		return nil
	}
	b.sendText(ctx, message.Chat.ID, fmt.Sprintf("Protected %s.", args[0]))
	return nil
}

func (b *Bot) handleBlacklist(ctx *th.Context, update telego.Update) error {
	message := update.Message
	args := commandArgs(message.Text)
	if len(args) == 0 {
		b.sendText(ctx, message.Chat.ID, "Usage: /blacklist [identifier] [type]")
		return nil
	}
	entryType := "manual"
	if len(args) > 1 {
		entryType = args[1]
	}
	ok, err := b.Store.AddToBlacklist(args[0], entryType, message.From.ID)
	if err != nil {
		log.Error().Err(err).Msg("Blacklist failed")
		b.sendText(ctx, message.Chat.ID, "Storage error.")
		return nil
	}
	if !ok {
		b.sendText(ctx, message.Chat.ID, "Already blacklisted.")
		return nil
	}
	b.sendText(ctx, message.Chat.ID, fmt.Sprintf("Blacklisted %s.", args[0]))
	return nil
}

func (b *Bot) handleStats(ctx *th.Context, update telego.Update) error {
	message := update.Message
	stats, err := b.Store.GetStats()
	if err != nil {
		log.Error().Err(err).Msg("Stats failed")
		b.sendText(ctx, message.Chat.ID, "Storage error.")
		return nil
	}
	b.sendText(ctx, message.Chat.ID, fmt.Sprintf(
		"📊 <b>Stats</b>\n"+
			"• Users: %d\n"+
			"• Searches: %d\n"+
			"• Banned: %d\n"+
			"• Referrals: %d\n"+
			"• Diamonds in DB: %d\n"+
			"• Credits in DB: %d",
		stats.TotalUsers, stats.TotalSearches, stats.BannedUsers,
		stats.TotalReferrals, stats.TotalDiamonds, stats.TotalCredits,
	))
	return nil
}

func (b *Bot) handleBroadcast(ctx *th.Context, update telego.Update) error {
	message := update.Message
	args := commandArgs(message.Text)
	if len(args) == 0 {
		b.sendText(ctx, message.Chat.ID, "Usage: /gcast [message]")
		return nil
	}
	text := strings.Join(args, " ")

	ids, err := b.Store.AllUserIDs()
	if err != nil {
		log.Error().Err(err).Msg("Broadcast listing failed")
		b.sendText(ctx, message.Chat.ID, "Storage error.")
		return nil
	}
	b.sendText(ctx, message.Chat.ID, fmt.Sprintf("Broadcasting to %d users...", len(ids)))

	success, failed := 0, 0
	for _, id := range ids {
		msg := tu.Message(tu.ID(id), text).WithParseMode(telego.ModeHTML)
		if _, err := ctx.Bot().SendMessage(ctx.Context(), msg); err != nil {
			failed++
		} else {
			success++
		}
		// Stay under the Telegram send-rate ceiling.
		time.Sleep(50 * time.Millisecond)
	}
	b.sendText(ctx, message.Chat.ID, fmt.Sprintf("Broadcast complete.\nSuccess: %d\nFailed: %d", success, failed))
	return nil
}
