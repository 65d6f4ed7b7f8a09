package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	"github.com/rs/zerolog/log"

	"datatrace-bot/internal/lookup"
	"datatrace-bot/internal/models"
	"datatrace-bot/internal/store"
)

func (b *Bot) registerUserHandlers(handler *th.BotHandler) {
	handler.Handle(b.handleStart, th.CommandEqual("start"))
	handler.Handle(b.handleHelp, th.CommandEqual("help"))
	handler.Handle(b.handleDiamonds, th.CommandEqual("diamonds"))
	handler.Handle(b.handleCredits, th.CommandEqual("credits"))
	handler.Handle(b.handleRefer, th.CommandEqual("refer"))
	handler.Handle(b.handleBuyDiamonds, th.CommandEqual("buydiamonds"))
	handler.Handle(b.handleRedeem, th.CommandEqual("redeem"))

	handler.Handle(b.handleMenuCallback, th.CallbackDataEqual("help"))
	handler.Handle(b.handleMenuCallback, th.CallbackDataEqual("lookups"))
	handler.Handle(b.handleMenuCallback, th.CallbackDataEqual("referral"))
	handler.Handle(b.handleMenuCallback, th.CallbackDataEqual("redeem_info"))
	handler.Handle(b.handleMenuCallback, th.CallbackDataEqual("buy_diamonds"))
	handler.Handle(b.handleMenuCallback, th.CallbackDataEqual("back_main"))
	handler.Handle(b.handleVerifyCallback, th.CallbackDataPrefix("verify_membership_"))
}

func (b *Bot) handleStart(ctx *th.Context, update telego.Update) error {
	message := update.Message
	if message == nil || message.From == nil {
		return nil
	}
	if message.Chat.Type != telego.ChatTypePrivate {
		return nil
	}
	user := message.From

	// /start <referrer_id> attributes the new account, never to itself.
	var referrerID *int64
	if args := commandArgs(message.Text); len(args) > 0 {
		if id, err := strconv.ParseInt(args[0], 10, 64); err == nil && id != user.ID {
			referrerID = &id
		}
	}

	member, err := b.Membership.IsMember(ctx.Context(), user.ID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("Membership check failed on /start")
		member = false
	}
	if !member && !b.Cfg.IsAdmin(user.ID) {
		b.sendWithMarkup(ctx, message.Chat.ID,
			"Access restricted. Join the required channels first, then tap Verify.",
			b.joinKeyboard(user.ID))
		return nil
	}

	account, created, err := b.Store.CreateIfAbsent(user.ID, user.Username, user.FirstName, referrerID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to register user")
		b.sendText(ctx, message.Chat.ID, "Service temporarily unavailable, try again later.")
		return nil
	}
	if err := b.Store.TouchLastActive(user.ID); err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("Failed to touch last_active")
	}

	if created {
		text := fmt.Sprintf("🚀 New user\nName: %s\nID: %d", html.EscapeString(user.FirstName), user.ID)
		if referrerID != nil {
			text += fmt.Sprintf("\nReferrer: %d", *referrerID)
		}
		b.logToChannel(ctx.Context(), text)
	}

	b.sendWithMarkup(ctx, message.Chat.ID, b.homeText(user.ID, user.FirstName, account), b.mainKeyboard(user.ID))
	return nil
}

func (b *Bot) homeText(userID int64, firstName string, account *models.User) string {
	daily, err := b.Store.EnsureToday(userID)
	used := 0
	if err == nil && daily != nil {
		used = daily.DailySearchCount
		account = daily
	}
	freeLeft := b.Cfg.DailyFreeLimit - used
	if freeLeft < 0 {
		freeLeft = 0
	}
	return fmt.Sprintf(
		"╔════════════════════╗\n"+
			"   DataTrace OSINT Bot\n"+
			"╚════════════════════╝\n\n"+
			"Hello <b>%s</b>!\n"+
			"Group searches are free for everyone. DMs are restricted to admins.\n\n"+
			"💎 Diamonds: <b>%d</b>\n"+
			"🎫 Credits (group): <b>%d</b>\n"+
			"📅 Free group searches left today: <b>%d</b> / %d\n"+
			"👥 Referrals: <b>%d</b> (+%d diamond each)\n\n"+
			"🔗 Referral link:\n<code>%s</code>",
		html.EscapeString(firstName),
		account.Diamonds,
		account.Credits,
		freeLeft, b.Cfg.DailyFreeLimit,
		account.ReferredCount, b.Cfg.ReferralReward,
		b.referralLink(userID),
	)
}

func (b *Bot) helpText() string {
	var lines []string
	lines = append(lines,
		"📜 <b>Commands</b>",
		"• /start - Register &amp; home",
		"• /help - This help",
		"• /diamonds - Balance",
		"• /credits - Group credits/daily quota",
		"• /refer - Referral link",
		"• /buydiamonds - Purchase info",
		"• /redeem CODE - Redeem code",
		"",
		"🔍 <b>Lookups (free in groups)</b>",
	)
	for _, kind := range lookup.Kinds {
		line := fmt.Sprintf("• %s - %s", kind.Usage, kind.Description)
		if kind.DiamondCost > 0 {
			line += fmt.Sprintf(" (%d💎)", kind.DiamondCost)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "",
		fmt.Sprintf("Group: %d free searches/day. After that, 1 credit per search (redeem-only, not for sale).", b.Cfg.DailyFreeLimit),
		"DM lookups are restricted to admins. Everyone can search freely in groups until quota.",
	)
	return strings.Join(lines, "\n")
}

func (b *Bot) handleHelp(ctx *th.Context, update telego.Update) error {
	if update.Message == nil {
		return nil
	}
	b.sendText(ctx, update.Message.Chat.ID, b.helpText())
	return nil
}

func (b *Bot) handleDiamonds(ctx *th.Context, update telego.Update) error {
	message := update.Message
	if message == nil || message.From == nil {
		return nil
	}
	account, err := b.Store.Get(message.From.ID)
	if err != nil {
		b.sendText(ctx, message.Chat.ID, "Service temporarily unavailable, try again later.")
		return nil
	}
	if account == nil {
		b.sendText(ctx, message.Chat.ID, "Use /start first.")
		return nil
	}
	b.sendText(ctx, message.Chat.ID, fmt.Sprintf(
		"💎 <b>Diamond Balance</b>\n"+
			"• Diamonds: <b>%d</b>\n"+
			"• Referrals: <b>%d</b> (each +%d)\n"+
			"• Minimum purchase: %d @ %d INR each\n"+
			"• Contact: %s",
		account.Diamonds, account.ReferredCount, b.Cfg.ReferralReward,
		b.Cfg.MinDiamondPurchase, b.Cfg.DiamondPriceINR, b.Cfg.AdminContact,
	))
	return nil
}

func (b *Bot) handleCredits(ctx *th.Context, update telego.Update) error {
	message := update.Message
	if message == nil || message.From == nil {
		return nil
	}
	account, err := b.Store.EnsureToday(message.From.ID)
	if err != nil {
		b.sendText(ctx, message.Chat.ID, "Service temporarily unavailable, try again later.")
		return nil
	}
	if account == nil {
		b.sendText(ctx, message.Chat.ID, "Use /start first.")
		return nil
	}
	freeLeft := b.Cfg.DailyFreeLimit - account.DailySearchCount
	if freeLeft < 0 {
		freeLeft = 0
	}
	b.sendText(ctx, message.Chat.ID, fmt.Sprintf(
		"🎫 <b>Group Credits</b>\n"+
			"• Credits: <b>%d</b>\n"+
			"• Free searches left today: <b>%d</b> / %d\n"+
			"Credits are only for group searches and cannot be bought.\n"+
			"Redeem codes can add credits or diamonds.",
		account.Credits, freeLeft, b.Cfg.DailyFreeLimit,
	))
	return nil
}

func (b *Bot) handleRefer(ctx *th.Context, update telego.Update) error {
	message := update.Message
	if message == nil || message.From == nil {
		return nil
	}
	account, err := b.Store.Get(message.From.ID)
	if err != nil || account == nil {
		b.sendText(ctx, message.Chat.ID, "Use /start first.")
		return nil
	}
	b.sendText(ctx, message.Chat.ID, fmt.Sprintf(
		"🔗 <b>Your Referral Link</b>\n<code>%s</code>\n\nReward: +%d diamond per successful referral.",
		b.referralLink(message.From.ID), b.Cfg.ReferralReward,
	))
	return nil
}

func (b *Bot) handleBuyDiamonds(ctx *th.Context, update telego.Update) error {
	message := update.Message
	if message == nil {
		return nil
	}
	b.sendText(ctx, message.Chat.ID, b.buyDiamondsText())
	return nil
}

func (b *Bot) buyDiamondsText() string {
	return fmt.Sprintf(
		"🛒 <b>Buy Diamonds</b>\n"+
			"Minimum purchase: %d\n"+
			"Price: %d INR minimum (%d INR/diamond)\n"+
			"Pay manually to admin and diamonds will be added to your account.\n"+
			"Contact: %s",
		b.Cfg.MinDiamondPurchase,
		b.Cfg.MinDiamondPurchase*b.Cfg.DiamondPriceINR,
		b.Cfg.DiamondPriceINR,
		b.Cfg.AdminContact,
	)
}

func (b *Bot) handleRedeem(ctx *th.Context, update telego.Update) error {
	message := update.Message
	if message == nil || message.From == nil {
		return nil
	}
	args := commandArgs(message.Text)
	if len(args) == 0 {
		b.sendText(ctx, message.Chat.ID, "Usage: /redeem CODE")
		return nil
	}

	// Claims need an account to credit.
	if _, _, err := b.Store.CreateIfAbsent(message.From.ID, message.From.Username, message.From.FirstName, nil); err != nil {
		b.sendText(ctx, message.Chat.ID, "Service temporarily unavailable, try again later.")
		return nil
	}

	result, err := b.Store.ClaimCode(message.From.ID, args[0])
	if err != nil {
		log.Error().Err(err).Int64("user_id", message.From.ID).Msg("Redeem failed")
		b.sendText(ctx, message.Chat.ID, "Service temporarily unavailable, try again later.")
		return nil
	}
	switch result.Status {
	case store.ClaimOK:
		b.sendText(ctx, message.Chat.ID, fmt.Sprintf("✅ Redeemed %d %s.", result.Amount, result.Kind))
	case store.ClaimAlreadyUsed:
		b.sendText(ctx, message.Chat.ID, "⚠️ Code already used.")
	default:
		b.sendText(ctx, message.Chat.ID, "⚠️ Invalid code.")
	}
	return nil
}

func (b *Bot) handleMenuCallback(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	if callback == nil {
		return nil
	}
	b.answerCallback(ctx, callback.ID)
	userID := callback.From.ID

	var text string
	switch callback.Data {
	case "help", "lookups":
		text = b.helpText()
	case "referral":
		text = fmt.Sprintf(
			"🔗 <b>Your Referral Link</b>\n<code>%s</code>\n\nReward: +%d diamond per successful referral.",
			b.referralLink(userID), b.Cfg.ReferralReward)
	case "redeem_info":
		text = "🏷 <b>Redeem Codes</b>\n" +
			"Use /redeem CODE to apply.\n\n" +
			"Types:\n" +
			"• Credits: group searches past the daily free limit\n" +
			"• Diamonds: paid lookups\n\n" +
			"Credits cannot be bought. Diamonds are purchased via admin."
	case "buy_diamonds":
		text = b.buyDiamondsText()
	case "back_main":
		account, err := b.Store.Get(userID)
		if err != nil || account == nil {
			text = "Use /start first."
		} else {
			text = b.homeText(userID, callback.From.FirstName, account)
		}
	default:
		return nil
	}
	b.sendText(ctx, userID, text)
	return nil
}

func (b *Bot) handleVerifyCallback(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	if callback == nil {
		return nil
	}
	b.answerCallback(ctx, callback.ID)
	userID := callback.From.ID

	// Re-verification is rate limited so the Telegram API is not hammered.
	canVerify, err := b.Store.CanVerifyNow(userID)
	if err == nil && !canVerify {
		b.sendText(ctx, userID, "Please wait a moment before verifying again.")
		return nil
	}
	if err := b.Store.TouchLastVerify(userID); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("Failed to stamp verify time")
	}

	member, err := b.Membership.IsMember(ctx.Context(), userID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("Membership verify failed")
	}
	if member {
		b.sendText(ctx, userID, "✅ Verification done! Use /start.")
	} else {
		b.sendWithMarkup(ctx, userID,
			"Not verified yet. Join the required channels, then tap Verify again.",
			b.joinKeyboard(userID))
	}
	return nil
}
