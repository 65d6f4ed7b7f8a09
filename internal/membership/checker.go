// Package membership gates bot access on required-channel membership.
package membership

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Checker reports whether a user has joined every required channel.
type Checker interface {
	IsMember(ctx context.Context, userID int64) (bool, error)
}

// ChannelChecker asks Telegram for the user's status in each required
// channel. Positive answers are cached in redis for a short TTL; negative
// answers are never cached, so a user who just joined passes on the next
// attempt.
type ChannelChecker struct {
	bot      *telego.Bot
	rdb      *redis.Client
	channels []string
	ttl      time.Duration
}

func NewChannelChecker(bot *telego.Bot, rdb *redis.Client, channels []string, ttl time.Duration) *ChannelChecker {
	return &ChannelChecker{bot: bot, rdb: rdb, channels: channels, ttl: ttl}
}

func (c *ChannelChecker) IsMember(ctx context.Context, userID int64) (bool, error) {
	if len(c.channels) == 0 {
		return true, nil
	}

	key := fmt.Sprintf("member:%d", userID)
	if c.rdb != nil {
		if v, err := c.rdb.Get(ctx, key).Result(); err == nil && v == "1" {
			return true, nil
		}
	}

	for _, channel := range c.channels {
		member, err := c.bot.GetChatMember(ctx, &telego.GetChatMemberParams{
			ChatID: parseChatID(channel),
			UserID: userID,
		})
		if err != nil {
			return false, fmt.Errorf("failed to check membership in %s: %w", channel, err)
		}
		switch member.MemberStatus() {
		case telego.MemberStatusLeft, telego.MemberStatusBanned:
			return false, nil
		}
	}

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, "1", c.ttl).Err(); err != nil {
			log.Warn().Err(err).Int64("user_id", userID).Msg("Failed to cache membership result")
		}
	}
	return true, nil
}

// parseChatID accepts "@username" or a numeric chat id.
func parseChatID(raw string) telego.ChatID {
	if strings.HasPrefix(raw, "@") {
		return telego.ChatID{Username: raw}
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return telego.ChatID{ID: id}
	}
	return telego.ChatID{Username: "@" + raw}
}
