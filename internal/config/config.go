package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DBUser        string
	DBPassword    string
	DBName        string
	DBHost        string
	DBPort        string
	RedisHost     string
	RedisPort     string
	RedisPassword string

	BotToken string

	OwnerID   int64
	SudoUsers []int64

	// Channels the user must join before using the bot, "@name" or "-100..." ids.
	RequiredChannels []string
	LogChannelID     int64

	AdminContact string
	UpdatesLink  string
	SupportLink  string

	Timezone *time.Location

	DailyFreeLimit     int
	ReferralReward     int
	MinDiamondPurchase int
	DiamondPriceINR    int

	VerifyCooldown     time.Duration
	MembershipCacheTTL time.Duration

	// Lookup provider URL templates keyed by kind, with a {query} placeholder.
	Endpoints map[string]string
	APIKeys   map[string]string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using system environment variables")
	}

	tz := getEnv("TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Warn().Str("timezone", tz).Msg("Unknown timezone, falling back to UTC")
		loc = time.UTC
	}

	return &Config{
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "datatrace_bot"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		BotToken: getEnv("BOT_TOKEN", ""),

		OwnerID:   getEnvInt64("OWNER_ID", 0),
		SudoUsers: getEnvInt64List("SUDO_USERS"),

		RequiredChannels: getEnvList("REQUIRED_CHANNELS"),
		LogChannelID:     getEnvInt64("LOG_CHANNEL_ID", 0),

		AdminContact: getEnv("ADMIN_CONTACT", ""),
		UpdatesLink:  getEnv("UPDATES_LINK", ""),
		SupportLink:  getEnv("SUPPORT_LINK", ""),

		Timezone: loc,

		DailyFreeLimit:     getEnvInt("DAILY_FREE_LIMIT", 30),
		ReferralReward:     getEnvInt("REFERRAL_REWARD_DIAMONDS", 1),
		MinDiamondPurchase: getEnvInt("MIN_DIAMOND_PURCHASE", 50),
		DiamondPriceINR:    getEnvInt("DIAMOND_PRICE_INR", 5),

		VerifyCooldown:     time.Duration(getEnvInt("VERIFY_COOLDOWN_SECONDS", 30)) * time.Second,
		MembershipCacheTTL: time.Duration(getEnvInt("MEMBERSHIP_CACHE_SECONDS", 300)) * time.Second,

		Endpoints: map[string]string{
			"number":        getEnv("LOOKUP_NUMBER_URL", ""),
			"upi":           getEnv("LOOKUP_UPI_URL", ""),
			"pan":           getEnv("LOOKUP_PAN_URL", ""),
			"ip":            getEnv("LOOKUP_IP_URL", ""),
			"aadhar":        getEnv("LOOKUP_AADHAR_URL", ""),
			"bank_ifsc":     getEnv("LOOKUP_IFSC_URL", "https://ifsc.razorpay.com/{query}"),
			"insta_profile": getEnv("LOOKUP_INSTA_URL", ""),
			"vehicle_rc":    getEnv("LOOKUP_RC_URL", ""),
		},
		APIKeys: map[string]string{
			"number": getEnv("LOOKUP_NUMBER_KEY", ""),
		},
	}
}

func (c *Config) IsOwner(userID int64) bool {
	return userID != 0 && userID == c.OwnerID
}

func (c *Config) IsSudo(userID int64) bool {
	for _, id := range c.SudoUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user is privileged (owner or sudo).
func (c *Config) IsAdmin(userID int64) bool {
	return c.IsOwner(userID) || c.IsSudo(userID)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid integer in environment, using default")
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid integer in environment, using default")
	}
	return fallback
}

func getEnvList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt64List(key string) []int64 {
	var out []int64
	for _, part := range getEnvList(key) {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Warn().Str("key", key).Str("value", part).Msg("Skipping invalid id in environment list")
			continue
		}
		out = append(out, n)
	}
	return out
}
