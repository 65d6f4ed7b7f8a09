package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"datatrace-bot/internal/access"
	"datatrace-bot/internal/bot"
	"datatrace-bot/internal/config"
	"datatrace-bot/internal/database"
	"datatrace-bot/internal/lookup"
	"datatrace-bot/internal/membership"
	"datatrace-bot/internal/store"
)

func main() {
	initLogger()

	cfg := config.LoadConfig()
	if cfg.BotToken == "" {
		log.Fatal().Msg("BOT_TOKEN is required")
	}

	db, err := database.ConnectPostgres(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not connect to database")
	}

	rdb, err := database.ConnectRedis(cfg)
	if err != nil {
		// Membership checks work without the cache, just slower.
		log.Warn().Err(err).Msg("Could not connect to redis, membership cache disabled")
		rdb = nil
	}

	st := store.New(db, cfg.Timezone, cfg.ReferralReward, cfg.VerifyCooldown)
	lookupClient := lookup.NewClient(cfg.Endpoints, cfg.APIKeys)

	tgBot, err := bot.NewBot(cfg, st, nil, lookupClient, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not create bot")
	}

	checker := membership.NewChannelChecker(tgBot.Instance, rdb, cfg.RequiredChannels, cfg.MembershipCacheTTL)
	pipeline := access.NewPipeline(st, checker, cfg.OwnerID, cfg.SudoUsers, cfg.DailyFreeLimit, lookup.Prices())
	tgBot.Pipeline = pipeline
	tgBot.Membership = checker

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tgBot.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Bot stopped with error")
	}
	log.Info().Msg("Bot stopped")
}

func initLogger() {
	zerolog.TimeFieldFormat = time.RFC3339
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}

	level := zerolog.InfoLevel
	if os.Getenv("DEBUG") == "true" {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(output).Level(level).With().Timestamp().Str("service", "datatrace-bot").Logger()
}
