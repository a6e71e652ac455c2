package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"opendaoc/internal/bot"
	"opendaoc/internal/chart"
	"opendaoc/internal/common"
	"opendaoc/internal/config"
	"opendaoc/internal/metrics"
	"opendaoc/internal/population"
	"opendaoc/internal/registry"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("opendaoc stopped")
	}
}

func run() error {

	// Config
	var cfgPath string
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	setupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Registry
	store, err := registry.OpenStore(ctx, cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	reg, err := registry.Open(ctx, store, cfg.Servers)
	if err != nil {
		return err
	}
	log.Info().Msg(fmt.Sprintf("Loaded %d servers from %s store %s", reg.Len(), cfg.Store.Driver, cfg.Store.Path))

	// Network client, shared by every fetch until shutdown
	rateLimiter := common.NewRateLimiter(cfg.Fetch.RateRestrictions(), cfg.Fetch.Cooldown())
	proxy := common.NewProxy(map[string]string{"User-Agent": "opendaoc-bot"}, cfg.Fetch.Timeout(), rateLimiter)
	defer proxy.Close()
	fetcher := population.NewFetcher(proxy)

	// Metrics
	m := metrics.New()
	if cfg.Metrics.Listen != "" {
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.Listen); err != nil {
				log.Error().Err(err).Msg("Metrics listener stopped")
			}
		}()
	}

	// Create bot
	b, err := bot.NewBot(cfg.Discord.Token, cfg.Discord.Prefix, cfg.Fetch.Concurrency, reg, fetcher, chart.Render, m)
	if err != nil {
		return fmt.Errorf("could not create discord bot: %w", err)
	}

	// Run bot
	return b.Run(ctx)
}

func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
