package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/albapepper/fantasy-playbook/internal/cache"
	"github.com/albapepper/fantasy-playbook/internal/calendar"
	"github.com/albapepper/fantasy-playbook/internal/config"
	"github.com/albapepper/fantasy-playbook/internal/playbook"
	"github.com/albapepper/fantasy-playbook/internal/projection"
	"github.com/albapepper/fantasy-playbook/internal/provider/nbastats"
	"github.com/albapepper/fantasy-playbook/internal/provider/yahoo"
	"github.com/albapepper/fantasy-playbook/internal/resolver"
	"github.com/albapepper/fantasy-playbook/internal/roster"
	"github.com/albapepper/fantasy-playbook/internal/stats"
)

// app is everything a subcommand needs, built once from configuration.
type app struct {
	cfg      *config.Config
	store    cache.Store
	registry *resolver.Registry
	svc      *playbook.Service
	close    func()
}

// buildApp wires providers, registry, fetcher and aggregator. The fantasy
// provider is optional; without credentials only explicit rosters and
// name resolution work.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, closeStore, err := buildCache(cfg)
	if err != nil {
		return nil, err
	}

	statsClient := nbastats.NewClient(nbastats.Config{
		BaseURL:           cfg.NBAStatsBaseURL,
		Season:            cfg.NBASeason,
		RequestsPerMinute: cfg.NBAStatsRequestsPerMin,
		Timeout:           cfg.NBAStatsTimeout,
		MaxRetries:        cfg.NBAStatsMaxRetries,
		Cache:             store,
		Logger:            logger,
	})
	logger.Info("Statistics client ready", "season", statsClient.Season())

	registry := resolver.NewRegistry(statsClient, logger)
	fetcher := stats.NewFetcher(statsClient, logger)
	aggregator := projection.NewAggregator(fetcher, cfg.FetchWorkers, logger)

	var rosters playbook.Rosters
	if cfg.HasYahooCredentials() {
		httpClient, err := yahoo.NewHTTPClient(ctx, oauthConfig(cfg), logger)
		if errors.Is(err, yahoo.ErrNoToken) {
			closeStore()
			return nil, fmt.Errorf("%w (run `playbook auth url` then `playbook auth exchange CODE`)", err)
		}
		if err != nil {
			closeStore()
			return nil, fmt.Errorf("yahoo session: %w", err)
		}
		fantasy := yahoo.NewClient(yahoo.Config{
			BaseURL:    cfg.YahooBaseURL,
			GameCode:   cfg.YahooGameCode,
			HTTPClient: httpClient,
			MaxRetries: cfg.NBAStatsMaxRetries,
			Cache:      store,
			Logger:     logger,
		})
		rosters = roster.NewAdapter(fantasy, logger)
	} else {
		logger.Info("Fantasy provider disabled (no YAHOO_CLIENT_ID/YAHOO_CLIENT_SECRET)")
	}

	svc := playbook.New(rosters, registry, aggregator, playbook.Options{
		Lookback: cfg.LookbackGames,
		Clock:    calendar.InLocation(cfg.Location),
		Logger:   logger,
	})
	return &app{cfg: cfg, store: store, registry: registry, svc: svc, close: closeStore}, nil
}

func buildCache(cfg *config.Config) (cache.Store, func(), error) {
	if cfg.CacheEnabled && cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(cfg.RedisURL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("Cache initialized", "backend", "redis")
		return rc, func() { rc.Close() }, nil
	}
	mc := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "backend", "memory", "enabled", cfg.CacheEnabled)
	return mc, mc.Close, nil
}

func oauthConfig(cfg *config.Config) yahoo.OAuthConfig {
	return yahoo.OAuthConfig{
		ClientID:     cfg.YahooClientID,
		ClientSecret: cfg.YahooClientSecret,
		TokenFile:    cfg.YahooTokenFile,
	}
}

// shutdownSignals cancel a running command. Container runtimes send SIGTERM.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// runApp handles config loading, wiring, and context cancellation.
func runApp(fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	return fn(ctx, a)
}
