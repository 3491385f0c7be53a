package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"shipledger/backend/internal/cache"
	"shipledger/backend/internal/config"
	"shipledger/backend/internal/httpapi"
	"shipledger/backend/internal/logger"
	"shipledger/backend/internal/metrics"
	"shipledger/backend/internal/pricing"
	"shipledger/backend/internal/service"
	"shipledger/backend/internal/store"
	"shipledger/backend/internal/store/memory"
	pgstore "shipledger/backend/internal/store/postgres"
)

func main() {
	cfg := config.Load()

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Format = cfg.LogFormat
	if err := logger.Setup(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log configuration: %v\n", err)
		os.Exit(1)
	}

	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid security configuration")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	var pg *pgstore.Store
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		var err error
		pg, err = pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres unavailable and DATABASE_URL is set; refusing to start with in-memory fallback")
		}
		if cfg.RunMigrations {
			if err := pgstore.RunMigrations(pg.DB()); err != nil {
				log.Fatal().Err(err).Msg("database migration failed")
			}
			log.Info().Msg("migrations applied")
		}
		repo = pg
		closers = append(closers, pg.Close)
		log.Info().Str("repository", "postgres").Msg("store ready")
	} else {
		repo = memory.NewSeeded()
		log.Info().Str("repository", "memory").Msg("store ready")
	}

	settingsCache := cache.SettingsCache(cache.NoopSettingsCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisSettingsCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, using noop settings cache")
		} else {
			settingsCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Info().Str("cache", "redis").Msg("settings cache ready")
		}
	} else {
		log.Info().Str("cache", "noop").Msg("settings cache ready")
	}

	var ledgerMetrics *metrics.Ledger
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		ledgerMetrics = metrics.Default()
		metricsHandler = promhttp.Handler()
	}

	provider := pricing.NewProvider(repo, settingsCache, time.Duration(cfg.SettingsCacheTTLSeconds)*time.Second)
	svc := service.New(repo, provider, ledgerMetrics)
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, repo)
	if pg != nil {
		if err := auth.EnsureStaff(ctx, cfg.SeedAdminPassword, cfg.SeedManagerPassword); err != nil {
			log.Fatal().Err(err).Msg("failed to seed staff accounts")
		}
	}
	api := httpapi.New(svc, auth, cfg.AllowedOrigin, metricsHandler)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Address()).Msg("ledger backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Error().Err(err).Msg("close error")
		}
	}

	log.Info().Msg("server stopped")
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if cfg.SeedAdminPassword != "" && len(cfg.SeedAdminPassword) < 8 {
		return fmt.Errorf("SEED_ADMIN_PASSWORD must be at least 8 characters")
	}
	if cfg.SeedManagerPassword != "" && len(cfg.SeedManagerPassword) < 8 {
		return fmt.Errorf("SEED_MANAGER_PASSWORD must be at least 8 characters")
	}
	return nil
}
