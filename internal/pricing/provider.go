package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"shipledger/backend/internal/cache"
	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/logger"
	"shipledger/backend/internal/store"
)

// Provider serves the current settings through a read-through cache. The
// ledger never reads settings on its own; handlers take one PricingContext
// per request from here.
type Provider struct {
	repo     store.Repository
	cache    cache.SettingsCache
	cacheTTL time.Duration
	log      zerolog.Logger
}

func NewProvider(repo store.Repository, cacheStore cache.SettingsCache, cacheTTL time.Duration) *Provider {
	if cacheStore == nil {
		cacheStore = cache.NoopSettingsCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}

	return &Provider{
		repo:     repo,
		cache:    cacheStore,
		cacheTTL: cacheTTL,
		log:      logger.WithComponent("pricing"),
	}
}

// Settings returns the stored settings, or the defaults when none were saved.
func (p *Provider) Settings(ctx context.Context) (domain.Settings, error) {
	if cached, ok, err := p.cache.Get(ctx); err == nil && ok {
		return *cached, nil
	} else if err != nil {
		p.log.Warn().Err(err).Msg("settings cache read failed")
	}

	settings := domain.DefaultSettings()
	err := p.repo.InTx(ctx, func(tx store.Tx) error {
		stored, err := tx.GetSettings(ctx)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		settings = *stored
		return nil
	})
	if err != nil {
		return domain.Settings{}, err
	}

	if err := p.cache.Set(ctx, &settings, p.cacheTTL); err != nil {
		p.log.Warn().Err(err).Msg("settings cache write failed")
	}
	return settings, nil
}

func (p *Provider) Current(ctx context.Context) (domain.PricingContext, error) {
	settings, err := p.Settings(ctx)
	if err != nil {
		return domain.PricingContext{}, err
	}
	return settings.PricingContext(), nil
}

func (p *Provider) Invalidate(ctx context.Context) {
	if err := p.cache.Delete(ctx); err != nil {
		p.log.Warn().Err(err).Msg("settings cache invalidation failed")
	}
}
