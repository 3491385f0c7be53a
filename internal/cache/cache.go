package cache

import (
	"context"
	"time"

	"shipledger/backend/internal/domain"
)

type SettingsCache interface {
	Get(ctx context.Context) (*domain.Settings, bool, error)
	Set(ctx context.Context, value *domain.Settings, ttl time.Duration) error
	Delete(ctx context.Context) error
}

type NoopSettingsCache struct{}

func (NoopSettingsCache) Get(_ context.Context) (*domain.Settings, bool, error) {
	return nil, false, nil
}

func (NoopSettingsCache) Set(_ context.Context, _ *domain.Settings, _ time.Duration) error {
	return nil
}

func (NoopSettingsCache) Delete(_ context.Context) error {
	return nil
}
