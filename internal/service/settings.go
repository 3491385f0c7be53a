package service

import (
	"context"
	"errors"
	"fmt"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/store"
)

func (s *Service) GetSettings(ctx context.Context) (domain.Settings, error) {
	return s.pricing.Settings(ctx)
}

// UpdateSettings applies the fields present in req, creating the row from
// defaults on first use.
func (s *Service) UpdateSettings(ctx context.Context, req domain.SettingsUpdateRequest) (domain.Settings, error) {
	if req.ExchangeRate != nil && !req.ExchangeRate.IsPositive() {
		return domain.Settings{}, fmt.Errorf("%w: exchange rate must be positive", store.ErrInvalidTransaction)
	}
	if (req.ShippingCostUSD != nil && req.ShippingCostUSD.IsNegative()) || (req.ShippingPriceUSD != nil && req.ShippingPriceUSD.IsNegative()) {
		return domain.Settings{}, fmt.Errorf("%w: shipping rates must not be negative", store.ErrInvalidTransaction)
	}

	var saved domain.Settings
	err := s.run(ctx, "update_settings", func(tx store.Tx) error {
		settings := domain.DefaultSettings()
		current, err := tx.GetSettings(ctx)
		if err == nil {
			settings = *current
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if req.ExchangeRate != nil {
			settings.ExchangeRate = *req.ExchangeRate
		}
		if req.ShippingCostUSD != nil {
			settings.ShippingCostUSD = *req.ShippingCostUSD
		}
		if req.ShippingPriceUSD != nil {
			settings.ShippingPriceUSD = *req.ShippingPriceUSD
		}
		settings.UpdatedAt = s.now()
		if err := tx.SaveSettings(ctx, settings); err != nil {
			return err
		}
		saved = settings
		return nil
	})
	if err != nil {
		return domain.Settings{}, err
	}

	s.pricing.Invalidate(ctx)
	if !domain.UsableRate(saved.ExchangeRate) {
		s.log.Warn().Str("rate", saved.ExchangeRate.String()).Msg("exchange rate at or below 1, USD conversions will be refused")
	}
	s.logAudit(ctx, "settings_update", "settings", "global", fmt.Sprintf("rate=%s,cost=%s,price=%s", saved.ExchangeRate, saved.ShippingCostUSD, saved.ShippingPriceUSD))
	return saved, nil
}
