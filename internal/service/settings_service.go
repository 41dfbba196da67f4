package service

import (
	"context"
	"fmt"

	"cambiototal/internal/core/domain"
	"cambiototal/internal/core/ports"
	"cambiototal/pkg/apperror"

	"github.com/shopspring/decimal"
)

// knownSettingKeys is the closed set of pricing settings.
var knownSettingKeys = map[string]bool{
	domain.SettingFiatBuyCommission:    true,
	domain.SettingFiatSellSpread:       true,
	domain.SettingCryptoBuyCommission:  true,
	domain.SettingCryptoSellCommission: true,
	domain.SettingCryptoUSDRate:        true,
}

// SettingsServiceImpl implements ports.SettingsService over the key/value
// settings store.
type SettingsServiceImpl struct {
	repo ports.SettingsRepository
}

// NewSettingsService creates a new SettingsServiceImpl.
func NewSettingsService(repo ports.SettingsRepository) *SettingsServiceImpl {
	return &SettingsServiceImpl{repo: repo}
}

// Load reads the settings store into the typed pricing record. Missing keys
// default to zero percentages and a zero rate; callers of the crypto path
// treat a non-positive rate as a configuration error.
func (s *SettingsServiceImpl) Load(ctx context.Context) (*domain.PricingSettings, error) {
	raw, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load settings: %w", err))
	}

	settings := &domain.PricingSettings{}
	fields := map[string]*float64{
		domain.SettingFiatBuyCommission:    &settings.FiatBuyCommissionPct,
		domain.SettingFiatSellSpread:       &settings.FiatSellSpreadPct,
		domain.SettingCryptoBuyCommission:  &settings.CryptoBuyCommissionPct,
		domain.SettingCryptoSellCommission: &settings.CryptoSellCommissionPct,
		domain.SettingCryptoUSDRate:        &settings.CryptoUSDRate,
	}
	for key, target := range fields {
		value, ok := raw[key]
		if !ok {
			continue
		}
		d, err := decimal.NewFromString(value)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("stored setting %s is not a decimal: %w", key, err))
		}
		*target, _ = d.Float64()
	}
	return settings, nil
}

// Raw returns the stored key/value pairs as-is.
func (s *SettingsServiceImpl) Raw(ctx context.Context) (map[string]string, error) {
	raw, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load settings: %w", err))
	}
	return raw, nil
}

// Update validates and overwrites the submitted settings. The whole batch
// is validated before any key is written; a validation failure changes
// nothing.
func (s *SettingsServiceImpl) Update(ctx context.Context, values map[string]string) error {
	normalized := make(map[string]string, len(values))
	for key, value := range values {
		if !knownSettingKeys[key] {
			return apperror.ErrUnknownSettingKey(key)
		}
		d, err := decimal.NewFromString(value)
		if err != nil {
			return apperror.ErrInvalidSettingValue(key)
		}
		if d.IsNegative() {
			return apperror.ErrInvalidSettingValue(key)
		}
		if key == domain.SettingCryptoUSDRate && !d.IsPositive() {
			return apperror.ErrInvalidSettingValue(key)
		}
		// Canonical two-decimal text so stored values round-trip losslessly.
		normalized[key] = d.StringFixed(2)
	}

	for key, value := range normalized {
		if err := s.repo.Upsert(ctx, key, value); err != nil {
			return apperror.InternalError(fmt.Errorf("store setting %s: %w", key, err))
		}
	}
	return nil
}
