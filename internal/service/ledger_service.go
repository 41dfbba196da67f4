package service

import (
	"context"
	"fmt"
	"time"

	"cambiototal/internal/core/domain"
	"cambiototal/internal/core/ports"
	"cambiototal/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

// LedgerServiceImpl implements ports.LedgerService: the validate → price →
// persist write path over both append-only ledgers.
type LedgerServiceImpl struct {
	fiatRepo    ports.FiatTransactionRepository
	cryptoRepo  ports.CryptoTransactionRepository
	rates       ports.RateProvider
	settingsSvc ports.SettingsService
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	fiatRepo ports.FiatTransactionRepository,
	cryptoRepo ports.CryptoTransactionRepository,
	rates ports.RateProvider,
	settingsSvc ports.SettingsService,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		fiatRepo:    fiatRepo,
		cryptoRepo:  cryptoRepo,
		rates:       rates,
		settingsSvc: settingsSvc,
		log:         log,
	}
}

// QuoteFiat prices a fiat operation without writing it.
func (s *LedgerServiceImpl) QuoteFiat(ctx context.Context, opType domain.OperationType, usdAmount float64) (*ports.FiatQuote, error) {
	if !opType.Valid() {
		return nil, apperror.ErrInvalidOperationType()
	}
	if usdAmount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	rate, err := s.rates.FiatRate(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.settingsSvc.Load(ctx)
	if err != nil {
		return nil, err
	}

	quote := &ports.FiatQuote{Type: opType, AmountUSD: usdAmount}
	if opType == domain.OperationCompra {
		quote.Rate = rate.Buy
		quote.PercentApplied = settings.FiatBuyCommissionPct
		quote.AmountARS = domain.FiatBuyPayoutARS(usdAmount, rate.Buy, settings.FiatBuyCommissionPct)
	} else {
		quote.Rate = rate.Sell
		quote.PercentApplied = settings.FiatSellSpreadPct
		quote.AmountARS = domain.FiatSellCollectARS(usdAmount, rate.Sell, settings.FiatSellSpreadPct)
	}
	return quote, nil
}

// SubmitFiat prices and persists one fiat ledger row.
func (s *LedgerServiceImpl) SubmitFiat(ctx context.Context, operator string, opType domain.OperationType, usdAmount float64) (*domain.FiatTransaction, error) {
	quote, err := s.QuoteFiat(ctx, opType, usdAmount)
	if err != nil {
		return nil, err
	}

	txn := &domain.FiatTransaction{
		Timestamp:               time.Now().UTC(),
		Type:                    opType,
		AmountUSD:               usdAmount,
		AmountARS:               quote.AmountARS,
		RateApplied:             quote.Rate,
		CommissionSpreadApplied: quote.PercentApplied,
		OperatorUsername:        operator,
	}
	if err := s.fiatRepo.Create(ctx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create fiat transaction: %w", err))
	}

	s.log.Info().
		Int64("id", txn.ID).
		Str("type", string(opType)).
		Float64("amount_usd", usdAmount).
		Float64("amount_ars", txn.AmountARS).
		Str("operator", operator).
		Msg("fiat transaction recorded")
	return txn, nil
}

// RecentFiat lists the operator's latest fiat rows, newest first.
func (s *LedgerServiceImpl) RecentFiat(ctx context.Context, operator string, limit int) ([]domain.FiatTransaction, error) {
	rows, err := s.fiatRepo.ListByOperator(ctx, operator, clampLimit(limit))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list fiat transactions: %w", err))
	}
	return rows, nil
}

// QuoteCrypto prices a crypto operation without writing it.
func (s *LedgerServiceImpl) QuoteCrypto(ctx context.Context, opType domain.OperationType, assetID string, cryptoAmount float64) (*ports.CryptoQuote, error) {
	if !opType.Valid() {
		return nil, apperror.ErrInvalidOperationType()
	}
	if cryptoAmount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if !domain.IsSupportedAsset(assetID) {
		return nil, apperror.ErrUnknownAsset(assetID)
	}

	prices, err := s.rates.CryptoPrices(ctx, []string{assetID})
	if err != nil {
		return nil, err
	}
	usdPrice, ok := prices[assetID]
	if !ok {
		return nil, apperror.ErrCryptoPriceUnavailable(fmt.Errorf("no price returned for %s", assetID))
	}

	settings, err := s.settingsSvc.Load(ctx)
	if err != nil {
		return nil, err
	}
	if settings.CryptoUSDRate <= 0 {
		return nil, apperror.Validation("crypto dollar rate is not configured")
	}

	quote := &ports.CryptoQuote{
		Type:          opType,
		AssetID:       assetID,
		CryptoAmount:  cryptoAmount,
		USDPrice:      usdPrice,
		CryptoUSDRate: settings.CryptoUSDRate,
	}
	if opType == domain.OperationCompra {
		quote.PercentApplied = settings.CryptoBuyCommissionPct
		quote.TotalARS = domain.CryptoBuyCollectARS(cryptoAmount, usdPrice, settings.CryptoUSDRate, settings.CryptoBuyCommissionPct)
	} else {
		quote.PercentApplied = settings.CryptoSellCommissionPct
		quote.TotalARS = domain.CryptoSellPayoutARS(cryptoAmount, usdPrice, settings.CryptoUSDRate, settings.CryptoSellCommissionPct)
	}
	return quote, nil
}

// SubmitCrypto prices and persists one crypto ledger row, pinning both the
// asset's USD price and the crypto-dollar rate in force.
func (s *LedgerServiceImpl) SubmitCrypto(ctx context.Context, operator string, opType domain.OperationType, assetID string, cryptoAmount float64) (*domain.CryptoTransaction, error) {
	quote, err := s.QuoteCrypto(ctx, opType, assetID, cryptoAmount)
	if err != nil {
		return nil, err
	}

	txn := &domain.CryptoTransaction{
		Timestamp:            time.Now().UTC(),
		Type:                 opType,
		CryptoName:           domain.SupportedAssets[assetID],
		CryptoAmount:         cryptoAmount,
		TotalARS:             quote.TotalARS,
		USDRateApplied:       quote.USDPrice,
		CryptoUSDRateApplied: quote.CryptoUSDRate,
		CommissionApplied:    quote.PercentApplied,
		OperatorUsername:     operator,
	}
	if err := s.cryptoRepo.Create(ctx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create crypto transaction: %w", err))
	}

	s.log.Info().
		Int64("id", txn.ID).
		Str("type", string(opType)).
		Str("asset", assetID).
		Float64("crypto_amount", cryptoAmount).
		Float64("total_ars", txn.TotalARS).
		Str("operator", operator).
		Msg("crypto transaction recorded")
	return txn, nil
}

// RecentCrypto lists the operator's latest crypto rows, newest first.
func (s *LedgerServiceImpl) RecentCrypto(ctx context.Context, operator string, limit int) ([]domain.CryptoTransaction, error) {
	rows, err := s.cryptoRepo.ListByOperator(ctx, operator, clampLimit(limit))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list crypto transactions: %w", err))
	}
	return rows, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultRecentLimit
	}
	if limit > maxRecentLimit {
		return maxRecentLimit
	}
	return limit
}
