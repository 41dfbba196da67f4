package service

import (
	"context"
	"fmt"
	"sort"

	"cambiototal/internal/core/domain"
	"cambiototal/internal/core/ports"
	"cambiototal/pkg/apperror"
)

// ReportingServiceImpl implements ports.ReportingService by reducing full
// ledger snapshots in memory. Totals are derived from pinned row values
// only, so a report over an unchanged ledger always yields the same KPIs.
type ReportingServiceImpl struct {
	fiatRepo   ports.FiatTransactionRepository
	cryptoRepo ports.CryptoTransactionRepository
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(fiatRepo ports.FiatTransactionRepository, cryptoRepo ports.CryptoTransactionRepository) *ReportingServiceImpl {
	return &ReportingServiceImpl{fiatRepo: fiatRepo, cryptoRepo: cryptoRepo}
}

// FiatDashboard aggregates the full fiat ledger.
func (s *ReportingServiceImpl) FiatDashboard(ctx context.Context) (*ports.FiatDashboard, error) {
	rows, err := s.fiatRepo.ListAll(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load fiat ledger: %w", err))
	}

	dash := &ports.FiatDashboard{
		HasData:      len(rows) > 0,
		TypeCounts:   map[string]int{},
		Transactions: rows,
	}
	if !dash.HasData {
		dash.DailyVolume = []ports.DailyVolume{}
		return dash, nil
	}

	daily := map[string]float64{}
	for i := range rows {
		r := &rows[i]
		dash.TotalVolumeUSD += r.AmountUSD
		dash.TotalVolumeARS += r.AmountARS
		dash.TotalProfitARS += r.ProfitARS()
		dash.TypeCounts[string(r.Type)]++
		daily[r.Timestamp.UTC().Format("2006-01-02")] += r.AmountARS
	}
	dash.TransactionCount = len(rows)
	dash.DailyVolume = sortedDailyVolume(daily)
	return dash, nil
}

// CryptoDashboard aggregates the full crypto ledger.
func (s *ReportingServiceImpl) CryptoDashboard(ctx context.Context) (*ports.CryptoDashboard, error) {
	rows, err := s.cryptoRepo.ListAll(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load crypto ledger: %w", err))
	}

	dash := &ports.CryptoDashboard{
		HasData:      len(rows) > 0,
		TypeCounts:   map[string]int{},
		Transactions: rows,
	}
	if !dash.HasData {
		dash.VolumeByAsset = []ports.AssetVolume{}
		return dash, nil
	}

	byAsset := map[string]float64{}
	for i := range rows {
		r := &rows[i]
		dash.TotalVolumeARS += r.TotalARS
		dash.TotalProfitARS += r.ProfitARS()
		dash.TypeCounts[string(r.Type)]++
		byAsset[r.CryptoName] += r.TotalARS
	}
	dash.TransactionCount = len(rows)
	dash.DistinctAssets = len(byAsset)
	dash.VolumeByAsset = sortedAssetVolume(byAsset)
	return dash, nil
}

// Oversight returns both full ledgers for the admin view.
func (s *ReportingServiceImpl) Oversight(ctx context.Context) (*ports.OversightReport, error) {
	fiat, err := s.fiatRepo.ListAll(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load fiat ledger: %w", err))
	}
	crypto, err := s.cryptoRepo.ListAll(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load crypto ledger: %w", err))
	}
	if fiat == nil {
		fiat = []domain.FiatTransaction{}
	}
	if crypto == nil {
		crypto = []domain.CryptoTransaction{}
	}
	return &ports.OversightReport{Fiat: fiat, Crypto: crypto}, nil
}

func sortedDailyVolume(daily map[string]float64) []ports.DailyVolume {
	out := make([]ports.DailyVolume, 0, len(daily))
	for date, amount := range daily {
		out = append(out, ports.DailyVolume{Date: date, AmountARS: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func sortedAssetVolume(byAsset map[string]float64) []ports.AssetVolume {
	out := make([]ports.AssetVolume, 0, len(byAsset))
	for asset, amount := range byAsset {
		out = append(out, ports.AssetVolume{Asset: asset, AmountARS: amount})
	}
	// Largest volume first; ties broken by name for stable output.
	sort.Slice(out, func(i, j int) bool {
		if out[i].AmountARS != out[j].AmountARS {
			return out[i].AmountARS > out[j].AmountARS
		}
		return out[i].Asset < out[j].Asset
	})
	return out
}
