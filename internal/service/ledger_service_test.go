package service

import (
	"context"
	"errors"
	"testing"

	"cambiototal/internal/core/domain"
	"cambiototal/internal/core/ports/mocks"
	"cambiototal/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type ledgerFixture struct {
	fiatRepo    *mocks.MockFiatTransactionRepository
	cryptoRepo  *mocks.MockCryptoTransactionRepository
	rates       *mocks.MockRateProvider
	settingsSvc *mocks.MockSettingsService
	svc         *LedgerServiceImpl
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	ctrl := gomock.NewController(t)
	f := &ledgerFixture{
		fiatRepo:    mocks.NewMockFiatTransactionRepository(ctrl),
		cryptoRepo:  mocks.NewMockCryptoTransactionRepository(ctrl),
		rates:       mocks.NewMockRateProvider(ctrl),
		settingsSvc: mocks.NewMockSettingsService(ctrl),
	}
	f.svc = NewLedgerService(f.fiatRepo, f.cryptoRepo, f.rates, f.settingsSvc, zerolog.Nop())
	return f
}

func defaultSettings() *domain.PricingSettings {
	return &domain.PricingSettings{
		FiatBuyCommissionPct:    0.5,
		FiatSellSpreadPct:       0.5,
		CryptoBuyCommissionPct:  1,
		CryptoSellCommissionPct: 1,
		CryptoUSDRate:           1150,
	}
}

func TestLedgerService_QuoteFiat_Compra(t *testing.T) {
	f := newLedgerFixture(t)
	f.rates.EXPECT().FiatRate(gomock.Any()).Return(&domain.FiatRate{Buy: 1000, Sell: 1050}, nil)
	f.settingsSvc.EXPECT().Load(gomock.Any()).Return(defaultSettings(), nil)

	quote, err := f.svc.QuoteFiat(context.Background(), domain.OperationCompra, 100)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, quote.Rate)
	assert.Equal(t, 0.5, quote.PercentApplied)
	assert.Equal(t, 99500.00, quote.AmountARS)
}

func TestLedgerService_QuoteFiat_Venta(t *testing.T) {
	f := newLedgerFixture(t)
	f.rates.EXPECT().FiatRate(gomock.Any()).Return(&domain.FiatRate{Buy: 1000, Sell: 1050}, nil)
	f.settingsSvc.EXPECT().Load(gomock.Any()).Return(defaultSettings(), nil)

	quote, err := f.svc.QuoteFiat(context.Background(), domain.OperationVenta, 50)
	require.NoError(t, err)
	assert.Equal(t, 1050.0, quote.Rate)
	assert.Equal(t, 52762.50, quote.AmountARS)
}

func TestLedgerService_QuoteFiat_Validation(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.svc.QuoteFiat(ctx, "swap", 100)
	requireAppError(t, err, "TX_002")

	_, err = f.svc.QuoteFiat(ctx, domain.OperationCompra, 0)
	requireAppError(t, err, "TX_001")

	_, err = f.svc.QuoteFiat(ctx, domain.OperationCompra, -5)
	requireAppError(t, err, "TX_001")
}

func TestLedgerService_QuoteFiat_MinimalAmountAccepted(t *testing.T) {
	f := newLedgerFixture(t)
	f.rates.EXPECT().FiatRate(gomock.Any()).Return(&domain.FiatRate{Buy: 1000, Sell: 1050}, nil)
	f.settingsSvc.EXPECT().Load(gomock.Any()).Return(defaultSettings(), nil)

	_, err := f.svc.QuoteFiat(context.Background(), domain.OperationCompra, 0.01)
	assert.NoError(t, err)
}

func TestLedgerService_SubmitFiat(t *testing.T) {
	f := newLedgerFixture(t)
	f.rates.EXPECT().FiatRate(gomock.Any()).Return(&domain.FiatRate{Buy: 1000, Sell: 1050}, nil)
	f.settingsSvc.EXPECT().Load(gomock.Any()).Return(defaultSettings(), nil)
	f.fiatRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, txn *domain.FiatTransaction) error {
			txn.ID = 42
			return nil
		})

	txn, err := f.svc.SubmitFiat(context.Background(), "juan_operador", domain.OperationCompra, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(42), txn.ID)
	assert.Equal(t, 99500.00, txn.AmountARS)
	assert.Equal(t, 1000.0, txn.RateApplied)
	assert.Equal(t, 0.5, txn.CommissionSpreadApplied)
	assert.Equal(t, "juan_operador", txn.OperatorUsername)
	assert.False(t, txn.Timestamp.IsZero())
	assert.Equal(t, "UTC", txn.Timestamp.Location().String())
}

func TestLedgerService_SubmitFiat_RateUnavailableBlocksWrite(t *testing.T) {
	f := newLedgerFixture(t)
	f.rates.EXPECT().FiatRate(gomock.Any()).Return(nil, assertableFXError())

	// No Create expectation: the write must not happen.
	_, err := f.svc.SubmitFiat(context.Background(), "juan_operador", domain.OperationCompra, 100)
	requireAppError(t, err, "FX_001")
}

func assertableFXError() *apperror.AppError {
	return apperror.ErrFiatRateUnavailable(errors.New("upstream down"))
}

func TestLedgerService_QuoteCrypto_Compra(t *testing.T) {
	f := newLedgerFixture(t)
	f.rates.EXPECT().CryptoPrices(gomock.Any(), []string{"bitcoin"}).
		Return(map[string]float64{"bitcoin": 64000}, nil)
	f.settingsSvc.EXPECT().Load(gomock.Any()).Return(defaultSettings(), nil)

	quote, err := f.svc.QuoteCrypto(context.Background(), domain.OperationCompra, "bitcoin", 0.5)
	require.NoError(t, err)
	assert.Equal(t, 64000.0, quote.USDPrice)
	assert.Equal(t, 1150.0, quote.CryptoUSDRate)
	// 0.5 * 64000 * 1150 * 1.01
	assert.Equal(t, 37168000.00, quote.TotalARS)
}

func TestLedgerService_QuoteCrypto_UnknownAsset(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.svc.QuoteCrypto(context.Background(), domain.OperationCompra, "dogecoin", 1)
	requireAppError(t, err, "FX_003")
}

func TestLedgerService_QuoteCrypto_MissingRate(t *testing.T) {
	f := newLedgerFixture(t)
	f.rates.EXPECT().CryptoPrices(gomock.Any(), []string{"tether"}).
		Return(map[string]float64{}, nil)

	_, err := f.svc.QuoteCrypto(context.Background(), domain.OperationCompra, "tether", 100)
	requireAppError(t, err, "FX_002")
}

func TestLedgerService_SubmitCrypto_PinsRates(t *testing.T) {
	f := newLedgerFixture(t)
	f.rates.EXPECT().CryptoPrices(gomock.Any(), []string{"ethereum"}).
		Return(map[string]float64{"ethereum": 3000}, nil)
	f.settingsSvc.EXPECT().Load(gomock.Any()).Return(defaultSettings(), nil)
	f.cryptoRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, txn *domain.CryptoTransaction) error {
			txn.ID = 7
			return nil
		})

	txn, err := f.svc.SubmitCrypto(context.Background(), "juan_operador", domain.OperationVenta, "ethereum", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(7), txn.ID)
	assert.Equal(t, "Ethereum (ETH)", txn.CryptoName)
	assert.Equal(t, 3000.0, txn.USDRateApplied)
	assert.Equal(t, 1150.0, txn.CryptoUSDRateApplied)
	assert.Equal(t, 1.0, txn.CommissionApplied)
	// 2 * 3000 * 1150 * 0.99
	assert.Equal(t, 6831000.00, txn.TotalARS)
}

func TestLedgerService_RecentDefaults(t *testing.T) {
	f := newLedgerFixture(t)
	f.fiatRepo.EXPECT().ListByOperator(gomock.Any(), "juan_operador", 10).
		Return([]domain.FiatTransaction{}, nil)

	rows, err := f.svc.RecentFiat(context.Background(), "juan_operador", 0)
	require.NoError(t, err)
	assert.Empty(t, rows)

	f.cryptoRepo.EXPECT().ListByOperator(gomock.Any(), "juan_operador", 100).
		Return([]domain.CryptoTransaction{}, nil)

	_, err = f.svc.RecentCrypto(context.Background(), "juan_operador", 5000)
	require.NoError(t, err)
}
