package ports

import (
	"context"
	"time"

	"cambiototal/internal/core/domain"
)

//go:generate mockgen -source=repositories.go -destination=mocks/mocks.go -package=mocks
//go:generate mockgen -source=services.go -destination=mocks/service_mocks.go -package=mocks

// RateProvider fetches current market rates. Implementations cache results
// for a bounded TTL; Refresh drops the cache so the next read re-fetches.
type RateProvider interface {
	FiatRate(ctx context.Context) (*domain.FiatRate, error)
	CryptoPrices(ctx context.Context, assetIDs []string) (map[string]float64, error)
	Refresh(ctx context.Context) error
}

// RateCache is the TTL cache behind the rate provider.
type RateCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // nil, nil on miss
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// HashService verifies and hashes credential passwords.
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles session token operations.
type TokenService interface {
	Generate(username, name string, role domain.Role) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed session claims.
type TokenClaims struct {
	Username string
	Name     string
	Role     domain.Role
}

// --- Service Ports (Business Logic) ---

// AuthService defines login against the split user store.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

// LoginResult is a successful login: token plus the user's identity.
type LoginResult struct {
	Token    string
	Expiry   time.Time
	Username string
	Name     string
	Role     domain.Role
}

// LedgerService is the append-only write path: validate, price via current
// rates and settings, persist one immutable row.
type LedgerService interface {
	QuoteFiat(ctx context.Context, opType domain.OperationType, usdAmount float64) (*FiatQuote, error)
	SubmitFiat(ctx context.Context, operator string, opType domain.OperationType, usdAmount float64) (*domain.FiatTransaction, error)
	RecentFiat(ctx context.Context, operator string, limit int) ([]domain.FiatTransaction, error)

	QuoteCrypto(ctx context.Context, opType domain.OperationType, assetID string, cryptoAmount float64) (*CryptoQuote, error)
	SubmitCrypto(ctx context.Context, operator string, opType domain.OperationType, assetID string, cryptoAmount float64) (*domain.CryptoTransaction, error)
	RecentCrypto(ctx context.Context, operator string, limit int) ([]domain.CryptoTransaction, error)
}

// FiatQuote is a priced fiat operation before submission.
type FiatQuote struct {
	Type           domain.OperationType `json:"type"`
	AmountUSD      float64              `json:"amount_usd"`
	AmountARS      float64              `json:"amount_ars"`
	Rate           float64              `json:"rate"`
	PercentApplied float64              `json:"percent_applied"`
}

// CryptoQuote is a priced crypto operation before submission.
type CryptoQuote struct {
	Type           domain.OperationType `json:"type"`
	AssetID        string               `json:"asset_id"`
	CryptoAmount   float64              `json:"crypto_amount"`
	TotalARS       float64              `json:"total_ars"`
	USDPrice       float64              `json:"usd_price"`
	CryptoUSDRate  float64              `json:"crypto_usd_rate"`
	PercentApplied float64              `json:"percent_applied"`
}

// ReportingService aggregates ledger snapshots for the dashboards.
type ReportingService interface {
	FiatDashboard(ctx context.Context) (*FiatDashboard, error)
	CryptoDashboard(ctx context.Context) (*CryptoDashboard, error)
	Oversight(ctx context.Context) (*OversightReport, error)
}

// DailyVolume is one day's aggregated ARS volume.
type DailyVolume struct {
	Date      string  `json:"date"` // YYYY-MM-DD (UTC)
	AmountARS float64 `json:"amount_ars"`
}

// AssetVolume is one asset's aggregated ARS volume.
type AssetVolume struct {
	Asset     string  `json:"asset"`
	AmountARS float64 `json:"amount_ars"`
}

// FiatDashboard holds fiat KPI totals and chart-ready series.
type FiatDashboard struct {
	HasData          bool                     `json:"has_data"`
	TotalVolumeUSD   float64                  `json:"total_volume_usd"`
	TotalVolumeARS   float64                  `json:"total_volume_ars"`
	TotalProfitARS   float64                  `json:"total_profit_ars"`
	TransactionCount int                      `json:"transaction_count"`
	DailyVolume      []DailyVolume            `json:"daily_volume"`
	TypeCounts       map[string]int           `json:"type_counts"`
	Transactions     []domain.FiatTransaction `json:"transactions"`
}

// CryptoDashboard holds crypto KPI totals and chart-ready series.
type CryptoDashboard struct {
	HasData          bool                       `json:"has_data"`
	TotalVolumeARS   float64                    `json:"total_volume_ars"`
	TotalProfitARS   float64                    `json:"total_profit_ars"`
	TransactionCount int                        `json:"transaction_count"`
	DistinctAssets   int                        `json:"distinct_assets"`
	VolumeByAsset    []AssetVolume              `json:"volume_by_asset"`
	TypeCounts       map[string]int             `json:"type_counts"`
	Transactions     []domain.CryptoTransaction `json:"transactions"`
}

// OversightReport is the admin view over both ledgers.
type OversightReport struct {
	Fiat   []domain.FiatTransaction   `json:"fiat"`
	Crypto []domain.CryptoTransaction `json:"crypto"`
}

// SettingsService loads and mutates the typed pricing configuration.
type SettingsService interface {
	Load(ctx context.Context) (*domain.PricingSettings, error)
	Raw(ctx context.Context) (map[string]string, error)
	Update(ctx context.Context, values map[string]string) error
}

// UserService is the admin user-management surface. Create and Delete
// mutate the relational row and the credentials file as a unit.
type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, req CreateUserRequest) (*domain.User, error)
	Delete(ctx context.Context, actingUsername, username string) error
}

// CreateUserRequest holds validated input for user creation.
type CreateUserRequest struct {
	Username string
	Name     string
	Email    string
	Password string
	Role     domain.Role
}
