package domain

import "time"

// OperationType distinguishes buy from sell operations.
//
// For fiat rows the type is recorded from the business's perspective
// ("compra" = we buy USD from the client); for crypto rows it is recorded
// from the client's perspective ("compra" = the client buys crypto).
// This matches the historical ledger and must not be flipped.
type OperationType string

const (
	OperationCompra OperationType = "compra"
	OperationVenta  OperationType = "venta"
)

// Valid reports whether the operation type is known.
func (o OperationType) Valid() bool {
	return o == OperationCompra || o == OperationVenta
}

// FiatTransaction is one immutable USD↔ARS ledger row. The rate and
// commission/spread used at submission time are pinned on the row so later
// setting changes never rewrite historical figures.
type FiatTransaction struct {
	ID                      int64         `json:"id"`
	Timestamp               time.Time     `json:"timestamp"`
	Type                    OperationType `json:"type"`
	AmountUSD               float64       `json:"amount_usd"`
	AmountARS               float64       `json:"amount_ars"`
	RateApplied             float64       `json:"rate_applied"`
	CommissionSpreadApplied float64       `json:"commission_spread_applied"`
	OperatorUsername        string        `json:"operator_username"`
}

// ProfitARS returns the gross profit of the row: the commission/spread
// portion of the traded amount, regardless of direction.
func (t *FiatTransaction) ProfitARS() float64 {
	return round2(t.AmountUSD * t.RateApplied * (t.CommissionSpreadApplied / 100))
}

// CryptoTransaction is one immutable crypto ledger row. Both the asset's
// USD price and the admin-configured crypto-dollar rate in force at
// submission time are pinned on the row.
type CryptoTransaction struct {
	ID                   int64         `json:"id"`
	Timestamp            time.Time     `json:"timestamp"`
	Type                 OperationType `json:"type"`
	CryptoName           string        `json:"crypto_name"`
	CryptoAmount         float64       `json:"crypto_amount"`
	TotalARS             float64       `json:"total_ars"`
	USDRateApplied       float64       `json:"usd_rate_applied"`
	CryptoUSDRateApplied float64       `json:"crypto_usd_rate_applied"`
	CommissionApplied    float64       `json:"commission_applied"`
	OperatorUsername     string        `json:"operator_username"`
}

// ProfitARS returns the gross profit of the row using the crypto-dollar
// rate pinned at submission time.
func (t *CryptoTransaction) ProfitARS() float64 {
	return round2(t.CryptoAmount * t.USDRateApplied * t.CryptoUSDRateApplied * (t.CommissionApplied / 100))
}
