package domain

// Setting keys for the pricing configuration.
const (
	SettingFiatBuyCommission    = "fiat_buy_commission_percent"
	SettingFiatSellSpread       = "fiat_sell_spread_percent"
	SettingCryptoBuyCommission  = "crypto_buy_commission_percent"
	SettingCryptoSellCommission = "crypto_sell_commission_percent"
	SettingCryptoUSDRate        = "crypto_usd_rate"
)

// SystemSetting is one key/value row. Values are decimals stored as text
// and overwritten in place; no history is kept.
type SystemSetting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PricingSettings is the typed view of the settings store, loaded once per
// request and threaded through the pricing path.
type PricingSettings struct {
	FiatBuyCommissionPct    float64 `json:"fiat_buy_commission_percent"`
	FiatSellSpreadPct       float64 `json:"fiat_sell_spread_percent"`
	CryptoBuyCommissionPct  float64 `json:"crypto_buy_commission_percent"`
	CryptoSellCommissionPct float64 `json:"crypto_sell_commission_percent"`
	CryptoUSDRate           float64 `json:"crypto_usd_rate"`
}

// FiatRate is the blue-market USD/ARS quote: what we pay per USD (Buy)
// and what we charge per USD (Sell).
type FiatRate struct {
	Buy  float64 `json:"buy"`
	Sell float64 `json:"sell"`
	Name string  `json:"name"`
}
