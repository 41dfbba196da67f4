package domain

import "math"

// Pricing formulas. All results are rounded to ARS cents. Input validation
// (positive quantities, positive rates) happens before these are called;
// the functions themselves are total.

// FiatBuyPayoutARS is what we pay a client selling us USD: the buy rate
// less our commission.
func FiatBuyPayoutARS(usdAmount, buyRate, commissionPct float64) float64 {
	return round2(usdAmount * buyRate * (1 - commissionPct/100))
}

// FiatSellCollectARS is what we charge a client buying USD from us: the
// sell rate plus our spread.
func FiatSellCollectARS(usdAmount, sellRate, spreadPct float64) float64 {
	return round2(usdAmount * sellRate * (1 + spreadPct/100))
}

// CryptoBuyCollectARS is what we charge a client buying crypto. The ARS
// total goes through the admin-configured crypto-dollar rate, not the live
// fiat rate.
func CryptoBuyCollectARS(cryptoAmount, usdPrice, cryptoUSDRate, commissionPct float64) float64 {
	return round2(cryptoAmount * usdPrice * cryptoUSDRate * (1 + commissionPct/100))
}

// CryptoSellPayoutARS is what we pay a client selling us crypto.
func CryptoSellPayoutARS(cryptoAmount, usdPrice, cryptoUSDRate, commissionPct float64) float64 {
	return round2(cryptoAmount * usdPrice * cryptoUSDRate * (1 - commissionPct/100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
