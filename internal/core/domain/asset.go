package domain

// SupportedAssets maps the CoinGecko asset id of each tradeable crypto to
// its display name. Operations referencing any other id are rejected.
var SupportedAssets = map[string]string{
	"bitcoin":     "Bitcoin (BTC)",
	"ethereum":    "Ethereum (ETH)",
	"tether":      "Tether (USDT)",
	"usd-coin":    "USD Coin (USDC)",
	"binancecoin": "BNB (BNB)",
	"solana":      "Solana (SOL)",
	"dai":         "Dai (DAI)",
}

// IsSupportedAsset reports whether id is a tradeable asset.
func IsSupportedAsset(id string) bool {
	_, ok := SupportedAssets[id]
	return ok
}

// SupportedAssetIDs returns the tradeable asset ids in no particular order.
func SupportedAssetIDs() []string {
	ids := make([]string, 0, len(SupportedAssets))
	for id := range SupportedAssets {
		ids = append(ids, id)
	}
	return ids
}
