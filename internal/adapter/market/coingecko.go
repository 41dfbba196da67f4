package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// CoinGeckoClient fetches USD spot prices from the CoinGecko simple-price API.
type CoinGeckoClient struct {
	baseURL string
	client  *http.Client
}

// NewCoinGeckoClient creates a CoinGecko client.
func NewCoinGeckoClient(baseURL string, client *http.Client) *CoinGeckoClient {
	return &CoinGeckoClient{baseURL: baseURL, client: client}
}

// Prices fetches USD prices for the given asset ids in one call. Ids absent
// from the response are absent from the result map.
func (c *CoinGeckoClient) Prices(ctx context.Context, assetIDs []string) (map[string]float64, error) {
	if len(assetIDs) == 0 {
		return map[string]float64{}, nil
	}

	q := url.Values{}
	q.Set("ids", strings.Join(assetIDs, ","))
	q.Set("vs_currencies", "usd")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building coingecko request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching coingecko: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	var body map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding coingecko response: %w", err)
	}

	prices := make(map[string]float64, len(body))
	for id, quote := range body {
		if usd, ok := quote["usd"]; ok && usd > 0 {
			prices[id] = usd
		}
	}
	return prices, nil
}
