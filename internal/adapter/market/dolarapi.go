package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"cambiototal/internal/core/domain"
)

// DolarAPIClient fetches the USD/ARS quote board from DolarAPI.
type DolarAPIClient struct {
	baseURL string
	client  *http.Client
}

// NewDolarAPIClient creates a DolarAPI client.
func NewDolarAPIClient(baseURL string, client *http.Client) *DolarAPIClient {
	return &DolarAPIClient{baseURL: baseURL, client: client}
}

type dolarEntry struct {
	Casa   string  `json:"casa"`
	Nombre string  `json:"nombre"`
	Compra float64 `json:"compra"`
	Venta  float64 `json:"venta"`
}

// FiatRate fetches the full quote board and returns the blue-market entry.
func (c *DolarAPIClient) FiatRate(ctx context.Context) (*domain.FiatRate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building dolarapi request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching dolarapi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dolarapi returned status %d", resp.StatusCode)
	}

	var entries []dolarEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding dolarapi response: %w", err)
	}

	for _, e := range entries {
		if e.Casa == "blue" {
			if e.Compra <= 0 || e.Venta <= 0 {
				return nil, fmt.Errorf("dolarapi blue entry has invalid rates (compra=%v venta=%v)", e.Compra, e.Venta)
			}
			return &domain.FiatRate{Buy: e.Compra, Sell: e.Venta, Name: e.Nombre}, nil
		}
	}
	return nil, fmt.Errorf("dolarapi response has no blue entry")
}
