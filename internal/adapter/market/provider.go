package market

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cambiototal/config"
	"cambiototal/internal/core/domain"
	"cambiototal/internal/core/ports"
	"cambiototal/pkg/apperror"

	"github.com/rs/zerolog"
)

const fiatCacheKey = "fiat:usd_ars"

func cryptoCacheKey(assetID string) string {
	return "crypto:" + assetID
}

// CachedProvider implements ports.RateProvider: DolarAPI and CoinGecko
// behind a shared TTL cache. The cache is best-effort; a cache failure
// degrades to a live fetch, never to an error.
type CachedProvider struct {
	dolar     *DolarAPIClient
	coingecko *CoinGeckoClient
	cache     ports.RateCache
	fiatTTL   time.Duration
	cryptoTTL time.Duration
	log       zerolog.Logger
}

// NewCachedProvider wires the market clients from config.
func NewCachedProvider(cfg config.MarketConfig, cache ports.RateCache, log zerolog.Logger) *CachedProvider {
	httpClient := &http.Client{Timeout: cfg.FetchTimeout}
	return &CachedProvider{
		dolar:     NewDolarAPIClient(cfg.DolarAPIURL, httpClient),
		coingecko: NewCoinGeckoClient(cfg.CoinGeckoURL, httpClient),
		cache:     cache,
		fiatTTL:   cfg.FiatCacheTTL,
		cryptoTTL: cfg.CryptoCacheTTL,
		log:       log,
	}
}

// FiatRate returns the cached blue-market USD/ARS quote, fetching it when
// the cache is empty.
func (p *CachedProvider) FiatRate(ctx context.Context) (*domain.FiatRate, error) {
	if data, err := p.cache.Get(ctx, fiatCacheKey); err != nil {
		p.log.Warn().Err(err).Msg("rate cache unavailable, fetching fiat rate live")
	} else if data != nil {
		var rate domain.FiatRate
		if err := json.Unmarshal(data, &rate); err == nil {
			return &rate, nil
		}
	}

	rate, err := p.dolar.FiatRate(ctx)
	if err != nil {
		return nil, apperror.ErrFiatRateUnavailable(err)
	}

	if data, err := json.Marshal(rate); err == nil {
		if err := p.cache.Set(ctx, fiatCacheKey, data, p.fiatTTL); err != nil {
			p.log.Warn().Err(err).Msg("failed to cache fiat rate")
		}
	}
	return rate, nil
}

// CryptoPrices returns USD prices for the given asset ids, reading each
// asset from the cache and batching one fetch for the misses.
func (p *CachedProvider) CryptoPrices(ctx context.Context, assetIDs []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(assetIDs))
	var missing []string

	for _, id := range assetIDs {
		data, err := p.cache.Get(ctx, cryptoCacheKey(id))
		if err != nil {
			p.log.Warn().Err(err).Msg("rate cache unavailable, fetching crypto prices live")
			missing = append(missing, id)
			continue
		}
		if data == nil {
			missing = append(missing, id)
			continue
		}
		var price float64
		if err := json.Unmarshal(data, &price); err != nil {
			missing = append(missing, id)
			continue
		}
		prices[id] = price
	}

	if len(missing) == 0 {
		return prices, nil
	}

	fetched, err := p.coingecko.Prices(ctx, missing)
	if err != nil {
		return nil, apperror.ErrCryptoPriceUnavailable(err)
	}

	for id, price := range fetched {
		prices[id] = price
		if data, err := json.Marshal(price); err == nil {
			if err := p.cache.Set(ctx, cryptoCacheKey(id), data, p.cryptoTTL); err != nil {
				p.log.Warn().Err(err).Msg("failed to cache crypto price")
			}
		}
	}
	return prices, nil
}

// Refresh drops every cached rate so the next read re-fetches.
func (p *CachedProvider) Refresh(ctx context.Context) error {
	keys := []string{fiatCacheKey}
	for _, id := range domain.SupportedAssetIDs() {
		keys = append(keys, cryptoCacheKey(id))
	}
	return p.cache.Delete(ctx, keys...)
}
