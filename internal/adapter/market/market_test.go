package market_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cambiototal/config"
	"cambiototal/internal/adapter/market"
	redisstore "cambiototal/internal/adapter/storage/redis"
	"cambiototal/pkg/apperror"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dolarBoard = `[
	{"casa":"oficial","nombre":"Oficial","compra":900,"venta":940},
	{"casa":"blue","nombre":"Blue","compra":1000,"venta":1050}
]`

func newProvider(t *testing.T, dolarURL, geckoURL string) (*market.CachedProvider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	cache := redisstore.NewRateCache(client)

	cfg := config.MarketConfig{
		DolarAPIURL:    dolarURL,
		CoinGeckoURL:   geckoURL,
		FetchTimeout:   2 * time.Second,
		FiatCacheTTL:   5 * time.Minute,
		CryptoCacheTTL: time.Minute,
	}
	return market.NewCachedProvider(cfg, cache, zerolog.Nop()), mr
}

func TestCachedProvider_FiatRate(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(dolarBoard))
	}))
	defer srv.Close()

	provider, _ := newProvider(t, srv.URL, "http://unused.invalid")
	ctx := context.Background()

	rate, err := provider.FiatRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, rate.Buy)
	assert.Equal(t, 1050.0, rate.Sell)

	// Second read is served from cache.
	rate, err = provider.FiatRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, rate.Buy)
	assert.Equal(t, int64(1), calls.Load())
}

func TestCachedProvider_FiatRate_NoBlueEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"casa":"oficial","compra":900,"venta":940}]`))
	}))
	defer srv.Close()

	provider, _ := newProvider(t, srv.URL, "http://unused.invalid")

	_, err := provider.FiatRate(context.Background())
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "FX_001", appErr.Code)
}

func TestCachedProvider_FiatRate_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	provider, _ := newProvider(t, srv.URL, "http://unused.invalid")

	_, err := provider.FiatRate(context.Background())
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "FX_001", appErr.Code)
}

func TestCachedProvider_CryptoPrices(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.Write([]byte(`{"bitcoin":{"usd":64000},"ethereum":{"usd":3100.5}}`))
	}))
	defer srv.Close()

	provider, _ := newProvider(t, "http://unused.invalid", srv.URL)
	ctx := context.Background()

	prices, err := provider.CryptoPrices(ctx, []string{"bitcoin", "ethereum"})
	require.NoError(t, err)
	assert.Equal(t, 64000.0, prices["bitcoin"])
	assert.Equal(t, 3100.5, prices["ethereum"])

	// Cached: no second upstream call.
	prices, err = provider.CryptoPrices(ctx, []string{"bitcoin", "ethereum"})
	require.NoError(t, err)
	assert.Len(t, prices, 2)
	assert.Equal(t, int64(1), calls.Load())
}

func TestCachedProvider_CryptoPrices_CacheExpiry(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"bitcoin":{"usd":64000}}`))
	}))
	defer srv.Close()

	provider, mr := newProvider(t, "http://unused.invalid", srv.URL)
	ctx := context.Background()

	_, err := provider.CryptoPrices(ctx, []string{"bitcoin"})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = provider.CryptoPrices(ctx, []string{"bitcoin"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestCachedProvider_Refresh(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(dolarBoard))
	}))
	defer srv.Close()

	provider, _ := newProvider(t, srv.URL, "http://unused.invalid")
	ctx := context.Background()

	_, err := provider.FiatRate(ctx)
	require.NoError(t, err)

	require.NoError(t, provider.Refresh(ctx))

	_, err = provider.FiatRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load(), "refresh should force a re-fetch")
}
