package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	httpHandler "cambiototal/internal/adapter/http/handler"
	"cambiototal/internal/adapter/storage/credfile"
	redisStorage "cambiototal/internal/adapter/storage/redis"
	"cambiototal/internal/core/domain"
	"cambiototal/internal/core/ports"
	"cambiototal/internal/service"
	"cambiototal/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds a full application stack: real HTTP layer, middleware,
// handlers and services over in-memory repos, a real YAML credentials file
// in a temp dir, miniredis behind the rate limiter, and a stubbed market
// data provider.

type testApp struct {
	server     *httptest.Server
	redis      *miniredis.Miniredis
	userRepo   *inMemoryUserRepo
	fiatRepo   *inMemoryFiatRepo
	cryptoRepo *inMemoryCryptoRepo
	credStore  *credfile.Store
	provider   *stubRateProvider
}

const credFileTemplate = `credentials:
  usernames: {}
cookie:
  name: cambiototal_session
  key: integration-test-signing-key
  expiry_days: 1
preauthorized:
  emails: []
`

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	credPath := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(credPath, []byte(credFileTemplate), 0o600))
	credStore := credfile.NewStore(credPath)

	userRepo := newInMemoryUserRepo()
	fiatRepo := newInMemoryFiatRepo()
	cryptoRepo := newInMemoryCryptoRepo()
	settingsRepo := newInMemorySettingsRepo(map[string]string{
		"fiat_buy_commission_percent":    "0.50",
		"fiat_sell_spread_percent":       "0.50",
		"crypto_buy_commission_percent":  "1.00",
		"crypto_sell_commission_percent": "1.00",
		"crypto_usd_rate":                "1150.00",
	})
	transactor := newInMemoryTransactor()
	provider := newStubRateProvider()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	hashSvc := service.NewBcryptHashService()
	tokenSvc := service.NewJWTTokenService("integration-test-signing-key", 24*time.Hour, "cambiototal")
	log := logger.New("debug", false)

	authSvc := service.NewAuthService(credStore, userRepo, hashSvc, tokenSvc)
	settingsSvc := service.NewSettingsService(settingsRepo)
	ledgerSvc := service.NewLedgerService(fiatRepo, cryptoRepo, provider, settingsSvc, log)
	reportingSvc := service.NewReportingService(fiatRepo, cryptoRepo)
	userSvc := service.NewUserService(userRepo, fiatRepo, cryptoRepo, credStore, transactor, hashSvc, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		LedgerSvc:      ledgerSvc,
		ReportingSvc:   reportingSvc,
		SettingsSvc:    settingsSvc,
		UserSvc:        userSvc,
		RateProvider:   provider,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		Logger:         log,
	})

	app := &testApp{
		server:     httptest.NewServer(router),
		redis:      mr,
		userRepo:   userRepo,
		fiatRepo:   fiatRepo,
		cryptoRepo: cryptoRepo,
		credStore:  credStore,
		provider:   provider,
	}
	t.Cleanup(app.server.Close)

	// Seed the default admin and operator through both stores.
	app.seedUser(t, hashSvc, "agustin_admin", "Agustín (Admin)", "agustin@cambiototal.com", domain.RoleAdmin, "admin123")
	app.seedUser(t, hashSvc, "juan_operador", "Juan (Operador)", "juan@cambiototal.com", domain.RoleOperator, "operador123")

	return app
}

func (a *testApp) seedUser(t *testing.T, hashSvc ports.HashService, username, name, email string, role domain.Role, password string) {
	t.Helper()
	hash, err := hashSvc.Hash(password)
	require.NoError(t, err)
	tx, err := newInMemoryTransactor().Begin(nil)
	require.NoError(t, err)
	require.NoError(t, a.userRepo.Create(nil, tx, &domain.User{Username: username, Name: name, Role: role}))
	require.NoError(t, a.credStore.Put(username, ports.CredentialEntry{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}))
}

func (a *testApp) request(t *testing.T, method, path, token string, body any) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func (a *testApp) login(t *testing.T, username, password string) string {
	t.Helper()
	resp, body := a.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "login failed: %v", body)
	data := body["data"].(map[string]interface{})
	return data["token"].(string)
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_LoginAndRoleGating(t *testing.T) {
	app := newTestApp(t)

	// Wrong password
	resp, body := app.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "juan_operador",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTH_001", body["error_code"])

	// No token
	resp, body = app.request(t, http.MethodGet, "/api/v1/fiat/transactions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTH_002", body["error_code"])

	// Operator hitting an admin route
	operatorToken := app.login(t, "juan_operador", "operador123")
	resp, body = app.request(t, http.MethodGet, "/api/v1/admin/settings", operatorToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "AUTH_003", body["error_code"])

	// Admin is allowed
	adminToken := app.login(t, "agustin_admin", "admin123")
	resp, _ = app.request(t, http.MethodGet, "/api/v1/admin/settings", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIntegration_FiatFlow(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "juan_operador", "operador123")

	// Quote: 100 USD compra at blue buy 1000 with 0.5% commission
	resp, body := app.request(t, http.MethodGet, "/api/v1/fiat/quote?type=compra&usd_amount=100", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	quote := body["data"].(map[string]interface{})
	assert.Equal(t, 99500.0, quote["amount_ars"])

	// Submit
	resp, body = app.request(t, http.MethodPost, "/api/v1/fiat/transactions", token, map[string]interface{}{
		"type":       "compra",
		"usd_amount": 100,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	txn := body["data"].(map[string]interface{})
	assert.Equal(t, 99500.0, txn["amount_ars"])
	assert.Equal(t, 1000.0, txn["rate_applied"])
	assert.Equal(t, "juan_operador", txn["operator_username"])

	// Recent rows include it
	resp, body = app.request(t, http.MethodGet, "/api/v1/fiat/transactions", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rows := body["data"].([]interface{})
	require.Len(t, rows, 1)

	// Dashboard reflects the row
	resp, body = app.request(t, http.MethodGet, "/api/v1/fiat/dashboard", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dash := body["data"].(map[string]interface{})
	assert.Equal(t, true, dash["has_data"])
	assert.Equal(t, 100.0, dash["total_volume_usd"])
}

func TestIntegration_FiatValidation(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "juan_operador", "operador123")

	resp, _ := app.request(t, http.MethodPost, "/api/v1/fiat/transactions", token, map[string]interface{}{
		"type":       "compra",
		"usd_amount": -10,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = app.request(t, http.MethodPost, "/api/v1/fiat/transactions", token, map[string]interface{}{
		"type":       "swap",
		"usd_amount": 10,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	rows, err := app.fiatRepo.ListAll(nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestIntegration_CryptoFlow(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "juan_operador", "operador123")

	// 0.5 BTC compra: 0.5 * 64000 * 1150 * 1.01
	resp, body := app.request(t, http.MethodPost, "/api/v1/crypto/transactions", token, map[string]interface{}{
		"type":          "compra",
		"asset":         "bitcoin",
		"crypto_amount": 0.5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	txn := body["data"].(map[string]interface{})
	assert.Equal(t, "Bitcoin (BTC)", txn["crypto_name"])
	assert.Equal(t, 37168000.0, txn["total_ars"])
	assert.Equal(t, 1150.0, txn["crypto_usd_rate_applied"])

	// Unsupported asset
	resp, body = app.request(t, http.MethodPost, "/api/v1/crypto/transactions", token, map[string]interface{}{
		"type":          "compra",
		"asset":         "dogecoin",
		"crypto_amount": 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Dashboard groups by asset
	resp, body = app.request(t, http.MethodGet, "/api/v1/crypto/dashboard", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dash := body["data"].(map[string]interface{})
	assert.Equal(t, true, dash["has_data"])
	assert.Equal(t, 1.0, dash["distinct_assets"])
}

func TestIntegration_EmptyDashboards(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "juan_operador", "operador123")

	resp, body := app.request(t, http.MethodGet, "/api/v1/fiat/dashboard", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dash := body["data"].(map[string]interface{})
	assert.Equal(t, false, dash["has_data"])
	assert.Equal(t, 0.0, dash["total_volume_ars"])
}

func TestIntegration_Rates(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "juan_operador", "operador123")

	resp, body := app.request(t, http.MethodGet, "/api/v1/rates/fiat", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rate := body["data"].(map[string]interface{})
	assert.Equal(t, 1000.0, rate["buy"])
	assert.Equal(t, 1050.0, rate["sell"])

	resp, body = app.request(t, http.MethodGet, "/api/v1/rates/crypto?assets=bitcoin,ethereum", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	prices := body["data"].(map[string]interface{})["prices"].(map[string]interface{})
	assert.Equal(t, 64000.0, prices["bitcoin"])
	assert.Equal(t, 3000.0, prices["ethereum"])

	resp, _ = app.request(t, http.MethodPost, "/api/v1/rates/refresh", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, app.provider.refreshCount)
}

func TestIntegration_LoginRateLimit(t *testing.T) {
	app := newTestApp(t)

	// The login window allows 10 attempts per identifier per minute.
	var last *http.Response
	var lastBody map[string]interface{}
	for i := 0; i < 11; i++ {
		last, lastBody = app.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"username": "juan_operador",
			"password": "wrong",
		})
	}
	assert.Equal(t, http.StatusTooManyRequests, last.StatusCode)
	assert.Equal(t, "RATE_001", lastBody["error_code"])
}

func TestIntegration_AdminSettingsRoundTrip(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "agustin_admin", "admin123")

	resp, body := app.request(t, http.MethodPut, "/api/v1/admin/settings", token, map[string]interface{}{
		"values": map[string]string{
			"fiat_buy_commission_percent": "0.75",
			"crypto_usd_rate":             "1200",
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	values := body["data"].(map[string]interface{})["values"].(map[string]interface{})
	assert.Equal(t, "0.75", values["fiat_buy_commission_percent"])
	assert.Equal(t, "1200.00", values["crypto_usd_rate"])

	// Unknown key rejected, nothing written
	resp, body = app.request(t, http.MethodPut, "/api/v1/admin/settings", token, map[string]interface{}{
		"values": map[string]string{"mystery_knob": "1"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "SET_001", body["error_code"])
}

func TestIntegration_UserLifecycle(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.login(t, "agustin_admin", "admin123")

	// Create
	resp, body := app.request(t, http.MethodPost, "/api/v1/admin/users", adminToken, map[string]string{
		"username": "maria_op",
		"name":     "María",
		"email":    "maria@cambiototal.com",
		"password": "secret1234",
		"role":     "operator",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create failed: %v", body)

	// The new user can log in immediately (both stores written)
	mariaToken := app.login(t, "maria_op", "secret1234")
	require.NotEmpty(t, mariaToken)

	// And shows up in the admin listing
	resp, body = app.request(t, http.MethodGet, "/api/v1/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"].([]interface{}), 3)

	// Duplicate rejected
	resp, body = app.request(t, http.MethodPost, "/api/v1/admin/users", adminToken, map[string]string{
		"username": "maria_op",
		"name":     "María",
		"email":    "maria@cambiototal.com",
		"password": "secret1234",
		"role":     "operator",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "USER_001", body["error_code"])

	// Delete guard: give María a transaction, deletion must fail
	resp, _ = app.request(t, http.MethodPost, "/api/v1/crypto/transactions", mariaToken, map[string]interface{}{
		"type":          "venta",
		"asset":         "tether",
		"crypto_amount": 100,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = app.request(t, http.MethodDelete, "/api/v1/admin/users/maria_op", adminToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "USER_003", body["error_code"])

	// Self-delete rejected
	resp, body = app.request(t, http.MethodDelete, "/api/v1/admin/users/agustin_admin", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "USER_004", body["error_code"])

	// A clean user can be deleted, and can no longer log in
	resp, _ = app.request(t, http.MethodPost, "/api/v1/admin/users", adminToken, map[string]string{
		"username": "temp_op",
		"name":     "Temp",
		"email":    "temp@cambiototal.com",
		"password": "secret1234",
		"role":     "operator",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = app.request(t, http.MethodDelete, "/api/v1/admin/users/temp_op", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = app.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "temp_op",
		"password": "secret1234",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTH_001", body["error_code"])
}

func TestIntegration_AdminOversight(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.login(t, "agustin_admin", "admin123")
	operatorToken := app.login(t, "juan_operador", "operador123")

	for i := 0; i < 3; i++ {
		resp, _ := app.request(t, http.MethodPost, "/api/v1/fiat/transactions", operatorToken, map[string]interface{}{
			"type":       "compra",
			"usd_amount": 10 + i,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := app.request(t, http.MethodGet, "/api/v1/admin/transactions", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Len(t, data["fiat"].([]interface{}), 3)
	assert.Len(t, data["crypto"].([]interface{}), 0)
}
