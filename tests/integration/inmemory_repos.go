package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cambiototal/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[string]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, tx pgx.Tx, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Username]; ok {
		return fmt.Errorf("username already exists")
	}
	clone := *u
	r.users[u.Username] = &clone
	return nil
}

func (r *inMemoryUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[username]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

func (r *inMemoryUserRepo) List(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var users []domain.User
	for _, u := range r.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (r *inMemoryUserRepo) Delete(ctx context.Context, tx pgx.Tx, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[username]; !ok {
		return fmt.Errorf("user not found: %s", username)
	}
	delete(r.users, username)
	return nil
}

// --- In-Memory Fiat Ledger ---

type inMemoryFiatRepo struct {
	mu     sync.RWMutex
	nextID int64
	rows   []domain.FiatTransaction
}

func newInMemoryFiatRepo() *inMemoryFiatRepo {
	return &inMemoryFiatRepo{}
}

func (r *inMemoryFiatRepo) Create(ctx context.Context, t *domain.FiatTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	r.rows = append(r.rows, *t)
	return nil
}

func (r *inMemoryFiatRepo) ListByOperator(ctx context.Context, username string, limit int) ([]domain.FiatTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.FiatTransaction
	for i := len(r.rows) - 1; i >= 0 && len(result) < limit; i-- {
		if r.rows[i].OperatorUsername == username {
			result = append(result, r.rows[i])
		}
	}
	return result, nil
}

func (r *inMemoryFiatRepo) ListAll(ctx context.Context) ([]domain.FiatTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.FiatTransaction, 0, len(r.rows))
	for i := len(r.rows) - 1; i >= 0; i-- {
		result = append(result, r.rows[i])
	}
	return result, nil
}

func (r *inMemoryFiatRepo) CountByOperator(ctx context.Context, username string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, t := range r.rows {
		if t.OperatorUsername == username {
			count++
		}
	}
	return count, nil
}

// --- In-Memory Crypto Ledger ---

type inMemoryCryptoRepo struct {
	mu     sync.RWMutex
	nextID int64
	rows   []domain.CryptoTransaction
}

func newInMemoryCryptoRepo() *inMemoryCryptoRepo {
	return &inMemoryCryptoRepo{}
}

func (r *inMemoryCryptoRepo) Create(ctx context.Context, t *domain.CryptoTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	r.rows = append(r.rows, *t)
	return nil
}

func (r *inMemoryCryptoRepo) ListByOperator(ctx context.Context, username string, limit int) ([]domain.CryptoTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.CryptoTransaction
	for i := len(r.rows) - 1; i >= 0 && len(result) < limit; i-- {
		if r.rows[i].OperatorUsername == username {
			result = append(result, r.rows[i])
		}
	}
	return result, nil
}

func (r *inMemoryCryptoRepo) ListAll(ctx context.Context) ([]domain.CryptoTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.CryptoTransaction, 0, len(r.rows))
	for i := len(r.rows) - 1; i >= 0; i-- {
		result = append(result, r.rows[i])
	}
	return result, nil
}

func (r *inMemoryCryptoRepo) CountByOperator(ctx context.Context, username string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, t := range r.rows {
		if t.OperatorUsername == username {
			count++
		}
	}
	return count, nil
}

// --- In-Memory Settings Repo ---

type inMemorySettingsRepo struct {
	mu     sync.RWMutex
	values map[string]string
}

func newInMemorySettingsRepo(seed map[string]string) *inMemorySettingsRepo {
	values := make(map[string]string, len(seed))
	for k, v := range seed {
		values[k] = v
	}
	return &inMemorySettingsRepo{values: values}
}

func (r *inMemorySettingsRepo) GetAll(ctx context.Context) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out, nil
}

func (r *inMemorySettingsRepo) Upsert(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }

// --- Stub Rate Provider ---

// stubRateProvider serves fixed market data so tests never reach the
// network. Refresh bumps refreshCount for assertions.
type stubRateProvider struct {
	mu           sync.Mutex
	fiat         domain.FiatRate
	prices       map[string]float64
	refreshCount int
}

func newStubRateProvider() *stubRateProvider {
	return &stubRateProvider{
		fiat: domain.FiatRate{Buy: 1000, Sell: 1050, Name: "Blue"},
		prices: map[string]float64{
			"bitcoin":  64000,
			"ethereum": 3000,
			"tether":   1,
		},
	}
}

func (p *stubRateProvider) FiatRate(ctx context.Context) (*domain.FiatRate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rate := p.fiat
	return &rate, nil
}

func (p *stubRateProvider) CryptoPrices(ctx context.Context, assetIDs []string) (map[string]float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]float64)
	for _, id := range assetIDs {
		if price, ok := p.prices[id]; ok {
			out[id] = price
		}
	}
	return out, nil
}

func (p *stubRateProvider) Refresh(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshCount++
	return nil
}
