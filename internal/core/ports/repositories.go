package ports

import (
	"context"

	"cambiototal/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// UserRepository defines persistence operations for user rows.
// Methods accepting pgx.Tx participate in the dual-store user mutation
// (relational row + credentials file written as a unit).
type UserRepository interface {
	Create(ctx context.Context, tx pgx.Tx, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, tx pgx.Tx, username string) error
}

// FiatTransactionRepository defines the append-only fiat ledger.
type FiatTransactionRepository interface {
	Create(ctx context.Context, t *domain.FiatTransaction) error
	ListByOperator(ctx context.Context, username string, limit int) ([]domain.FiatTransaction, error)
	ListAll(ctx context.Context) ([]domain.FiatTransaction, error)
	CountByOperator(ctx context.Context, username string) (int64, error)
}

// CryptoTransactionRepository defines the append-only crypto ledger.
type CryptoTransactionRepository interface {
	Create(ctx context.Context, t *domain.CryptoTransaction) error
	ListByOperator(ctx context.Context, username string, limit int) ([]domain.CryptoTransaction, error)
	ListAll(ctx context.Context) ([]domain.CryptoTransaction, error)
	CountByOperator(ctx context.Context, username string) (int64, error)
}

// SettingsRepository defines persistence for the key/value settings store.
type SettingsRepository interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Upsert(ctx context.Context, key, value string) error
}

// CredentialStore manages the YAML credentials file: per-user entries plus
// the session-cookie block and preauthorized emails, which are preserved
// across rewrites.
type CredentialStore interface {
	Get(username string) (*CredentialEntry, bool, error)
	Put(username string, entry CredentialEntry) error
	Remove(username string) error
	CookieConfig() (CookieConfig, error)
}

// CredentialEntry is one user's record in the credentials file.
type CredentialEntry struct {
	Email        string
	Name         string
	PasswordHash string
}

// CookieConfig is the session block stored alongside the credentials.
type CookieConfig struct {
	Name       string
	Key        string
	ExpiryDays int
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
