package postgres

import (
	"context"
	"fmt"

	"cambiototal/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// CryptoTransactionRepo implements ports.CryptoTransactionRepository.
type CryptoTransactionRepo struct {
	pool Pool
}

// NewCryptoTransactionRepo creates a new CryptoTransactionRepo.
func NewCryptoTransactionRepo(pool Pool) *CryptoTransactionRepo {
	return &CryptoTransactionRepo{pool: pool}
}

// Create appends one immutable crypto row.
func (r *CryptoTransactionRepo) Create(ctx context.Context, t *domain.CryptoTransaction) error {
	query := `INSERT INTO transactions_crypto
		(timestamp, type, crypto_name, crypto_amount, total_ars, usd_rate_applied, crypto_usd_rate_applied, commission_applied, operator_username)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		t.Timestamp, t.Type, t.CryptoName, t.CryptoAmount, t.TotalARS,
		t.USDRateApplied, t.CryptoUSDRateApplied, t.CommissionApplied, t.OperatorUsername,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert crypto transaction: %w", err)
	}
	return nil
}

// ListByOperator returns the operator's most recent rows, newest first.
func (r *CryptoTransactionRepo) ListByOperator(ctx context.Context, username string, limit int) ([]domain.CryptoTransaction, error) {
	query := `SELECT id, timestamp, type, crypto_name, crypto_amount, total_ars, usd_rate_applied, crypto_usd_rate_applied, commission_applied, operator_username
		FROM transactions_crypto WHERE operator_username = $1
		ORDER BY timestamp DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, username, limit)
	if err != nil {
		return nil, fmt.Errorf("list crypto transactions by operator: %w", err)
	}
	defer rows.Close()

	return scanCryptoRows(rows)
}

// ListAll returns the full crypto ledger, newest first.
func (r *CryptoTransactionRepo) ListAll(ctx context.Context) ([]domain.CryptoTransaction, error) {
	query := `SELECT id, timestamp, type, crypto_name, crypto_amount, total_ars, usd_rate_applied, crypto_usd_rate_applied, commission_applied, operator_username
		FROM transactions_crypto ORDER BY timestamp DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list crypto transactions: %w", err)
	}
	defer rows.Close()

	return scanCryptoRows(rows)
}

// CountByOperator counts the operator's rows; used by the referential
// delete guard.
func (r *CryptoTransactionRepo) CountByOperator(ctx context.Context, username string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions_crypto WHERE operator_username = $1`, username).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count crypto transactions: %w", err)
	}
	return count, nil
}

func scanCryptoRows(rows pgx.Rows) ([]domain.CryptoTransaction, error) {
	var txns []domain.CryptoTransaction
	for rows.Next() {
		var t domain.CryptoTransaction
		err := rows.Scan(
			&t.ID, &t.Timestamp, &t.Type, &t.CryptoName, &t.CryptoAmount,
			&t.TotalARS, &t.USDRateApplied, &t.CryptoUSDRateApplied,
			&t.CommissionApplied, &t.OperatorUsername,
		)
		if err != nil {
			return nil, fmt.Errorf("scan crypto transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate crypto transaction rows: %w", err)
	}
	return txns, nil
}
