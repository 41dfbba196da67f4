package postgres

import (
	"context"
	"fmt"

	"cambiototal/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// FiatTransactionRepo implements ports.FiatTransactionRepository.
type FiatTransactionRepo struct {
	pool Pool
}

// NewFiatTransactionRepo creates a new FiatTransactionRepo.
func NewFiatTransactionRepo(pool Pool) *FiatTransactionRepo {
	return &FiatTransactionRepo{pool: pool}
}

// Create appends one immutable fiat row. Single-row insert; no enclosing
// transaction is needed.
func (r *FiatTransactionRepo) Create(ctx context.Context, t *domain.FiatTransaction) error {
	query := `INSERT INTO transactions_fiat
		(timestamp, type, amount_usd, amount_ars, rate_applied, commission_spread_applied, operator_username)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		t.Timestamp, t.Type, t.AmountUSD, t.AmountARS,
		t.RateApplied, t.CommissionSpreadApplied, t.OperatorUsername,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert fiat transaction: %w", err)
	}
	return nil
}

// ListByOperator returns the operator's most recent rows, newest first.
func (r *FiatTransactionRepo) ListByOperator(ctx context.Context, username string, limit int) ([]domain.FiatTransaction, error) {
	query := `SELECT id, timestamp, type, amount_usd, amount_ars, rate_applied, commission_spread_applied, operator_username
		FROM transactions_fiat WHERE operator_username = $1
		ORDER BY timestamp DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, username, limit)
	if err != nil {
		return nil, fmt.Errorf("list fiat transactions by operator: %w", err)
	}
	defer rows.Close()

	return scanFiatRows(rows)
}

// ListAll returns the full fiat ledger, newest first.
func (r *FiatTransactionRepo) ListAll(ctx context.Context) ([]domain.FiatTransaction, error) {
	query := `SELECT id, timestamp, type, amount_usd, amount_ars, rate_applied, commission_spread_applied, operator_username
		FROM transactions_fiat ORDER BY timestamp DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list fiat transactions: %w", err)
	}
	defer rows.Close()

	return scanFiatRows(rows)
}

// CountByOperator counts the operator's rows; used by the referential
// delete guard.
func (r *FiatTransactionRepo) CountByOperator(ctx context.Context, username string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions_fiat WHERE operator_username = $1`, username).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count fiat transactions: %w", err)
	}
	return count, nil
}

func scanFiatRows(rows pgx.Rows) ([]domain.FiatTransaction, error) {
	var txns []domain.FiatTransaction
	for rows.Next() {
		var t domain.FiatTransaction
		err := rows.Scan(
			&t.ID, &t.Timestamp, &t.Type, &t.AmountUSD, &t.AmountARS,
			&t.RateApplied, &t.CommissionSpreadApplied, &t.OperatorUsername,
		)
		if err != nil {
			return nil, fmt.Errorf("scan fiat transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fiat transaction rows: %w", err)
	}
	return txns, nil
}
