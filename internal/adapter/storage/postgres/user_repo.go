package postgres

import (
	"context"
	"errors"
	"fmt"

	"cambiototal/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	pool Pool
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(pool Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create inserts a user row inside the dual-store transaction.
func (r *UserRepo) Create(ctx context.Context, tx pgx.Tx, u *domain.User) error {
	query := `INSERT INTO users (username, name, role) VALUES ($1, $2, $3)`

	_, err := tx.Exec(ctx, query, u.Username, u.Name, u.Role)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByUsername fetches a user by username. Returns nil, nil when absent.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT username, name, role FROM users WHERE username = $1`

	u := &domain.User{}
	err := r.pool.QueryRow(ctx, query, username).Scan(&u.Username, &u.Name, &u.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// List returns all users ordered by username.
func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	query := `SELECT username, name, role FROM users ORDER BY username`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.Username, &u.Name, &u.Role); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, nil
}

// Delete removes a user row inside the dual-store transaction.
func (r *UserRepo) Delete(ctx context.Context, tx pgx.Tx, username string) error {
	query := `DELETE FROM users WHERE username = $1`

	tag, err := tx.Exec(ctx, query, username)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", username)
	}
	return nil
}
