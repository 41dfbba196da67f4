package postgres

import (
	"context"
	"fmt"
)

// SettingsRepo implements ports.SettingsRepository over the
// system_settings key/value table.
type SettingsRepo struct {
	pool Pool
}

// NewSettingsRepo creates a new SettingsRepo.
func NewSettingsRepo(pool Pool) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

// GetAll returns every setting as a key→value map.
func (r *SettingsRepo) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value FROM system_settings`)
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting row: %w", err)
		}
		settings[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate setting rows: %w", err)
	}
	return settings, nil
}

// Upsert overwrites a setting value in place. No history is kept.
func (r *SettingsRepo) Upsert(ctx context.Context, key, value string) error {
	query := `INSERT INTO system_settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`

	_, err := r.pool.Exec(ctx, query, key, value)
	if err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}
