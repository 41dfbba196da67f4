package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepo_GetAll(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettingsRepo(mock)

	mock.ExpectQuery("SELECT key, value FROM system_settings").
		WillReturnRows(pgxmock.NewRows([]string{"key", "value"}).
			AddRow("fiat_buy_commission_percent", "0.5").
			AddRow("crypto_usd_rate", "1000.0"))

	settings, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.5", settings["fiat_buy_commission_percent"])
	assert.Equal(t, "1000.0", settings["crypto_usd_rate"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepo_Upsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettingsRepo(mock)

	mock.ExpectExec("INSERT INTO system_settings").
		WithArgs("crypto_usd_rate", "1250.00").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Upsert(context.Background(), "crypto_usd_rate", "1250.00")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
