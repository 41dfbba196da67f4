package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"cambiototal/config"
	"cambiototal/internal/adapter/storage/credfile"
	pgStorage "cambiototal/internal/adapter/storage/postgres"
	"cambiototal/internal/core/domain"
	"cambiototal/internal/core/ports"
	"cambiototal/internal/service"
	"cambiototal/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Default accounts created on first run. Change the passwords immediately
// in any non-development environment.
var defaultUsers = []struct {
	username string
	name     string
	email    string
	role     domain.Role
	password string
}{
	{"agustin_admin", "Agustín (Admin)", "agustin@cambiototal.com", domain.RoleAdmin, "admin123"},
	{"juan_operador", "Juan (Operador)", "juan@cambiototal.com", domain.RoleOperator, "operador123"},
}

var defaultSettings = map[string]string{
	"fiat_buy_commission_percent":    "0.50",
	"fiat_sell_spread_percent":       "0.50",
	"crypto_buy_commission_percent":  "1.00",
	"crypto_sell_commission_percent": "1.00",
	"crypto_usd_rate":                "1150.00",
}

func main() {
	schemaPath := flag.String("schema", "migrations/0001_init.sql", "schema file to apply before seeding (skipped if missing)")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	ctx := context.Background()
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	if err := applySchema(ctx, pool, *schemaPath, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}

	credStore := credfile.NewStore(cfg.Credentials.Path)
	hashSvc := service.NewBcryptHashService()

	if err := seedSettings(ctx, pool, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed settings")
	}
	if err := seedUsers(ctx, pool, credStore, hashSvc, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed users")
	}

	log.Info().Msg("Seed complete")
}

// applySchema runs the migration file. The schema is written with
// IF NOT EXISTS guards so re-running is safe.
func applySchema(ctx context.Context, pool *pgxpool.Pool, path string, log zerolog.Logger) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", path).Msg("Schema file not found, skipping")
			return nil
		}
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	log.Info().Str("path", path).Msg("Schema applied")
	return nil
}

func seedSettings(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) error {
	// DO NOTHING on conflict: never clobber values an admin has tuned.
	query := `INSERT INTO system_settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING`
	for key, value := range defaultSettings {
		if _, err := pool.Exec(ctx, query, key, value); err != nil {
			return fmt.Errorf("seed setting %s: %w", key, err)
		}
	}
	log.Info().Int("count", len(defaultSettings)).Msg("Default settings ensured")
	return nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, credStore *credfile.Store, hashSvc ports.HashService, log zerolog.Logger) error {
	query := `INSERT INTO users (username, name, role) VALUES ($1, $2, $3)
		ON CONFLICT (username) DO NOTHING`
	for _, u := range defaultUsers {
		if _, err := pool.Exec(ctx, query, u.username, u.name, u.role); err != nil {
			return fmt.Errorf("seed user %s: %w", u.username, err)
		}

		if _, found, err := credStore.Get(u.username); err != nil {
			return fmt.Errorf("read credentials for %s: %w", u.username, err)
		} else if found {
			continue
		}

		hash, err := hashSvc.Hash(u.password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.username, err)
		}
		if err := credStore.Put(u.username, ports.CredentialEntry{
			Email:        u.email,
			Name:         u.name,
			PasswordHash: hash,
		}); err != nil {
			return fmt.Errorf("write credentials for %s: %w", u.username, err)
		}
		log.Info().Str("username", u.username).Str("role", string(u.role)).Msg("Default user created")
	}
	return nil
}
