package db

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"backoffice/internal/platform/config"
	"backoffice/internal/platform/querier"
)

type Pool = pgxpool.Pool

func Connect(ctx context.Context, cfg config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// FunctionExists reports whether a function named name (optionally
// schema-qualified) is installed.
func FunctionExists(ctx context.Context, q querier.Querier, name string) (bool, error) {
	schema, fn := "", name
	if before, after, found := strings.Cut(name, "."); found {
		schema, fn = before, after
	}
	var exists bool
	err := q.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM pg_proc p
      JOIN pg_namespace n ON n.oid = p.pronamespace
      WHERE p.proname = $1 AND ($2 = '' OR n.nspname = $2)
    )
  `, fn, schema).Scan(&exists)
	return exists, err
}
