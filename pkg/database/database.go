package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heliohq/claims-portal/pkg/config"
)

func Connect(ctx context.Context, dbCfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dbCfg.URL)
	if err != nil {
		return nil, err
	}

	cfg.MinConns = int32(dbCfg.MinConns)
	cfg.MaxConns = int32(dbCfg.MaxConns)
	cfg.MaxConnLifetime = dbCfg.MaxLifetime
	cfg.HealthCheckPeriod = 30 * time.Second

	return pgxpool.NewWithConfig(ctx, cfg)
}
