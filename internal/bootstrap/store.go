// Package bootstrap monta as dependências compartilhadas pela API e pela CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaozabele/condominio/internal/assembleia"
	"github.com/gestaozabele/condominio/internal/assembleia/sqlitestore"
	"github.com/gestaozabele/condominio/internal/config"
	"github.com/gestaozabele/condominio/internal/db"
)

// Store é o armazenamento aberto junto com o que a API precisa para operá-lo.
type Store struct {
	assembleia.Store
	Ping  func(ctx context.Context) error
	Close func()
}

// OpenStore abre o driver configurado e aplica o schema.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlitestore.Open(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		return &Store{Store: s, Ping: s.Ping, Close: func() { _ = s.Close() }}, nil
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("db: %w", err)
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return &Store{Store: assembleia.NewRepository(pool), Ping: pingPool(pool), Close: pool.Close}, nil
	default:
		return nil, fmt.Errorf("driver desconhecido %q", cfg.Driver)
	}
}

func pingPool(pool *pgxpool.Pool) func(ctx context.Context) error {
	return func(ctx context.Context) error { return pool.Ping(ctx) }
}
