package services

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/rafflechain/settler/config"
	"github.com/rafflechain/settler/internal/raffle/store"
	"github.com/rafflechain/settler/internal/raffle/store/memory"
	"github.com/rafflechain/settler/internal/raffle/store/postgresql"
)

// NewRaffleStore opens the configured raffle store. The postgres schema is migrated on start.
func NewRaffleStore(dbConfig *config.DbConfig, tracingAttributes []attribute.KeyValue) (store.RaffleStore, error) {
	switch dbConfig.Mode {
	case config.DbModePostgres:
		cfg := dbConfig.Postgres

		dbInfo := fmt.Sprintf(
			"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
			cfg.User, cfg.Password, cfg.Name, cfg.Host, cfg.Port, cfg.SslMode,
		)

		var opts []func(*postgresql.PostgreSQL)
		if tracingAttributes != nil {
			opts = append(opts, postgresql.WithTracer(tracingAttributes...))
		}

		s, err := postgresql.New(dbInfo, cfg.MaxIdleConns, cfg.MaxOpenConns, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres DB: %v", err)
		}

		err = s.Migrate()
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to migrate postgres DB: %v", err)
		}

		return s, nil
	case config.DbModeMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("db mode %s is invalid", dbConfig.Mode)
	}
}
