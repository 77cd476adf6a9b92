package postgresql

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/holiman/uint256"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rafflechain/settler/internal/raffle/store"
	"github.com/rafflechain/settler/pkg/tracing"
)

const (
	postgresDriverName = "postgres"
	migrationsTable    = "settler_migrations"

	purposeCreation = "creation"
	purposePurchase = "purchase"

	// Error 23505 is: "duplicate key violates unique constraint"
	uniqueViolation = pq.ErrorCode("23505")
)

//go:embed migrations/*.sql
var migrations embed.FS

type PostgreSQL struct {
	db      *sql.DB
	now     func() time.Time
	tracing tracing.Settings
}

func WithNow(nowFunc func() time.Time) func(*PostgreSQL) {
	return func(p *PostgreSQL) {
		p.now = nowFunc
	}
}

func WithTracer(attr ...attribute.KeyValue) func(*PostgreSQL) {
	return func(p *PostgreSQL) {
		p.tracing = tracing.Enable(attr...)
	}
}

func New(dbInfo string, idleConns int, maxOpenConns int, opts ...func(*PostgreSQL)) (*PostgreSQL, error) {
	db, err := sql.Open(postgresDriverName, dbInfo)
	if err != nil {
		return nil, errors.Join(store.ErrFailedToOpenDB, err)
	}

	db.SetMaxIdleConns(idleConns)
	db.SetMaxOpenConns(maxOpenConns)

	p := &PostgreSQL{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Migrate applies all embedded migrations which were not applied yet.
func (p *PostgreSQL) Migrate() error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return errors.Join(store.ErrFailedToMigrate, err)
	}

	driver, err := migratepostgres.WithInstance(p.db, &migratepostgres.Config{
		MigrationsTable: migrationsTable,
	})
	if err != nil {
		return errors.Join(store.ErrFailedToMigrate, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, postgresDriverName, driver)
	if err != nil {
		return errors.Join(store.ErrFailedToMigrate, err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Join(store.ErrFailedToMigrate, err)
	}

	return nil
}

func (p *PostgreSQL) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}

// inTx runs fn in a transaction which is committed if fn succeeds and rolled back otherwise.
func (p *PostgreSQL) inTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = errors.Join(err, fmt.Errorf("failed to rollback: %v", rErr))
			}
		}
	}()

	err = fn(tx)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func consumeTx(ctx context.Context, tx *sql.Tx, txHash, raffleID, purpose string, now time.Time) error {
	const q = `INSERT INTO settler.consumed_tx_hashes (tx_hash, raffle_id, purpose, consumed_at) VALUES ($1, $2, $3, $4)`

	_, err := tx.ExecContext(ctx, q, txHash, raffleID, purpose, now.UTC())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return errors.Join(store.ErrTransactionReplayed, fmt.Errorf("tx hash: %s", txHash))
		}
		return err
	}

	return nil
}

func decimalOrNull(v *uint256.Int) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.Dec(), Valid: true}
}

func parseDecimal(s sql.NullString) (*uint256.Int, error) {
	if !s.Valid {
		return nil, nil
	}
	return uint256.FromDecimal(s.String)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timeOrNil(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func stringOrNil(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func ptrTo[T any](v T) *T {
	return &v
}
