package testutils

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-testfixtures/testfixtures/v3"
	"github.com/stretchr/testify/require"
)

// Retry runs op with exponential backoff for at most a minute. Used to wait for containers.
func Retry(op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = time.Second * 5
	bo.MaxElapsedTime = time.Minute
	if err := backoff.Retry(op, bo); err != nil {
		if bo.NextBackOff() == backoff.Stop {
			return fmt.Errorf("reached retry deadline: %w", err)
		}

		return err
	}

	return nil
}

func LoadFixtures(t testing.TB, db *sql.DB, path string) {
	t.Helper()

	fixtures, err := testfixtures.New(
		testfixtures.Database(db),
		testfixtures.Dialect("postgresql"),
		testfixtures.Directory(path), // The directory containing the YAML files
	)
	if err != nil {
		t.Fatalf("failed to create fixtures: %v", err)
	}

	err = fixtures.Load()
	if err != nil {
		t.Fatalf("failed to load fixtures: %v", err)
	}
}

func PruneTables(t testing.TB, db *sql.DB, tables ...string) {
	t.Helper()

	for _, tab := range tables {
		_, err := db.Exec("TRUNCATE TABLE " + tab + " CASCADE;")
		require.NoError(t, err)
	}
}

// PtrTo returns a pointer to the given value.
func PtrTo[T any](v T) *T {
	return &v
}
