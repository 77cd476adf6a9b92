package postgresql

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/require"

	"github.com/rafflechain/settler/internal/raffle"
	"github.com/rafflechain/settler/internal/raffle/store"
	"github.com/rafflechain/settler/internal/testutils"
)

const (
	creator = "0xa7d9ddbe1f17865597fbd27ec712455208b6b76d"
	buyer   = "0x5fbdb2315678afecb367f032d93f642f64180aa3"

	creationHashActive = "0x1d59ff54b1eb26b013ce3cb5fc9dab3705b415a67127a003c3e61eb445bb8df2"
	purchaseHash1      = "0x4a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2c3d4e5f6a7b"
	freshHash1         = "0x6c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2c3d4e5f6a7b8c9d"
	freshHash2         = "0x7d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2c3d4e5f6a7b8c9d0e"
)

var dbInfo string

func TestMain(m *testing.M) {
	flag.Parse()

	if testing.Short() {
		os.Exit(0)
	}

	os.Exit(testmain(m))
}

func testmain(m *testing.M) int {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Printf("failed to create pool: %v", err)
		return 1
	}

	resource, connStr, err := testutils.RunPostgresql(pool, "5437")
	if err != nil {
		log.Print(err)
		return 1
	}
	defer func() {
		err = pool.Purge(resource)
		if err != nil {
			log.Fatalf("failed to purge pool: %v", err)
		}
	}()

	p, err := New(connStr, 1, 1)
	if err != nil {
		log.Print(err)
		return 1
	}
	err = testutils.Retry(p.db.Ping)
	if err != nil {
		log.Printf("failed to connect to postgres: %v", err)
		return 1
	}
	err = p.Migrate()
	_ = p.Close()
	if err != nil {
		log.Print(err)
		return 1
	}

	dbInfo = connStr
	return m.Run()
}

func pruneTables(t *testing.T, p *PostgreSQL) {
	t.Helper()
	testutils.PruneTables(t, p.db, "settler.ticket_purchases", "settler.consumed_tx_hashes", "settler.raffles")
}

func newRaffle(id string, txHash *string) *raffle.Raffle {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r := &raffle.Raffle{
		ID:            id,
		CreatorID:     creator,
		Title:         "Vintage camera",
		Kind:          raffle.KindRaffle,
		PrizeValue:    uint256.MustFromDecimal("115792089237316195423570985008687907853269984665640564039457584007913129639935"),
		TicketPrice:   uint256.NewInt(1_000_000),
		MaxTickets:    3,
		EndTime:       created.Add(48 * time.Hour),
		PaymentStatus: raffle.PaymentUnverified,
		Status:        raffle.StatusDraft,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	if txHash != nil {
		r.CreationTxHash = txHash
		r.PaymentStatus = raffle.PaymentVerified
		r.Status = raffle.StatusActive
	}
	return r
}

func TestPostgresDB(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	postgresDB, err := New(dbInfo, 10, 10, WithNow(func() time.Time { return now }))
	require.NoError(t, err)
	defer postgresDB.Close()

	require.NoError(t, postgresDB.Ping(ctx))

	t.Run("get raffle", func(t *testing.T) {
		// given
		defer pruneTables(t, postgresDB)
		testutils.LoadFixtures(t, postgresDB.db, "fixtures/raffles")

		// when
		actual, err := postgresDB.GetRaffle(ctx, "r-settled")

		// then
		require.NoError(t, err)
		require.Equal(t, raffle.StatusSettled, actual.Status)
		require.Equal(t, "300000000000000000", actual.PrizeValue.Dec())
		require.Equal(t, uint64(1_000_000_000_000_000), actual.TicketPrice.Uint64())
		require.Equal(t, raffle.CloseReasonSoldOut, *actual.CloseReason)
		require.Equal(t, uint64(19000000), *actual.SeedBlockNumber)
		require.Equal(t, int64(0), *actual.WinningTicket)
		require.Equal(t, creator, *actual.WinnerID)
		require.True(t, actual.ApprovedByCreator)
		require.Equal(t, int64(5), actual.Version)
		require.NotNil(t, actual.SettledAt)

		draft, err := postgresDB.GetRaffle(ctx, "r-draft")
		require.NoError(t, err)
		require.Nil(t, draft.PrizeValue)
		require.Nil(t, draft.CreationTxHash)
		require.False(t, draft.IsVerified())

		_, err = postgresDB.GetRaffle(ctx, "unknown")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("create raffle", func(t *testing.T) {
		// given
		defer pruneTables(t, postgresDB)
		testutils.LoadFixtures(t, postgresDB.db, "fixtures/raffles")

		r := newRaffle("r-new", testutils.PtrTo(freshHash1))

		// when
		err := postgresDB.CreateRaffle(ctx, r)

		// then
		require.NoError(t, err)
		require.Equal(t, int64(1), r.Version)

		actual, err := postgresDB.GetRaffle(ctx, "r-new")
		require.NoError(t, err)
		require.Equal(t, r, actual)

		consumed, err := postgresDB.IsTxConsumed(ctx, freshHash1)
		require.NoError(t, err)
		require.True(t, consumed)

		// a hash pays for one raffle only
		err = postgresDB.CreateRaffle(ctx, newRaffle("r-replay", testutils.PtrTo(creationHashActive)))
		require.ErrorIs(t, err, store.ErrTransactionReplayed)

		_, err = postgresDB.GetRaffle(ctx, "r-replay")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("save raffle", func(t *testing.T) {
		// given
		defer pruneTables(t, postgresDB)
		testutils.LoadFixtures(t, postgresDB.db, "fixtures/raffles")

		r, err := postgresDB.GetRaffle(ctx, "r-active")
		require.NoError(t, err)
		stale := r.Clone()

		_, err = r.AddTickets(3, now)
		require.NoError(t, err)
		require.NoError(t, r.Close(raffle.CloseReasonSoldOut, raffle.Seed{BlockNumber: 7, BlockHash: freshHash2}, now))

		// when
		err = postgresDB.SaveRaffle(ctx, r)

		// then
		require.NoError(t, err)
		require.Equal(t, int64(3), r.Version)

		actual, err := postgresDB.GetRaffle(ctx, "r-active")
		require.NoError(t, err)
		require.Equal(t, raffle.StatusClosed, actual.Status)
		require.Equal(t, int64(5), actual.TicketsSold)
		require.Equal(t, freshHash2, *actual.SeedBlockHash)
		require.Equal(t, now, *actual.ClosedAt)

		err = postgresDB.SaveRaffle(ctx, stale)
		require.ErrorIs(t, err, store.ErrVersionConflict)

		err = postgresDB.SaveRaffle(ctx, newRaffle("unknown", nil))
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("activate raffle", func(t *testing.T) {
		// given
		defer pruneTables(t, postgresDB)
		testutils.LoadFixtures(t, postgresDB.db, "fixtures/raffles")

		draft, err := postgresDB.GetRaffle(ctx, "r-draft")
		require.NoError(t, err)
		replayed := draft.Clone()

		require.NoError(t, draft.Activate(freshHash1, now))
		require.NoError(t, replayed.Activate(creationHashActive, now))

		// when
		err = postgresDB.ActivateRaffle(ctx, replayed)

		// then
		require.ErrorIs(t, err, store.ErrTransactionReplayed)

		err = postgresDB.ActivateRaffle(ctx, draft)
		require.NoError(t, err)

		actual, err := postgresDB.GetRaffle(ctx, "r-draft")
		require.NoError(t, err)
		require.True(t, actual.IsVerified())
		require.Equal(t, raffle.StatusActive, actual.Status)
	})

	t.Run("save purchase", func(t *testing.T) {
		// given
		defer pruneTables(t, postgresDB)
		testutils.LoadFixtures(t, postgresDB.db, "fixtures/raffles")

		r, err := postgresDB.GetRaffle(ctx, "r-active")
		require.NoError(t, err)

		first, err := r.AddTickets(2, now)
		require.NoError(t, err)

		purchase := &raffle.TicketPurchase{
			ID:            "p-new",
			RaffleID:      r.ID,
			BuyerID:       buyer,
			Quantity:      2,
			AmountPaid:    uint256.NewInt(20_000_000_000_000_000),
			TxHash:        freshHash1,
			PaymentStatus: raffle.PaymentVerified,
			FirstTicket:   first,
			PurchasedAt:   now,
		}

		// when
		err = postgresDB.SavePurchase(ctx, r, purchase)

		// then
		require.NoError(t, err)
		require.Equal(t, int64(2), purchase.Sequence)
		require.Equal(t, int64(3), r.Version)

		type purchaseRow struct {
			Sequence    int64  `db:"sequence"`
			FirstTicket int64  `db:"first_ticket"`
			AmountPaid  string `db:"amount_paid"`
		}
		var row purchaseRow
		err = sqlx.NewDb(postgresDB.db, postgresDriverName).GetContext(ctx, &row,
			`SELECT sequence, first_ticket, amount_paid FROM settler.ticket_purchases WHERE id = $1`, "p-new")
		require.NoError(t, err)
		require.Equal(t, purchaseRow{Sequence: 2, FirstTicket: 2, AmountPaid: "20000000000000000"}, row)

		purchases, err := postgresDB.GetPurchases(ctx, r.ID)
		require.NoError(t, err)
		require.Len(t, purchases, 2)
		require.Equal(t, "p-1", purchases[0].ID)
		require.Equal(t, purchase, purchases[1])

		// replayed tx hash leaves the raffle untouched
		_, err = r.AddTickets(1, now)
		require.NoError(t, err)
		replay := *purchase
		replay.ID = "p-replay"
		replay.TxHash = purchaseHash1
		replay.Quantity = 1
		replay.FirstTicket = 4

		err = postgresDB.SavePurchase(ctx, r, &replay)
		require.ErrorIs(t, err, store.ErrTransactionReplayed)

		actual, err := postgresDB.GetRaffle(ctx, r.ID)
		require.NoError(t, err)
		require.Equal(t, int64(4), actual.TicketsSold)
		require.Equal(t, int64(3), actual.Version)
	})

	t.Run("concurrent purchases", func(t *testing.T) {
		// given
		defer pruneTables(t, postgresDB)
		testutils.LoadFixtures(t, postgresDB.db, "fixtures/raffles")

		hashes := []string{freshHash1, freshHash2}
		errs := make([]error, len(hashes))

		// when
		var wg sync.WaitGroup
		for i, hash := range hashes {
			wg.Add(1)
			go func() {
				defer wg.Done()

				r, err := postgresDB.GetRaffle(ctx, "r-active")
				if err != nil {
					errs[i] = err
					return
				}
				// both read version 2 before either saves
				r.Version = 2
				r.TicketsSold = 5

				errs[i] = postgresDB.SavePurchase(ctx, r, &raffle.TicketPurchase{
					ID:            hash[:10],
					RaffleID:      r.ID,
					BuyerID:       buyer,
					Quantity:      3,
					AmountPaid:    uint256.NewInt(1),
					TxHash:        hash,
					PaymentStatus: raffle.PaymentVerified,
					FirstTicket:   2,
					PurchasedAt:   now,
				})
			}()
		}
		wg.Wait()

		// then
		var succeeded, conflicted int
		for _, err := range errs {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, store.ErrVersionConflict):
				conflicted++
			}
		}
		require.Equal(t, 1, succeeded)
		require.Equal(t, 1, conflicted)

		actual, err := postgresDB.GetRaffle(ctx, "r-active")
		require.NoError(t, err)
		require.Equal(t, int64(5), actual.TicketsSold)
	})

	t.Run("list raffles", func(t *testing.T) {
		// given
		defer pruneTables(t, postgresDB)
		testutils.LoadFixtures(t, postgresDB.db, "fixtures/raffles")

		tt := []struct {
			name   string
			filter raffle.Filter

			expectedIDs []string
		}{
			{
				name:        "all",
				filter:      raffle.Filter{},
				expectedIDs: []string{"r-active", "r-draft", "r-expired", "r-settled"},
			},
			{
				name:        "verified only",
				filter:      raffle.Filter{VerifiedOnly: true},
				expectedIDs: []string{"r-active", "r-expired", "r-settled"},
			},
			{
				name:        "by status",
				filter:      raffle.Filter{Statuses: []raffle.Status{raffle.StatusActive, raffle.StatusDraft}},
				expectedIDs: []string{"r-active", "r-draft", "r-expired"},
			},
			{
				name:        "by creator, case-insensitive",
				filter:      raffle.Filter{CreatorID: "0x5FbDB2315678afecb367f032d93F642f64180aa3"},
				expectedIDs: []string{"r-draft", "r-settled"},
			},
			{
				name:        "paged",
				filter:      raffle.Filter{VerifiedOnly: true, Limit: 1, Offset: 1},
				expectedIDs: []string{"r-expired"},
			},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				// when
				raffles, err := postgresDB.ListRaffles(ctx, tc.filter)

				// then
				require.NoError(t, err)
				ids := make([]string, len(raffles))
				for i, r := range raffles {
					ids[i] = r.ID
				}
				require.Equal(t, tc.expectedIDs, ids)
			})
		}
	})

	t.Run("list expired", func(t *testing.T) {
		// given
		defer pruneTables(t, postgresDB)
		testutils.LoadFixtures(t, postgresDB.db, "fixtures/raffles")

		// when
		expired, err := postgresDB.ListExpired(ctx, now, 10)

		// then
		require.NoError(t, err)
		require.Len(t, expired, 1)
		require.Equal(t, "r-expired", expired[0].ID)

		expired, err = postgresDB.ListExpired(ctx, now.Add(48*time.Hour), 10)
		require.NoError(t, err)
		require.Len(t, expired, 2)
		require.Equal(t, "r-expired", expired[0].ID)
		require.Equal(t, "r-active", expired[1].ID)
	})
}
