package engine_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/rafflechain/settler/internal/engine"
	"github.com/rafflechain/settler/internal/engine/mocks"
	"github.com/rafflechain/settler/internal/guard"
	guardmocks "github.com/rafflechain/settler/internal/guard/mocks"
	"github.com/rafflechain/settler/internal/ledger"
	"github.com/rafflechain/settler/internal/notify"
	"github.com/rafflechain/settler/internal/raffle"
	"github.com/rafflechain/settler/internal/raffle/store"
	"github.com/rafflechain/settler/internal/raffle/store/memory"
	"github.com/rafflechain/settler/internal/verifier"
)

const (
	creator  = "0xA7D9ddBE1f17865597fbD27EC712455208B6B76d"
	alice    = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	bob      = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	contract = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
)

var (
	start       = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	creationFee = uint256.NewInt(10_000)
)

func hash(n int) string {
	return fmt.Sprintf("0x%064x", n)
}

// blockHash returns a distinct block hash per payment.
func blockHash(txHash string) string {
	return common.BytesToHash(common.FromHex(txHash)[1:]).Hex()
}

type fixture struct {
	sut      *engine.Engine
	store    *memory.Store
	verifier *guardmocks.PaymentVerifierMock
	blocks   *mocks.BlockSourceMock
	notifier *mocks.NotifierMock

	mu      sync.Mutex
	clock   time.Time
	reasons map[string]verifier.Reason
}

func (f *fixture) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clock
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = f.clock.Add(d)
}

func (f *fixture) reject(txHash string, reason verifier.Reason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reasons[txHash] = reason
}

func (f *fixture) events() []notify.EventType {
	var types []notify.EventType
	for _, call := range f.notifier.NotifyCalls() {
		types = append(types, call.Event.Type)
	}
	return types
}

func newFixture(t *testing.T, raffleStore store.RaffleStore) *fixture {
	t.Helper()

	f := &fixture{
		clock:   start,
		reasons: make(map[string]verifier.Reason),
	}

	f.verifier = &guardmocks.PaymentVerifierMock{
		VerifyFunc: func(_ context.Context, req verifier.Request) (*verifier.Verdict, error) {
			f.mu.Lock()
			reason, rejected := f.reasons[req.TxHash]
			f.mu.Unlock()

			if rejected {
				if reason == "unavailable" {
					return nil, ledger.ErrLedgerUnavailable
				}
				return &verifier.Verdict{TxHash: req.TxHash, Reason: reason}, nil
			}

			return &verifier.Verdict{
				TxHash:   req.TxHash,
				Verified: true,
				Record: &verifier.Record{
					TxHash:      req.TxHash,
					From:        req.ExpectedSender,
					To:          req.ExpectedContract,
					Amount:      req.MinAmount.Dec(),
					BlockNumber: 100,
					BlockHash:   blockHash(req.TxHash),
				},
			}, nil
		},
	}
	f.blocks = &mocks.BlockSourceMock{
		LatestBlockFunc: func(_ context.Context) (*ledger.Block, error) {
			return &ledger.Block{Number: 200, Hash: common.HexToHash("0x05"), Timestamp: start}, nil
		},
	}
	f.notifier = &mocks.NotifierMock{
		NotifyFunc: func(_ context.Context, _ notify.Event) error { return nil },
	}

	logger := slog.New(slog.DiscardHandler)

	paymentGuard, err := guard.New(f.verifier, guard.WithLogger(logger))
	require.NoError(t, err)

	if raffleStore == nil {
		f.store = memory.New()
		raffleStore = f.store
	}

	var ids atomic.Int64
	stats, err := engine.NewStats(prometheus.NewRegistry())
	require.NoError(t, err)

	f.sut, err = engine.New(raffleStore, paymentGuard, f.blocks,
		engine.WithLogger(logger),
		engine.WithNotifier(f.notifier),
		engine.WithNow(f.now),
		engine.WithIDGenerator(func() string { return fmt.Sprintf("id-%d", ids.Add(1)) }),
		engine.WithPaymentTerms(contract, creationFee, time.Hour),
		engine.WithSaveRetries(3, time.Millisecond),
		engine.WithStats(stats),
	)
	require.NoError(t, err)

	return f
}

func terms(maxTickets int64) raffle.Terms {
	return raffle.Terms{
		Title:       "Signed guitar",
		Description: "Guitar signed by the band",
		Kind:        raffle.KindRaffle,
		PrizeValue:  uint256.NewInt(1_000_000_000_000_000_000),
		TicketPrice: uint256.NewInt(1_000),
		MaxTickets:  maxTickets,
		EndTime:     start.Add(time.Hour),
	}
}

func TestEngine_CreateRaffle(t *testing.T) {
	tt := []struct {
		name     string
		terms    raffle.Terms
		txHash   string
		rejectAs verifier.Reason

		expectedErr         error
		expectedReason      verifier.Reason
		expectedVerifyCalls int
	}{
		{
			name:   "verified",
			terms:  terms(5),
			txHash: hash(1),

			expectedVerifyCalls: 1,
		},
		{
			name:     "payment to another contract",
			terms:    terms(5),
			txHash:   hash(1),
			rejectAs: verifier.ReasonWrongContract,

			expectedErr:         verifier.ErrPaymentRejected,
			expectedReason:      verifier.ReasonWrongContract,
			expectedVerifyCalls: 1,
		},
		{
			name:     "ledger unavailable",
			terms:    terms(5),
			txHash:   hash(1),
			rejectAs: "unavailable",

			expectedErr:         ledger.ErrLedgerUnavailable,
			expectedVerifyCalls: 1,
		},
		{
			name:   "invalid terms",
			terms:  terms(0),
			txHash: hash(1),

			expectedErr: raffle.ErrInvalidTerms,
		},
		{
			name:   "invalid hash",
			terms:  terms(5),
			txHash: "0x1234",

			expectedErr: engine.ErrInvalidInput,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			// given
			f := newFixture(t, nil)
			if tc.rejectAs != "" {
				f.reject(tc.txHash, tc.rejectAs)
			}

			// when
			r, err := f.sut.CreateRaffle(context.Background(), creator, tc.terms, tc.txHash)

			// then
			require.Len(t, f.verifier.VerifyCalls(), tc.expectedVerifyCalls)

			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)

				var rejection *verifier.RejectionError
				if tc.expectedReason != "" {
					require.ErrorAs(t, err, &rejection)
					require.Equal(t, tc.expectedReason, rejection.Reason)
				}

				all, err := f.store.ListRaffles(context.Background(), raffle.Filter{})
				require.NoError(t, err)
				require.Empty(t, all)
				require.Empty(t, f.notifier.NotifyCalls())
				return
			}

			require.NoError(t, err)
			require.Equal(t, raffle.StatusActive, r.Status)
			require.True(t, r.IsVerified())
			require.Equal(t, "id-1", r.ID)

			req := f.verifier.VerifyCalls()[0].Req
			require.Equal(t, creator, req.ExpectedSender)
			require.Equal(t, contract, req.ExpectedContract)
			require.Equal(t, creationFee, req.MinAmount)
			require.Equal(t, time.Hour, req.MaxAge)

			stored, err := f.store.GetRaffle(context.Background(), r.ID)
			require.NoError(t, err)
			require.Equal(t, r, stored)
			require.Equal(t, []notify.EventType{notify.EventActivated}, f.events())
		})
	}

	t.Run("creation hash cannot pay for a second raffle", func(t *testing.T) {
		// given
		f := newFixture(t, nil)
		_, err := f.sut.CreateRaffle(context.Background(), creator, terms(5), hash(1))
		require.NoError(t, err)

		// when
		_, err = f.sut.CreateRaffle(context.Background(), creator, terms(5), "0x"+strings.ToUpper(hash(1)[2:]))

		// then
		require.ErrorIs(t, err, store.ErrTransactionReplayed)
		require.Len(t, f.verifier.VerifyCalls(), 1)
	})
}

func TestEngine_TwoPhaseCreation(t *testing.T) {
	ctx := context.Background()

	t.Run("draft stays hidden until activated", func(t *testing.T) {
		// given
		f := newFixture(t, nil)

		draft, err := f.sut.DraftRaffle(ctx, creator, terms(5))
		require.NoError(t, err)
		require.Equal(t, raffle.StatusDraft, draft.Status)

		// when
		read, err := f.sut.GetRaffle(ctx, draft.ID)
		require.NoError(t, err)
		listed, err := f.sut.ListVerifiedRaffles(ctx, raffle.Filter{})
		require.NoError(t, err)
		_, purchaseErr := f.sut.PurchaseTickets(ctx, draft.ID, alice, 1, hash(9))
		_, forbiddenErr := f.sut.ActivateRaffle(ctx, draft.ID, alice, hash(1))

		activated, err := f.sut.ActivateRaffle(ctx, draft.ID, creator, hash(1))

		// then
		require.True(t, read.Redacted)
		require.Equal(t, guard.RedactedTitle, read.Title)
		require.Empty(t, listed)
		require.ErrorIs(t, purchaseErr, guard.ErrRaffleUnverified)
		require.ErrorIs(t, forbiddenErr, raffle.ErrForbidden)

		require.NoError(t, err)
		require.Equal(t, raffle.StatusActive, activated.Status)

		listed, err = f.sut.ListVerifiedRaffles(ctx, raffle.Filter{})
		require.NoError(t, err)
		require.Len(t, listed, 1)

		_, err = f.sut.ActivateRaffle(ctx, draft.ID, creator, hash(2))
		require.ErrorIs(t, err, raffle.ErrInvalidState)
	})

	t.Run("rejected payment rejects the draft", func(t *testing.T) {
		// given
		f := newFixture(t, nil)
		f.reject(hash(1), verifier.ReasonInsufficientAmount)

		draft, err := f.sut.DraftRaffle(ctx, creator, terms(5))
		require.NoError(t, err)

		// when
		_, err = f.sut.ActivateRaffle(ctx, draft.ID, creator, hash(1))

		// then
		require.ErrorIs(t, err, verifier.ErrPaymentRejected)

		stored, err := f.store.GetRaffle(ctx, draft.ID)
		require.NoError(t, err)
		require.Equal(t, raffle.StatusRejected, stored.Status)
		require.Equal(t, "insufficient_amount", *stored.RejectReason)
	})

	t.Run("unavailable ledger keeps the draft", func(t *testing.T) {
		// given
		f := newFixture(t, nil)
		f.reject(hash(1), "unavailable")

		draft, err := f.sut.DraftRaffle(ctx, creator, terms(5))
		require.NoError(t, err)

		// when
		_, err = f.sut.ActivateRaffle(ctx, draft.ID, creator, hash(1))

		// then
		require.ErrorIs(t, err, ledger.ErrLedgerUnavailable)

		stored, err := f.store.GetRaffle(ctx, draft.ID)
		require.NoError(t, err)
		require.Equal(t, raffle.StatusDraft, stored.Status)
	})
}

func TestEngine_PurchaseTickets(t *testing.T) {
	ctx := context.Background()

	t.Run("sold out after five single purchases", func(t *testing.T) {
		// given
		f := newFixture(t, nil)
		r, err := f.sut.CreateRaffle(ctx, creator, terms(5), hash(1))
		require.NoError(t, err)

		// when
		for i := 0; i < 5; i++ {
			r, err = f.sut.PurchaseTickets(ctx, r.ID, alice, 1, hash(10+i))
			require.NoError(t, err)
		}
		_, sixthErr := f.sut.PurchaseTickets(ctx, r.ID, bob, 1, hash(20))

		// then
		require.Equal(t, raffle.StatusClosed, r.Status)
		require.Equal(t, raffle.CloseReasonSoldOut, *r.CloseReason)
		require.Equal(t, int64(5), r.TicketsSold)
		require.Equal(t, blockHash(hash(14)), *r.SeedBlockHash)
		require.Equal(t, uint64(100), *r.SeedBlockNumber)

		require.ErrorIs(t, sixthErr, raffle.ErrInvalidState)
		// creation plus five purchases, the sixth is refused before asking the ledger
		require.Len(t, f.verifier.VerifyCalls(), 6)

		purchases, err := f.sut.GetPurchases(ctx, r.ID)
		require.NoError(t, err)
		require.Len(t, purchases, 5)
		for i, p := range purchases {
			require.Equal(t, int64(i+1), p.Sequence)
			require.Equal(t, int64(i), p.FirstTicket)
		}

		require.Equal(t, []notify.EventType{notify.EventActivated, notify.EventClosed}, f.events())
	})

	t.Run("payment covers all tickets", func(t *testing.T) {
		// given
		f := newFixture(t, nil)
		r, err := f.sut.CreateRaffle(ctx, creator, terms(5), hash(1))
		require.NoError(t, err)

		// when
		r, err = f.sut.PurchaseTickets(ctx, r.ID, alice, 3, hash(2))

		// then
		require.NoError(t, err)
		require.Equal(t, int64(3), r.TicketsSold)

		req := f.verifier.VerifyCalls()[1].Req
		require.Equal(t, uint64(3_000), req.MinAmount.Uint64())
		require.Equal(t, alice, req.ExpectedSender)
		require.Equal(t, hash(2), req.TxHash)
	})

	t.Run("undecodable paid amount", func(t *testing.T) {
		// given
		f := newFixture(t, nil)
		r, err := f.sut.CreateRaffle(ctx, creator, terms(5), hash(1))
		require.NoError(t, err)

		f.verifier.VerifyFunc = func(_ context.Context, req verifier.Request) (*verifier.Verdict, error) {
			return &verifier.Verdict{
				TxHash:   req.TxHash,
				Verified: true,
				Record:   &verifier.Record{TxHash: req.TxHash, Amount: "0xzz", BlockNumber: 100, BlockHash: blockHash(req.TxHash)},
			}, nil
		}

		// when
		_, err = f.sut.PurchaseTickets(ctx, r.ID, alice, 1, hash(2))

		// then
		require.ErrorIs(t, err, engine.ErrPaymentAmount)

		stored, err := f.store.GetRaffle(ctx, r.ID)
		require.NoError(t, err)
		require.Equal(t, int64(0), stored.TicketsSold)

		purchases, err := f.sut.GetPurchases(ctx, r.ID)
		require.NoError(t, err)
		require.Empty(t, purchases)
	})

	t.Run("huge quantity after a sale", func(t *testing.T) {
		// given
		f := newFixture(t, nil)
		r, err := f.sut.CreateRaffle(ctx, creator, terms(5), hash(1))
		require.NoError(t, err)
		_, err = f.sut.PurchaseTickets(ctx, r.ID, alice, 1, hash(2))
		require.NoError(t, err)

		// when
		_, err = f.sut.PurchaseTickets(ctx, r.ID, bob, math.MaxInt64, hash(3))

		// then
		require.ErrorIs(t, err, raffle.ErrCapacityExceeded)
		require.Len(t, f.verifier.VerifyCalls(), 2)

		stored, err := f.store.GetRaffle(ctx, r.ID)
		require.NoError(t, err)
		require.Equal(t, int64(1), stored.TicketsSold)
		require.Equal(t, raffle.StatusActive, stored.Status)
	})

	tt := []struct {
		name     string
		quantity int64
		txHash   string
		rejectAs verifier.Reason
		after    time.Duration

		expectedErr         error
		expectedVerifyCalls int
	}{
		{
			name:     "more tickets than left",
			quantity: 6,
			txHash:   hash(2),

			expectedErr:         raffle.ErrCapacityExceeded,
			expectedVerifyCalls: 1,
		},
		{
			name:     "no tickets",
			quantity: 0,
			txHash:   hash(2),

			expectedErr:         raffle.ErrInvalidQuantity,
			expectedVerifyCalls: 1,
		},
		{
			name:     "creation hash replayed",
			quantity: 1,
			txHash:   hash(1),

			expectedErr:         store.ErrTransactionReplayed,
			expectedVerifyCalls: 1,
		},
		{
			name:     "stale payment",
			quantity: 1,
			txHash:   hash(2),
			rejectAs: verifier.ReasonStale,

			expectedErr:         verifier.ErrPaymentRejected,
			expectedVerifyCalls: 2,
		},
		{
			name:     "expired",
			quantity: 1,
			txHash:   hash(2),
			after:    time.Hour,

			expectedErr:         raffle.ErrInvalidState,
			expectedVerifyCalls: 1,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			// given
			f := newFixture(t, nil)
			r, err := f.sut.CreateRaffle(ctx, creator, terms(5), hash(1))
			require.NoError(t, err)

			if tc.rejectAs != "" {
				f.reject(tc.txHash, tc.rejectAs)
			}
			f.advance(tc.after)

			// when
			_, err = f.sut.PurchaseTickets(ctx, r.ID, alice, tc.quantity, tc.txHash)

			// then
			require.ErrorIs(t, err, tc.expectedErr)
			require.Len(t, f.verifier.VerifyCalls(), tc.expectedVerifyCalls)

			stored, err := f.store.GetRaffle(ctx, r.ID)
			require.NoError(t, err)
			require.Equal(t, int64(0), stored.TicketsSold)
			require.Equal(t, int64(1), stored.Version)
		})
	}

	t.Run("unknown raffle", func(t *testing.T) {
		f := newFixture(t, nil)

		_, err := f.sut.PurchaseTickets(ctx, "unknown", alice, 1, hash(2))
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestEngine_ConcurrentPurchases(t *testing.T) {
	// given
	ctx := context.Background()
	f := newFixture(t, nil)
	r, err := f.sut.CreateRaffle(ctx, creator, terms(5), hash(1))
	require.NoError(t, err)

	// both purchases pass the capacity check before either is saved
	var verified sync.WaitGroup
	verified.Add(2)
	verify := f.verifier.VerifyFunc
	f.verifier.VerifyFunc = func(ctx context.Context, req verifier.Request) (*verifier.Verdict, error) {
		verified.Done()
		verified.Wait()
		return verify(ctx, req)
	}

	buyers := []string{alice, bob}
	errs := make([]error, len(buyers))

	// when
	var wg sync.WaitGroup
	for i, buyer := range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.sut.PurchaseTickets(ctx, r.ID, buyer, 3, hash(10+i))
		}()
	}
	wg.Wait()

	// then
	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, raffle.ErrCapacityExceeded):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, rejected)

	stored, err := f.store.GetRaffle(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3), stored.TicketsSold)

	purchases, err := f.store.GetPurchases(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, purchases, 1)
}

func TestEngine_Settlement(t *testing.T) {
	ctx := context.Background()

	// expired raffle with tickets 0 (alice) and 1 (bob); the latest block hash 0x..05 draws ticket 5 mod 2 = 1
	closedRaffle := func(t *testing.T, f *fixture) *raffle.Raffle {
		t.Helper()

		r, err := f.sut.CreateRaffle(ctx, creator, terms(5), hash(1))
		require.NoError(t, err)
		_, err = f.sut.PurchaseTickets(ctx, r.ID, alice, 1, hash(2))
		require.NoError(t, err)
		_, err = f.sut.PurchaseTickets(ctx, r.ID, bob, 1, hash(3))
		require.NoError(t, err)

		f.advance(time.Hour)
		r, err = f.sut.CloseIfEligible(ctx, r.ID)
		require.NoError(t, err)
		return r
	}

	t.Run("close, draw, approve", func(t *testing.T) {
		// given
		f := newFixture(t, nil)
		r := closedRaffle(t, f)

		require.Equal(t, raffle.StatusClosed, r.Status)
		require.Equal(t, raffle.CloseReasonExpired, *r.CloseReason)
		require.Equal(t, uint64(200), *r.SeedBlockNumber)

		// closing again changes nothing
		again, err := f.sut.CloseIfEligible(ctx, r.ID)
		require.NoError(t, err)
		require.Equal(t, r, again)
		require.Len(t, f.blocks.LatestBlockCalls(), 1)

		_, err = f.sut.ApproveAsCreator(ctx, r.ID, creator)
		require.ErrorIs(t, err, raffle.ErrInvalidState)

		// when
		r, err = f.sut.SelectWinner(ctx, r.ID)
		require.NoError(t, err)

		// then
		require.Equal(t, raffle.StatusMutualApprovalPending, r.Status)
		require.Equal(t, int64(1), *r.WinningTicket)
		require.Equal(t, bob, *r.WinnerID)

		_, err = f.sut.SelectWinner(ctx, r.ID)
		require.ErrorIs(t, err, raffle.ErrInvalidState)

		_, err = f.sut.ApproveAsWinner(ctx, r.ID, alice)
		require.ErrorIs(t, err, raffle.ErrForbidden)

		r, err = f.sut.ApproveAsCreator(ctx, r.ID, creator)
		require.NoError(t, err)
		require.Equal(t, raffle.StatusMutualApprovalPending, r.Status)

		version := r.Version
		r, err = f.sut.ApproveAsCreator(ctx, r.ID, creator)
		require.NoError(t, err)
		require.Equal(t, version, r.Version)

		r, err = f.sut.ApproveAsWinner(ctx, r.ID, "0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
		require.NoError(t, err)
		require.Equal(t, raffle.StatusSettled, r.Status)
		require.NotNil(t, r.SettledAt)

		require.Equal(t, []notify.EventType{
			notify.EventActivated,
			notify.EventClosed,
			notify.EventWinnerSelected,
			notify.EventSettled,
		}, f.events())
	})

	t.Run("dispute", func(t *testing.T) {
		// given
		f := newFixture(t, nil)
		r := closedRaffle(t, f)
		_, err := f.sut.SelectWinner(ctx, r.ID)
		require.NoError(t, err)

		// when
		_, forbiddenErr := f.sut.Dispute(ctx, r.ID, alice, "not the winner")
		r, err = f.sut.Dispute(ctx, r.ID, bob, "prize was not delivered")

		// then
		require.ErrorIs(t, forbiddenErr, raffle.ErrForbidden)
		require.NoError(t, err)
		require.Equal(t, raffle.StatusDisputed, r.Status)

		_, err = f.sut.ApproveAsCreator(ctx, r.ID, creator)
		require.ErrorIs(t, err, raffle.ErrInvalidState)
		require.Equal(t, notify.EventDisputed, f.events()[len(f.events())-1])
	})

	t.Run("not eligible", func(t *testing.T) {
		f := newFixture(t, nil)
		r, err := f.sut.CreateRaffle(ctx, creator, terms(5), hash(1))
		require.NoError(t, err)

		actual, err := f.sut.CloseIfEligible(ctx, r.ID)
		require.NoError(t, err)
		require.Equal(t, raffle.StatusActive, actual.Status)
		require.Equal(t, r.Version, actual.Version)
		require.Empty(t, f.blocks.LatestBlockCalls())
	})

	t.Run("expired without sales is voided", func(t *testing.T) {
		f := newFixture(t, nil)
		r, err := f.sut.CreateRaffle(ctx, creator, terms(5), hash(1))
		require.NoError(t, err)
		f.advance(2 * time.Hour)

		r, err = f.sut.CloseIfEligible(ctx, r.ID)
		require.NoError(t, err)
		require.Equal(t, raffle.StatusVoided, r.Status)

		_, err = f.sut.SelectWinner(ctx, r.ID)
		require.ErrorIs(t, err, raffle.ErrInvalidState)
		require.Equal(t, []notify.EventType{notify.EventActivated, notify.EventVoided}, f.events())
	})

	t.Run("ledger unavailable while closing", func(t *testing.T) {
		f := newFixture(t, nil)
		r, err := f.sut.CreateRaffle(ctx, creator, terms(5), hash(1))
		require.NoError(t, err)
		_, err = f.sut.PurchaseTickets(ctx, r.ID, alice, 1, hash(2))
		require.NoError(t, err)

		f.blocks.LatestBlockFunc = func(_ context.Context) (*ledger.Block, error) {
			return nil, ledger.ErrLedgerUnavailable
		}
		f.advance(time.Hour)

		_, err = f.sut.CloseIfEligible(ctx, r.ID)
		require.ErrorIs(t, err, ledger.ErrLedgerUnavailable)

		stored, err := f.store.GetRaffle(ctx, r.ID)
		require.NoError(t, err)
		require.Equal(t, raffle.StatusActive, stored.Status)
	})
}

// conflictingStore reports a concurrent modification on the first saves.
type conflictingStore struct {
	*memory.Store
	conflicts atomic.Int32
}

func (s *conflictingStore) SaveRaffle(ctx context.Context, r *raffle.Raffle) error {
	if s.conflicts.Add(-1) >= 0 {
		return store.ErrVersionConflict
	}
	return s.Store.SaveRaffle(ctx, r)
}

func TestEngine_VersionConflicts(t *testing.T) {
	ctx := context.Background()

	tt := []struct {
		name      string
		conflicts int32

		expectedErr error
	}{
		{
			name:      "resolved by reload",
			conflicts: 2,
		},
		{
			name:      "retries exhausted",
			conflicts: 10,

			expectedErr: store.ErrVersionConflict,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			// given
			s := &conflictingStore{Store: memory.New()}
			f := newFixture(t, s)
			f.store = s.Store

			r, err := f.sut.CreateRaffle(ctx, creator, terms(5), hash(1))
			require.NoError(t, err)
			_, err = f.sut.PurchaseTickets(ctx, r.ID, alice, 1, hash(2))
			require.NoError(t, err)
			f.advance(time.Hour)

			s.conflicts.Store(tc.conflicts)

			// when
			actual, err := f.sut.CloseIfEligible(ctx, r.ID)

			// then
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, raffle.StatusClosed, actual.Status)
			require.Len(t, f.blocks.LatestBlockCalls(), 3)
		})
	}
}

func TestEngine_ListVerifiedRaffles(t *testing.T) {
	// given
	ctx := context.Background()
	f := newFixture(t, nil)

	for i := 0; i < 3; i++ {
		_, err := f.sut.CreateRaffle(ctx, creator, terms(5), hash(i+1))
		require.NoError(t, err)
		f.advance(time.Minute)
	}
	_, err := f.sut.DraftRaffle(ctx, creator, terms(5))
	require.NoError(t, err)

	// when
	all, err := f.sut.ListVerifiedRaffles(ctx, raffle.Filter{})
	require.NoError(t, err)
	paged, err := f.sut.ListVerifiedRaffles(ctx, raffle.Filter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	drafts, err := f.sut.ListVerifiedRaffles(ctx, raffle.Filter{Statuses: []raffle.Status{raffle.StatusDraft}})
	require.NoError(t, err)

	// then
	require.Len(t, all, 3)
	for _, r := range all {
		require.True(t, r.IsVerified())
	}
	require.Len(t, paged, 1)
	require.Equal(t, "id-2", paged[0].ID)
	require.Empty(t, drafts)
}

func TestEngine_CloseExpired(t *testing.T) {
	// given
	ctx := context.Background()
	f := newFixture(t, nil)

	withSales, err := f.sut.CreateRaffle(ctx, creator, terms(5), hash(1))
	require.NoError(t, err)
	_, err = f.sut.PurchaseTickets(ctx, withSales.ID, alice, 2, hash(2))
	require.NoError(t, err)
	withoutSales, err := f.sut.CreateRaffle(ctx, creator, terms(5), hash(3))
	require.NoError(t, err)

	later := terms(5)
	later.EndTime = start.Add(24 * time.Hour)
	running, err := f.sut.CreateRaffle(ctx, creator, later, hash(4))
	require.NoError(t, err)

	f.advance(time.Hour)

	// when
	closed, err := f.sut.CloseExpired(ctx, 10)

	// then
	require.NoError(t, err)
	require.Equal(t, 2, closed)

	for id, expected := range map[string]raffle.Status{
		withSales.ID:    raffle.StatusClosed,
		withoutSales.ID: raffle.StatusVoided,
		running.ID:      raffle.StatusActive,
	} {
		r, err := f.store.GetRaffle(ctx, id)
		require.NoError(t, err)
		require.Equal(t, expected, r.Status)
	}
}

func TestExpiryWorker(t *testing.T) {
	// given
	ctx := context.Background()
	f := newFixture(t, nil)

	r, err := f.sut.CreateRaffle(ctx, creator, terms(5), hash(1))
	require.NoError(t, err)
	f.advance(time.Hour)

	sut := engine.NewExpiryWorker(f.sut, 10*time.Millisecond, 10)

	// when
	sut.Start()
	defer sut.GracefulStop()

	// then
	require.Eventually(t, func() bool {
		stored, err := f.store.GetRaffle(ctx, r.ID)
		return err == nil && stored.Status == raffle.StatusVoided
	}, time.Second, 10*time.Millisecond)
}

func TestNew(t *testing.T) {
	paymentGuard, err := guard.New(&guardmocks.PaymentVerifierMock{})
	require.NoError(t, err)
	blocks := &mocks.BlockSourceMock{}

	_, err = engine.New(nil, paymentGuard, blocks)
	require.ErrorIs(t, err, engine.ErrStoreNil)

	_, err = engine.New(memory.New(), nil, blocks)
	require.ErrorIs(t, err, engine.ErrGuardNil)

	_, err = engine.New(memory.New(), paymentGuard, nil)
	require.ErrorIs(t, err, engine.ErrBlockSourceNil)
}
