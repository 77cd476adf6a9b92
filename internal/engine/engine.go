package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rafflechain/settler/internal/guard"
	"github.com/rafflechain/settler/internal/ledger"
	"github.com/rafflechain/settler/internal/notify"
	"github.com/rafflechain/settler/internal/raffle"
	"github.com/rafflechain/settler/internal/raffle/store"
	"github.com/rafflechain/settler/pkg/tracing"
)

const (
	defaultListLimit      = 50
	maxListLimit          = 200
	defaultMaxSaveRetries = 3
	defaultRetryInterval  = 20 * time.Millisecond
	defaultMaxTxAge       = 24 * time.Hour
)

var (
	ErrStoreNil       = errors.New("raffle store is nil")
	ErrGuardNil       = errors.New("payment guard is nil")
	ErrBlockSourceNil = errors.New("block source is nil")
	ErrInvalidInput   = errors.New("invalid input")
	ErrAmountOverflow = errors.New("payment amount overflows")
	ErrPaymentAmount  = errors.New("failed to decode paid amount")
)

// BlockSource provides the block which seeds the draw of expired raffles.
type BlockSource interface {
	LatestBlock(ctx context.Context) (*ledger.Block, error)
}

type Notifier interface {
	Notify(ctx context.Context, event notify.Event) error
}

// Engine runs the operations on raffles. Every write is guarded by a verified payment and persisted
// with an optimistic version check.
type Engine struct {
	store    store.RaffleStore
	guard    *guard.Guard
	blocks   BlockSource
	notifier Notifier
	logger   *slog.Logger
	stats    *Stats
	tracing  tracing.Settings

	now   func() time.Time
	newID func() string

	contract       string
	creationFee    *uint256.Int
	maxTxAge       time.Duration
	maxSaveRetries int
	retryInterval  time.Duration
}

func WithLogger(logger *slog.Logger) func(*Engine) {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithNotifier(notifier Notifier) func(*Engine) {
	return func(e *Engine) {
		e.notifier = notifier
	}
}

func WithNow(nowFunc func() time.Time) func(*Engine) {
	return func(e *Engine) {
		e.now = nowFunc
	}
}

func WithIDGenerator(newID func() string) func(*Engine) {
	return func(e *Engine) {
		e.newID = newID
	}
}

// WithPaymentTerms sets the contract which receives all payments, the minimum creation payment in wei
// and the maximum age of a payment.
func WithPaymentTerms(contract string, creationFee *uint256.Int, maxTxAge time.Duration) func(*Engine) {
	return func(e *Engine) {
		e.contract = contract
		e.creationFee = creationFee
		e.maxTxAge = maxTxAge
	}
}

// WithSaveRetries sets how often a save is retried after a concurrent modification.
func WithSaveRetries(maxRetries int, interval time.Duration) func(*Engine) {
	return func(e *Engine) {
		e.maxSaveRetries = maxRetries
		e.retryInterval = interval
	}
}

func WithStats(stats *Stats) func(*Engine) {
	return func(e *Engine) {
		e.stats = stats
	}
}

func WithTracer(attr ...attribute.KeyValue) func(*Engine) {
	return func(e *Engine) {
		e.tracing = tracing.Enable(attr...)
	}
}

type Option func(*Engine)

func New(raffleStore store.RaffleStore, paymentGuard *guard.Guard, blocks BlockSource, opts ...Option) (*Engine, error) {
	if raffleStore == nil {
		return nil, ErrStoreNil
	}
	if paymentGuard == nil {
		return nil, ErrGuardNil
	}
	if blocks == nil {
		return nil, ErrBlockSourceNil
	}

	e := &Engine{
		store:          raffleStore,
		guard:          paymentGuard,
		blocks:         blocks,
		logger:         slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})),
		now:            time.Now,
		newID:          uuid.NewString,
		creationFee:    uint256.NewInt(0),
		maxTxAge:       defaultMaxTxAge,
		maxSaveRetries: defaultMaxSaveRetries,
		retryInterval:  defaultRetryInterval,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.logger = e.logger.With(slog.String("module", "engine"))
	if e.notifier == nil {
		e.notifier = notify.NewLogNotifier(e.logger)
	}

	return e, nil
}

// retry runs op again after a version conflict. Every other error ends the retries.
func (e *Engine) retry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.retryInterval

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if errors.Is(err, store.ErrVersionConflict) {
			e.stats.conflict()
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(e.maxSaveRetries)), ctx))
}

// update loads the raffle, applies the transition and saves it if it changed. On a concurrent
// modification the raffle is reloaded and the transition evaluated again.
func (e *Engine) update(ctx context.Context, op guard.Operation, raffleID string, transition func(r *raffle.Raffle) (bool, error)) (*raffle.Raffle, bool, error) {
	var (
		result  *raffle.Raffle
		changed bool
	)

	err := e.retry(ctx, func() error {
		r, err := e.store.GetRaffle(ctx, raffleID)
		if err != nil {
			return err
		}

		err = e.guard.RequireVerified(ctx, op, r)
		if err != nil {
			return err
		}

		changed, err = transition(r)
		if err != nil {
			return err
		}

		if changed {
			err = e.store.SaveRaffle(ctx, r)
			if err != nil {
				return err
			}
		}

		result = r
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return result, changed, nil
}

func (e *Engine) notify(ctx context.Context, eventType notify.EventType, r *raffle.Raffle) {
	e.stats.transition(r.Status)

	err := e.notifier.Notify(context.WithoutCancel(ctx), notify.NewEvent(eventType, r, e.now()))
	if err != nil {
		e.logger.WarnContext(ctx, "Failed to notify",
			slog.String("id", r.ID),
			slog.String("event", string(eventType)),
			slog.String("err", err.Error()),
		)
	}
}

// normalizeHash returns the lower case hex form of a transaction hash.
func normalizeHash(txHash string) (string, error) {
	hash, err := ledger.ParseHash(txHash)
	if err != nil {
		return "", errors.Join(ErrInvalidInput, err)
	}

	return hash.Hex(), nil
}

func (e *Engine) checkNotConsumed(ctx context.Context, op guard.Operation, txHash string) error {
	consumed, err := e.store.IsTxConsumed(ctx, txHash)
	if err != nil {
		return err
	}
	if consumed {
		e.guard.BlockReplay(ctx, op, txHash)
		return errors.Join(store.ErrTransactionReplayed, fmt.Errorf("tx hash: %s", txHash))
	}

	return nil
}

// replayed logs a replay which the store detected when consuming txHash.
func (e *Engine) replayed(ctx context.Context, op guard.Operation, txHash string, err error) error {
	if errors.Is(err, store.ErrTransactionReplayed) {
		e.guard.BlockReplay(ctx, op, txHash)
	}
	return err
}

func requireActor(actorID string) error {
	if actorID == "" {
		return errors.Join(ErrInvalidInput, errors.New("actor id is required"))
	}
	return nil
}
