package verifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/rafflechain/settler/internal/cache"
	"github.com/rafflechain/settler/internal/ledger"
	"github.com/rafflechain/settler/pkg/tracing"
)

const (
	defaultCacheTTL = time.Hour
	cacheKeyPrefix  = "verification:"
)

var (
	ErrReaderNil      = errors.New("ledger reader is nil")
	ErrStoreNil       = errors.New("cache store is nil")
	ErrInvalidRequest = errors.New("invalid verification request")
)

// Request describes the payment a caller claims to have made.
type Request struct {
	TxHash           string
	ExpectedSender   string
	ExpectedContract string
	MinAmount        *uint256.Int
	// MaxAge is the maximum age of the containing block. Zero disables the check.
	MaxAge time.Duration
}

type Verifier struct {
	reader  ledger.Reader
	store   cache.Store
	logger  *slog.Logger
	ttl     time.Duration
	now     func() time.Time
	stats   *Stats
	flights singleflight.Group
	tracing tracing.Settings
}

func WithLogger(logger *slog.Logger) func(*Verifier) {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// WithCacheTTL sets how long a ledger observation is reused.
func WithCacheTTL(ttl time.Duration) func(*Verifier) {
	return func(v *Verifier) {
		v.ttl = ttl
	}
}

func WithNow(nowFunc func() time.Time) func(*Verifier) {
	return func(v *Verifier) {
		v.now = nowFunc
	}
}

func WithStats(stats *Stats) func(*Verifier) {
	return func(v *Verifier) {
		v.stats = stats
	}
}

func WithTracer(attr ...attribute.KeyValue) func(*Verifier) {
	return func(v *Verifier) {
		v.tracing = tracing.Enable(attr...)
	}
}

type Option func(*Verifier)

func New(reader ledger.Reader, store cache.Store, opts ...Option) (*Verifier, error) {
	if reader == nil {
		return nil, ErrReaderNil
	}
	if store == nil {
		return nil, ErrStoreNil
	}

	v := &Verifier{
		reader: reader,
		store:  store,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})),
		ttl:    defaultCacheTTL,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(v)
	}

	v.logger = v.logger.With(slog.String("module", "verifier"))

	return v, nil
}

// Verify checks the claimed payment against the ledger. A rejected payment is returned as verdict, not as error.
// Errors are either ErrInvalidRequest or ledger.ErrLedgerUnavailable.
func (v *Verifier) Verify(ctx context.Context, req Request) (verdict *Verdict, err error) {
	ctx, span := v.tracing.Start(ctx, "Verifier:Verify", attribute.String("hash", req.TxHash))
	defer func() {
		tracing.EndTracing(span, err)
	}()

	hash, err := parseRequest(req)
	if err != nil {
		return nil, err
	}

	record, found := v.cached(ctx, hash)
	if found {
		verdict = v.evaluate(record, req, true)
		v.stats.verdict(verdict)
		return verdict, nil
	}

	// the lookup is shared by concurrent callers and survives a caller giving up
	resultCh := v.flights.DoChan(hash.Hex(), func() (any, error) {
		return v.observe(context.WithoutCancel(ctx), hash)
	})

	var res singleflight.Result
	select {
	case res = <-resultCh:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if res.Err != nil {
		v.stats.ledgerUnavailable()
		return nil, res.Err
	}

	obs, ok := res.Val.(*observation)
	if !ok {
		return nil, fmt.Errorf("unexpected observation type %T", res.Val)
	}

	if obs.reason != "" {
		verdict = rejected(hash.Hex(), obs.reason, nil, false)
	} else {
		verdict = v.evaluate(obs.record, req, false)
	}

	v.stats.verdict(verdict)
	return verdict, nil
}

type observation struct {
	record *Record
	reason Reason
}

// observe reads transaction, receipt and block from the ledger. Only confirmed transactions are cached.
func (v *Verifier) observe(ctx context.Context, hash common.Hash) (*observation, error) {
	tx, err := v.reader.GetTransaction(ctx, hash)
	if err != nil {
		if errors.Is(err, ledger.ErrUnknownTransaction) {
			return &observation{reason: ReasonNotFound}, nil
		}
		return nil, err
	}

	receipt, err := v.reader.GetReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ledger.ErrUnknownTransaction) {
			return &observation{reason: ReasonNotConfirmed}, nil
		}
		return nil, err
	}

	if !receipt.Successful() {
		return &observation{reason: ReasonNotConfirmed}, nil
	}

	block, err := v.reader.GetBlock(ctx, receipt.BlockNumber)
	if err != nil {
		if errors.Is(err, ledger.ErrUnknownBlock) {
			return &observation{reason: ReasonNotConfirmed}, nil
		}
		return nil, err
	}

	// the receipt belongs to a block which was replaced in the meantime
	if block.Hash != receipt.BlockHash {
		return &observation{reason: ReasonNotConfirmed}, nil
	}

	to := ""
	if tx.To != nil {
		to = tx.To.Hex()
	}

	now := v.now()
	record := &Record{
		TxHash:      hash.Hex(),
		From:        tx.From.Hex(),
		To:          to,
		Amount:      tx.Value.Dec(),
		BlockNumber: block.Number,
		BlockHash:   block.Hash.Hex(),
		BlockTime:   block.Timestamp,
		VerifiedAt:  now,
		ExpiresAt:   now.Add(v.ttl),
	}

	v.remember(ctx, record)

	return &observation{record: record}, nil
}

// evaluate checks a ledger observation against the expectations of a request.
func (v *Verifier) evaluate(record *Record, req Request, fromCache bool) *Verdict {
	if record.To == "" || !ledger.SameAddress(record.To, req.ExpectedContract) {
		return rejected(record.TxHash, ReasonWrongContract, record, fromCache)
	}

	if !ledger.SameAddress(record.From, req.ExpectedSender) {
		return rejected(record.TxHash, ReasonWrongSender, record, fromCache)
	}

	amount, err := record.Value()
	if err != nil {
		v.logger.Error("Invalid amount in verification record", slog.String("hash", record.TxHash), slog.String("err", err.Error()))
		return rejected(record.TxHash, ReasonInsufficientAmount, record, fromCache)
	}

	if req.MinAmount != nil && amount.Lt(req.MinAmount) {
		return rejected(record.TxHash, ReasonInsufficientAmount, record, fromCache)
	}

	if req.MaxAge > 0 && v.now().Sub(record.BlockTime) > req.MaxAge {
		return rejected(record.TxHash, ReasonStale, record, fromCache)
	}

	return verified(record, fromCache)
}

func (v *Verifier) cached(ctx context.Context, hash common.Hash) (*Record, bool) {
	data, err := v.store.Get(ctx, cacheKey(hash))
	if err != nil {
		if !errors.Is(err, cache.ErrCacheNotFound) {
			v.logger.WarnContext(ctx, "Failed to read verification cache", slog.String("hash", hash.Hex()), slog.String("err", err.Error()))
		}
		return nil, false
	}

	record := &Record{}
	err = json.Unmarshal(data, record)
	if err != nil {
		v.logger.WarnContext(ctx, "Failed to decode cached verification", slog.String("hash", hash.Hex()), slog.String("err", err.Error()))
		return nil, false
	}

	if !v.now().Before(record.ExpiresAt) {
		return nil, false
	}

	return record, true
}

func (v *Verifier) remember(ctx context.Context, record *Record) {
	data, err := json.Marshal(record)
	if err != nil {
		v.logger.ErrorContext(ctx, "Failed to encode verification", slog.String("hash", record.TxHash), slog.String("err", err.Error()))
		return
	}

	stored, err := v.store.SetIfAbsent(ctx, cacheKeyFromHex(record.TxHash), data, v.ttl)
	if err != nil {
		v.logger.WarnContext(ctx, "Failed to cache verification", slog.String("hash", record.TxHash), slog.String("err", err.Error()))
		return
	}

	if !stored {
		v.logger.DebugContext(ctx, "Verification already cached", slog.String("hash", record.TxHash))
	}
}

func parseRequest(req Request) (common.Hash, error) {
	hash, err := ledger.ParseHash(req.TxHash)
	if err != nil {
		return common.Hash{}, errors.Join(ErrInvalidRequest, err)
	}

	if _, err = ledger.ParseAddress(req.ExpectedContract); err != nil {
		return common.Hash{}, errors.Join(ErrInvalidRequest, fmt.Errorf("expected contract: %w", err))
	}

	if _, err = ledger.ParseAddress(req.ExpectedSender); err != nil {
		return common.Hash{}, errors.Join(ErrInvalidRequest, fmt.Errorf("expected sender: %w", err))
	}

	return hash, nil
}

func cacheKey(hash common.Hash) string {
	return cacheKeyPrefix + strings.ToLower(hash.Hex())
}

func cacheKeyFromHex(hash string) string {
	return cacheKeyPrefix + strings.ToLower(hash)
}
