package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rafflechain/settler/pkg/tracing"
)

const (
	defaultCallTimeout   = 5 * time.Second
	defaultMaxRetries    = 3
	defaultRetryInterval = 200 * time.Millisecond
)

type rpcTransaction struct {
	Hash        common.Hash     `json:"hash"`
	From        common.Address  `json:"from"`
	To          *common.Address `json:"to"`
	Value       *hexutil.Big    `json:"value"`
	BlockNumber *hexutil.Uint64 `json:"blockNumber"`
}

type rpcReceipt struct {
	TxHash      common.Hash    `json:"transactionHash"`
	Status      hexutil.Uint64 `json:"status"`
	BlockNumber hexutil.Uint64 `json:"blockNumber"`
	BlockHash   common.Hash    `json:"blockHash"`
}

type rpcBlock struct {
	Number    hexutil.Uint64 `json:"number"`
	Hash      common.Hash    `json:"hash"`
	Timestamp hexutil.Uint64 `json:"timestamp"`
}

// EthereumReader reads transactions, receipts and blocks from an Ethereum compatible JSON-RPC node.
type EthereumReader struct {
	client *rpc.Client
	eth    *ethclient.Client
	logger *slog.Logger

	callTimeout   time.Duration
	maxRetries    int
	retryInterval time.Duration

	tracing tracing.Settings
}

func WithLogger(logger *slog.Logger) func(*EthereumReader) {
	return func(r *EthereumReader) {
		r.logger = logger
	}
}

// WithCallTimeout bounds every single attempt of a call.
func WithCallTimeout(d time.Duration) func(*EthereumReader) {
	return func(r *EthereumReader) {
		r.callTimeout = d
	}
}

// WithRetries sets the number of attempts per call and the initial interval between them.
func WithRetries(attempts int, interval time.Duration) func(*EthereumReader) {
	return func(r *EthereumReader) {
		r.maxRetries = attempts
		r.retryInterval = interval
	}
}

func WithTracer(attr ...attribute.KeyValue) func(*EthereumReader) {
	return func(r *EthereumReader) {
		r.tracing = tracing.Enable(attr...)
	}
}

type Option func(*EthereumReader)

// Dial connects to the node at rawURL (http, ws or ipc).
func Dial(ctx context.Context, rawURL string, opts ...Option) (*EthereumReader, error) {
	client, err := rpc.DialContext(ctx, rawURL)
	if err != nil {
		return nil, errors.Join(ErrLedgerUnavailable, err)
	}

	return New(client, opts...), nil
}

func New(client *rpc.Client, opts ...Option) *EthereumReader {
	r := &EthereumReader{
		client:        client,
		eth:           ethclient.NewClient(client),
		logger:        slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})),
		callTimeout:   defaultCallTimeout,
		maxRetries:    defaultMaxRetries,
		retryInterval: defaultRetryInterval,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.logger = r.logger.With(slog.String("module", "ledger"))

	return r
}

func (r *EthereumReader) Close() {
	r.client.Close()
}

func (r *EthereumReader) GetTransaction(ctx context.Context, hash common.Hash) (tx *Transaction, err error) {
	ctx, span := r.tracing.Start(ctx, "EthereumReader:GetTransaction", attribute.String("hash", hash.Hex()))
	defer func() {
		tracing.EndTracing(span, err)
	}()

	var raw *rpcTransaction
	err = r.retry(ctx, "eth_getTransactionByHash", func(callCtx context.Context) error {
		return r.client.CallContext(callCtx, &raw, "eth_getTransactionByHash", hash)
	})
	if err != nil {
		return nil, err
	}

	if raw == nil {
		return nil, ErrUnknownTransaction
	}

	value := new(uint256.Int)
	if raw.Value != nil {
		var overflow bool
		value, overflow = uint256.FromBig(raw.Value.ToInt())
		if overflow {
			return nil, fmt.Errorf("transaction %s: value overflows 256 bits", hash.Hex())
		}
	}

	tx = &Transaction{
		Hash:  raw.Hash,
		From:  raw.From,
		To:    raw.To,
		Value: value,
	}

	if raw.BlockNumber != nil {
		n := uint64(*raw.BlockNumber)
		tx.BlockNumber = &n
	}

	return tx, nil
}

func (r *EthereumReader) GetReceipt(ctx context.Context, hash common.Hash) (receipt *Receipt, err error) {
	ctx, span := r.tracing.Start(ctx, "EthereumReader:GetReceipt", attribute.String("hash", hash.Hex()))
	defer func() {
		tracing.EndTracing(span, err)
	}()

	var raw *rpcReceipt
	err = r.retry(ctx, "eth_getTransactionReceipt", func(callCtx context.Context) error {
		return r.client.CallContext(callCtx, &raw, "eth_getTransactionReceipt", hash)
	})
	if err != nil {
		return nil, err
	}

	// pending transactions have no receipt yet
	if raw == nil {
		return nil, ErrUnknownTransaction
	}

	return &Receipt{
		TxHash:      raw.TxHash,
		Status:      uint64(raw.Status),
		BlockNumber: uint64(raw.BlockNumber),
		BlockHash:   raw.BlockHash,
	}, nil
}

func (r *EthereumReader) GetBlock(ctx context.Context, number uint64) (block *Block, err error) {
	ctx, span := r.tracing.Start(ctx, "EthereumReader:GetBlock", attribute.Int64("number", int64(number)))
	defer func() {
		tracing.EndTracing(span, err)
	}()

	var raw *rpcBlock
	err = r.retry(ctx, "eth_getBlockByNumber", func(callCtx context.Context) error {
		return r.client.CallContext(callCtx, &raw, "eth_getBlockByNumber", hexutil.EncodeUint64(number), false)
	})
	if err != nil {
		return nil, err
	}

	if raw == nil {
		return nil, errors.Join(ErrUnknownBlock, fmt.Errorf("block number: %d", number))
	}

	return &Block{
		Number:    uint64(raw.Number),
		Hash:      raw.Hash,
		Timestamp: time.Unix(int64(raw.Timestamp), 0).UTC(),
	}, nil
}

func (r *EthereumReader) LatestBlock(ctx context.Context) (*Block, error) {
	var number uint64
	err := r.retry(ctx, "eth_blockNumber", func(callCtx context.Context) error {
		var callErr error
		number, callErr = r.eth.BlockNumber(callCtx)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	return r.GetBlock(ctx, number)
}

// CheckChainID verifies that the node serves the expected chain.
func (r *EthereumReader) CheckChainID(ctx context.Context, expected int64) error {
	var chainID *big.Int
	err := r.retry(ctx, "eth_chainId", func(callCtx context.Context) error {
		var callErr error
		chainID, callErr = r.eth.ChainID(callCtx)
		return callErr
	})
	if err != nil {
		return err
	}

	if chainID.Cmp(big.NewInt(expected)) != 0 {
		return errors.Join(ErrChainIDMismatch, fmt.Errorf("expected: %d, actual: %s", expected, chainID.String()))
	}

	return nil
}

// retry runs call until it succeeds or the attempts are used up. Every attempt gets its own timeout.
func (r *EthereumReader) retry(ctx context.Context, method string, call func(callCtx context.Context) error) error {
	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
		defer cancel()

		err := call(callCtx)
		if isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = r.retryInterval

	retries := 0
	if r.maxRetries > 1 {
		retries = r.maxRetries - 1
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, uint64(retries)), ctx)

	notify := func(err error, nextTry time.Duration) {
		r.logger.WarnContext(ctx, "Ledger call failed", slog.String("method", method), slog.String("next try", nextTry.String()), slog.String("err", err.Error()))
	}

	err := backoff.RetryNotify(operation, policy, notify)
	if err != nil {
		return errors.Join(ErrLedgerUnavailable, fmt.Errorf("method: %s", method), err)
	}

	return nil
}

// JSON-RPC error codes of requests which fail the same way on every attempt.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// isPermanent reports whether the node rejected the request itself. Transport errors, timeouts and
// server errors are retried.
func isPermanent(err error) bool {
	var rpcErr rpc.Error
	if !errors.As(err, &rpcErr) {
		return false
	}

	switch rpcErr.ErrorCode() {
	case codeParseError, codeInvalidRequest, codeMethodNotFound, codeInvalidParams:
		return true
	}
	return false
}
