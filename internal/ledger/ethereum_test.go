package ledger

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	txHash      = common.HexToHash("0x88df016429689c079f3b2f6ad39fa052532c56795b733da78a91ebe6a713944b")
	blockHash   = common.HexToHash("0x1d59ff54b1eb26b013ce3cb5fc9dab3705b415a67127a003c3e61eb445bb8df2")
	buyer       = common.HexToAddress("0xa7d9ddbe1f17865597fbd27ec712455208b6b76d")
	contract    = common.HexToAddress("0xf02c1c8e6114b1dbe8937a39260b5b0a374432bb")
	blockNumber = hexutil.Uint64(5_000_000)
)

// ethService answers the eth_ namespace from fixed data.
type ethService struct {
	mu       sync.Mutex
	failures int
	failCode int
	delay    time.Duration
	calls    int

	txs      map[common.Hash]*rpcTransaction
	receipts map[common.Hash]*rpcReceipt
	blocks   map[uint64]*rpcBlock
	head     uint64
	chainID  int64
}

func (s *ethService) attempt() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.failures > 0 {
		s.failures--
		if s.failCode != 0 {
			return codedError{code: s.failCode}
		}
		return errors.New("node overloaded")
	}
	return nil
}

type codedError struct {
	code int
}

func (e codedError) Error() string  { return "request rejected" }
func (e codedError) ErrorCode() int { return e.code }

func (s *ethService) GetTransactionByHash(hash common.Hash) (*rpcTransaction, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if err := s.attempt(); err != nil {
		return nil, err
	}
	return s.txs[hash], nil
}

func (s *ethService) GetTransactionReceipt(hash common.Hash) (*rpcReceipt, error) {
	if err := s.attempt(); err != nil {
		return nil, err
	}
	return s.receipts[hash], nil
}

func (s *ethService) GetBlockByNumber(number hexutil.Uint64, _ bool) (*rpcBlock, error) {
	if err := s.attempt(); err != nil {
		return nil, err
	}
	return s.blocks[uint64(number)], nil
}

func (s *ethService) BlockNumber() (hexutil.Uint64, error) {
	if err := s.attempt(); err != nil {
		return 0, err
	}
	return hexutil.Uint64(s.head), nil
}

func (s *ethService) ChainId() (*hexutil.Big, error) { //nolint:revive // json-rpc method name
	return (*hexutil.Big)(big.NewInt(s.chainID)), nil
}

func newEthService() *ethService {
	return &ethService{
		txs: map[common.Hash]*rpcTransaction{
			txHash: {
				Hash:        txHash,
				From:        buyer,
				To:          &contract,
				Value:       (*hexutil.Big)(big.NewInt(3_000_000_000_000_000)),
				BlockNumber: &blockNumber,
			},
		},
		receipts: map[common.Hash]*rpcReceipt{
			txHash: {
				TxHash:      txHash,
				Status:      1,
				BlockNumber: blockNumber,
				BlockHash:   blockHash,
			},
		},
		blocks: map[uint64]*rpcBlock{
			uint64(blockNumber): {
				Number:    blockNumber,
				Hash:      blockHash,
				Timestamp: 1_700_000_000,
			},
		},
		head:    uint64(blockNumber),
		chainID: 11155111,
	}
}

func newTestReader(t *testing.T, svc *ethService, opts ...Option) *EthereumReader {
	t.Helper()

	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", svc))
	t.Cleanup(server.Stop)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	opts = append([]Option{WithLogger(logger), WithRetries(3, time.Millisecond)}, opts...)

	sut := New(rpc.DialInProc(server), opts...)
	t.Cleanup(sut.Close)

	return sut
}

func TestEthereumReader_GetTransaction(t *testing.T) {
	tt := []struct {
		name     string
		hash     common.Hash
		failures int

		expectedErr   error
		expectedCalls int
	}{
		{
			name: "found",
			hash: txHash,

			expectedCalls: 1,
		},
		{
			name: "not found",
			hash: common.HexToHash("0x01"),

			expectedErr:   ErrUnknownTransaction,
			expectedCalls: 1,
		},
		{
			name:     "transient failure - retried",
			hash:     txHash,
			failures: 2,

			expectedCalls: 3,
		},
		{
			name:     "node keeps failing",
			hash:     txHash,
			failures: 5,

			expectedErr:   ErrLedgerUnavailable,
			expectedCalls: 3,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := newEthService()
			svc.failures = tc.failures
			sut := newTestReader(t, svc)

			// when
			tx, err := sut.GetTransaction(context.Background(), tc.hash)

			// then
			require.Equal(t, tc.expectedCalls, svc.calls)
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				require.Nil(t, tx)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, buyer, tx.From)
			assert.Equal(t, contract, *tx.To)
			assert.Equal(t, uint256.NewInt(3_000_000_000_000_000), tx.Value)
			require.NotNil(t, tx.BlockNumber)
			assert.Equal(t, uint64(blockNumber), *tx.BlockNumber)
		})
	}
}

func TestEthereumReader_PermanentErrors(t *testing.T) {
	tt := []struct {
		name     string
		failCode int

		expectedCalls int
	}{
		{
			name:     "invalid params",
			failCode: codeInvalidParams,

			expectedCalls: 1,
		},
		{
			name:     "method not found",
			failCode: codeMethodNotFound,

			expectedCalls: 1,
		},
		{
			name:     "server error",
			failCode: -32000,

			expectedCalls: 3,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := newEthService()
			svc.failures = 5
			svc.failCode = tc.failCode
			sut := newTestReader(t, svc)

			// when
			_, err := sut.GetTransaction(context.Background(), txHash)

			// then
			require.ErrorIs(t, err, ErrLedgerUnavailable)
			require.Equal(t, tc.expectedCalls, svc.calls)
		})
	}
}

func TestEthereumReader_CallTimeout(t *testing.T) {
	// given
	svc := newEthService()
	svc.delay = 200 * time.Millisecond
	sut := newTestReader(t, svc, WithCallTimeout(10*time.Millisecond), WithRetries(2, time.Millisecond))

	// when
	_, err := sut.GetTransaction(context.Background(), txHash)

	// then
	require.ErrorIs(t, err, ErrLedgerUnavailable)
}

func TestEthereumReader_GetReceipt(t *testing.T) {
	// given
	svc := newEthService()
	sut := newTestReader(t, svc)

	// when
	receipt, err := sut.GetReceipt(context.Background(), txHash)

	// then
	require.NoError(t, err)
	assert.True(t, receipt.Successful())
	assert.Equal(t, blockHash, receipt.BlockHash)
	assert.Equal(t, uint64(blockNumber), receipt.BlockNumber)

	_, err = sut.GetReceipt(context.Background(), common.HexToHash("0x02"))
	require.ErrorIs(t, err, ErrUnknownTransaction)
}

func TestEthereumReader_Blocks(t *testing.T) {
	// given
	svc := newEthService()
	sut := newTestReader(t, svc)

	// when
	block, err := sut.GetBlock(context.Background(), uint64(blockNumber))
	require.NoError(t, err)
	latest, err := sut.LatestBlock(context.Background())
	require.NoError(t, err)
	_, unknownErr := sut.GetBlock(context.Background(), 1)

	// then
	assert.Equal(t, blockHash, block.Hash)
	assert.Equal(t, time.Unix(1_700_000_000, 0).UTC(), block.Timestamp)
	assert.Equal(t, block, latest)
	require.ErrorIs(t, unknownErr, ErrUnknownBlock)
}

func TestEthereumReader_CheckChainID(t *testing.T) {
	// given
	svc := newEthService()
	sut := newTestReader(t, svc)

	// then
	require.NoError(t, sut.CheckChainID(context.Background(), 11155111))
	require.ErrorIs(t, sut.CheckChainID(context.Background(), 1), ErrChainIDMismatch)
}

func TestParse(t *testing.T) {
	_, err := ParseHash(txHash.Hex())
	require.NoError(t, err)

	_, err = ParseHash("0x1234")
	require.ErrorIs(t, err, ErrInvalidHash)

	_, err = ParseHash("zz" + txHash.Hex()[2:])
	require.ErrorIs(t, err, ErrInvalidHash)

	_, err = ParseAddress("0xA7D9ddBE1f17865597fbD27EC712455208B6B76d")
	require.NoError(t, err)

	_, err = ParseAddress("not-an-address")
	require.ErrorIs(t, err, ErrInvalidAddress)

	require.True(t, SameAddress("0xA7D9ddBE1f17865597fbD27EC712455208B6B76d", buyer.Hex()))
	require.False(t, SameAddress(contract.Hex(), buyer.Hex()))
}
