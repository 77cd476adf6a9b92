package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

var (
	// ErrLedgerUnavailable is returned when the node could not be reached or did not answer in time. Callers may retry.
	ErrLedgerUnavailable = errors.New("ledger unavailable")
	// ErrUnknownTransaction is returned when the node does not know the requested transaction. Not retryable.
	ErrUnknownTransaction = errors.New("unknown transaction")
	ErrUnknownBlock       = errors.New("unknown block")
	ErrChainIDMismatch    = errors.New("ledger chain id does not match configured chain id")

	ErrInvalidHash    = errors.New("invalid transaction hash")
	ErrInvalidAddress = errors.New("invalid address")
)

// ReceiptStatusSuccessful is the receipt status of a transaction which executed successfully.
const ReceiptStatusSuccessful = uint64(1)

type Transaction struct {
	Hash  common.Hash
	From  common.Address
	To    *common.Address // nil for contract creation
	Value *uint256.Int
	// BlockNumber is nil while the transaction is pending.
	BlockNumber *uint64
}

type Receipt struct {
	TxHash      common.Hash
	Status      uint64
	BlockNumber uint64
	BlockHash   common.Hash
}

func (r *Receipt) Successful() bool {
	return r.Status == ReceiptStatusSuccessful
}

type Block struct {
	Number    uint64
	Hash      common.Hash
	Timestamp time.Time
}

// Reader is a read-only view on the ledger.
type Reader interface {
	GetTransaction(ctx context.Context, hash common.Hash) (*Transaction, error)
	GetReceipt(ctx context.Context, hash common.Hash) (*Receipt, error)
	GetBlock(ctx context.Context, number uint64) (*Block, error)
	LatestBlock(ctx context.Context) (*Block, error)
}

// ParseHash parses a 0x prefixed 32 byte hex string.
func ParseHash(s string) (common.Hash, error) {
	if len(s) != 2+2*common.HashLength || !strings.HasPrefix(s, "0x") {
		return common.Hash{}, errors.Join(ErrInvalidHash, fmt.Errorf("hash: %q", s))
	}

	b, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, errors.Join(ErrInvalidHash, err)
	}

	return common.BytesToHash(b), nil
}

// ParseAddress parses a hex address. The comparison of addresses is case-insensitive.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Join(ErrInvalidAddress, fmt.Errorf("address: %q", s))
	}

	return common.HexToAddress(s), nil
}

// SameAddress reports whether a and b are the same address, ignoring the checksum casing.
func SameAddress(a, b string) bool {
	if common.IsHexAddress(a) && common.IsHexAddress(b) {
		return common.HexToAddress(a) == common.HexToAddress(b)
	}

	return strings.EqualFold(a, b)
}
