package verifier

import (
	"errors"
	"fmt"
	"time"

	"github.com/holiman/uint256"
)

// Reason is a stable, machine-parsable code for a rejected payment.
type Reason string

const (
	ReasonNotFound           Reason = "unknown_transaction"
	ReasonNotConfirmed       Reason = "not_confirmed"
	ReasonWrongContract      Reason = "wrong_contract"
	ReasonWrongSender        Reason = "wrong_sender"
	ReasonInsufficientAmount Reason = "insufficient_amount"
	ReasonStale              Reason = "stale"
)

var ErrPaymentRejected = errors.New("payment rejected")

// RejectionError carries the reason of a deterministic verification failure. Retrying the same request yields the same result.
type RejectionError struct {
	TxHash string
	Reason Reason
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("payment %s rejected: %s", e.TxHash, e.Reason)
}

func (e *RejectionError) Unwrap() error {
	return ErrPaymentRejected
}

// Record is what the ledger showed for a confirmed transaction. It is cached by transaction hash.
type Record struct {
	TxHash      string    `json:"txHash"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Amount      string    `json:"amount"`
	BlockNumber uint64    `json:"blockNumber"`
	BlockHash   string    `json:"blockHash"`
	BlockTime   time.Time `json:"blockTime"`
	VerifiedAt  time.Time `json:"verifiedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Value returns the transferred amount in wei.
func (r *Record) Value() (*uint256.Int, error) {
	return uint256.FromDecimal(r.Amount)
}

type Verdict struct {
	TxHash   string
	Verified bool
	Reason   Reason
	// Record is nil when the transaction was not found or not confirmed.
	Record    *Record
	FromCache bool
}

// Err returns nil for a verified payment and a *RejectionError otherwise.
func (v *Verdict) Err() error {
	if v.Verified {
		return nil
	}

	return &RejectionError{TxHash: v.TxHash, Reason: v.Reason}
}

func verified(record *Record, fromCache bool) *Verdict {
	return &Verdict{TxHash: record.TxHash, Verified: true, Record: record, FromCache: fromCache}
}

func rejected(txHash string, reason Reason, record *Record, fromCache bool) *Verdict {
	return &Verdict{TxHash: txHash, Reason: reason, Record: record, FromCache: fromCache}
}
