package raffle

import (
	"time"

	"github.com/holiman/uint256"
)

type Status string

const (
	StatusDraft                 Status = "draft"
	StatusActive                Status = "active"
	StatusClosed                Status = "closed"
	StatusWinnerSelected        Status = "winner_selected"
	StatusMutualApprovalPending Status = "mutual_approval_pending"
	StatusSettled               Status = "settled"
	StatusDisputed              Status = "disputed"
	StatusRejected              Status = "rejected"
	StatusVoided                Status = "voided"
)

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSettled, StatusDisputed, StatusRejected, StatusVoided:
		return true
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusClosed, StatusWinnerSelected, StatusMutualApprovalPending,
		StatusSettled, StatusDisputed, StatusRejected, StatusVoided:
		return true
	}
	return false
}

type CloseReason string

const (
	CloseReasonSoldOut CloseReason = "sold_out"
	CloseReasonExpired CloseReason = "expired"
)

type Kind string

const (
	KindRaffle   Kind = "raffle"
	KindDonation Kind = "donation"
)

type PaymentStatus string

const (
	PaymentUnverified PaymentStatus = "unverified"
	PaymentVerified   PaymentStatus = "verified"
)

// Terms are the descriptive and economic terms chosen by the creator.
type Terms struct {
	Title       string
	Description string
	Kind        Kind
	PrizeValue  *uint256.Int
	TicketPrice *uint256.Int
	MaxTickets  int64
	EndTime     time.Time
}

type Raffle struct {
	ID        string
	CreatorID string

	Title       string
	Description string
	Kind        Kind
	PrizeValue  *uint256.Int
	TicketPrice *uint256.Int
	MaxTickets  int64
	EndTime     time.Time

	CreationTxHash *string
	PaymentStatus  PaymentStatus

	TicketsSold int64

	Status        Status
	CloseReason   *CloseReason
	RejectReason  *string
	DisputeReason *string

	SeedBlockNumber *uint64
	SeedBlockHash   *string
	WinningTicket   *int64
	WinnerID        *string

	ApprovedByCreator bool
	ApprovedByWinner  bool

	// Version is incremented on every save. A save with a stale version fails.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
	ClosedAt  *time.Time
	SettledAt *time.Time

	// Redacted is set on placeholders returned instead of unverified raffles.
	Redacted bool
}

// IsVerified reports whether the creation payment of the raffle was verified.
func (r *Raffle) IsVerified() bool {
	return r.PaymentStatus == PaymentVerified && r.CreationTxHash != nil
}

// Remaining returns the number of tickets which can still be sold.
func (r *Raffle) Remaining() int64 {
	return r.MaxTickets - r.TicketsSold
}

// Clone returns a deep copy, so that a failed transition never leaks into the caller's copy.
func (r *Raffle) Clone() *Raffle {
	c := *r
	if r.PrizeValue != nil {
		c.PrizeValue = r.PrizeValue.Clone()
	}
	if r.TicketPrice != nil {
		c.TicketPrice = r.TicketPrice.Clone()
	}
	c.CreationTxHash = clonePtr(r.CreationTxHash)
	c.CloseReason = clonePtr(r.CloseReason)
	c.RejectReason = clonePtr(r.RejectReason)
	c.DisputeReason = clonePtr(r.DisputeReason)
	c.SeedBlockNumber = clonePtr(r.SeedBlockNumber)
	c.SeedBlockHash = clonePtr(r.SeedBlockHash)
	c.WinningTicket = clonePtr(r.WinningTicket)
	c.WinnerID = clonePtr(r.WinnerID)
	c.ClosedAt = clonePtr(r.ClosedAt)
	c.SettledAt = clonePtr(r.SettledAt)
	return &c
}

type TicketPurchase struct {
	ID            string
	RaffleID      string
	BuyerID       string
	Quantity      int64
	AmountPaid    *uint256.Int
	TxHash        string
	PaymentStatus PaymentStatus
	// Sequence is the 1-based position of the purchase within the raffle.
	Sequence int64
	// FirstTicket is the 0-based index of the first ticket. The purchase owns [FirstTicket, FirstTicket+Quantity).
	FirstTicket int64
	PurchasedAt time.Time
}

// Owns reports whether the ticket with the given index belongs to the purchase.
func (p *TicketPurchase) Owns(ticket int64) bool {
	return ticket >= p.FirstTicket && ticket < p.FirstTicket+p.Quantity
}

// Filter selects raffles in listings.
type Filter struct {
	Statuses     []Status
	CreatorID    string
	VerifiedOnly bool
	Limit        int
	Offset       int
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func ptrTo[T any](v T) *T {
	return &v
}
