package store

import (
	"context"
	"errors"
	"time"

	"github.com/rafflechain/settler/internal/raffle"
)

var (
	ErrNotFound            = errors.New("raffle not found")
	ErrVersionConflict     = errors.New("raffle was modified concurrently")
	ErrTransactionReplayed = errors.New("transaction hash was already used")
	ErrFailedToOpenDB      = errors.New("failed to open postgres database")
	ErrFailedToMigrate     = errors.New("failed to migrate database")
)

// RaffleStore persists raffles and their ticket purchases. Every update is checked against the
// version of the raffle which was read, so concurrent writers cannot overwrite each other.
type RaffleStore interface {
	// CreateRaffle inserts a new raffle. A set creation tx hash is consumed.
	CreateRaffle(ctx context.Context, r *raffle.Raffle) error
	GetRaffle(ctx context.Context, id string) (*raffle.Raffle, error)
	// SaveRaffle updates a raffle if nobody else did since it was read. Returns ErrVersionConflict otherwise.
	SaveRaffle(ctx context.Context, r *raffle.Raffle) error
	// ActivateRaffle saves a raffle and consumes its creation tx hash in one transaction.
	ActivateRaffle(ctx context.Context, r *raffle.Raffle) error
	// SavePurchase saves the raffle, consumes the purchase tx hash and inserts the purchase in one transaction.
	// The sequence of the purchase is assigned by the store.
	SavePurchase(ctx context.Context, r *raffle.Raffle, p *raffle.TicketPurchase) error
	GetPurchases(ctx context.Context, raffleID string) ([]*raffle.TicketPurchase, error)
	IsTxConsumed(ctx context.Context, txHash string) (bool, error)
	ListRaffles(ctx context.Context, filter raffle.Filter) ([]*raffle.Raffle, error)
	// ListExpired returns active raffles whose end time is not after now.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*raffle.Raffle, error)
	Ping(ctx context.Context) error
	Close() error
}
