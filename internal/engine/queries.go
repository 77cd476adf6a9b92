package engine

import (
	"context"

	"github.com/rafflechain/settler/internal/guard"
	"github.com/rafflechain/settler/internal/raffle"
)

// GetRaffle returns the raffle, or a redacted placeholder if its creation payment is not verified.
func (e *Engine) GetRaffle(ctx context.Context, raffleID string) (*raffle.Raffle, error) {
	r, err := e.store.GetRaffle(ctx, raffleID)
	if err != nil {
		return nil, err
	}

	return e.guard.Redact(r), nil
}

func (e *Engine) GetPurchases(ctx context.Context, raffleID string) ([]*raffle.TicketPurchase, error) {
	r, err := e.store.GetRaffle(ctx, raffleID)
	if err != nil {
		return nil, err
	}

	err = e.guard.RequireVerified(ctx, guard.OpListPurchases, r)
	if err != nil {
		return nil, err
	}

	return e.store.GetPurchases(ctx, raffleID)
}

// ListVerifiedRaffles lists raffles matching the filter. Raffles without verified creation payment are never listed.
func (e *Engine) ListVerifiedRaffles(ctx context.Context, filter raffle.Filter) ([]*raffle.Raffle, error) {
	filter.VerifiedOnly = true
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	raffles, err := e.store.ListRaffles(ctx, filter)
	if err != nil {
		return nil, err
	}

	return e.guard.FilterVerified(raffles), nil
}
