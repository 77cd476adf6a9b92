package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/rafflechain/settler/internal/guard"
	"github.com/rafflechain/settler/internal/notify"
	"github.com/rafflechain/settler/internal/raffle"
	"github.com/rafflechain/settler/pkg/tracing"
)

// CloseIfEligible closes a sold out or expired raffle. An expired raffle without sales is voided.
// Raffles which are not eligible are returned unchanged.
func (e *Engine) CloseIfEligible(ctx context.Context, raffleID string) (r *raffle.Raffle, err error) {
	ctx, span := e.tracing.Start(ctx, "Engine:CloseIfEligible", attribute.String("id", raffleID))
	defer func() {
		tracing.EndTracing(span, err)
	}()

	r, changed, err := e.update(ctx, guard.OpCloseRaffle, raffleID, func(r *raffle.Raffle) (bool, error) {
		now := e.now()
		if r.Status != raffle.StatusActive {
			return false, nil
		}

		if r.IsExpired(now) && r.TicketsSold == 0 {
			return true, r.Void(now)
		}

		if !r.IsExpired(now) && !r.IsSoldOut() {
			return false, nil
		}

		block, err := e.blocks.LatestBlock(ctx)
		if err != nil {
			return false, err
		}
		seed := raffle.Seed{BlockNumber: block.Number, BlockHash: block.Hash.Hex()}

		reason := raffle.CloseReasonExpired
		if r.IsSoldOut() {
			reason = raffle.CloseReasonSoldOut
		}

		return true, r.Close(reason, seed, now)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		e.logger.InfoContext(ctx, "Raffle closed", slog.String("id", r.ID), slog.String("status", string(r.Status)))
		if r.Status == raffle.StatusVoided {
			e.notify(ctx, notify.EventVoided, r)
		} else {
			e.notify(ctx, notify.EventClosed, r)
		}
	}

	return r, nil
}

// SelectWinner draws the winning ticket of a closed raffle and starts the mutual approval.
func (e *Engine) SelectWinner(ctx context.Context, raffleID string) (r *raffle.Raffle, err error) {
	ctx, span := e.tracing.Start(ctx, "Engine:SelectWinner", attribute.String("id", raffleID))
	defer func() {
		tracing.EndTracing(span, err)
	}()

	r, _, err = e.update(ctx, guard.OpSelectWinner, raffleID, func(r *raffle.Raffle) (bool, error) {
		if r.Status != raffle.StatusClosed {
			return false, errors.Join(raffle.ErrInvalidState, errors.New("raffle is not closed"))
		}

		purchases, err := e.store.GetPurchases(ctx, r.ID)
		if err != nil {
			return false, err
		}

		_, err = r.SelectWinner(purchases, e.now())
		if err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Winner selected",
		slog.String("id", r.ID),
		slog.Int64("ticket", *r.WinningTicket),
		slog.String("winner", *r.WinnerID),
	)
	e.stats.transition(raffle.StatusWinnerSelected)
	e.notify(ctx, notify.EventWinnerSelected, r)

	return r, nil
}

// ApproveAsCreator records the approval of the creator. Approving twice has no effect.
func (e *Engine) ApproveAsCreator(ctx context.Context, raffleID, actorID string) (*raffle.Raffle, error) {
	return e.approve(ctx, guard.OpApproveAsCreator, raffleID, actorID, (*raffle.Raffle).ApproveAsCreator)
}

// ApproveAsWinner records the approval of the winner. Approving twice has no effect.
func (e *Engine) ApproveAsWinner(ctx context.Context, raffleID, actorID string) (*raffle.Raffle, error) {
	return e.approve(ctx, guard.OpApproveAsWinner, raffleID, actorID, (*raffle.Raffle).ApproveAsWinner)
}

func (e *Engine) approve(ctx context.Context, op guard.Operation, raffleID, actorID string,
	approval func(r *raffle.Raffle, actorID string, now time.Time) (bool, error),
) (r *raffle.Raffle, err error) {
	ctx, span := e.tracing.Start(ctx, "Engine:Approve", attribute.String("id", raffleID), attribute.String("operation", string(op)))
	defer func() {
		tracing.EndTracing(span, err)
	}()

	if err = requireActor(actorID); err != nil {
		return nil, err
	}

	r, changed, err := e.update(ctx, op, raffleID, func(r *raffle.Raffle) (bool, error) {
		return approval(r, actorID, e.now())
	})
	if err != nil {
		return nil, err
	}

	if changed {
		e.logger.InfoContext(ctx, "Approval recorded", slog.String("id", r.ID), slog.String("operation", string(op)))
		if r.Status == raffle.StatusSettled {
			e.notify(ctx, notify.EventSettled, r)
		}
	}

	return r, nil
}

// Dispute stops the mutual approval on request of the creator or the winner.
func (e *Engine) Dispute(ctx context.Context, raffleID, actorID, reason string) (r *raffle.Raffle, err error) {
	ctx, span := e.tracing.Start(ctx, "Engine:Dispute", attribute.String("id", raffleID))
	defer func() {
		tracing.EndTracing(span, err)
	}()

	if err = requireActor(actorID); err != nil {
		return nil, err
	}

	r, _, err = e.update(ctx, guard.OpDispute, raffleID, func(r *raffle.Raffle) (bool, error) {
		return true, r.Dispute(actorID, reason, e.now())
	})
	if err != nil {
		return nil, err
	}

	e.logger.WarnContext(ctx, "Raffle disputed", slog.String("id", r.ID), slog.String("reason", reason))
	e.notify(ctx, notify.EventDisputed, r)

	return r, nil
}
