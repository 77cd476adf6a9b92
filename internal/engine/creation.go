package engine

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/rafflechain/settler/internal/guard"
	"github.com/rafflechain/settler/internal/ledger"
	"github.com/rafflechain/settler/internal/notify"
	"github.com/rafflechain/settler/internal/raffle"
	"github.com/rafflechain/settler/internal/verifier"
	"github.com/rafflechain/settler/pkg/tracing"
)

// CreateRaffle verifies the creation payment and creates an active raffle. Nothing is persisted if the
// payment is rejected.
func (e *Engine) CreateRaffle(ctx context.Context, creatorID string, terms raffle.Terms, creationTxHash string) (r *raffle.Raffle, err error) {
	ctx, span := e.tracing.Start(ctx, "Engine:CreateRaffle", attribute.String("hash", creationTxHash))
	defer func() {
		tracing.EndTracing(span, err)
	}()

	if err = requireActor(creatorID); err != nil {
		return nil, err
	}

	txHash, err := normalizeHash(creationTxHash)
	if err != nil {
		return nil, err
	}

	now := e.now()
	r, err = raffle.NewDraft(e.newID(), creatorID, terms, now)
	if err != nil {
		return nil, err
	}

	err = e.checkNotConsumed(ctx, guard.OpCreateRaffle, txHash)
	if err != nil {
		return nil, err
	}

	_, err = e.guard.VerifyPayment(ctx, guard.OpCreateRaffle, e.creationRequest(txHash, creatorID))
	if err != nil {
		return nil, err
	}

	err = r.Activate(txHash, now)
	if err != nil {
		return nil, err
	}

	err = e.store.CreateRaffle(ctx, r)
	if err != nil {
		return nil, e.replayed(ctx, guard.OpCreateRaffle, txHash, err)
	}

	e.logger.InfoContext(ctx, "Raffle created", slog.String("id", r.ID), slog.String("creator", r.CreatorID))
	e.notify(ctx, notify.EventActivated, r)

	return r, nil
}

// DraftRaffle stores an unverified raffle. It stays hidden until ActivateRaffle verified its creation payment.
func (e *Engine) DraftRaffle(ctx context.Context, creatorID string, terms raffle.Terms) (*raffle.Raffle, error) {
	if err := requireActor(creatorID); err != nil {
		return nil, err
	}

	r, err := raffle.NewDraft(e.newID(), creatorID, terms, e.now())
	if err != nil {
		return nil, err
	}

	err = e.store.CreateRaffle(ctx, r)
	if err != nil {
		return nil, err
	}

	e.stats.transition(r.Status)
	e.logger.InfoContext(ctx, "Raffle drafted", slog.String("id", r.ID), slog.String("creator", r.CreatorID))

	return r, nil
}

// ActivateRaffle verifies the creation payment of a draft. A rejected payment rejects the draft for good,
// an unavailable ledger leaves it unchanged.
func (e *Engine) ActivateRaffle(ctx context.Context, raffleID, actorID, creationTxHash string) (r *raffle.Raffle, err error) {
	ctx, span := e.tracing.Start(ctx, "Engine:ActivateRaffle", attribute.String("id", raffleID))
	defer func() {
		tracing.EndTracing(span, err)
	}()

	if err = requireActor(actorID); err != nil {
		return nil, err
	}

	txHash, err := normalizeHash(creationTxHash)
	if err != nil {
		return nil, err
	}

	r, err = e.store.GetRaffle(ctx, raffleID)
	if err != nil {
		return nil, err
	}

	if !ledger.SameAddress(actorID, r.CreatorID) {
		return nil, raffle.ErrForbidden
	}
	if r.Status != raffle.StatusDraft {
		return nil, errors.Join(raffle.ErrInvalidState, errors.New("raffle is not a draft"))
	}

	err = e.checkNotConsumed(ctx, guard.OpActivateRaffle, txHash)
	if err != nil {
		return nil, err
	}

	_, err = e.guard.VerifyPayment(ctx, guard.OpActivateRaffle, e.creationRequest(txHash, r.CreatorID))
	if err != nil {
		var rejection *verifier.RejectionError
		if errors.As(err, &rejection) {
			e.rejectDraft(ctx, r, string(rejection.Reason))
		}
		return nil, err
	}

	err = r.Activate(txHash, e.now())
	if err != nil {
		return nil, err
	}

	err = e.store.ActivateRaffle(ctx, r)
	if err != nil {
		return nil, e.replayed(ctx, guard.OpActivateRaffle, txHash, err)
	}

	e.logger.InfoContext(ctx, "Raffle activated", slog.String("id", r.ID))
	e.notify(ctx, notify.EventActivated, r)

	return r, nil
}

func (e *Engine) rejectDraft(ctx context.Context, r *raffle.Raffle, reason string) {
	err := r.Reject(reason, e.now())
	if err == nil {
		err = e.store.SaveRaffle(ctx, r)
	}
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to reject draft", slog.String("id", r.ID), slog.String("err", err.Error()))
		return
	}

	e.stats.transition(r.Status)
}

func (e *Engine) creationRequest(txHash, creatorID string) verifier.Request {
	return verifier.Request{
		TxHash:           txHash,
		ExpectedSender:   creatorID,
		ExpectedContract: e.contract,
		MinAmount:        e.creationFee,
		MaxAge:           e.maxTxAge,
	}
}
