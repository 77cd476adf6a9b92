package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rafflechain/settler/internal/guard"
	"github.com/rafflechain/settler/internal/notify"
	"github.com/rafflechain/settler/internal/raffle"
	"github.com/rafflechain/settler/internal/verifier"
	"github.com/rafflechain/settler/pkg/tracing"
)

// PurchaseTickets verifies the payment of quantity tickets and records the purchase. The purchase which
// sells the last ticket closes the raffle, seeded by the block of its payment.
func (e *Engine) PurchaseTickets(ctx context.Context, raffleID, buyerID string, quantity int64, txHash string) (r *raffle.Raffle, err error) {
	ctx, span := e.tracing.Start(ctx, "Engine:PurchaseTickets", attribute.String("id", raffleID), attribute.Int64("quantity", quantity))
	defer func() {
		tracing.EndTracing(span, err)
	}()

	if err = requireActor(buyerID); err != nil {
		return nil, err
	}

	txHash, err = normalizeHash(txHash)
	if err != nil {
		return nil, err
	}

	r, err = e.store.GetRaffle(ctx, raffleID)
	if err != nil {
		return nil, err
	}

	err = e.guard.RequireVerified(ctx, guard.OpPurchaseTickets, r)
	if err != nil {
		return nil, err
	}

	// reject early, before asking the ledger
	err = r.CheckPurchase(quantity, e.now())
	if err != nil {
		return nil, err
	}

	err = e.checkNotConsumed(ctx, guard.OpPurchaseTickets, txHash)
	if err != nil {
		return nil, err
	}

	amount, overflow := new(uint256.Int).MulOverflow(r.TicketPrice, uint256.NewInt(uint64(quantity)))
	if overflow {
		return nil, ErrAmountOverflow
	}

	verdict, err := e.guard.VerifyPayment(ctx, guard.OpPurchaseTickets, verifier.Request{
		TxHash:           txHash,
		ExpectedSender:   buyerID,
		ExpectedContract: e.contract,
		MinAmount:        amount,
		MaxAge:           e.maxTxAge,
	})
	if err != nil {
		return nil, err
	}

	seed := raffle.Seed{BlockNumber: verdict.Record.BlockNumber, BlockHash: verdict.Record.BlockHash}
	paid, err := verdict.Record.Value()
	if err != nil {
		return nil, errors.Join(ErrPaymentAmount, err)
	}

	var purchase *raffle.TicketPurchase
	attempt := 0
	err = e.retry(ctx, func() error {
		attempt++
		if attempt > 1 {
			reloaded, err := e.store.GetRaffle(ctx, raffleID)
			if err != nil {
				return err
			}
			r = reloaded
		}

		now := e.now()
		first, err := r.AddTickets(quantity, now)
		if err != nil {
			return err
		}

		purchase = &raffle.TicketPurchase{
			ID:            e.newID(),
			RaffleID:      r.ID,
			BuyerID:       buyerID,
			Quantity:      quantity,
			AmountPaid:    paid,
			TxHash:        txHash,
			PaymentStatus: raffle.PaymentVerified,
			FirstTicket:   first,
			PurchasedAt:   now,
		}

		if r.IsSoldOut() {
			err = r.Close(raffle.CloseReasonSoldOut, seed, now)
			if err != nil {
				return err
			}
		}

		return e.store.SavePurchase(ctx, r, purchase)
	})
	if err != nil {
		if errors.Is(err, raffle.ErrCapacityExceeded) || errors.Is(err, raffle.ErrInvalidState) {
			// the payment was verified, but somebody else bought the remaining tickets first
			e.logger.WarnContext(ctx, "Verified purchase lost against concurrent purchase",
				slog.String("id", raffleID),
				slog.String("hash", txHash),
				slog.String("err", err.Error()),
			)
		}
		return nil, e.replayed(ctx, guard.OpPurchaseTickets, txHash, err)
	}

	e.stats.sold(quantity)
	e.logger.InfoContext(ctx, "Tickets purchased",
		slog.String("id", r.ID),
		slog.String("buyer", buyerID),
		slog.Int64("quantity", quantity),
		slog.Int64("sequence", purchase.Sequence),
	)

	if r.Status == raffle.StatusClosed {
		e.notify(ctx, notify.EventClosed, r)
	}

	return r, nil
}
