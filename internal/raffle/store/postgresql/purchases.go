package postgresql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rafflechain/settler/internal/raffle"
	"github.com/rafflechain/settler/pkg/tracing"
)

const purchaseColumns = `
	id
	,raffle_id
	,buyer_id
	,quantity
	,amount_paid
	,tx_hash
	,payment_status
	,sequence
	,first_ticket
	,purchased_at`

// SavePurchase stores the raffle and the purchase atomically. The raffle row is locked by the update,
// so the sequence of the purchase is assigned without gaps.
func (p *PostgreSQL) SavePurchase(ctx context.Context, r *raffle.Raffle, purchase *raffle.TicketPurchase) (err error) {
	ctx, span := p.tracing.Start(ctx, "SavePurchase")
	defer func() {
		tracing.EndTracing(span, err)
	}()

	if purchase.RaffleID != r.ID {
		return errors.New("purchase does not belong to raffle")
	}

	var sequence int64
	err = p.inTx(ctx, func(tx *sql.Tx) error {
		err := updateRaffle(ctx, tx, r)
		if err != nil {
			return err
		}

		err = consumeTx(ctx, tx, purchase.TxHash, r.ID, purposePurchase, p.now())
		if err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(sequence), 0) + 1 FROM settler.ticket_purchases WHERE raffle_id = $1`, r.ID,
		).Scan(&sequence)
		if err != nil {
			return err
		}

		const q = `INSERT INTO settler.ticket_purchases (` + purchaseColumns + `)
			VALUES ($1, $2, $3, $4, $5::NUMERIC, $6, $7, $8, $9, $10)`

		_, err = tx.ExecContext(ctx, q,
			purchase.ID,
			purchase.RaffleID,
			purchase.BuyerID,
			purchase.Quantity,
			decimalOrNull(purchase.AmountPaid),
			purchase.TxHash,
			string(purchase.PaymentStatus),
			sequence,
			purchase.FirstTicket,
			purchase.PurchasedAt.UTC(),
		)
		return err
	})
	if err != nil {
		return err
	}

	r.Version++
	purchase.Sequence = sequence
	return nil
}

func (p *PostgreSQL) GetPurchases(ctx context.Context, raffleID string) ([]*raffle.TicketPurchase, error) {
	q := `SELECT ` + purchaseColumns + ` FROM settler.ticket_purchases WHERE raffle_id = $1 ORDER BY sequence`

	rows, err := p.db.QueryContext(ctx, q, raffleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := make([]*raffle.TicketPurchase, 0)
	for rows.Next() {
		var (
			purchase      raffle.TicketPurchase
			amountPaid    sql.NullString
			paymentStatus string
		)

		err = rows.Scan(
			&purchase.ID,
			&purchase.RaffleID,
			&purchase.BuyerID,
			&purchase.Quantity,
			&amountPaid,
			&purchase.TxHash,
			&paymentStatus,
			&purchase.Sequence,
			&purchase.FirstTicket,
			&purchase.PurchasedAt,
		)
		if err != nil {
			return nil, err
		}

		purchase.AmountPaid, err = parseDecimal(amountPaid)
		if err != nil {
			return nil, err
		}
		purchase.PaymentStatus = raffle.PaymentStatus(paymentStatus)
		purchase.PurchasedAt = purchase.PurchasedAt.UTC()

		purchases = append(purchases, &purchase)
	}

	return purchases, rows.Err()
}

func (p *PostgreSQL) IsTxConsumed(ctx context.Context, txHash string) (bool, error) {
	var consumed bool
	err := p.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM settler.consumed_tx_hashes WHERE tx_hash = $1)`, txHash,
	).Scan(&consumed)
	if err != nil {
		return false, err
	}

	return consumed, nil
}
