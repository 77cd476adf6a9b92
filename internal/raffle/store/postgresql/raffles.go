package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/rafflechain/settler/internal/raffle"
	"github.com/rafflechain/settler/internal/raffle/store"
	"github.com/rafflechain/settler/pkg/tracing"
)

const raffleColumns = `
	id
	,creator_id
	,title
	,description
	,kind
	,prize_value
	,ticket_price
	,max_tickets
	,end_time
	,creation_tx_hash
	,payment_status
	,tickets_sold
	,status
	,close_reason
	,reject_reason
	,dispute_reason
	,seed_block_number
	,seed_block_hash
	,winning_ticket
	,winner_id
	,approved_by_creator
	,approved_by_winner
	,version
	,created_at
	,updated_at
	,closed_at
	,settled_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (p *PostgreSQL) CreateRaffle(ctx context.Context, r *raffle.Raffle) (err error) {
	ctx, span := p.tracing.Start(ctx, "CreateRaffle")
	defer func() {
		tracing.EndTracing(span, err)
	}()

	const q = `INSERT INTO settler.raffles (` + raffleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6::NUMERIC, $7::NUMERIC, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, 1, $23, $24, $25, $26)`

	err = p.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, q,
			r.ID,
			r.CreatorID,
			r.Title,
			r.Description,
			string(r.Kind),
			decimalOrNull(r.PrizeValue),
			decimalOrNull(r.TicketPrice),
			r.MaxTickets,
			r.EndTime.UTC(),
			r.CreationTxHash,
			string(r.PaymentStatus),
			r.TicketsSold,
			string(r.Status),
			r.CloseReason,
			r.RejectReason,
			r.DisputeReason,
			nullSeedNumber(r.SeedBlockNumber),
			r.SeedBlockHash,
			r.WinningTicket,
			r.WinnerID,
			r.ApprovedByCreator,
			r.ApprovedByWinner,
			r.CreatedAt.UTC(),
			r.UpdatedAt.UTC(),
			nullTime(r.ClosedAt),
			nullTime(r.SettledAt),
		)
		if err != nil {
			return err
		}

		if r.CreationTxHash != nil {
			return consumeTx(ctx, tx, *r.CreationTxHash, r.ID, purposeCreation, p.now())
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.Version = 1
	return nil
}

func (p *PostgreSQL) GetRaffle(ctx context.Context, id string) (*raffle.Raffle, error) {
	q := `SELECT ` + raffleColumns + ` FROM settler.raffles WHERE id = $1`

	r, err := scanRaffle(p.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Join(store.ErrNotFound, fmt.Errorf("id: %s", id))
		}
		return nil, err
	}

	return r, nil
}

func (p *PostgreSQL) SaveRaffle(ctx context.Context, r *raffle.Raffle) (err error) {
	ctx, span := p.tracing.Start(ctx, "SaveRaffle")
	defer func() {
		tracing.EndTracing(span, err)
	}()

	err = p.inTx(ctx, func(tx *sql.Tx) error {
		return updateRaffle(ctx, tx, r)
	})
	if err != nil {
		return err
	}

	r.Version++
	return nil
}

func (p *PostgreSQL) ActivateRaffle(ctx context.Context, r *raffle.Raffle) (err error) {
	ctx, span := p.tracing.Start(ctx, "ActivateRaffle")
	defer func() {
		tracing.EndTracing(span, err)
	}()

	if r.CreationTxHash == nil {
		return errors.New("raffle has no creation tx hash")
	}

	err = p.inTx(ctx, func(tx *sql.Tx) error {
		err := updateRaffle(ctx, tx, r)
		if err != nil {
			return err
		}

		return consumeTx(ctx, tx, *r.CreationTxHash, r.ID, purposeCreation, p.now())
	})
	if err != nil {
		return err
	}

	r.Version++
	return nil
}

func (p *PostgreSQL) ListRaffles(ctx context.Context, filter raffle.Filter) ([]*raffle.Raffle, error) {
	var predicates []string
	var args []any

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		predicates = append(predicates, fmt.Sprintf("status = ANY($%d::TEXT[])", len(args)))
	}

	if filter.CreatorID != "" {
		args = append(args, filter.CreatorID)
		predicates = append(predicates, fmt.Sprintf("lower(creator_id) = lower($%d)", len(args)))
	}

	if filter.VerifiedOnly {
		args = append(args, string(raffle.PaymentVerified))
		predicates = append(predicates, fmt.Sprintf("payment_status = $%d AND creation_tx_hash IS NOT NULL", len(args)))
	}

	q := `SELECT ` + raffleColumns + ` FROM settler.raffles`
	if len(predicates) > 0 {
		q += " WHERE " + strings.Join(predicates, " AND ")
	}
	q += " ORDER BY created_at DESC, id"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return p.queryRaffles(ctx, q, args...)
}

func (p *PostgreSQL) ListExpired(ctx context.Context, now time.Time, limit int) ([]*raffle.Raffle, error) {
	q := `SELECT ` + raffleColumns + ` FROM settler.raffles
		WHERE status = $1 AND end_time <= $2
		ORDER BY end_time, id
		LIMIT $3`

	return p.queryRaffles(ctx, q, string(raffle.StatusActive), now.UTC(), limit)
}

func (p *PostgreSQL) queryRaffles(ctx context.Context, q string, args ...any) ([]*raffle.Raffle, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	raffles := make([]*raffle.Raffle, 0)
	for rows.Next() {
		r, err := scanRaffle(rows)
		if err != nil {
			return nil, err
		}
		raffles = append(raffles, r)
	}

	return raffles, rows.Err()
}

// updateRaffle writes r if its version is still the stored one.
func updateRaffle(ctx context.Context, tx *sql.Tx, r *raffle.Raffle) error {
	const q = `UPDATE settler.raffles SET
			tickets_sold = $3
			,status = $4
			,creation_tx_hash = $5
			,payment_status = $6
			,close_reason = $7
			,reject_reason = $8
			,dispute_reason = $9
			,seed_block_number = $10
			,seed_block_hash = $11
			,winning_ticket = $12
			,winner_id = $13
			,approved_by_creator = $14
			,approved_by_winner = $15
			,updated_at = $16
			,closed_at = $17
			,settled_at = $18
			,version = version + 1
		WHERE id = $1 AND version = $2`

	res, err := tx.ExecContext(ctx, q,
		r.ID,
		r.Version,
		r.TicketsSold,
		string(r.Status),
		r.CreationTxHash,
		string(r.PaymentStatus),
		r.CloseReason,
		r.RejectReason,
		r.DisputeReason,
		nullSeedNumber(r.SeedBlockNumber),
		r.SeedBlockHash,
		r.WinningTicket,
		r.WinnerID,
		r.ApprovedByCreator,
		r.ApprovedByWinner,
		r.UpdatedAt.UTC(),
		nullTime(r.ClosedAt),
		nullTime(r.SettledAt),
	)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 1 {
		return nil
	}

	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM settler.raffles WHERE id = $1)`, r.ID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Join(store.ErrNotFound, fmt.Errorf("id: %s", r.ID))
	}

	return errors.Join(store.ErrVersionConflict, fmt.Errorf("id: %s, version: %d", r.ID, r.Version))
}

func scanRaffle(row rowScanner) (*raffle.Raffle, error) {
	var (
		r               raffle.Raffle
		kind            string
		paymentStatus   string
		status          string
		prizeValue      sql.NullString
		ticketPrice     sql.NullString
		creationTxHash  sql.NullString
		closeReason     sql.NullString
		rejectReason    sql.NullString
		disputeReason   sql.NullString
		seedBlockNumber sql.NullInt64
		seedBlockHash   sql.NullString
		winningTicket   sql.NullInt64
		winnerID        sql.NullString
		closedAt        sql.NullTime
		settledAt       sql.NullTime
	)

	err := row.Scan(
		&r.ID,
		&r.CreatorID,
		&r.Title,
		&r.Description,
		&kind,
		&prizeValue,
		&ticketPrice,
		&r.MaxTickets,
		&r.EndTime,
		&creationTxHash,
		&paymentStatus,
		&r.TicketsSold,
		&status,
		&closeReason,
		&rejectReason,
		&disputeReason,
		&seedBlockNumber,
		&seedBlockHash,
		&winningTicket,
		&winnerID,
		&r.ApprovedByCreator,
		&r.ApprovedByWinner,
		&r.Version,
		&r.CreatedAt,
		&r.UpdatedAt,
		&closedAt,
		&settledAt,
	)
	if err != nil {
		return nil, err
	}

	r.PrizeValue, err = parseDecimal(prizeValue)
	if err != nil {
		return nil, fmt.Errorf("invalid prize value of raffle %s: %w", r.ID, err)
	}
	r.TicketPrice, err = parseDecimal(ticketPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid ticket price of raffle %s: %w", r.ID, err)
	}

	r.Kind = raffle.Kind(kind)
	r.PaymentStatus = raffle.PaymentStatus(paymentStatus)
	r.Status = raffle.Status(status)
	r.CreationTxHash = stringOrNil(creationTxHash)
	r.RejectReason = stringOrNil(rejectReason)
	r.DisputeReason = stringOrNil(disputeReason)
	r.SeedBlockHash = stringOrNil(seedBlockHash)
	r.WinnerID = stringOrNil(winnerID)

	if closeReason.Valid {
		r.CloseReason = ptrTo(raffle.CloseReason(closeReason.String))
	}
	if seedBlockNumber.Valid {
		r.SeedBlockNumber = ptrTo(uint64(seedBlockNumber.Int64))
	}
	if winningTicket.Valid {
		r.WinningTicket = ptrTo(winningTicket.Int64)
	}

	r.EndTime = r.EndTime.UTC()
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	r.ClosedAt = timeOrNil(closedAt)
	r.SettledAt = timeOrNil(settledAt)

	return &r, nil
}

func nullSeedNumber(n *uint64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
