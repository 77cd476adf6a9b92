package guard

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/rafflechain/settler/internal/ledger"
	"github.com/rafflechain/settler/internal/raffle"
	"github.com/rafflechain/settler/internal/verifier"
)

// Reason codes of blocked attempts in addition to the verdict reasons of the verifier.
const (
	ReasonRaffleUnverified    = "raffle_unverified"
	ReasonLedgerUnavailable   = "ledger_unavailable"
	ReasonInvalidRequest      = "invalid_request"
	ReasonCancelled           = "cancelled"
	ReasonVerificationFailed  = "verification_failed"
	ReasonTransactionReplayed = "transaction_replayed"

	RedactedTitle = "Raffle unavailable"
)

var (
	ErrVerifierNil      = errors.New("payment verifier is nil")
	ErrRaffleUnverified = errors.New("raffle has no verified creation payment")
)

type Operation string

const (
	OpCreateRaffle     Operation = "create_raffle"
	OpActivateRaffle   Operation = "activate_raffle"
	OpPurchaseTickets  Operation = "purchase_tickets"
	OpCloseRaffle      Operation = "close_raffle"
	OpSelectWinner     Operation = "select_winner"
	OpApproveAsCreator Operation = "approve_as_creator"
	OpApproveAsWinner  Operation = "approve_as_winner"
	OpDispute          Operation = "dispute"
	OpListPurchases    Operation = "list_purchases"
)

type PaymentVerifier interface {
	Verify(ctx context.Context, req verifier.Request) (*verifier.Verdict, error)
}

// Guard lets an operation proceed only with a verified payment behind it.
type Guard struct {
	verifier PaymentVerifier
	logger   *slog.Logger
	stats    *Stats
}

func WithLogger(logger *slog.Logger) func(*Guard) {
	return func(g *Guard) {
		g.logger = logger
	}
}

func WithStats(stats *Stats) func(*Guard) {
	return func(g *Guard) {
		g.stats = stats
	}
}

type Option func(*Guard)

func New(v PaymentVerifier, opts ...Option) (*Guard, error) {
	if v == nil {
		return nil, ErrVerifierNil
	}

	g := &Guard{
		verifier: v,
		logger:   slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
	for _, opt := range opts {
		opt(g)
	}

	g.logger = g.logger.With(slog.String("module", "guard"))

	return g, nil
}

// VerifyPayment requires a fresh verified verdict for the payment of op. A rejected payment is
// returned as *verifier.RejectionError together with the verdict.
func (g *Guard) VerifyPayment(ctx context.Context, op Operation, req verifier.Request) (*verifier.Verdict, error) {
	verdict, err := g.verifier.Verify(ctx, req)
	if err != nil {
		g.block(ctx, op, failureReason(err), slog.String("hash", req.TxHash), slog.String("err", err.Error()))
		return nil, err
	}

	if !verdict.Verified {
		g.block(ctx, op, string(verdict.Reason),
			slog.String("hash", req.TxHash),
			slog.String("sender", req.ExpectedSender),
			slog.Bool("cached", verdict.FromCache),
		)
		return verdict, verdict.Err()
	}

	return verdict, nil
}

// BlockReplay records a write refused because its transaction hash already paid for another write.
func (g *Guard) BlockReplay(ctx context.Context, op Operation, txHash string) {
	g.block(ctx, op, ReasonTransactionReplayed, slog.String("hash", txHash))
}

// RequireVerified blocks operations on raffles without a verified creation payment.
func (g *Guard) RequireVerified(ctx context.Context, op Operation, r *raffle.Raffle) error {
	if r.IsVerified() {
		return nil
	}

	g.block(ctx, op, ReasonRaffleUnverified, slog.String("id", r.ID), slog.String("status", string(r.Status)))
	return ErrRaffleUnverified
}

// Redact returns r if it is verified and a placeholder otherwise.
func (g *Guard) Redact(r *raffle.Raffle) *raffle.Raffle {
	if r.IsVerified() {
		return r
	}

	return &raffle.Raffle{
		ID:            r.ID,
		Title:         RedactedTitle,
		Kind:          r.Kind,
		PaymentStatus: raffle.PaymentUnverified,
		Status:        r.Status,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Redacted:      true,
	}
}

// FilterVerified drops unverified raffles.
func (g *Guard) FilterVerified(raffles []*raffle.Raffle) []*raffle.Raffle {
	verified := make([]*raffle.Raffle, 0, len(raffles))
	for _, r := range raffles {
		if r.IsVerified() {
			verified = append(verified, r)
		}
	}

	return verified
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ledger.ErrLedgerUnavailable):
		return ReasonLedgerUnavailable
	case errors.Is(err, verifier.ErrInvalidRequest):
		return ReasonInvalidRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCancelled
	default:
		return ReasonVerificationFailed
	}
}

func (g *Guard) block(ctx context.Context, op Operation, reasonCode string, attrs ...slog.Attr) {
	g.stats.blocked(op, reasonCode)

	args := []any{slog.String("operation", string(op)), slog.String("reason_code", reasonCode)}
	for _, attr := range attrs {
		args = append(args, attr)
	}

	g.logger.WarnContext(ctx, "Operation blocked", args...)
}
