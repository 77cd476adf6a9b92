package raffle

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
)

// Seed is the ledger block whose hash seeds the draw.
type Seed struct {
	BlockNumber uint64
	BlockHash   string
}

func ValidateTerms(terms Terms, now time.Time) error {
	var errs []error

	title := strings.TrimSpace(terms.Title)
	if title == "" || len(title) > maxTitleLength {
		errs = append(errs, fmt.Errorf("title must have 1 to %d characters", maxTitleLength))
	}
	if len(terms.Description) > maxDescriptionLength {
		errs = append(errs, fmt.Errorf("description must not exceed %d characters", maxDescriptionLength))
	}
	if terms.Kind != KindRaffle && terms.Kind != KindDonation {
		errs = append(errs, fmt.Errorf("unknown kind %q", terms.Kind))
	}
	if terms.TicketPrice == nil || terms.TicketPrice.IsZero() {
		errs = append(errs, errors.New("ticket price must be positive"))
	}
	if terms.Kind == KindRaffle && (terms.PrizeValue == nil || terms.PrizeValue.IsZero()) {
		errs = append(errs, errors.New("prize value must be positive"))
	}
	if terms.MaxTickets <= 0 {
		errs = append(errs, errors.New("max tickets must be positive"))
	}
	if !terms.EndTime.After(now) {
		errs = append(errs, errors.New("end time must be in the future"))
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidTerms}, errs...)...)
	}

	return nil
}

// NewDraft creates an unverified raffle. It becomes visible only after activation.
func NewDraft(id, creatorID string, terms Terms, now time.Time) (*Raffle, error) {
	err := ValidateTerms(terms, now)
	if err != nil {
		return nil, err
	}

	r := &Raffle{
		ID:            id,
		CreatorID:     creatorID,
		Title:         strings.TrimSpace(terms.Title),
		Description:   terms.Description,
		Kind:          terms.Kind,
		TicketPrice:   terms.TicketPrice.Clone(),
		MaxTickets:    terms.MaxTickets,
		EndTime:       terms.EndTime.UTC(),
		PaymentStatus: PaymentUnverified,
		Status:        StatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if terms.PrizeValue != nil {
		r.PrizeValue = terms.PrizeValue.Clone()
	}

	return r, nil
}

// Activate records the verified creation payment. Draft -> Active.
func (r *Raffle) Activate(txHash string, now time.Time) error {
	if r.Status != StatusDraft {
		return invalidTransition(r.Status, StatusActive)
	}

	r.CreationTxHash = &txHash
	r.PaymentStatus = PaymentVerified
	r.Status = StatusActive
	r.UpdatedAt = now
	return nil
}

// Reject marks a draft whose creation payment was rejected. Draft -> Rejected.
func (r *Raffle) Reject(reason string, now time.Time) error {
	if r.Status != StatusDraft {
		return invalidTransition(r.Status, StatusRejected)
	}

	r.RejectReason = &reason
	r.Status = StatusRejected
	r.UpdatedAt = now
	return nil
}

func (r *Raffle) IsSoldOut() bool {
	return r.TicketsSold >= r.MaxTickets
}

func (r *Raffle) IsExpired(now time.Time) bool {
	return !now.Before(r.EndTime)
}

// CheckPurchase validates a purchase of quantity tickets without changing the raffle.
func (r *Raffle) CheckPurchase(quantity int64, now time.Time) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	if r.Status != StatusActive || r.IsExpired(now) {
		return errors.Join(ErrInvalidState, fmt.Errorf("raffle %s is %s", r.ID, r.Status))
	}

	if quantity > r.Remaining() {
		return errors.Join(ErrCapacityExceeded, fmt.Errorf("requested: %d, remaining: %d", quantity, r.Remaining()))
	}

	return nil
}

// AddTickets records a purchase of quantity tickets and returns the index of the first ticket.
func (r *Raffle) AddTickets(quantity int64, now time.Time) (int64, error) {
	err := r.CheckPurchase(quantity, now)
	if err != nil {
		return 0, err
	}

	first := r.TicketsSold
	r.TicketsSold += quantity
	r.UpdatedAt = now
	return first, nil
}

// Close ends the ticket sale. Active -> Closed.
func (r *Raffle) Close(reason CloseReason, seed Seed, now time.Time) error {
	if r.Status != StatusActive {
		return invalidTransition(r.Status, StatusClosed)
	}

	switch reason {
	case CloseReasonSoldOut:
		if !r.IsSoldOut() {
			return errors.Join(ErrInvalidState, errors.New("raffle is not sold out"))
		}
	case CloseReasonExpired:
		if !r.IsExpired(now) {
			return errors.Join(ErrInvalidState, errors.New("raffle has not expired"))
		}
		if r.TicketsSold == 0 {
			return ErrNoTicketsSold
		}
	default:
		return fmt.Errorf("unknown close reason %q", reason)
	}

	r.Status = StatusClosed
	r.CloseReason = &reason
	r.SeedBlockNumber = &seed.BlockNumber
	r.SeedBlockHash = &seed.BlockHash
	r.ClosedAt = &now
	r.UpdatedAt = now
	return nil
}

// Void ends an expired raffle without sales. Active -> Voided.
func (r *Raffle) Void(now time.Time) error {
	if r.Status != StatusActive {
		return invalidTransition(r.Status, StatusVoided)
	}
	if r.TicketsSold > 0 {
		return errors.Join(ErrInvalidState, errors.New("raffle has sold tickets"))
	}

	reason := CloseReasonExpired
	r.Status = StatusVoided
	r.CloseReason = &reason
	r.ClosedAt = &now
	r.UpdatedAt = now
	return nil
}

// SelectWinner draws the winning ticket from the seed block hash. Closed -> WinnerSelected -> MutualApprovalPending.
// purchases must hold all purchases of the raffle.
func (r *Raffle) SelectWinner(purchases []*TicketPurchase, now time.Time) (*TicketPurchase, error) {
	if r.Status != StatusClosed {
		return nil, invalidTransition(r.Status, StatusWinnerSelected)
	}
	if r.TicketsSold == 0 {
		return nil, ErrNoTicketsSold
	}
	if r.SeedBlockHash == nil {
		return nil, errors.Join(ErrInvalidState, errors.New("raffle has no seed"))
	}

	ticket, err := SelectWinningTicket(*r.SeedBlockHash, r.TicketsSold)
	if err != nil {
		return nil, err
	}

	winner, err := OwnerOf(purchases, ticket)
	if err != nil {
		return nil, err
	}

	r.WinningTicket = &ticket
	r.WinnerID = ptrTo(winner.BuyerID)
	r.Status = StatusWinnerSelected
	r.UpdatedAt = now

	// approval starts right away
	r.Status = StatusMutualApprovalPending

	return winner, nil
}

// ApproveAsCreator records the approval of the creator. It reports whether the raffle changed.
func (r *Raffle) ApproveAsCreator(actorID string, now time.Time) (bool, error) {
	if !sameActor(actorID, r.CreatorID) {
		return false, ErrForbidden
	}
	if r.ApprovedByCreator {
		return false, nil
	}
	if r.Status != StatusMutualApprovalPending {
		return false, invalidTransition(r.Status, StatusSettled)
	}

	r.ApprovedByCreator = true
	r.settleIfApproved(now)
	return true, nil
}

// ApproveAsWinner records the approval of the winner. It reports whether the raffle changed.
func (r *Raffle) ApproveAsWinner(actorID string, now time.Time) (bool, error) {
	if r.WinnerID == nil {
		return false, errors.Join(ErrInvalidState, errors.New("no winner selected"))
	}
	if !sameActor(actorID, *r.WinnerID) {
		return false, ErrForbidden
	}
	if r.ApprovedByWinner {
		return false, nil
	}
	if r.Status != StatusMutualApprovalPending {
		return false, invalidTransition(r.Status, StatusSettled)
	}

	r.ApprovedByWinner = true
	r.settleIfApproved(now)
	return true, nil
}

// Dispute stops the approval by creator or winner. MutualApprovalPending -> Disputed.
func (r *Raffle) Dispute(actorID, reason string, now time.Time) error {
	isWinner := r.WinnerID != nil && sameActor(actorID, *r.WinnerID)
	if !sameActor(actorID, r.CreatorID) && !isWinner {
		return ErrForbidden
	}
	if r.Status != StatusMutualApprovalPending {
		return invalidTransition(r.Status, StatusDisputed)
	}

	r.DisputeReason = &reason
	r.Status = StatusDisputed
	r.UpdatedAt = now
	return nil
}

func (r *Raffle) settleIfApproved(now time.Time) {
	r.UpdatedAt = now
	if r.ApprovedByCreator && r.ApprovedByWinner {
		r.Status = StatusSettled
		r.SettledAt = &now
	}
}

// sameActor compares identities, which are wallet addresses, case-insensitively.
func sameActor(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}

func invalidTransition(from, to Status) error {
	return errors.Join(ErrInvalidState, fmt.Errorf("transition %s -> %s", from, to))
}
