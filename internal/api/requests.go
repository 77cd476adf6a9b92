package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/holiman/uint256"

	"github.com/rafflechain/settler/internal/raffle"
)

const maxBodySize = 64 << 10

var (
	ErrMalformedBody = errors.New("malformed request body")
	ErrMissingField  = errors.New("required field missing")
)

type TermsRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Kind        string    `json:"kind"`
	PrizeValue  string    `json:"prizeValue"`
	TicketPrice string    `json:"ticketPrice"`
	MaxTickets  int64     `json:"maxTickets"`
	EndTime     time.Time `json:"endTime"`
}

type CreateRaffleRequest struct {
	TermsRequest
	CreationTxHash string `json:"creationTxHash"`
}

type ActivateRaffleRequest struct {
	CreationTxHash string `json:"creationTxHash"`
}

type PurchaseTicketsRequest struct {
	Quantity int64  `json:"quantity"`
	TxHash   string `json:"txHash"`
}

type DisputeRequest struct {
	Reason string `json:"reason"`
}

type RaffleResponse struct {
	ID                string     `json:"id"`
	CreatorID         string     `json:"creatorId,omitempty"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Kind              string     `json:"kind"`
	PrizeValue        *string    `json:"prizeValue,omitempty"`
	TicketPrice       *string    `json:"ticketPrice,omitempty"`
	MaxTickets        int64      `json:"maxTickets"`
	TicketsSold       int64      `json:"ticketsSold"`
	EndTime           *time.Time `json:"endTime,omitempty"`
	CreationTxHash    *string    `json:"creationTxHash,omitempty"`
	PaymentStatus     string     `json:"paymentStatus"`
	Status            string     `json:"status"`
	CloseReason       *string    `json:"closeReason,omitempty"`
	RejectReason      *string    `json:"rejectReason,omitempty"`
	DisputeReason     *string    `json:"disputeReason,omitempty"`
	SeedBlockNumber   *uint64    `json:"seedBlockNumber,omitempty"`
	SeedBlockHash     *string    `json:"seedBlockHash,omitempty"`
	WinningTicket     *int64     `json:"winningTicket,omitempty"`
	WinnerID          *string    `json:"winnerId,omitempty"`
	ApprovedByCreator bool       `json:"approvedByCreator"`
	ApprovedByWinner  bool       `json:"approvedByWinner"`
	Version           int64      `json:"version"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	ClosedAt          *time.Time `json:"closedAt,omitempty"`
	SettledAt         *time.Time `json:"settledAt,omitempty"`
	Redacted          bool       `json:"redacted,omitempty"`
}

type PurchaseResponse struct {
	ID          string    `json:"id"`
	BuyerID     string    `json:"buyerId"`
	Quantity    int64     `json:"quantity"`
	AmountPaid  string    `json:"amountPaid"`
	TxHash      string    `json:"txHash"`
	Sequence    int64     `json:"sequence"`
	FirstTicket int64     `json:"firstTicket"`
	PurchasedAt time.Time `json:"purchasedAt"`
}

// decodeBody decodes exactly one JSON object into v. Unknown fields are rejected.
func decodeBody(body io.Reader, v any) error {
	dec := json.NewDecoder(io.LimitReader(body, maxBodySize))
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if err != nil {
		return errors.Join(ErrMalformedBody, err)
	}
	if dec.More() {
		return errors.Join(ErrMalformedBody, errors.New("unexpected data after the request object"))
	}

	return nil
}

func missing(fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return errors.Join(ErrMissingField, fmt.Errorf("fields: %s", strings.Join(fields, ", ")))
}

func (r TermsRequest) missingFields() []string {
	var fields []string
	if r.Title == "" {
		fields = append(fields, "title")
	}
	if r.TicketPrice == "" {
		fields = append(fields, "ticketPrice")
	}
	if r.MaxTickets == 0 {
		fields = append(fields, "maxTickets")
	}
	if r.EndTime.IsZero() {
		fields = append(fields, "endTime")
	}
	if r.Kind != string(raffle.KindDonation) && r.PrizeValue == "" {
		fields = append(fields, "prizeValue")
	}
	return fields
}

func (r TermsRequest) Validate() error {
	return missing(r.missingFields()...)
}

// Terms converts the request into raffle terms. Amounts are decimal wei strings.
func (r TermsRequest) Terms() (raffle.Terms, error) {
	kind := raffle.Kind(r.Kind)
	if kind == "" {
		kind = raffle.KindRaffle
	}

	terms := raffle.Terms{
		Title:       r.Title,
		Description: r.Description,
		Kind:        kind,
		MaxTickets:  r.MaxTickets,
		EndTime:     r.EndTime,
	}

	var err error
	terms.TicketPrice, err = uint256.FromDecimal(r.TicketPrice)
	if err != nil {
		return raffle.Terms{}, errors.Join(raffle.ErrInvalidTerms, fmt.Errorf("ticket price: %w", err))
	}

	if r.PrizeValue != "" {
		terms.PrizeValue, err = uint256.FromDecimal(r.PrizeValue)
		if err != nil {
			return raffle.Terms{}, errors.Join(raffle.ErrInvalidTerms, fmt.Errorf("prize value: %w", err))
		}
	}

	return terms, nil
}

func (r CreateRaffleRequest) Validate() error {
	fields := r.missingFields()
	if r.CreationTxHash == "" {
		fields = append(fields, "creationTxHash")
	}
	return missing(fields...)
}

func (r ActivateRaffleRequest) Validate() error {
	if r.CreationTxHash == "" {
		return missing("creationTxHash")
	}
	return nil
}

func (r PurchaseTicketsRequest) Validate() error {
	var fields []string
	if r.Quantity == 0 {
		fields = append(fields, "quantity")
	}
	if r.TxHash == "" {
		fields = append(fields, "txHash")
	}
	return missing(fields...)
}

func (r DisputeRequest) Validate() error {
	if strings.TrimSpace(r.Reason) == "" {
		return missing("reason")
	}
	return nil
}

func toRaffleResponse(r *raffle.Raffle) RaffleResponse {
	resp := RaffleResponse{
		ID:                r.ID,
		CreatorID:         r.CreatorID,
		Title:             r.Title,
		Description:       r.Description,
		Kind:              string(r.Kind),
		PrizeValue:        decimal(r.PrizeValue),
		TicketPrice:       decimal(r.TicketPrice),
		MaxTickets:        r.MaxTickets,
		TicketsSold:       r.TicketsSold,
		CreationTxHash:    r.CreationTxHash,
		PaymentStatus:     string(r.PaymentStatus),
		Status:            string(r.Status),
		RejectReason:      r.RejectReason,
		DisputeReason:     r.DisputeReason,
		SeedBlockNumber:   r.SeedBlockNumber,
		SeedBlockHash:     r.SeedBlockHash,
		WinningTicket:     r.WinningTicket,
		WinnerID:          r.WinnerID,
		ApprovedByCreator: r.ApprovedByCreator,
		ApprovedByWinner:  r.ApprovedByWinner,
		Version:           r.Version,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		ClosedAt:          r.ClosedAt,
		SettledAt:         r.SettledAt,
		Redacted:          r.Redacted,
	}

	if !r.EndTime.IsZero() {
		resp.EndTime = &r.EndTime
	}
	if r.CloseReason != nil {
		reason := string(*r.CloseReason)
		resp.CloseReason = &reason
	}

	return resp
}

func toPurchaseResponse(p *raffle.TicketPurchase) PurchaseResponse {
	resp := PurchaseResponse{
		ID:          p.ID,
		BuyerID:     p.BuyerID,
		Quantity:    p.Quantity,
		TxHash:      p.TxHash,
		Sequence:    p.Sequence,
		FirstTicket: p.FirstTicket,
		PurchasedAt: p.PurchasedAt,
	}
	if p.AmountPaid != nil {
		resp.AmountPaid = p.AmountPaid.Dec()
	}
	return resp
}

func decimal(v *uint256.Int) *string {
	if v == nil {
		return nil
	}
	d := v.Dec()
	return &d
}
