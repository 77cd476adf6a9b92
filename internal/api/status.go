package api

import (
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"github.com/rafflechain/settler/internal/engine"
	"github.com/rafflechain/settler/internal/guard"
	"github.com/rafflechain/settler/internal/ledger"
	"github.com/rafflechain/settler/internal/raffle"
	"github.com/rafflechain/settler/internal/raffle/store"
	"github.com/rafflechain/settler/internal/verifier"
)

type StatusCode int

const (
	errorTypePrefix = "urn:settler:error:"

	StatusOK                    StatusCode = 200
	StatusCreated               StatusCode = 201
	ErrStatusBadRequest         StatusCode = 400
	ErrStatusUnauthorized       StatusCode = 401
	ErrStatusPaymentRejected    StatusCode = 402
	ErrStatusForbidden          StatusCode = 403
	ErrStatusNotFound           StatusCode = 404
	ErrStatusConflict           StatusCode = 409
	ErrStatusGeneric            StatusCode = 500
	ErrStatusServiceUnavailable StatusCode = 503
)

// Reason codes are stable and machine-parsable. Rejected payments use the verdict reason instead.
const (
	ReasonInvalidRequest         = "invalid_request"
	ReasonMissingActor           = "missing_actor"
	ReasonForbidden              = "forbidden"
	ReasonNotFound               = "not_found"
	ReasonInvalidState           = "invalid_state"
	ReasonCapacityExceeded       = "capacity_exceeded"
	ReasonTransactionReplayed    = "transaction_replayed"
	ReasonConcurrentModification = "concurrent_modification"
	ReasonUnhealthy              = "unhealthy"
	ReasonInternal               = "internal_error"
)

// ErrorFields is the problem document returned for every failed request.
type ErrorFields struct {
	Type       string  `json:"type"`
	Title      string  `json:"title"`
	Status     int     `json:"status"`
	Detail     string  `json:"detail"`
	ReasonCode string  `json:"reasonCode"`
	ExtraInfo  *string `json:"extraInfo,omitempty"`
}

func (e *ErrorFields) GetSpanAttributes() []attribute.KeyValue {
	attr := []attribute.KeyValue{attribute.Int("code", e.Status), attribute.String("reasonCode", e.ReasonCode)}
	if e.ExtraInfo != nil {
		attr = append(attr, attribute.String("extraInfo", *e.ExtraInfo))
	}
	return attr
}

func NewErrorFields(status StatusCode, reasonCode string, extraInfo string) *ErrorFields {
	errFields := ErrorFields{
		Type:       errorTypePrefix + reasonCode,
		Status:     int(status),
		ReasonCode: reasonCode,
	}

	if extraInfo != "" {
		errFields.ExtraInfo = &extraInfo
	}

	switch status {
	case ErrStatusBadRequest: // 400
		errFields.Detail = "The request seems to be malformed and cannot be processed"
		errFields.Title = "Bad request"
	case ErrStatusUnauthorized: // 401
		errFields.Detail = "The caller could not be identified"
		errFields.Title = "Unauthorized"
	case ErrStatusPaymentRejected: // 402
		errFields.Detail = "The payment transaction could not be verified on the ledger"
		errFields.Title = "Payment rejected"
	case ErrStatusForbidden: // 403
		errFields.Detail = "The caller is not allowed to perform this operation"
		errFields.Title = "Forbidden"
	case ErrStatusNotFound: // 404
		errFields.Detail = "The requested resource could not be found"
		errFields.Title = "Not found"
	case ErrStatusConflict: // 409
		errFields.Detail = "The operation conflicts with the current state of the raffle"
		errFields.Title = "Conflict"
	case ErrStatusServiceUnavailable: // 503
		errFields.Detail = "A dependency is unavailable, the request can be retried"
		errFields.Title = "Service unavailable"
	default:
		errFields.Status = int(ErrStatusGeneric)
		errFields.Detail = "The request could not be processed"
		errFields.Title = "Generic error"
	}

	return &errFields
}

// ErrorFieldsFor maps an error returned by the engine to its problem document.
func ErrorFieldsFor(err error) *ErrorFields {
	var rejection *verifier.RejectionError
	if errors.As(err, &rejection) {
		return NewErrorFields(ErrStatusPaymentRejected, string(rejection.Reason), err.Error())
	}

	switch {
	case errors.Is(err, ErrMalformedBody),
		errors.Is(err, ErrMissingField),
		errors.Is(err, engine.ErrInvalidInput),
		errors.Is(err, engine.ErrAmountOverflow),
		errors.Is(err, raffle.ErrInvalidTerms),
		errors.Is(err, raffle.ErrInvalidQuantity),
		errors.Is(err, ledger.ErrInvalidHash):
		return NewErrorFields(ErrStatusBadRequest, ReasonInvalidRequest, err.Error())
	case errors.Is(err, raffle.ErrForbidden):
		return NewErrorFields(ErrStatusForbidden, ReasonForbidden, err.Error())
	case errors.Is(err, guard.ErrRaffleUnverified):
		return NewErrorFields(ErrStatusForbidden, guard.ReasonRaffleUnverified, "")
	case errors.Is(err, store.ErrNotFound):
		return NewErrorFields(ErrStatusNotFound, ReasonNotFound, err.Error())
	case errors.Is(err, raffle.ErrCapacityExceeded):
		return NewErrorFields(ErrStatusConflict, ReasonCapacityExceeded, err.Error())
	case errors.Is(err, store.ErrTransactionReplayed):
		return NewErrorFields(ErrStatusConflict, ReasonTransactionReplayed, err.Error())
	case errors.Is(err, store.ErrVersionConflict):
		return NewErrorFields(ErrStatusConflict, ReasonConcurrentModification, "")
	case errors.Is(err, raffle.ErrInvalidState),
		errors.Is(err, raffle.ErrNoTicketsSold),
		errors.Is(err, raffle.ErrTicketNotOwned):
		return NewErrorFields(ErrStatusConflict, ReasonInvalidState, err.Error())
	case errors.Is(err, ledger.ErrLedgerUnavailable):
		return NewErrorFields(ErrStatusServiceUnavailable, guard.ReasonLedgerUnavailable, "")
	}

	return NewErrorFields(ErrStatusGeneric, ReasonInternal, "")
}
