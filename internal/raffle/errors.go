package raffle

import (
	"errors"
)

var (
	ErrInvalidState     = errors.New("operation not allowed in current raffle state")
	ErrCapacityExceeded = errors.New("not enough tickets left")
	ErrForbidden        = errors.New("actor is not allowed to perform this operation")
	ErrInvalidTerms     = errors.New("invalid raffle terms")
	ErrInvalidQuantity  = errors.New("ticket quantity must be positive")
	ErrNoTicketsSold    = errors.New("no tickets sold")
	ErrTicketNotOwned   = errors.New("no purchase owns the winning ticket")
)
