package raffle

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/holiman/uint256"
)

var ErrInvalidSeed = errors.New("invalid seed block hash")

// SelectWinningTicket returns the index of the winning ticket: the seed block hash read as
// 256 bit big-endian unsigned integer, modulo the number of sold tickets.
func SelectWinningTicket(seedBlockHash string, ticketsSold int64) (int64, error) {
	if ticketsSold <= 0 {
		return 0, ErrNoTicketsSold
	}

	raw, err := hex.DecodeString(strings.TrimPrefix(seedBlockHash, "0x"))
	if err != nil || len(raw) == 0 || len(raw) > 32 {
		return 0, errors.Join(ErrInvalidSeed, fmt.Errorf("seed: %q", seedBlockHash))
	}

	seed := new(uint256.Int).SetBytes(raw)
	index := new(uint256.Int).Mod(seed, uint256.NewInt(uint64(ticketsSold)))

	return int64(index.Uint64()), nil
}

// OwnerOf returns the purchase owning the ticket. Purchases are ordered by sequence, so ticket ranges are ascending.
func OwnerOf(purchases []*TicketPurchase, ticket int64) (*TicketPurchase, error) {
	ordered := make([]*TicketPurchase, len(purchases))
	copy(ordered, purchases)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Sequence < ordered[j].Sequence
	})

	i := sort.Search(len(ordered), func(i int) bool {
		return ordered[i].FirstTicket+ordered[i].Quantity > ticket
	})
	if i == len(ordered) || !ordered[i].Owns(ticket) {
		return nil, errors.Join(ErrTicketNotOwned, fmt.Errorf("ticket: %d", ticket))
	}

	return ordered[i], nil
}
