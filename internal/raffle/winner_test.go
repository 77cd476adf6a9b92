package raffle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectWinningTicket(t *testing.T) {
	maxHash := "0x" + strings.Repeat("ff", 32)

	tt := []struct {
		name        string
		seed        string
		ticketsSold int64

		expectedTicket int64
		expectedErr    error
	}{
		{
			name:        "small seed",
			seed:        "0x0000000000000000000000000000000000000000000000000000000000000005",
			ticketsSold: 3,

			expectedTicket: 2,
		},
		{
			name:        "max seed mod 10",
			seed:        maxHash,
			ticketsSold: 10,

			expectedTicket: 5,
		},
		{
			name:        "max seed mod 7",
			seed:        maxHash,
			ticketsSold: 7,

			expectedTicket: 1,
		},
		{
			name:        "single ticket",
			seed:        "0x1d59ff54b1eb26b013ce3cb5fc9dab3705b415a67127a003c3e61eb445bb8df2",
			ticketsSold: 1,

			expectedTicket: 0,
		},
		{
			name:        "no tickets",
			seed:        maxHash,
			ticketsSold: 0,

			expectedErr: ErrNoTicketsSold,
		},
		{
			name:        "not hex",
			seed:        "0xzz",
			ticketsSold: 5,

			expectedErr: ErrInvalidSeed,
		},
		{
			name:        "too long",
			seed:        maxHash + "ff",
			ticketsSold: 5,

			expectedErr: ErrInvalidSeed,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			// when
			ticket, err := SelectWinningTicket(tc.seed, tc.ticketsSold)

			// then
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expectedTicket, ticket)

			// deterministic for identical input
			again, err := SelectWinningTicket(tc.seed, tc.ticketsSold)
			require.NoError(t, err)
			require.Equal(t, ticket, again)
		})
	}
}

func TestOwnerOf(t *testing.T) {
	// given
	purchases := []*TicketPurchase{
		{ID: "p3", BuyerID: "carol", Sequence: 3, FirstTicket: 5, Quantity: 1},
		{ID: "p1", BuyerID: "alice", Sequence: 1, FirstTicket: 0, Quantity: 2},
		{ID: "p2", BuyerID: "bob", Sequence: 2, FirstTicket: 2, Quantity: 3},
	}

	tt := []struct {
		ticket        int64
		expectedOwner string
	}{
		{ticket: 0, expectedOwner: "alice"},
		{ticket: 1, expectedOwner: "alice"},
		{ticket: 2, expectedOwner: "bob"},
		{ticket: 4, expectedOwner: "bob"},
		{ticket: 5, expectedOwner: "carol"},
	}

	for _, tc := range tt {
		// when
		owner, err := OwnerOf(purchases, tc.ticket)

		// then
		require.NoError(t, err)
		require.Equal(t, tc.expectedOwner, owner.BuyerID)
	}

	_, err := OwnerOf(purchases, 6)
	require.ErrorIs(t, err, ErrTicketNotOwned)

	_, err = OwnerOf(nil, 0)
	require.ErrorIs(t, err, ErrTicketNotOwned)
}
