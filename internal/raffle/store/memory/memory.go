package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rafflechain/settler/internal/raffle"
	"github.com/rafflechain/settler/internal/raffle/store"
)

// Store keeps raffles in process memory. It is used when no database is configured and in tests.
type Store struct {
	mu        sync.RWMutex
	raffles   map[string]*raffle.Raffle
	purchases map[string][]*raffle.TicketPurchase
	consumed  map[string]string
}

func New() *Store {
	return &Store{
		raffles:   make(map[string]*raffle.Raffle),
		purchases: make(map[string][]*raffle.TicketPurchase),
		consumed:  make(map[string]string),
	}
}

func (s *Store) CreateRaffle(_ context.Context, r *raffle.Raffle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.raffles[r.ID]; found {
		return fmt.Errorf("raffle %s already exists", r.ID)
	}
	if r.CreationTxHash != nil {
		if err := s.checkConsumable(*r.CreationTxHash); err != nil {
			return err
		}
		s.consumed[*r.CreationTxHash] = r.ID
	}

	r.Version = 1
	s.raffles[r.ID] = r.Clone()
	return nil
}

func (s *Store) GetRaffle(_ context.Context, id string) (*raffle.Raffle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, found := s.raffles[id]
	if !found {
		return nil, errors.Join(store.ErrNotFound, fmt.Errorf("id: %s", id))
	}

	return r.Clone(), nil
}

func (s *Store) SaveRaffle(_ context.Context, r *raffle.Raffle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkVersion(r); err != nil {
		return err
	}

	s.put(r)
	return nil
}

func (s *Store) ActivateRaffle(_ context.Context, r *raffle.Raffle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.CreationTxHash == nil {
		return errors.New("raffle has no creation tx hash")
	}
	if err := s.checkVersion(r); err != nil {
		return err
	}
	if err := s.checkConsumable(*r.CreationTxHash); err != nil {
		return err
	}

	s.consumed[*r.CreationTxHash] = r.ID
	s.put(r)
	return nil
}

func (s *Store) SavePurchase(_ context.Context, r *raffle.Raffle, p *raffle.TicketPurchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.RaffleID != r.ID {
		return errors.New("purchase does not belong to raffle")
	}
	if err := s.checkVersion(r); err != nil {
		return err
	}
	if err := s.checkConsumable(p.TxHash); err != nil {
		return err
	}

	p.Sequence = int64(len(s.purchases[r.ID])) + 1
	stored := *p
	if p.AmountPaid != nil {
		stored.AmountPaid = p.AmountPaid.Clone()
	}

	s.consumed[p.TxHash] = r.ID
	s.purchases[r.ID] = append(s.purchases[r.ID], &stored)
	s.put(r)
	return nil
}

func (s *Store) GetPurchases(_ context.Context, raffleID string) ([]*raffle.TicketPurchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	purchases := make([]*raffle.TicketPurchase, 0, len(s.purchases[raffleID]))
	for _, p := range s.purchases[raffleID] {
		c := *p
		if p.AmountPaid != nil {
			c.AmountPaid = p.AmountPaid.Clone()
		}
		purchases = append(purchases, &c)
	}

	return purchases, nil
}

func (s *Store) IsTxConsumed(_ context.Context, txHash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, found := s.consumed[txHash]
	return found, nil
}

func (s *Store) ListRaffles(_ context.Context, filter raffle.Filter) ([]*raffle.Raffle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]*raffle.Raffle, 0)
	for _, r := range s.raffles {
		if !matchesFilter(r, filter) {
			continue
		}
		matches = append(matches, r.Clone())
	}

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID < matches[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matches) {
			return []*raffle.Raffle{}, nil
		}
		matches = matches[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matches) {
		matches = matches[:filter.Limit]
	}

	return matches, nil
}

func (s *Store) ListExpired(_ context.Context, now time.Time, limit int) ([]*raffle.Raffle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expired := make([]*raffle.Raffle, 0)
	for _, r := range s.raffles {
		if r.Status == raffle.StatusActive && r.IsExpired(now) {
			expired = append(expired, r.Clone())
		}
	}

	sort.Slice(expired, func(i, j int) bool {
		if !expired[i].EndTime.Equal(expired[j].EndTime) {
			return expired[i].EndTime.Before(expired[j].EndTime)
		}
		return expired[i].ID < expired[j].ID
	})

	if limit > 0 && limit < len(expired) {
		expired = expired[:limit]
	}

	return expired, nil
}

func (s *Store) Ping(_ context.Context) error {
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) checkVersion(r *raffle.Raffle) error {
	stored, found := s.raffles[r.ID]
	if !found {
		return errors.Join(store.ErrNotFound, fmt.Errorf("id: %s", r.ID))
	}
	if stored.Version != r.Version {
		return errors.Join(store.ErrVersionConflict, fmt.Errorf("id: %s, version: %d", r.ID, r.Version))
	}
	return nil
}

func (s *Store) checkConsumable(txHash string) error {
	if _, found := s.consumed[txHash]; found {
		return errors.Join(store.ErrTransactionReplayed, fmt.Errorf("tx hash: %s", txHash))
	}
	return nil
}

// put stores a copy of r with the next version. Callers hold the lock.
func (s *Store) put(r *raffle.Raffle) {
	r.Version++
	s.raffles[r.ID] = r.Clone()
}

func matchesFilter(r *raffle.Raffle, filter raffle.Filter) bool {
	if filter.VerifiedOnly && !r.IsVerified() {
		return false
	}
	if filter.CreatorID != "" && !strings.EqualFold(filter.CreatorID, r.CreatorID) {
		return false
	}
	return len(filter.Statuses) == 0 || slices.Contains(filter.Statuses, r.Status)
}
