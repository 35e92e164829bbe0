package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devicemarket/device-auction-backend/internal/domain/bid"
	"github.com/devicemarket/device-auction-backend/internal/domain/errors"
	"github.com/devicemarket/device-auction-backend/internal/domain/listing"
)

// MemListingStore is an in-memory listing store with the same conditional
// update semantics as the Postgres repository, for service-level tests that
// exercise sequences of transitions and races.
type MemListingStore struct {
	mu       sync.Mutex
	listings map[uuid.UUID]*listing.AuctionListing

	// FailUpdates forces UpdateIf to fail for the given listing IDs,
	// simulating an unavailable store for isolation tests.
	FailUpdates map[uuid.UUID]error
}

func NewMemListingStore(listings ...*listing.AuctionListing) *MemListingStore {
	s := &MemListingStore{
		listings:    make(map[uuid.UUID]*listing.AuctionListing),
		FailUpdates: make(map[uuid.UUID]error),
	}
	for _, l := range listings {
		s.listings[l.ID] = l.Clone()
	}
	return s
}

func (s *MemListingStore) Put(l *listing.AuctionListing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ID] = l.Clone()
}

func (s *MemListingStore) GetByID(_ context.Context, id uuid.UUID) (*listing.AuctionListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, errors.ErrListingNotFound
	}
	return l.Clone(), nil
}

func (s *MemListingStore) UpdateIf(_ context.Context, l *listing.AuctionListing, expected listing.StateTuple) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.FailUpdates[l.ID]; ok {
		return err
	}

	stored, ok := s.listings[l.ID]
	if !ok {
		return errors.ErrStaleListing
	}
	if !stored.State().Equals(expected) {
		return errors.ErrStaleListing
	}
	s.listings[l.ID] = l.Clone()
	return nil
}

func (s *MemListingStore) ListReexposable(_ context.Context, now time.Time) ([]*listing.AuctionListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*listing.AuctionListing
	for _, l := range s.listings {
		if l.Status != listing.StatusActive || l.AcceptedBidID != nil {
			continue
		}
		if l.ExpiredCount >= listing.ExpiredCountMax {
			continue
		}
		if !l.StartTimestamp.Before(now) || !l.StartTimestamp.After(now.Add(-30*24*time.Hour)) {
			continue
		}
		out = append(out, l.Clone())
	}
	return out, nil
}

func (s *MemListingStore) ListRollbackCandidates(_ context.Context, now time.Time) ([]*listing.AuctionListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*listing.AuctionListing
	for _, l := range s.listings {
		if l.Status != listing.StatusSuccessfulBid || l.AcceptedBidID == nil {
			continue
		}
		if l.SellerStep != 2 || l.BuyerStep > 2 || l.BuyerConfirmDeadline == nil {
			continue
		}
		d := *l.BuyerConfirmDeadline
		if !d.Before(now) || !d.After(now.Add(-24*time.Hour)) {
			continue
		}
		out = append(out, l.Clone())
	}
	return out, nil
}

// MemBidStore is an in-memory append-only bid ledger.
type MemBidStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*bid.BidEntry
	order   []uuid.UUID
}

func NewMemBidStore(entries ...*bid.BidEntry) *MemBidStore {
	s := &MemBidStore{entries: make(map[uuid.UUID]*bid.BidEntry)}
	for _, e := range entries {
		copied := *e
		s.entries[e.ID] = &copied
		s.order = append(s.order, e.ID)
	}
	return s
}

func (s *MemBidStore) Append(_ context.Context, entry *bid.BidEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *entry
	s.entries[entry.ID] = &copied
	s.order = append(s.order, entry.ID)
	return nil
}

func (s *MemBidStore) GetByID(_ context.Context, id uuid.UUID) (*bid.BidEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, errors.ErrBidNotFound
	}
	copied := *e
	return &copied, nil
}

func (s *MemBidStore) GetByListing(_ context.Context, listingID uuid.UUID) ([]*bid.BidEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*bid.BidEntry
	for _, id := range s.order {
		e := s.entries[id]
		if e.ListingID == listingID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}
