package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/devicemarket/device-auction-backend/internal/domain/bid"
	"github.com/devicemarket/device-auction-backend/internal/domain/event"
	"github.com/devicemarket/device-auction-backend/internal/domain/listing"
)

// ListingRepository mock
type ListingRepository struct {
	mock.Mock
}

func (m *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*listing.AuctionListing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.AuctionListing), args.Error(1)
}

func (m *ListingRepository) UpdateIf(ctx context.Context, l *listing.AuctionListing, expected listing.StateTuple) error {
	args := m.Called(ctx, l, expected)
	return args.Error(0)
}

func (m *ListingRepository) ListReexposable(ctx context.Context, now time.Time) ([]*listing.AuctionListing, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*listing.AuctionListing), args.Error(1)
}

func (m *ListingRepository) ListRollbackCandidates(ctx context.Context, now time.Time) ([]*listing.AuctionListing, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*listing.AuctionListing), args.Error(1)
}

// BidRepository mock
type BidRepository struct {
	mock.Mock
}

func (m *BidRepository) Append(ctx context.Context, entry *bid.BidEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *BidRepository) GetByID(ctx context.Context, id uuid.UUID) (*bid.BidEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bid.BidEntry), args.Error(1)
}

func (m *BidRepository) GetByListing(ctx context.Context, listingID uuid.UUID) ([]*bid.BidEntry, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*bid.BidEntry), args.Error(1)
}

// Notifier mock
type Notifier struct {
	mock.Mock
}

func (m *Notifier) Publish(ctx context.Context, ev event.TransitionEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}
