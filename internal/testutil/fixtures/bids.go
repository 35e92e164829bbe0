package fixtures

import (
	"time"

	"github.com/google/uuid"

	"github.com/devicemarket/device-auction-backend/internal/domain/bid"
)

// BidBuilder builds test BidEntry entities
type BidBuilder struct {
	id        uuid.UUID
	listingID uuid.UUID
	bidderID  uuid.UUID
	amount    int64
	createdAt time.Time
}

// NewBidBuilder creates a new BidBuilder with defaults
func NewBidBuilder() *BidBuilder {
	return &BidBuilder{
		id:        uuid.New(),
		listingID: uuid.New(),
		bidderID:  uuid.New(),
		amount:    100000,
		createdAt: time.Now().UTC(),
	}
}

// WithID sets the entry ID
func (b *BidBuilder) WithID(id uuid.UUID) *BidBuilder {
	b.id = id
	return b
}

// WithListingID sets the listing reference
func (b *BidBuilder) WithListingID(listingID uuid.UUID) *BidBuilder {
	b.listingID = listingID
	return b
}

// WithBidderID sets the bidder
func (b *BidBuilder) WithBidderID(bidderID uuid.UUID) *BidBuilder {
	b.bidderID = bidderID
	return b
}

// WithAmount sets the offer amount
func (b *BidBuilder) WithAmount(amount int64) *BidBuilder {
	b.amount = amount
	return b
}

// Build constructs the ledger entry
func (b *BidBuilder) Build() *bid.BidEntry {
	return &bid.BidEntry{
		ID:        b.id,
		ListingID: b.listingID,
		BidderID:  b.bidderID,
		Amount:    b.amount,
		CreatedAt: b.createdAt,
	}
}
