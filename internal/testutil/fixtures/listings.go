package fixtures

import (
	"time"

	"github.com/google/uuid"

	"github.com/devicemarket/device-auction-backend/internal/domain/listing"
)

// ListingBuilder builds test AuctionListing entities
type ListingBuilder struct {
	id             uuid.UUID
	deviceRef      string
	auctionCode    string
	sellerID       uuid.UUID
	status         listing.Status
	sellerStep     int
	buyerStep      int
	acceptedBidID  *uuid.UUID
	expiredCount   int
	startTimestamp time.Time
	deadline       *time.Time
	visitDate      *time.Time
	visitTime      *string
}

// NewListingBuilder creates a builder with a freshly registered listing's
// defaults: Active, both counters at zero, no acceptance.
func NewListingBuilder() *ListingBuilder {
	return &ListingBuilder{
		id:             uuid.New(),
		deviceRef:      "device-" + uuid.NewString()[:8],
		auctionCode:    "AUC-" + uuid.NewString()[:8],
		sellerID:       uuid.New(),
		status:         listing.StatusActive,
		startTimestamp: time.Now().UTC(),
	}
}

// WithID sets the listing ID
func (b *ListingBuilder) WithID(id uuid.UUID) *ListingBuilder {
	b.id = id
	return b
}

// WithSellerID sets the listing owner
func (b *ListingBuilder) WithSellerID(sellerID uuid.UUID) *ListingBuilder {
	b.sellerID = sellerID
	return b
}

// WithStatus sets the listing status
func (b *ListingBuilder) WithStatus(status listing.Status) *ListingBuilder {
	b.status = status
	return b
}

// WithSteps sets both progress counters
func (b *ListingBuilder) WithSteps(sellerStep, buyerStep int) *ListingBuilder {
	b.sellerStep = sellerStep
	b.buyerStep = buyerStep
	return b
}

// WithAcceptedBid sets the accepted bid reference
func (b *ListingBuilder) WithAcceptedBid(bidID uuid.UUID) *ListingBuilder {
	b.acceptedBidID = &bidID
	return b
}

// WithExpiredCount sets the expiration counter
func (b *ListingBuilder) WithExpiredCount(count int) *ListingBuilder {
	b.expiredCount = count
	return b
}

// WithStartTimestamp sets the exposure window start
func (b *ListingBuilder) WithStartTimestamp(ts time.Time) *ListingBuilder {
	b.startTimestamp = ts
	return b
}

// WithConfirmDeadline sets the buyer confirmation deadline
func (b *ListingBuilder) WithConfirmDeadline(deadline time.Time) *ListingBuilder {
	b.deadline = &deadline
	return b
}

// WithVisit sets the visit appointment
func (b *ListingBuilder) WithVisit(date time.Time, timeSlot string) *ListingBuilder {
	b.visitDate = &date
	b.visitTime = &timeSlot
	return b
}

// Accepted is shorthand for the state immediately after AcceptBid.
func (b *ListingBuilder) Accepted(bidID uuid.UUID, deadline time.Time) *ListingBuilder {
	return b.WithStatus(listing.StatusSuccessfulBid).
		WithSteps(2, 1).
		WithAcceptedBid(bidID).
		WithConfirmDeadline(deadline)
}

// Build constructs the listing
func (b *ListingBuilder) Build() *listing.AuctionListing {
	now := time.Now().UTC()
	return &listing.AuctionListing{
		ID:                   b.id,
		DeviceRef:            b.deviceRef,
		AuctionCode:          b.auctionCode,
		SellerID:             b.sellerID,
		Status:               b.status,
		SellerStep:           b.sellerStep,
		BuyerStep:            b.buyerStep,
		AcceptedBidID:        b.acceptedBidID,
		ExpiredCount:         b.expiredCount,
		StartTimestamp:       b.startTimestamp,
		BuyerConfirmDeadline: b.deadline,
		VisitDate:            b.visitDate,
		VisitTime:            b.visitTime,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}
