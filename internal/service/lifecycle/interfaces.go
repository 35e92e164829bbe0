package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/devicemarket/device-auction-backend/internal/domain/bid"
	"github.com/devicemarket/device-auction-backend/internal/domain/event"
	"github.com/devicemarket/device-auction-backend/internal/domain/listing"
)

// Service drives every actor-initiated transition of an auction listing.
// Each mutating operation is a conditional compare-and-set over the listing's
// state tuple; a failed precondition is terminal for that call and the caller
// must refetch and decide.
type Service interface {
	// PlaceBid appends an offer to the listing's bid ledger
	PlaceBid(ctx context.Context, listingID, bidderID uuid.UUID, amount int64) (*bid.BidEntry, error)
	// AcceptBid records the seller choosing one bid and opens the buyer's confirmation window
	AcceptBid(ctx context.Context, listingID, bidID uuid.UUID) (*listing.AuctionListing, error)
	// SubmitBuyerInfo records the winning bidder's handover information
	SubmitBuyerInfo(ctx context.Context, listingID uuid.UUID) (*listing.AuctionListing, error)
	// ScheduleVisit fixes the inspection appointment
	ScheduleVisit(ctx context.Context, listingID uuid.UUID, date time.Time, timeSlot string) (*listing.AuctionListing, error)
	// ConfirmDeposit is the administrative payment-verified override
	ConfirmDeposit(ctx context.Context, listingID uuid.UUID) (*listing.AuctionListing, error)
	// CompleteTransfer marks the handover done on both sides
	CompleteTransfer(ctx context.Context, listingID uuid.UUID) (*listing.AuctionListing, error)
	// FinalizeSale closes a successful sale
	FinalizeSale(ctx context.Context, listingID uuid.UUID) (*listing.AuctionListing, error)
	// CancelListing terminates a listing that has not completed
	CancelListing(ctx context.Context, listingID uuid.UUID) (*listing.AuctionListing, error)
	// GetListing retrieves a listing
	GetListing(ctx context.Context, listingID uuid.UUID) (*listing.AuctionListing, error)
	// GetBid retrieves a single ledger entry
	GetBid(ctx context.Context, bidID uuid.UUID) (*bid.BidEntry, error)
	// GetBidsForListing returns every offer recorded for a listing
	GetBidsForListing(ctx context.Context, listingID uuid.UUID) ([]*bid.BidEntry, error)
}

// ListingRepository defines the interface for listing storage
type ListingRepository interface {
	// GetByID retrieves a listing by ID
	GetByID(ctx context.Context, id uuid.UUID) (*listing.AuctionListing, error)
	// UpdateIf persists l only if the stored row still matches expected.
	// Implementations must execute this as one atomic conditional write and
	// return domain errors.ErrStaleListing when the row no longer matches.
	UpdateIf(ctx context.Context, l *listing.AuctionListing, expected listing.StateTuple) error
}

// BidRepository defines the interface for the append-only bid ledger
type BidRepository interface {
	// Append stores a new ledger entry; entries are immutable once written
	Append(ctx context.Context, entry *bid.BidEntry) error
	// GetByID retrieves a ledger entry by ID
	GetByID(ctx context.Context, id uuid.UUID) (*bid.BidEntry, error)
	// GetByListing returns all entries recorded for a listing
	GetByListing(ctx context.Context, listingID uuid.UUID) ([]*bid.BidEntry, error)
}

// Notifier hands transition events to the notification dispatcher
type Notifier interface {
	// Publish emits one event; delivery and retries belong to the dispatcher
	Publish(ctx context.Context, ev event.TransitionEvent) error
}

// MetricsCollector defines the interface for transition metrics
type MetricsCollector interface {
	// RecordBidPlaced records a ledger append
	RecordBidPlaced(listingID uuid.UUID, amount int64)
	// RecordTransition records a lifecycle transition outcome
	RecordTransition(op string, outcome string)
}
