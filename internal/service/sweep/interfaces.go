package sweep

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/devicemarket/device-auction-backend/internal/domain/listing"
)

// ListingRepository defines the storage operations the sweep needs. The list
// queries are bounded time-window scans so a listing that ages out of its
// window is never reprocessed indefinitely.
type ListingRepository interface {
	// GetByID retrieves a listing by ID
	GetByID(ctx context.Context, id uuid.UUID) (*listing.AuctionListing, error)
	// ListReexposable returns Active listings with no accepted bid whose
	// start timestamp lies in (now-30d, now] and expired_count < 3
	ListReexposable(ctx context.Context, now time.Time) ([]*listing.AuctionListing, error)
	// ListRollbackCandidates returns SuccessfulBid listings stuck at
	// seller_step=2, buyer_step<=2 whose confirmation deadline passed
	// within (now-1d, now]
	ListRollbackCandidates(ctx context.Context, now time.Time) ([]*listing.AuctionListing, error)
	// UpdateIf persists l only if the stored row still matches expected
	UpdateIf(ctx context.Context, l *listing.AuctionListing, expected listing.StateTuple) error
}

// MetricsCollector defines the interface for sweep metrics
type MetricsCollector interface {
	// RecordSweepRun records one full sweep execution
	RecordSweepRun(kind string, duration time.Duration)
	// RecordSweepOutcome records the result of one per-listing update
	RecordSweepOutcome(kind string, outcome string)
}
