package sweep

import (
	"context"
	stderrors "errors"
	"time"

	"go.uber.org/zap"

	"github.com/devicemarket/device-auction-backend/internal/domain/clock"
	"github.com/devicemarket/device-auction-backend/internal/domain/errors"
	"github.com/devicemarket/device-auction-backend/internal/domain/listing"
)

const (
	kindReexposure = "reexposure"
	kindRollback   = "rollback"
)

// Scheduler applies the time-driven transitions: re-exposure with escalating
// backoff, cancellation after the third miss, and acceptance rollback when
// the buyer's confirmation deadline lapses. Each per-listing update is the
// same atomic compare-and-set the lifecycle engine uses, so a sweep racing an
// actor request can never double-apply.
type Scheduler struct {
	repo    ListingRepository
	metrics MetricsCollector
	logger  *zap.Logger
}

// NewScheduler creates a sweep scheduler.
func NewScheduler(repo ListingRepository, metrics MetricsCollector, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		repo:    repo,
		metrics: metrics,
		logger:  logger,
	}
}

// Run executes both sweeps once against a single observation of the clock.
// A single listing's failure is isolated: it is reported and the remaining
// matches in the same run are still processed.
func (s *Scheduler) Run(ctx context.Context) error {
	now := clock.Now()

	if err := s.runReexposure(ctx, now); err != nil {
		return err
	}
	return s.runRollback(ctx, now)
}

// runReexposure applies the escalating-backoff policy to un-accepted Active
// listings whose exposure window has lapsed.
func (s *Scheduler) runReexposure(ctx context.Context, now time.Time) error {
	start := time.Now()
	defer s.recordRun(kindReexposure, start)

	candidates, err := s.repo.ListReexposable(ctx, now)
	if err != nil {
		return errors.NewStoreError("failed to list re-exposable listings", err)
	}

	for _, l := range candidates {
		if !matchesReexposure(l, now) {
			continue
		}

		prior := l.State()
		l.Reexpose()

		switch err := s.repo.UpdateIf(ctx, l, prior); {
		case err == nil:
			outcome := "advanced"
			if l.Status == listing.StatusCancelled {
				outcome = "cancelled"
			}
			s.recordOutcome(kindReexposure, outcome)
			s.logger.Info("listing re-exposure applied",
				zap.String("listing_id", l.ID.String()),
				zap.Int("expired_count", l.ExpiredCount),
				zap.String("status", l.Status.String()))
		case stderrors.Is(err, errors.ErrStaleListing):
			// An actor request or another sweep run got there first.
			s.recordOutcome(kindReexposure, "stale")
		default:
			s.recordOutcome(kindReexposure, "error")
			s.logger.Error("listing re-exposure failed",
				zap.String("listing_id", l.ID.String()),
				zap.Error(err))
		}
	}

	return nil
}

// runRollback reopens accepted listings whose buyer never submitted the
// required information before the confirmation deadline.
func (s *Scheduler) runRollback(ctx context.Context, now time.Time) error {
	start := time.Now()
	defer s.recordRun(kindRollback, start)

	candidates, err := s.repo.ListRollbackCandidates(ctx, now)
	if err != nil {
		return errors.NewStoreError("failed to list rollback candidates", err)
	}

	for _, l := range candidates {
		if !matchesRollback(l, now) {
			continue
		}

		prior := l.State()
		l.Reopen()

		switch err := s.repo.UpdateIf(ctx, l, prior); {
		case err == nil:
			s.recordOutcome(kindRollback, "reopened")
			s.logger.Info("acceptance rolled back",
				zap.String("listing_id", l.ID.String()))
		case stderrors.Is(err, errors.ErrStaleListing):
			s.recordOutcome(kindRollback, "stale")
		default:
			s.recordOutcome(kindRollback, "error")
			s.logger.Error("acceptance rollback failed",
				zap.String("listing_id", l.ID.String()),
				zap.Error(err))
		}
	}

	return nil
}

// matchesReexposure re-states the selection predicate in memory so the sweep
// is pure given (now, candidate listings) regardless of how the store query
// was built.
func matchesReexposure(l *listing.AuctionListing, now time.Time) bool {
	if l.Status != listing.StatusActive || l.AcceptedBidID != nil {
		return false
	}
	if l.ExpiredCount >= listing.ExpiredCountMax {
		return false
	}
	if !l.StartTimestamp.Before(now) {
		return false
	}
	// Listings older than 30 days have aged out of the window.
	return l.StartTimestamp.After(now.Add(-30 * 24 * time.Hour))
}

func matchesRollback(l *listing.AuctionListing, now time.Time) bool {
	if l.Status != listing.StatusSuccessfulBid || l.AcceptedBidID == nil {
		return false
	}
	if l.SellerStep != 2 || l.BuyerStep > 2 {
		return false
	}
	if l.BuyerConfirmDeadline == nil {
		return false
	}
	deadline := *l.BuyerConfirmDeadline
	return deadline.Before(now) && deadline.After(now.Add(-24*time.Hour))
}

func (s *Scheduler) recordRun(kind string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordSweepRun(kind, time.Since(start))
	}
}

func (s *Scheduler) recordOutcome(kind, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSweepOutcome(kind, outcome)
	}
}
