package lifecycle

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devicemarket/device-auction-backend/internal/domain/bid"
	"github.com/devicemarket/device-auction-backend/internal/domain/errors"
	"github.com/devicemarket/device-auction-backend/internal/domain/event"
	"github.com/devicemarket/device-auction-backend/internal/domain/listing"
)

// service implements the Service interface
type service struct {
	listingRepo ListingRepository
	bidRepo     BidRepository
	notifier    Notifier
	metrics     MetricsCollector
	logger      *zap.Logger
}

// NewService creates a new lifecycle service
func NewService(
	listingRepo ListingRepository,
	bidRepo BidRepository,
	notifier Notifier,
	metrics MetricsCollector,
	logger *zap.Logger,
) Service {
	return &service{
		listingRepo: listingRepo,
		bidRepo:     bidRepo,
		notifier:    notifier,
		metrics:     metrics,
		logger:      logger,
	}
}

// PlaceBid appends an offer to the bid ledger. The listing itself is never
// mutated here, so concurrent bidders need no cross-bid locking.
func (s *service) PlaceBid(ctx context.Context, listingID, bidderID uuid.UUID, amount int64) (*bid.BidEntry, error) {
	if listingID == uuid.Nil {
		return nil, errors.NewValidationError("MISSING_LISTING_ID", "listing ID is required")
	}
	if bidderID == uuid.Nil {
		return nil, errors.NewValidationError("MISSING_BIDDER_ID", "bidder ID is required")
	}
	if amount <= 0 {
		return nil, errors.NewValidationError("INVALID_BID_AMOUNT", "bid amount must be a positive integer")
	}

	l, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, errors.NewNotFoundError("listing").WithCause(err)
	}

	if !l.Biddable() {
		return nil, errors.NewBusinessError("LISTING_NOT_BIDDABLE", "listing is not open for bidding").
			WithDetails(map[string]interface{}{"status": l.Status.String()})
	}

	entry := bid.NewBidEntry(listingID, bidderID, amount)
	if err := s.bidRepo.Append(ctx, entry); err != nil {
		return nil, errors.NewStoreError("failed to append bid", err)
	}

	s.notify(ctx, event.BidPlaced(l.ID, l.SellerID, amount))

	if s.metrics != nil {
		s.metrics.RecordBidPlaced(listingID, amount)
	}

	return entry, nil
}

// AcceptBid records the seller choosing one bid. The accepting party chooses
// any bid, not necessarily the highest; the ledger does not auto-select.
func (s *service) AcceptBid(ctx context.Context, listingID, bidID uuid.UUID) (*listing.AuctionListing, error) {
	const op = "AcceptBid"

	l, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, errors.NewNotFoundError("listing").WithCause(err)
	}

	b, err := s.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return nil, errors.NewNotFoundError("bid").WithCause(err)
	}
	if b.ListingID != l.ID {
		return nil, errors.NewValidationError("BID_LISTING_MISMATCH", "bid belongs to a different listing")
	}

	prior := l.State()
	if l.Status != listing.StatusActive {
		expected := prior
		expected.Status = listing.StatusActive
		return nil, s.preconditionFailed(op, expected, prior)
	}

	l.Accept(bidID)
	if err := s.update(ctx, op, l, prior); err != nil {
		return nil, err
	}

	s.notify(ctx, event.BidAccepted(l.ID, b.BidderID, *l.BuyerConfirmDeadline))
	s.recordTransition(op, "applied")
	return l, nil
}

// SubmitBuyerInfo advances the buyer side from accepted to info-submitted.
func (s *service) SubmitBuyerInfo(ctx context.Context, listingID uuid.UUID) (*listing.AuctionListing, error) {
	const op = "SubmitBuyerInfo"

	l, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, errors.NewNotFoundError("listing").WithCause(err)
	}

	prior := l.State()
	if l.Status != listing.StatusSuccessfulBid || l.BuyerStep != 1 {
		expected := prior
		expected.Status = listing.StatusSuccessfulBid
		expected.BuyerStep = 1
		return nil, s.preconditionFailed(op, expected, prior)
	}

	l.SubmitBuyerInfo()
	if err := s.update(ctx, op, l, prior); err != nil {
		return nil, err
	}

	s.notify(ctx, event.InfoSubmitted(l.ID, l.SellerID))
	s.recordTransition(op, "applied")
	return l, nil
}

// ScheduleVisit fixes the inspection appointment once both sides have
// completed their post-acceptance paperwork.
func (s *service) ScheduleVisit(ctx context.Context, listingID uuid.UUID, date time.Time, timeSlot string) (*listing.AuctionListing, error) {
	const op = "ScheduleVisit"

	if timeSlot == "" {
		return nil, errors.NewValidationError("MISSING_VISIT_TIME", "visit time is required")
	}

	l, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, errors.NewNotFoundError("listing").WithCause(err)
	}

	prior := l.State()
	if l.Status != listing.StatusSuccessfulBid || l.SellerStep != 2 || l.BuyerStep != 2 {
		expected := prior
		expected.Status = listing.StatusSuccessfulBid
		expected.SellerStep = 2
		expected.BuyerStep = 2
		return nil, s.preconditionFailed(op, expected, prior)
	}

	l.ScheduleVisit(date, timeSlot)
	if err := s.update(ctx, op, l, prior); err != nil {
		return nil, err
	}

	if bidderID, ok := s.acceptedBidder(ctx, l); ok {
		s.notify(ctx, event.VisitScheduled(l.ID, l.SellerID, bidderID, date, timeSlot))
	}
	s.recordTransition(op, "applied")
	return l, nil
}

// ConfirmDeposit is the administrative override applied when payment has been
// verified out of band. It carries no step precondition, only an accepted bid.
func (s *service) ConfirmDeposit(ctx context.Context, listingID uuid.UUID) (*listing.AuctionListing, error) {
	const op = "ConfirmDeposit"

	l, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, errors.NewNotFoundError("listing").WithCause(err)
	}

	if l.AcceptedBidID == nil {
		return nil, errors.NewBusinessError("NO_ACCEPTED_BID", "listing has no accepted bid")
	}

	prior := l.State()
	l.ConfirmDeposit()
	if err := s.update(ctx, op, l, prior); err != nil {
		return nil, err
	}

	if bidderID, ok := s.acceptedBidder(ctx, l); ok {
		s.notify(ctx, event.DepositConfirmed(l.ID, l.SellerID, bidderID))
	}
	s.recordTransition(op, "applied")
	return l, nil
}

// CompleteTransfer marks the handover finished on both sides.
func (s *service) CompleteTransfer(ctx context.Context, listingID uuid.UUID) (*listing.AuctionListing, error) {
	const op = "CompleteTransfer"

	l, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, errors.NewNotFoundError("listing").WithCause(err)
	}

	prior := l.State()
	if l.AcceptedBidID == nil {
		expected := prior
		expected.Status = listing.StatusSuccessfulBid
		return nil, s.preconditionFailed(op, expected, prior)
	}

	l.CompleteTransfer()
	if err := s.update(ctx, op, l, prior); err != nil {
		return nil, err
	}

	if bidderID, ok := s.acceptedBidder(ctx, l); ok {
		s.notify(ctx, event.TransferComplete(l.ID, l.SellerID, bidderID))
	}
	s.recordTransition(op, "applied")
	return l, nil
}

// FinalizeSale closes a successful sale. Completed is terminal.
func (s *service) FinalizeSale(ctx context.Context, listingID uuid.UUID) (*listing.AuctionListing, error) {
	const op = "FinalizeSale"

	l, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, errors.NewNotFoundError("listing").WithCause(err)
	}

	prior := l.State()
	if l.Status != listing.StatusSuccessfulBid {
		expected := prior
		expected.Status = listing.StatusSuccessfulBid
		return nil, s.preconditionFailed(op, expected, prior)
	}

	l.Finalize()
	if err := s.update(ctx, op, l, prior); err != nil {
		return nil, err
	}

	s.recordTransition(op, "applied")
	return l, nil
}

// CancelListing terminates a listing that has not completed.
func (s *service) CancelListing(ctx context.Context, listingID uuid.UUID) (*listing.AuctionListing, error) {
	const op = "CancelListing"

	l, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, errors.NewNotFoundError("listing").WithCause(err)
	}

	prior := l.State()
	if l.IsTerminal() {
		expected := prior
		expected.Status = listing.StatusActive
		return nil, s.preconditionFailed(op, expected, prior)
	}

	l.Cancel()
	if err := s.update(ctx, op, l, prior); err != nil {
		return nil, err
	}

	s.recordTransition(op, "applied")
	return l, nil
}

// GetListing retrieves a listing
func (s *service) GetListing(ctx context.Context, listingID uuid.UUID) (*listing.AuctionListing, error) {
	l, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, errors.NewNotFoundError("listing").WithCause(err)
	}
	return l, nil
}

// GetBid retrieves a single ledger entry
func (s *service) GetBid(ctx context.Context, bidID uuid.UUID) (*bid.BidEntry, error) {
	b, err := s.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return nil, errors.NewNotFoundError("bid").WithCause(err)
	}
	return b, nil
}

// GetBidsForListing returns every offer recorded for a listing
func (s *service) GetBidsForListing(ctx context.Context, listingID uuid.UUID) ([]*bid.BidEntry, error) {
	entries, err := s.bidRepo.GetByListing(ctx, listingID)
	if err != nil {
		return nil, errors.NewStoreError("failed to load bid ledger", err)
	}
	return entries, nil
}

// update performs the single atomic conditional write. A stale tuple means an
// actor retry or a sweep won the race; the caller gets the actual state back
// and must refetch and decide.
func (s *service) update(ctx context.Context, op string, l *listing.AuctionListing, expected listing.StateTuple) error {
	err := s.listingRepo.UpdateIf(ctx, l, expected)
	if err == nil {
		return nil
	}

	if stderrors.Is(err, errors.ErrStaleListing) {
		actual := expected
		if current, ferr := s.listingRepo.GetByID(ctx, l.ID); ferr == nil {
			actual = current.State()
		}
		return s.preconditionFailed(op, expected, actual)
	}

	s.recordTransition(op, "store_error")
	return errors.NewStoreError("failed to update listing", err)
}

func (s *service) preconditionFailed(op string, expected, actual listing.StateTuple) error {
	s.recordTransition(op, "precondition_failed")
	return errors.NewPreconditionFailedError(op, expected, actual)
}

// acceptedBidder resolves the winning bidder for event recipients. A dangling
// accepted bid reference violates the ledger invariant, so it is logged
// rather than silently ignored.
func (s *service) acceptedBidder(ctx context.Context, l *listing.AuctionListing) (uuid.UUID, bool) {
	if l.AcceptedBidID == nil {
		return uuid.Nil, false
	}
	b, err := s.bidRepo.GetByID(ctx, *l.AcceptedBidID)
	if err != nil {
		s.logger.Error("accepted bid missing from ledger",
			zap.String("listing_id", l.ID.String()),
			zap.String("bid_id", l.AcceptedBidID.String()),
			zap.Error(err))
		return uuid.Nil, false
	}
	return b.BidderID, true
}

func (s *service) notify(ctx context.Context, ev event.TransitionEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, ev); err != nil {
		s.logger.Warn("failed to publish transition event",
			zap.String("listing_id", ev.ListingID.String()),
			zap.String("kind", string(ev.Kind)),
			zap.Error(err))
	}
}

func (s *service) recordTransition(op, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordTransition(op, outcome)
	}
}
