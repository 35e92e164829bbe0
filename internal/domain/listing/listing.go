package listing

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/devicemarket/device-auction-backend/internal/domain/clock"
)

// Step bounds for the two progress counters. The seller side tops out at
// handover complete (4); the buyer side has one extra post-settlement step.
const (
	SellerStepMax   = 4
	BuyerStepMax    = 5
	ExpiredCountMax = 3
)

// AuctionListing is a single sellable device exposed for competitive bidding.
// Listings are created Active/0/0 by the registration flow and from then on
// are mutated only by the lifecycle engine and the expiration sweep.
type AuctionListing struct {
	ID          uuid.UUID `json:"id"`
	DeviceRef   string    `json:"device_ref"`
	AuctionCode string    `json:"auction_code"`
	SellerID    uuid.UUID `json:"seller_id"`
	Status      Status    `json:"status"`

	// Dual progress counters, one per side of the handover
	SellerStep int `json:"seller_step"`
	BuyerStep  int `json:"buyer_step"`

	AcceptedBidID *uuid.UUID `json:"accepted_bid_id,omitempty"`
	ExpiredCount  int        `json:"expired_count"`

	// Timers
	StartTimestamp       time.Time  `json:"start_timestamp"`
	BuyerConfirmDeadline *time.Time `json:"buyer_confirm_deadline,omitempty"`
	VisitDate            *time.Time `json:"visit_date,omitempty"`
	VisitTime            *string    `json:"visit_time,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Status int

const (
	StatusActive Status = iota
	StatusSuccessfulBid
	StatusCompleted
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusSuccessfulBid:
		return "successful_bid"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// StateTuple is the portion of a listing the lifecycle engine compares and
// sets atomically. Conditional updates re-state the whole tuple so a
// concurrent actor or sweep cannot slip between read and write.
type StateTuple struct {
	Status        Status     `json:"status"`
	SellerStep    int        `json:"seller_step"`
	BuyerStep     int        `json:"buyer_step"`
	AcceptedBidID *uuid.UUID `json:"accepted_bid_id,omitempty"`
}

func (t StateTuple) String() string {
	accepted := "none"
	if t.AcceptedBidID != nil {
		accepted = t.AcceptedBidID.String()
	}
	return fmt.Sprintf("status=%s seller_step=%d buyer_step=%d accepted_bid=%s",
		t.Status, t.SellerStep, t.BuyerStep, accepted)
}

// Equals compares tuples by value, treating the accepted bid reference as
// equal when both are nil or both point at the same bid.
func (t StateTuple) Equals(other StateTuple) bool {
	if t.Status != other.Status || t.SellerStep != other.SellerStep || t.BuyerStep != other.BuyerStep {
		return false
	}
	if (t.AcceptedBidID == nil) != (other.AcceptedBidID == nil) {
		return false
	}
	return t.AcceptedBidID == nil || *t.AcceptedBidID == *other.AcceptedBidID
}

// Clone returns a deep copy, including the nullable pointer fields.
func (l *AuctionListing) Clone() *AuctionListing {
	c := *l
	if l.AcceptedBidID != nil {
		id := *l.AcceptedBidID
		c.AcceptedBidID = &id
	}
	if l.BuyerConfirmDeadline != nil {
		d := *l.BuyerConfirmDeadline
		c.BuyerConfirmDeadline = &d
	}
	if l.VisitDate != nil {
		d := *l.VisitDate
		c.VisitDate = &d
	}
	if l.VisitTime != nil {
		t := *l.VisitTime
		c.VisitTime = &t
	}
	return &c
}

// State returns the current compare-and-set tuple.
func (l *AuctionListing) State() StateTuple {
	return StateTuple{
		Status:        l.Status,
		SellerStep:    l.SellerStep,
		BuyerStep:     l.BuyerStep,
		AcceptedBidID: l.AcceptedBidID,
	}
}

// IsTerminal reports whether the listing can never transition again.
func (l *AuctionListing) IsTerminal() bool {
	return l.Status == StatusCompleted || l.Status == StatusCancelled
}

// Biddable reports whether the ledger may append bids for this listing.
func (l *AuctionListing) Biddable() bool {
	return l.Status == StatusActive
}

// Accept records the seller choosing a bid. The buyer gets one day to submit
// their handover information before the rollback sweep reopens the listing.
func (l *AuctionListing) Accept(bidID uuid.UUID) {
	now := clock.Now()
	deadline := now.Add(24 * time.Hour)
	l.AcceptedBidID = &bidID
	l.Status = StatusSuccessfulBid
	l.SellerStep = 2
	l.BuyerStep = 1
	l.BuyerConfirmDeadline = &deadline
	l.UpdatedAt = now
}

// SubmitBuyerInfo advances the buyer side after the winning bidder supplies
// their handover details.
func (l *AuctionListing) SubmitBuyerInfo() {
	l.BuyerStep = 2
	l.SellerStep = 2
	l.UpdatedAt = clock.Now()
}

// ScheduleVisit fixes the inspection appointment and advances both sides.
func (l *AuctionListing) ScheduleVisit(date time.Time, timeSlot string) {
	l.VisitDate = &date
	l.VisitTime = &timeSlot
	l.SellerStep = 3
	l.BuyerStep = 3
	l.UpdatedAt = clock.Now()
}

// ConfirmDeposit is the administrative override applied once payment is
// verified; it does not require a particular step position.
func (l *AuctionListing) ConfirmDeposit() {
	l.BuyerStep = 4
	l.SellerStep = 3
	l.UpdatedAt = clock.Now()
}

// CompleteTransfer marks the physical handover done on both sides.
func (l *AuctionListing) CompleteTransfer() {
	l.BuyerStep = 4
	l.SellerStep = 4
	l.UpdatedAt = clock.Now()
}

// Finalize closes a successful sale. The accepted bid reference is cleared:
// acceptedBidId is non-null exactly while the status is SuccessfulBid, and
// the ledger keeps the winning entry itself.
func (l *AuctionListing) Finalize() {
	l.Status = StatusCompleted
	l.AcceptedBidID = nil
	l.UpdatedAt = clock.Now()
}

// Cancel terminates the listing, discarding any pending acceptance.
func (l *AuctionListing) Cancel() {
	l.Status = StatusCancelled
	l.AcceptedBidID = nil
	l.UpdatedAt = clock.Now()
}

// Reopen performs the paired reset applied when an accepted buyer misses the
// confirmation deadline: the acceptance and its artifacts are discarded and
// bidding resumes. Steps only ever move backward through this method.
func (l *AuctionListing) Reopen() {
	l.AcceptedBidID = nil
	l.Status = StatusActive
	l.SellerStep = 1
	l.BuyerStep = 1
	l.BuyerConfirmDeadline = nil
	l.VisitDate = nil
	l.VisitTime = nil
	l.UpdatedAt = clock.Now()
}

// Reexpose advances the escalating-backoff expiration counter. The first miss
// re-exposes for a day, the second for thirty days, the third cancels:
// repeated short-term failure signals declining demand.
func (l *AuctionListing) Reexpose() {
	now := clock.Now()
	switch l.ExpiredCount {
	case 0:
		l.StartTimestamp = reexposedStart(l.StartTimestamp, 24*time.Hour, now)
		l.ExpiredCount = 1
	case 1:
		l.StartTimestamp = reexposedStart(l.StartTimestamp, 30*24*time.Hour, now)
		l.ExpiredCount = 2
	case 2:
		l.Status = StatusCancelled
		l.ExpiredCount = ExpiredCountMax
	}
	l.UpdatedAt = now
}

// reexposedStart pushes the exposure window forward by delta. A window that
// lapsed more than delta ago restarts from now with the full backoff period,
// so the advanced start is always in the future and a repeated sweep cannot
// burn two misses in one moment.
func reexposedStart(start time.Time, delta time.Duration, now time.Time) time.Time {
	next := start.Add(delta)
	if next.After(now) {
		return next
	}
	return now.Add(delta)
}
