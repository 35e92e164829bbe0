package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/devicemarket/device-auction-backend/internal/domain/clock"
)

// Kind identifies the lifecycle transition an event describes.
type Kind string

const (
	KindBidPlaced        Kind = "BID_PLACED"
	KindBidAccepted      Kind = "BID_ACCEPTED"
	KindInfoSubmitted    Kind = "INFO_SUBMITTED"
	KindVisitScheduled   Kind = "VISIT_SCHEDULED"
	KindDepositConfirmed Kind = "DEPOSIT_CONFIRMED"
	KindTransferComplete Kind = "TRANSFER_COMPLETE"
)

// TransitionEvent is the record handed to the notification dispatcher after
// a successful transition. The engine's responsibility ends at producing it;
// delivery and retries belong to the dispatcher.
type TransitionEvent struct {
	ListingID    uuid.UUID   `json:"listing_id"`
	Kind         Kind        `json:"kind"`
	RecipientIDs []uuid.UUID `json:"recipient_ids"`
	Title        string      `json:"title"`
	Body         string      `json:"body"`
	OccurredAt   time.Time   `json:"occurred_at"`
}

func BidPlaced(listingID, sellerID uuid.UUID, amount int64) TransitionEvent {
	return TransitionEvent{
		ListingID:    listingID,
		Kind:         KindBidPlaced,
		RecipientIDs: []uuid.UUID{sellerID},
		Title:        "New bid received",
		Body:         fmt.Sprintf("A bid of %d was placed on your listing.", amount),
		OccurredAt:   clock.Now(),
	}
}

func BidAccepted(listingID, bidderID uuid.UUID, deadline time.Time) TransitionEvent {
	return TransitionEvent{
		ListingID:    listingID,
		Kind:         KindBidAccepted,
		RecipientIDs: []uuid.UUID{bidderID},
		Title:        "Your bid was accepted",
		Body: fmt.Sprintf("Submit your handover information before %s to keep the sale.",
			deadline.Format(time.RFC3339)),
		OccurredAt: clock.Now(),
	}
}

func InfoSubmitted(listingID, sellerID uuid.UUID) TransitionEvent {
	return TransitionEvent{
		ListingID:    listingID,
		Kind:         KindInfoSubmitted,
		RecipientIDs: []uuid.UUID{sellerID},
		Title:        "Buyer information submitted",
		Body:         "The winning bidder submitted their handover information.",
		OccurredAt:   clock.Now(),
	}
}

func VisitScheduled(listingID, sellerID, bidderID uuid.UUID, date time.Time, timeSlot string) TransitionEvent {
	return TransitionEvent{
		ListingID:    listingID,
		Kind:         KindVisitScheduled,
		RecipientIDs: []uuid.UUID{sellerID, bidderID},
		Title:        "Visit scheduled",
		Body:         fmt.Sprintf("Device inspection scheduled for %s %s.", date.Format("2006-01-02"), timeSlot),
		OccurredAt:   clock.Now(),
	}
}

func DepositConfirmed(listingID, sellerID, bidderID uuid.UUID) TransitionEvent {
	return TransitionEvent{
		ListingID:    listingID,
		Kind:         KindDepositConfirmed,
		RecipientIDs: []uuid.UUID{sellerID, bidderID},
		Title:        "Deposit confirmed",
		Body:         "The deposit payment has been verified.",
		OccurredAt:   clock.Now(),
	}
}

func TransferComplete(listingID, sellerID, bidderID uuid.UUID) TransitionEvent {
	return TransitionEvent{
		ListingID:    listingID,
		Kind:         KindTransferComplete,
		RecipientIDs: []uuid.UUID{sellerID, bidderID},
		Title:        "Transfer complete",
		Body:         "The device handover has been completed on both sides.",
		OccurredAt:   clock.Now(),
	}
}
