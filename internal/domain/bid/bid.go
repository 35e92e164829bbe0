package bid

import (
	"time"

	"github.com/google/uuid"
)

// BidEntry is one immutable offer recorded against a listing. The ledger is
// append-only: entries are never updated or removed, and losing offers are
// retained alongside the accepted one.
type BidEntry struct {
	ID        uuid.UUID `json:"id"`
	ListingID uuid.UUID `json:"listing_id"`
	BidderID  uuid.UUID `json:"bidder_id"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

func NewBidEntry(listingID, bidderID uuid.UUID, amount int64) *BidEntry {
	return &BidEntry{
		ID:        uuid.New(),
		ListingID: listingID,
		BidderID:  bidderID,
		Amount:    amount,
		CreatedAt: time.Now(),
	}
}
