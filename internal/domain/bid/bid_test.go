package bid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewBidEntry(t *testing.T) {
	listingID := uuid.New()
	bidderID := uuid.New()

	entry := NewBidEntry(listingID, bidderID, 250000)

	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, listingID, entry.ListingID)
	assert.Equal(t, bidderID, entry.BidderID)
	assert.Equal(t, int64(250000), entry.Amount)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestNewBidEntry_UniqueIDs(t *testing.T) {
	listingID := uuid.New()
	a := NewBidEntry(listingID, uuid.New(), 100)
	b := NewBidEntry(listingID, uuid.New(), 100)
	assert.NotEqual(t, a.ID, b.ID)
}
