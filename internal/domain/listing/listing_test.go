package listing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicemarket/device-auction-backend/internal/domain/clock"
)

func TestAccept(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	restore := clock.Set(clock.Frozen(now))
	defer restore()

	l := &AuctionListing{
		ID:             uuid.New(),
		Status:         StatusActive,
		StartTimestamp: now.Add(-time.Hour),
	}

	bidID := uuid.New()
	l.Accept(bidID)

	assert.Equal(t, StatusSuccessfulBid, l.Status)
	assert.Equal(t, 2, l.SellerStep)
	assert.Equal(t, 1, l.BuyerStep)
	require.NotNil(t, l.AcceptedBidID)
	assert.Equal(t, bidID, *l.AcceptedBidID)
	require.NotNil(t, l.BuyerConfirmDeadline)
	assert.Equal(t, now.Add(24*time.Hour), *l.BuyerConfirmDeadline)
	assert.Equal(t, now, l.UpdatedAt)
}

func TestReexposeEscalation(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	now := start.Add(time.Hour)
	restore := clock.Set(clock.Func(func() time.Time { return now }))
	defer restore()

	l := &AuctionListing{
		ID:             uuid.New(),
		Status:         StatusActive,
		StartTimestamp: start,
	}

	l.Reexpose()
	assert.Equal(t, 1, l.ExpiredCount)
	assert.Equal(t, start.Add(24*time.Hour), l.StartTimestamp)
	assert.Equal(t, StatusActive, l.Status)

	now = l.StartTimestamp.Add(time.Hour)
	l.Reexpose()
	assert.Equal(t, 2, l.ExpiredCount)
	assert.Equal(t, start.Add(24*time.Hour).Add(30*24*time.Hour), l.StartTimestamp)
	assert.Equal(t, StatusActive, l.Status)

	now = l.StartTimestamp.Add(time.Hour)
	l.Reexpose()
	assert.Equal(t, ExpiredCountMax, l.ExpiredCount)
	assert.Equal(t, StatusCancelled, l.Status)
	assert.True(t, l.IsTerminal())
}

func TestReexposeStaleWindowRestartsFromNow(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	// The sweep was down for two days: start+1d would still be in the past.
	now := start.Add(48 * time.Hour)
	restore := clock.Set(clock.Frozen(now))
	defer restore()

	l := &AuctionListing{
		ID:             uuid.New(),
		Status:         StatusActive,
		StartTimestamp: start,
	}

	l.Reexpose()
	assert.Equal(t, 1, l.ExpiredCount)
	assert.Equal(t, now.Add(24*time.Hour), l.StartTimestamp)
	assert.True(t, l.StartTimestamp.After(now))
}

func TestReopenClearsAcceptanceArtifacts(t *testing.T) {
	bidID := uuid.New()
	deadline := time.Now().Add(-time.Hour)
	visitDate := time.Now().Add(48 * time.Hour)
	visitTime := "14:00"

	l := &AuctionListing{
		ID:                   uuid.New(),
		Status:               StatusSuccessfulBid,
		SellerStep:           2,
		BuyerStep:            2,
		AcceptedBidID:        &bidID,
		BuyerConfirmDeadline: &deadline,
		VisitDate:            &visitDate,
		VisitTime:            &visitTime,
	}

	l.Reopen()

	assert.Equal(t, StatusActive, l.Status)
	assert.Equal(t, 1, l.SellerStep)
	assert.Equal(t, 1, l.BuyerStep)
	assert.Nil(t, l.AcceptedBidID)
	assert.Nil(t, l.BuyerConfirmDeadline)
	assert.Nil(t, l.VisitDate)
	assert.Nil(t, l.VisitTime)
	assert.True(t, l.Biddable())
}

func TestTerminalTransitionsClearAcceptedBid(t *testing.T) {
	newAccepted := func() *AuctionListing {
		bidID := uuid.New()
		return &AuctionListing{
			ID:            uuid.New(),
			Status:        StatusSuccessfulBid,
			SellerStep:    4,
			BuyerStep:     4,
			AcceptedBidID: &bidID,
		}
	}

	finalized := newAccepted()
	finalized.Finalize()
	assert.Equal(t, StatusCompleted, finalized.Status)
	assert.Nil(t, finalized.AcceptedBidID)

	cancelled := newAccepted()
	cancelled.Cancel()
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.AcceptedBidID)
}

func TestStateTupleEquals(t *testing.T) {
	bidID := uuid.New()
	otherBidID := uuid.New()

	a := StateTuple{Status: StatusSuccessfulBid, SellerStep: 2, BuyerStep: 1, AcceptedBidID: &bidID}
	same := a
	sameBid := bidID
	same.AcceptedBidID = &sameBid

	assert.True(t, a.Equals(same))
	assert.False(t, a.Equals(StateTuple{Status: StatusActive}))

	differentBid := a
	differentBid.AcceptedBidID = &otherBidID
	assert.False(t, a.Equals(differentBid))

	noBid := a
	noBid.AcceptedBidID = nil
	assert.False(t, a.Equals(noBid))
}

func TestCloneIsDeep(t *testing.T) {
	bidID := uuid.New()
	deadline := time.Now()
	l := &AuctionListing{
		ID:                   uuid.New(),
		Status:               StatusSuccessfulBid,
		AcceptedBidID:        &bidID,
		BuyerConfirmDeadline: &deadline,
	}

	c := l.Clone()
	c.Reopen()

	require.NotNil(t, l.AcceptedBidID)
	assert.Equal(t, bidID, *l.AcceptedBidID)
	assert.Equal(t, StatusSuccessfulBid, l.Status)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "active", StatusActive.String())
	assert.Equal(t, "successful_bid", StatusSuccessfulBid.String())
	assert.Equal(t, "completed", StatusCompleted.String())
	assert.Equal(t, "cancelled", StatusCancelled.String())
	assert.Equal(t, "unknown", Status(9).String())
}
