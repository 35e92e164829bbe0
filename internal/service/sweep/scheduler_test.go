package sweep

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devicemarket/device-auction-backend/internal/domain/clock"
	"github.com/devicemarket/device-auction-backend/internal/domain/errors"
	"github.com/devicemarket/device-auction-backend/internal/domain/listing"
	"github.com/devicemarket/device-auction-backend/internal/testutil"
	"github.com/devicemarket/device-auction-backend/internal/testutil/fixtures"
)

// newScheduler pins the domain clock at now for the duration of the test.
func newScheduler(t *testing.T, store *testutil.MemListingStore, now time.Time) *Scheduler {
	t.Helper()
	t.Cleanup(clock.Set(clock.Frozen(now)))
	return NewScheduler(store, nil, zap.NewNop())
}

func TestScheduler_Reexposure(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 3, 0, 0, 0, time.UTC)

	t.Run("first miss re-exposes for one day", func(t *testing.T) {
		start := now.Add(-2 * time.Hour)
		l := fixtures.NewListingBuilder().WithStartTimestamp(start).Build()
		store := testutil.NewMemListingStore(l)

		require.NoError(t, newScheduler(t, store, now).Run(ctx))

		swept, err := store.GetByID(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, listing.StatusActive, swept.Status)
		assert.Equal(t, 1, swept.ExpiredCount)
		assert.Equal(t, start.Add(24*time.Hour), swept.StartTimestamp)
	})

	t.Run("third miss cancels", func(t *testing.T) {
		start := now.Add(-time.Hour)
		l := fixtures.NewListingBuilder().WithStartTimestamp(start).Build()
		store := testutil.NewMemListingStore(l)

		require.NoError(t, newScheduler(t, store, now).Run(ctx))

		// Second miss, after the one-day re-exposure lapses.
		second := start.Add(24 * time.Hour).Add(time.Hour)
		require.NoError(t, newScheduler(t, store, second).Run(ctx))

		swept, err := store.GetByID(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, swept.ExpiredCount)
		assert.Equal(t, listing.StatusActive, swept.Status)

		// Third miss, after the thirty-day re-exposure lapses.
		third := swept.StartTimestamp.Add(time.Hour)
		require.NoError(t, newScheduler(t, store, third).Run(ctx))

		swept, err = store.GetByID(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, listing.StatusCancelled, swept.Status)
		assert.Equal(t, listing.ExpiredCountMax, swept.ExpiredCount)
	})

	t.Run("immediate repeat run applies nothing", func(t *testing.T) {
		l := fixtures.NewListingBuilder().WithStartTimestamp(now.Add(-time.Hour)).Build()
		store := testutil.NewMemListingStore(l)
		s := newScheduler(t, store, now)

		require.NoError(t, s.Run(ctx))
		require.NoError(t, s.Run(ctx))

		swept, err := store.GetByID(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, swept.ExpiredCount)
	})

	t.Run("repeat run after downtime applies one miss", func(t *testing.T) {
		// Start lapsed two days ago: start+1d is still in the past, so the
		// advanced window must restart from now or the second run would
		// burn a second miss with no elapsed time.
		l := fixtures.NewListingBuilder().WithStartTimestamp(now.Add(-48 * time.Hour)).Build()
		store := testutil.NewMemListingStore(l)
		s := newScheduler(t, store, now)

		require.NoError(t, s.Run(ctx))
		require.NoError(t, s.Run(ctx))

		swept, err := store.GetByID(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, swept.ExpiredCount)
		assert.Equal(t, now.Add(24*time.Hour), swept.StartTimestamp)
	})

	t.Run("skips listings outside the window", func(t *testing.T) {
		agedOut := fixtures.NewListingBuilder().
			WithStartTimestamp(now.Add(-31 * 24 * time.Hour)).Build()
		notYet := fixtures.NewListingBuilder().
			WithStartTimestamp(now.Add(time.Hour)).Build()
		accepted := fixtures.NewListingBuilder().
			WithStartTimestamp(now.Add(-2 * time.Hour)).
			Accepted(uuid.New(), now.Add(22*time.Hour)).Build()
		store := testutil.NewMemListingStore(agedOut, notYet, accepted)

		require.NoError(t, newScheduler(t, store, now).Run(ctx))

		for _, l := range []*listing.AuctionListing{agedOut, notYet} {
			swept, err := store.GetByID(ctx, l.ID)
			require.NoError(t, err)
			assert.Equal(t, 0, swept.ExpiredCount)
			assert.Equal(t, l.StartTimestamp, swept.StartTimestamp)
		}
		swept, err := store.GetByID(ctx, accepted.ID)
		require.NoError(t, err)
		assert.Equal(t, listing.StatusSuccessfulBid, swept.Status)
	})
}

func TestScheduler_Rollback(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 3, 0, 0, 0, time.UTC)

	t.Run("reopens listing whose buyer missed the deadline", func(t *testing.T) {
		l := fixtures.NewListingBuilder().
			Accepted(uuid.New(), now.Add(-time.Hour)).
			WithStartTimestamp(now.Add(-36 * time.Hour)).Build()
		store := testutil.NewMemListingStore(l)

		require.NoError(t, newScheduler(t, store, now).Run(ctx))

		swept, err := store.GetByID(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, listing.StatusActive, swept.Status)
		assert.Equal(t, 1, swept.SellerStep)
		assert.Equal(t, 1, swept.BuyerStep)
		assert.Nil(t, swept.AcceptedBidID)
		assert.Nil(t, swept.BuyerConfirmDeadline)
		assert.True(t, swept.Biddable())
	})

	t.Run("leaves buyers who progressed alone", func(t *testing.T) {
		l := fixtures.NewListingBuilder().
			Accepted(uuid.New(), now.Add(-time.Hour)).
			WithSteps(3, 3).Build()
		store := testutil.NewMemListingStore(l)

		require.NoError(t, newScheduler(t, store, now).Run(ctx))

		swept, err := store.GetByID(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, listing.StatusSuccessfulBid, swept.Status)
		require.NotNil(t, swept.AcceptedBidID)
	})

	t.Run("leaves deadlines past the one-day window alone", func(t *testing.T) {
		l := fixtures.NewListingBuilder().
			Accepted(uuid.New(), now.Add(-25 * time.Hour)).Build()
		store := testutil.NewMemListingStore(l)

		require.NoError(t, newScheduler(t, store, now).Run(ctx))

		swept, err := store.GetByID(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, listing.StatusSuccessfulBid, swept.Status)
	})
}

func TestScheduler_FailureIsolation(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 3, 0, 0, 0, time.UTC)

	broken := fixtures.NewListingBuilder().WithStartTimestamp(now.Add(-time.Hour)).Build()
	healthy := fixtures.NewListingBuilder().WithStartTimestamp(now.Add(-2 * time.Hour)).Build()
	store := testutil.NewMemListingStore(broken, healthy)
	store.FailUpdates[broken.ID] = stderrors.New("connection reset")

	require.NoError(t, newScheduler(t, store, now).Run(ctx))

	swept, err := store.GetByID(ctx, healthy.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, swept.ExpiredCount)

	untouched, err := store.GetByID(ctx, broken.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, untouched.ExpiredCount)
}

func TestScheduler_StaleUpdateIsNotAnError(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 3, 0, 0, 0, time.UTC)

	l := fixtures.NewListingBuilder().WithStartTimestamp(now.Add(-time.Hour)).Build()
	store := testutil.NewMemListingStore(l)
	store.FailUpdates[l.ID] = errors.ErrStaleListing

	require.NoError(t, newScheduler(t, store, now).Run(ctx))

	untouched, err := store.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, untouched.ExpiredCount)
}
