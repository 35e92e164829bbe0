package database

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/devicemarket/device-auction-backend/internal/domain/errors"
	"github.com/devicemarket/device-auction-backend/internal/domain/listing"
)

const listingColumns = `id, device_ref, auction_code, seller_id, status,
	seller_step, buyer_step, accepted_bid_id, expired_count, start_timestamp,
	buyer_confirm_deadline, visit_date, visit_time, created_at, updated_at`

// ListingRepository is the Postgres-backed auction listing store. Every
// mutation goes through UpdateIf, a single conditional UPDATE whose WHERE
// clause re-states the caller's observed state tuple.
type ListingRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewListingRepository(pool *pgxpool.Pool, logger *zap.Logger) *ListingRepository {
	return &ListingRepository{pool: pool, logger: logger}
}

func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*listing.AuctionListing, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM auction_listings WHERE id = $1`, id)

	l, err := scanListing(row)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.ErrListingNotFound
		}
		return nil, errors.NewStoreError("failed to load listing", err)
	}
	return l, nil
}

// UpdateIf writes the full mutable state of l in one round trip, guarded by
// the expected tuple. Zero rows affected means the row changed since the
// caller's read (or was deleted) and surfaces as ErrStaleListing.
func (r *ListingRepository) UpdateIf(ctx context.Context, l *listing.AuctionListing, expected listing.StateTuple) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE auction_listings
		SET status = $2,
		    seller_step = $3,
		    buyer_step = $4,
		    accepted_bid_id = $5,
		    expired_count = $6,
		    start_timestamp = $7,
		    buyer_confirm_deadline = $8,
		    visit_date = $9,
		    visit_time = $10,
		    updated_at = $11
		WHERE id = $1
		  AND status = $12
		  AND seller_step = $13
		  AND buyer_step = $14
		  AND accepted_bid_id IS NOT DISTINCT FROM $15`,
		l.ID,
		int(l.Status), l.SellerStep, l.BuyerStep, l.AcceptedBidID,
		l.ExpiredCount, l.StartTimestamp, l.BuyerConfirmDeadline,
		l.VisitDate, l.VisitTime, l.UpdatedAt,
		int(expected.Status), expected.SellerStep, expected.BuyerStep,
		expected.AcceptedBidID,
	)
	if err != nil {
		return errors.NewStoreError("failed to update listing", err)
	}

	if tag.RowsAffected() == 0 {
		return errors.ErrStaleListing
	}
	return nil
}

func (r *ListingRepository) ListReexposable(ctx context.Context, now time.Time) ([]*listing.AuctionListing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+listingColumns+`
		FROM auction_listings
		WHERE status = $1
		  AND accepted_bid_id IS NULL
		  AND expired_count < $2
		  AND start_timestamp < $3
		  AND start_timestamp > $4
		ORDER BY start_timestamp`,
		int(listing.StatusActive), listing.ExpiredCountMax,
		now, now.Add(-30*24*time.Hour))
	if err != nil {
		return nil, errors.NewStoreError("failed to query re-exposable listings", err)
	}
	defer rows.Close()

	return collectListings(rows)
}

func (r *ListingRepository) ListRollbackCandidates(ctx context.Context, now time.Time) ([]*listing.AuctionListing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+listingColumns+`
		FROM auction_listings
		WHERE status = $1
		  AND accepted_bid_id IS NOT NULL
		  AND seller_step = 2
		  AND buyer_step <= 2
		  AND buyer_confirm_deadline < $2
		  AND buyer_confirm_deadline > $3
		ORDER BY buyer_confirm_deadline`,
		int(listing.StatusSuccessfulBid),
		now, now.Add(-24*time.Hour))
	if err != nil {
		return nil, errors.NewStoreError("failed to query rollback candidates", err)
	}
	defer rows.Close()

	return collectListings(rows)
}

func collectListings(rows pgx.Rows) ([]*listing.AuctionListing, error) {
	var listings []*listing.AuctionListing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, errors.NewStoreError("failed to scan listing row", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("failed to iterate listing rows", err)
	}
	return listings, nil
}

func scanListing(row pgx.Row) (*listing.AuctionListing, error) {
	var l listing.AuctionListing
	var status int
	err := row.Scan(
		&l.ID, &l.DeviceRef, &l.AuctionCode, &l.SellerID, &status,
		&l.SellerStep, &l.BuyerStep, &l.AcceptedBidID, &l.ExpiredCount,
		&l.StartTimestamp, &l.BuyerConfirmDeadline, &l.VisitDate,
		&l.VisitTime, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Status = listing.Status(status)
	return &l, nil
}
