package database

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/devicemarket/device-auction-backend/internal/domain/bid"
	"github.com/devicemarket/device-auction-backend/internal/domain/errors"
)

// BidRepository is the Postgres-backed append-only bid ledger. There is no
// update or delete path; append atomicity comes from the single INSERT.
type BidRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewBidRepository(pool *pgxpool.Pool, logger *zap.Logger) *BidRepository {
	return &BidRepository{pool: pool, logger: logger}
}

func (r *BidRepository) Append(ctx context.Context, entry *bid.BidEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO bid_entries (id, listing_id, bidder_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.ListingID, entry.BidderID, entry.Amount, entry.CreatedAt)
	if err != nil {
		return errors.NewStoreError("failed to append bid entry", err)
	}
	return nil
}

func (r *BidRepository) GetByID(ctx context.Context, id uuid.UUID) (*bid.BidEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, listing_id, bidder_id, amount, created_at
		FROM bid_entries WHERE id = $1`, id)

	var entry bid.BidEntry
	err := row.Scan(&entry.ID, &entry.ListingID, &entry.BidderID, &entry.Amount, &entry.CreatedAt)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.ErrBidNotFound
		}
		return nil, errors.NewStoreError("failed to load bid entry", err)
	}
	return &entry, nil
}

func (r *BidRepository) GetByListing(ctx context.Context, listingID uuid.UUID) ([]*bid.BidEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, listing_id, bidder_id, amount, created_at
		FROM bid_entries WHERE listing_id = $1
		ORDER BY created_at`, listingID)
	if err != nil {
		return nil, errors.NewStoreError("failed to query bid ledger", err)
	}
	defer rows.Close()

	var entries []*bid.BidEntry
	for rows.Next() {
		var entry bid.BidEntry
		if err := rows.Scan(&entry.ID, &entry.ListingID, &entry.BidderID, &entry.Amount, &entry.CreatedAt); err != nil {
			return nil, errors.NewStoreError("failed to scan bid row", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("failed to iterate bid rows", err)
	}
	return entries, nil
}
