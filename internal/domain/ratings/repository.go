package ratings

import (
	"context"
	"errors"
	"fmt"

	"vicinity/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

// Repository holds the SQL the aggregator runs; it is built per transaction.
type Repository struct {
	db dbx.Querier
}

func NewRepository(db dbx.Querier) *Repository {
	return &Repository{db: db}
}

// LockBusiness takes the row lock that serializes recomputes per business.
func (r *Repository) LockBusiness(ctx context.Context, businessID int64) error {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM businesses WHERE id = $1 FOR UPDATE`, businessID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrBusinessNotFound
		}
		return fmt.Errorf("lock business: %w", err)
	}
	return nil
}

// PublishedTotals returns the number and rating sum of published reviews.
func (r *Repository) PublishedTotals(ctx context.Context, businessID int64) (count, sum int64, err error) {
	query := `
        SELECT COUNT(*), COALESCE(SUM(rating), 0)
        FROM reviews
        WHERE business_id = $1 AND is_published = true
    `
	if err := r.db.QueryRow(ctx, query, businessID).Scan(&count, &sum); err != nil {
		return 0, 0, fmt.Errorf("published review totals: %w", err)
	}
	return count, sum, nil
}

func (r *Repository) SetAggregates(ctx context.Context, agg Aggregate) error {
	query := `
        UPDATE businesses
        SET average_rating = $1, review_count = $2, updated_at = NOW()
        WHERE id = $3
    `
	tag, err := r.db.Exec(ctx, query, agg.AverageRating, agg.ReviewCount, agg.BusinessID)
	if err != nil {
		return fmt.Errorf("set business aggregates: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBusinessNotFound
	}
	return nil
}

// StaleBusinessIDs lists businesses whose stored aggregates disagree with
// their published reviews. ROUND on numeric rounds half away from zero,
// which matches FromTotals for non-negative ratings.
func (r *Repository) StaleBusinessIDs(ctx context.Context, limit int) ([]int64, error) {
	query := `
        SELECT b.id
        FROM businesses b
        LEFT JOIN (
            SELECT business_id, COUNT(*) AS cnt, ROUND(AVG(rating)::numeric, 2) AS avg
            FROM reviews
            WHERE is_published = true
            GROUP BY business_id
        ) s ON s.business_id = b.id
        WHERE b.review_count <> COALESCE(s.cnt, 0)
           OR b.average_rating <> COALESCE(s.avg, 0)
        ORDER BY b.id
        LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query stale aggregates: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
