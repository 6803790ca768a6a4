package ratings

import (
	"context"
	"errors"

	"vicinity/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// reconcileBatch bounds one reconciliation pass.
const reconcileBatch = 500

type Aggregator struct {
	db     dbx.TxBeginner
	logger *zap.SugaredLogger
}

func NewAggregator(db dbx.TxBeginner, logger *zap.SugaredLogger) *Aggregator {
	return &Aggregator{db: db, logger: logger}
}

// Recompute rereads the published reviews of a business and stores the new
// average and count. The business row stays locked from the read to the
// write, so concurrent recomputes for one business run one after another and
// the last one always sees every committed review.
func (a *Aggregator) Recompute(ctx context.Context, businessID int64) (Aggregate, error) {
	var agg Aggregate

	err := dbx.WithTx(ctx, a.db, func(tx pgx.Tx) error {
		repo := NewRepository(tx)

		if err := repo.LockBusiness(ctx, businessID); err != nil {
			return err
		}

		count, sum, err := repo.PublishedTotals(ctx, businessID)
		if err != nil {
			return err
		}

		agg = FromTotals(businessID, count, sum)
		return repo.SetAggregates(ctx, agg)
	})
	if err != nil {
		return Aggregate{}, err
	}
	return agg, nil
}

// Reconcile repairs aggregates left stale by a failed recompute and returns
// how many businesses it fixed.
func (a *Aggregator) Reconcile(ctx context.Context) (int, error) {
	ids, err := NewRepository(a.db).StaleBusinessIDs(ctx, reconcileBatch)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for _, id := range ids {
		agg, err := a.Recompute(ctx, id)
		if err != nil {
			if errors.Is(err, ErrBusinessNotFound) {
				continue // deleted since the scan
			}
			if ctx.Err() != nil {
				return fixed, ctx.Err()
			}
			a.logger.Errorw("reconcile aggregates", "business_id", id, "error", err)
			continue
		}
		a.logger.Infow("aggregates reconciled",
			"business_id", id,
			"average_rating", agg.AverageRating,
			"review_count", agg.ReviewCount,
		)
		fixed++
	}
	return fixed, nil
}
