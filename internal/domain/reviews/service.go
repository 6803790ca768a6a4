package reviews

import (
	"context"

	"vicinity/internal/domain/ratings"

	"go.uber.org/zap"
)

// Aggregator refreshes the derived rating fields of a business.
type Aggregator interface {
	Recompute(ctx context.Context, businessID int64) (ratings.Aggregate, error)
}

// Listener is told about every committed review write. Implementations must
// not block; slow work belongs in their own goroutines.
type Listener interface {
	ReviewChanged(ctx context.Context, change Change)
}

// FailureCounter is satisfied by a prometheus.Counter.
type FailureCounter interface {
	Inc()
}

type ChangeKind string

const (
	ReviewCreated ChangeKind = "created"
	ReviewUpdated ChangeKind = "updated"
	ReviewDeleted ChangeKind = "deleted"
)

type Change struct {
	Kind   ChangeKind
	Review Review
	// Aggregate is nil when no recompute ran or the recompute failed.
	Aggregate *ratings.Aggregate
}

// Actor is the authenticated caller of a write.
type Actor struct {
	UserID  int64
	IsAdmin bool
}

// Service runs review writes and keeps business aggregates in step with them.
//
// Every write method commits the review change first. If the follow-up
// recompute fails, the method still returns the written review together with
// a *ratings.AggregateError; callers treat that as success.
type Service struct {
	store     Store
	agg       Aggregator
	logger    *zap.SugaredLogger
	failures  FailureCounter
	listeners []Listener
}

func NewService(store Store, agg Aggregator, logger *zap.SugaredLogger, failures FailureCounter, listeners ...Listener) *Service {
	return &Service{
		store:     store,
		agg:       agg,
		logger:    logger,
		failures:  failures,
		listeners: listeners,
	}
}

func (s *Service) Create(ctx context.Context, rv *Review) (*Review, error) {
	if !ValidRating(rv.Rating) {
		return nil, ErrInvalidRating
	}

	exists, err := s.store.HasReview(ctx, rv.BusinessID, rv.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateReview
	}

	// the unique constraint still guards the race between check and insert
	if err := s.store.Create(ctx, rv); err != nil {
		return nil, err
	}
	if rv.Images == nil {
		rv.Images = []Image{}
	}

	agg, aggErr := s.refresh(ctx, rv.BusinessID)
	s.notify(ctx, Change{Kind: ReviewCreated, Review: *rv, Aggregate: agg})
	return rv, aggErr
}

func (s *Service) Update(ctx context.Context, actor Actor, reviewID int64, upd ReviewUpdate) (*Review, error) {
	if upd.Empty() {
		return nil, ErrNoFieldsToUpdate
	}
	if upd.Rating != nil && !ValidRating(*upd.Rating) {
		return nil, ErrInvalidRating
	}

	if _, err := s.AuthorOf(ctx, actor, reviewID); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, reviewID, upd)
	if err != nil {
		return nil, err
	}

	var (
		agg    *ratings.Aggregate
		aggErr error
	)
	// recompute whenever a rated field was written, whatever its previous value
	if upd.AffectsAggregate() {
		agg, aggErr = s.refresh(ctx, updated.BusinessID)
	}
	s.notify(ctx, Change{Kind: ReviewUpdated, Review: *updated, Aggregate: agg})
	return updated, aggErr
}

// Delete removes a review; its author and admins may do so.
func (s *Service) Delete(ctx context.Context, actor Actor, reviewID int64) error {
	current, err := s.store.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if current.UserID != actor.UserID && !actor.IsAdmin {
		return ErrForbidden
	}

	businessID, err := s.store.Delete(ctx, reviewID)
	if err != nil {
		return err
	}

	agg, aggErr := s.refresh(ctx, businessID)
	s.notify(ctx, Change{Kind: ReviewDeleted, Review: *current, Aggregate: agg})
	return aggErr
}

// AuthorOf loads the review and checks that actor wrote it.
func (s *Service) AuthorOf(ctx context.Context, actor Actor, reviewID int64) (*Review, error) {
	rv, err := s.store.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if rv.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	return rv, nil
}

// refresh recomputes the aggregates after a committed write. The write cannot
// be undone at this point, so the recompute outlives a cancelled request.
func (s *Service) refresh(ctx context.Context, businessID int64) (*ratings.Aggregate, error) {
	agg, err := s.agg.Recompute(context.WithoutCancel(ctx), businessID)
	if err != nil {
		s.logger.Errorw("aggregate recompute failed", "business_id", businessID, "error", err)
		if s.failures != nil {
			s.failures.Inc()
		}
		return nil, &ratings.AggregateError{BusinessID: businessID, Err: err}
	}
	return &agg, nil
}

func (s *Service) notify(ctx context.Context, change Change) {
	for _, l := range s.listeners {
		l.ReviewChanged(ctx, change)
	}
}
