package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vicinity/internal/domain/reviews"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const SubjectReviewChanged = "vicinity.review.changed"

// ReviewChangedEvent is published after every committed review write.
type ReviewChangedEvent struct {
	EventID       uuid.UUID `json:"event_id"`
	EventType     string    `json:"event_type"`
	ReviewID      int64     `json:"review_id"`
	BusinessID    int64     `json:"business_id"`
	UserID        int64     `json:"user_id"`
	Rating        int       `json:"rating"`
	IsPublished   bool      `json:"is_published"`
	AverageRating *float64  `json:"average_rating,omitempty"`
	ReviewCount   *int      `json:"review_count,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewReviewChangedEvent(change reviews.Change) ReviewChangedEvent {
	ev := ReviewChangedEvent{
		EventID:     uuid.New(),
		EventType:   "review." + string(change.Kind),
		ReviewID:    change.Review.ID,
		BusinessID:  change.Review.BusinessID,
		UserID:      change.Review.UserID,
		Rating:      change.Review.Rating,
		IsPublished: change.Review.IsPublished,
		OccurredAt:  time.Now().UTC(),
	}
	if change.Aggregate != nil {
		avg, count := change.Aggregate.AverageRating, change.Aggregate.ReviewCount
		ev.AverageRating = &avg
		ev.ReviewCount = &count
	}
	return ev
}

// conn is the part of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
}

type NatsPublisher struct {
	conn   conn
	logger *zap.SugaredLogger
}

func NewNatsPublisher(natsURL string, logger *zap.SugaredLogger) (*NatsPublisher, *nats.Conn, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("vicinity-api"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, nil, err
	}
	return &NatsPublisher{conn: nc, logger: logger}, nc, nil
}

func (p *NatsPublisher) PublishReviewChanged(ev ReviewChangedEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal review event: %w", err)
	}
	if err := p.conn.Publish(SubjectReviewChanged, data); err != nil {
		return fmt.Errorf("publish %s: %w", SubjectReviewChanged, err)
	}
	return nil
}

// ReviewChanged makes the publisher a reviews.Listener. Delivery is best
// effort; a failed publish is only logged.
func (p *NatsPublisher) ReviewChanged(_ context.Context, change reviews.Change) {
	ev := NewReviewChangedEvent(change)
	if err := p.PublishReviewChanged(ev); err != nil {
		p.logger.Warnw("review event not published", "review_id", ev.ReviewID, "error", err)
		return
	}
	p.logger.Debugw("review event published", "subject", SubjectReviewChanged, "event_id", ev.EventID)
}
