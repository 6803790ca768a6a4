package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"vicinity/internal/domain/ratings"
	"vicinity/internal/domain/reviews"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func TestNewReviewChangedEvent(t *testing.T) {
	change := reviews.Change{
		Kind:      reviews.ReviewCreated,
		Review:    reviews.Review{ID: 4, BusinessID: 2, UserID: 9, Rating: 5, IsPublished: true},
		Aggregate: &ratings.Aggregate{BusinessID: 2, AverageRating: 4.5, ReviewCount: 2},
	}

	ev := NewReviewChangedEvent(change)
	assert.Equal(t, "review.created", ev.EventType)
	assert.NotEqual(t, uuid.Nil, ev.EventID)
	require.NotNil(t, ev.AverageRating)
	assert.Equal(t, 4.5, *ev.AverageRating)
	assert.Equal(t, 2, *ev.ReviewCount)

	noAgg := NewReviewChangedEvent(reviews.Change{Kind: reviews.ReviewUpdated})
	assert.Nil(t, noAgg.AverageRating)
	assert.Nil(t, noAgg.ReviewCount)
}

func TestNatsPublisher_ReviewChanged(t *testing.T) {
	fc := &fakeConn{}
	p := &NatsPublisher{conn: fc, logger: zap.NewNop().Sugar()}

	p.ReviewChanged(context.Background(), reviews.Change{
		Kind:   reviews.ReviewDeleted,
		Review: reviews.Review{ID: 4, BusinessID: 2},
	})

	require.Len(t, fc.payloads, 1)
	assert.Equal(t, SubjectReviewChanged, fc.subjects[0])

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(fc.payloads[0], &decoded))
	assert.Equal(t, "review.deleted", decoded["event_type"])
	assert.Equal(t, float64(2), decoded["business_id"])
	assert.NotContains(t, decoded, "average_rating")
}

func TestNatsPublisher_FailureIsReturned(t *testing.T) {
	boom := errors.New("nats: connection closed")
	p := &NatsPublisher{conn: &fakeConn{err: boom}, logger: zap.NewNop().Sugar()}

	err := p.PublishReviewChanged(ReviewChangedEvent{})
	assert.ErrorIs(t, err, boom)

	// the listener form swallows it
	p.ReviewChanged(context.Background(), reviews.Change{Kind: reviews.ReviewCreated})
}
