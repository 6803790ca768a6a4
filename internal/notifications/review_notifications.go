package notifications

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vicinity/internal/domain/reviews"

	"github.com/9ssi7/exponent"
	"go.uber.org/zap"
)

var ErrNoPushTokens = errors.New("no push tokens")

const sendTimeout = 10 * time.Second

type OwnerLookup interface {
	GetOwnerID(ctx context.Context, businessID int64) (int64, error)
}

type TokenSource interface {
	TokensForUsers(ctx context.Context, userIDs []int64) (map[int64][]string, error)
}

// ReviewNotifier pushes "new review" notifications to business owners.
type ReviewNotifier struct {
	push   PushSender
	owners OwnerLookup
	tokens TokenSource
	logger *zap.SugaredLogger
}

func NewReviewNotifier(push PushSender, owners OwnerLookup, tokens TokenSource, logger *zap.SugaredLogger) *ReviewNotifier {
	return &ReviewNotifier{push: push, owners: owners, tokens: tokens, logger: logger}
}

// ReviewChanged sends in the background so the review request never waits
// on Expo.
func (n *ReviewNotifier) ReviewChanged(_ context.Context, change reviews.Change) {
	if change.Kind != reviews.ReviewCreated || !change.Review.IsPublished {
		return
	}
	rv := change.Review

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := n.NotifyNewReview(ctx, rv); err != nil && !errors.Is(err, ErrNoPushTokens) {
			n.logger.Warnw("new review notification failed", "review_id", rv.ID, "business_id", rv.BusinessID, "error", err)
		}
	}()
}

// NotifyNewReview tells the owner of the reviewed business about rv. Owners
// reviewing their own business are not notified.
func (n *ReviewNotifier) NotifyNewReview(ctx context.Context, rv reviews.Review) error {
	ownerID, err := n.owners.GetOwnerID(ctx, rv.BusinessID)
	if err != nil {
		return err
	}
	if ownerID == rv.UserID {
		return nil
	}

	tokensMap, err := n.tokens.TokensForUsers(ctx, []int64{ownerID})
	if err != nil {
		return err
	}
	tokens := dedupe(tokensMap[ownerID])
	if len(tokens) == 0 {
		return ErrNoPushTokens
	}

	title := "New review"
	body := fmt.Sprintf("%s rated your business %s", reviewerName(rv), strings.Repeat("★", rv.Rating))
	businessID := strconv.FormatInt(rv.BusinessID, 10)

	msgs := make([]*exponent.Message, 0, len(tokens))
	for _, t := range tokens {
		token := exponent.Token(t)
		msgs = append(msgs, &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			// client opens router.push(`/${data.screen}`)
			Data: map[string]string{
				"type":        "new_review",
				"business_id": businessID,
				"review_id":   strconv.FormatInt(rv.ID, 10),
				"screen":      "businesses/" + businessID + "/reviews",
			},
		})
	}

	if _, err := n.push.Publish(ctx, msgs); err != nil {
		return fmt.Errorf("expo publish: %w", err)
	}
	return nil
}

func reviewerName(rv reviews.Review) string {
	if name := strings.TrimSpace(rv.UserName); name != "" {
		return name
	}
	return "Someone"
}

func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok || t == "" {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
