package notifications

import (
	"context"

	"github.com/9ssi7/exponent"
)

// PushSender is satisfied by ExpoAdapter and by test fakes.
type PushSender interface {
	Publish(ctx context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error)
}
