package interfaces

import (
	"context"

	"github.com/m-mizutani/relwatch/pkg/domain/model"
)

// Notifier delivers release notifications to a chat webhook
type Notifier interface {
	// Notify returns false without error when the webhook declined the
	// message because of rate limiting.
	Notify(ctx context.Context, n *model.Notification) (bool, error)
}
