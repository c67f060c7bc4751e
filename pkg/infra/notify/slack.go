package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/model"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
	"github.com/slack-go/slack"
)

type slackNotifier struct {
	webhookURL string
	httpClient *http.Client
}

// NewSlack creates a Notifier posting attachments to a Slack incoming webhook
func NewSlack(webhookURL string, opts ...Option) interfaces.Notifier {
	cfg := newConfig(opts)
	return &slackNotifier{
		webhookURL: webhookURL,
		httpClient: cfg.httpClient,
	}
}

func buildSlackMessage(n *model.Notification) *slack.WebhookMessage {
	return &slack.WebhookMessage{
		Attachments: []slack.Attachment{
			{
				Color:     fmt.Sprintf("#%06x", n.Color),
				Title:     n.Title(),
				TitleLink: n.ReleaseURL,
				Text:      n.Description(),
				Footer:    n.Footer,
				Ts:        json.Number(strconv.FormatInt(n.Timestamp.Unix(), 10)),
			},
		},
	}
}

// Notify posts a single attachment message
func (s *slackNotifier) Notify(ctx context.Context, n *model.Notification) (bool, error) {
	if err := validate(n, s.webhookURL); err != nil {
		return false, err
	}
	logger := ctxlog.From(ctx)

	logger.Info("Sending Slack notification", "version", n.Version)

	err := slack.PostWebhookCustomHTTPContext(ctx, s.webhookURL, s.httpClient, buildSlackMessage(n))
	if err == nil {
		logger.Info("Slack notification sent", "version", n.Version)
		return true, nil
	}

	var rateLimited *slack.RateLimitedError
	if errors.As(err, &rateLimited) {
		logger.Warn("Slack rate limited the notification",
			"version", n.Version,
			"retry_after", rateLimited.RetryAfter,
		)
		return false, nil
	}

	var statusErr slack.StatusCodeError
	if errors.As(err, &statusErr) {
		if statusErr.Code == http.StatusTooManyRequests {
			logger.Warn("Slack rate limited the notification", "version", n.Version)
			return false, nil
		}
		return false, goerr.Wrap(types.ErrNotificationFailed, "Slack webhook returned unexpected status",
			goerr.V("version", n.Version),
			goerr.V("status", statusErr.Code))
	}

	return false, goerr.Wrap(transportError(err), "failed to post Slack notification", goerr.V("version", n.Version))
}
