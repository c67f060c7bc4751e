package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/model"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

type discordFooter struct {
	Text string `json:"text"`
}

type discordEmbed struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url,omitempty"`
	Color       int           `json:"color"`
	Timestamp   string        `json:"timestamp"`
	Footer      discordFooter `json:"footer"`
}

type discordMessage struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discord struct {
	webhookURL string
	httpClient *http.Client
}

// NewDiscord creates a Notifier posting embeds to a Discord webhook
func NewDiscord(webhookURL string, opts ...Option) interfaces.Notifier {
	cfg := newConfig(opts)
	return &discord{
		webhookURL: webhookURL,
		httpClient: cfg.httpClient,
	}
}

func buildDiscordMessage(n *model.Notification) *discordMessage {
	return &discordMessage{
		Embeds: []discordEmbed{
			{
				Title:       n.Title(),
				Description: n.Description(),
				URL:         n.ReleaseURL,
				Color:       n.Color,
				Timestamp:   n.Timestamp.UTC().Format(time.RFC3339),
				Footer:      discordFooter{Text: n.Footer},
			},
		},
	}
}

// Notify posts a single embed message
func (d *discord) Notify(ctx context.Context, n *model.Notification) (bool, error) {
	if err := validate(n, d.webhookURL); err != nil {
		return false, err
	}
	logger := ctxlog.From(ctx)

	body, err := json.Marshal(buildDiscordMessage(n))
	if err != nil {
		return false, goerr.Wrap(err, "failed to encode Discord message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return false, goerr.Wrap(types.ErrInvalidConfig, "invalid webhook URL", goerr.V("cause", transportError(err).Error()))
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Info("Sending Discord notification", "version", n.Version)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return false, goerr.Wrap(transportError(err), "failed to post Discord notification", goerr.V("version", n.Version))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		_, _ = io.Copy(io.Discard, resp.Body)
		logger.Info("Discord notification sent", "version", n.Version, "status", resp.StatusCode)
		return true, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		logger.Warn("Discord rate limited the notification",
			"version", n.Version,
			"retry_after", resp.Header.Get("Retry-After"),
		)
		return false, nil

	default:
		return false, goerr.Wrap(types.ErrNotificationFailed, "Discord webhook returned unexpected status",
			goerr.V("version", n.Version),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", readLimited(resp.Body)))
	}
}
