package notify

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/model"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

const (
	ProviderDiscord = "discord"
	ProviderSlack   = "slack"
)

// config holds internal notifier configuration
type config struct {
	httpClient *http.Client
}

// Option is a functional option for notifiers
type Option func(*config)

// WithHTTPClient replaces the HTTP client used for webhook delivery
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.httpClient = client
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// New creates a Notifier for the given provider name
func New(provider, webhookURL string, opts ...Option) (interfaces.Notifier, error) {
	switch strings.ToLower(provider) {
	case "", ProviderDiscord:
		return NewDiscord(webhookURL, opts...), nil
	case ProviderSlack:
		return NewSlack(webhookURL, opts...), nil
	default:
		return nil, goerr.Wrap(types.ErrInvalidConfig, "unknown notification provider",
			goerr.V("provider", provider))
	}
}

// validate rejects a notification before anything is sent
func validate(n *model.Notification, webhookURL string) error {
	if n == nil || n.Version == "" {
		return goerr.Wrap(types.ErrInvalidArgument, "notification version is required")
	}
	if webhookURL == "" {
		return goerr.Wrap(types.ErrMissingWebhookURL, "cannot send notification",
			goerr.V("version", n.Version))
	}
	return nil
}

func readLimited(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 1024))
	if err != nil {
		return ""
	}
	return string(data)
}

// transportError drops the request URL from a client error; the URL of a
// webhook carries its token.
func transportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return goerr.Wrap(urlErr.Err, urlErr.Op+" webhook failed")
	}
	return err
}
