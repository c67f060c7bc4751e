package config

import (
	"regexp"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Sentry holds error reporting configuration
type Sentry struct {
	DSN string `masq:"secret"`
	Env string

	enabled bool
}

// Flags returns CLI flags for Sentry configuration
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for reporting fatal errors",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("RELWATCH_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Value:       "production",
			Destination: &c.Env,
			Sources:     cli.EnvVars("RELWATCH_SENTRY_ENV"),
		},
	}
}

// Configure initializes the Sentry client. It is a no-op without DSN.
func (c *Sentry) Configure() error {
	if c.DSN == "" {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Env,
		Release:     types.AppName + "@" + types.Version,
		BeforeSend:  scrubEvent,
	}); err != nil {
		return goerr.Wrap(err, "failed to initialize Sentry")
	}
	c.enabled = true
	return nil
}

// Report sends err to Sentry and waits for delivery
func (c *Sentry) Report(err error) {
	if !c.enabled || err == nil {
		return
	}
	sentry.CaptureException(err)
	sentry.Flush(2 * time.Second)
}

var webhookURLPattern = regexp.MustCompile(`https?://[^\s"']*(?:/api/webhooks/|hooks\.slack\.com/)[^\s"']*`)

// scrubSecrets masks webhook URLs and GitHub tokens in free text
func scrubSecrets(s string) string {
	s = webhookURLPattern.ReplaceAllString(s, "[REDACTED]")
	return githubTokenPattern.ReplaceAllString(s, "[REDACTED]")
}

// scrubEvent applies the log redaction rules to an outgoing Sentry event
func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	event.Message = scrubSecrets(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = scrubSecrets(event.Exception[i].Value)
	}
	for i := range event.Breadcrumbs {
		event.Breadcrumbs[i].Message = scrubSecrets(event.Breadcrumbs[i].Message)
	}
	return event
}
