package config

import (
	"strings"

	"github.com/urfave/cli/v3"
)

// Webhook holds webhook URLs given through the environment
type Webhook struct {
	URL        string `masq:"secret"`
	ActionsURL string `masq:"secret"`
}

// Flags returns CLI flags for webhook configuration
func (c *Webhook) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "webhook-url",
			Usage:       "Chat webhook URL, overrides every other source",
			Destination: &c.URL,
			Sources:     cli.EnvVars("DISCORD_WEBHOOK_URL"),
		},
		&cli.StringFlag{
			Name:        "actions-webhook-url",
			Usage:       "Webhook URL given as a GitHub Actions input",
			Hidden:      true,
			Destination: &c.ActionsURL,
			Sources:     cli.EnvVars("INPUT_DISCORD_WEBHOOK_URL"),
		},
	}
}

// ResolveWebhookURL returns the first source that is not blank
func ResolveWebhookURL(sources ...string) string {
	for _, s := range sources {
		if v := strings.TrimSpace(s); v != "" {
			return v
		}
	}
	return ""
}
