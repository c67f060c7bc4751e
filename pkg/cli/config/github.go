package config

import (
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub API authentication configuration
type GitHub struct {
	Token          string `masq:"secret"`
	ActionsToken   string `masq:"secret"`
	Actions        bool
	AppID          int64
	InstallationID int64
	PrivateKey     string `masq:"secret"`
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token used for API requests",
			Destination: &c.Token,
			Sources:     cli.EnvVars("RELWATCH_GITHUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "github-actions-token",
			Usage:       "Token provided by GitHub Actions, used only when running in Actions",
			Hidden:      true,
			Destination: &c.ActionsToken,
			Sources:     cli.EnvVars("GITHUB_TOKEN"),
		},
		&cli.BoolFlag{
			Name:        "github-actions",
			Usage:       "Running inside GitHub Actions",
			Hidden:      true,
			Destination: &c.Actions,
			Sources:     cli.EnvVars("GITHUB_ACTIONS"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID for installation authentication",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("RELWATCH_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-app-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("RELWATCH_GITHUB_APP_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-app-private-key",
			Usage:       "GitHub App private key (PEM content)",
			Destination: &c.PrivateKey,
			Sources:     cli.EnvVars("RELWATCH_GITHUB_APP_PRIVATE_KEY"),
		},
	}
}

// ResolveToken returns the explicit token, or the Actions token when running
// inside GitHub Actions
func (c *GitHub) ResolveToken() string {
	if c.Token != "" {
		return c.Token
	}
	if c.Actions {
		return c.ActionsToken
	}
	return ""
}

// HasAppAuth reports whether GitHub App credentials are complete
func (c *GitHub) HasAppAuth() bool {
	return c.AppID != 0 && c.InstallationID != 0 && c.PrivateKey != ""
}
