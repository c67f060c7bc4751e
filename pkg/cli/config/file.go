package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relwatch/pkg/domain/model"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// File holds the location of the configuration file
type File struct {
	Path string
}

// Flags returns CLI flags for the configuration file
func (c *File) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Configuration file (YAML, or TOML with .toml extension)",
			Value:       "config.yaml",
			Destination: &c.Path,
			Sources:     cli.EnvVars("CONFIG_PATH"),
		},
	}
}

// Settings is the content of the configuration file
type Settings struct {
	GitHub  GitHubSettings  `yaml:"github" toml:"github"`
	Storage StorageSettings `yaml:"storage" toml:"storage"`
	Discord DiscordSettings `yaml:"discord" toml:"discord"`
}

// GitHubSettings describes the monitored repository
type GitHubSettings struct {
	Repository     string      `yaml:"repository" toml:"repository"`
	Name           string      `yaml:"name" toml:"name"`
	VersionPattern string      `yaml:"version_pattern" toml:"version_pattern"`
	Host           string      `yaml:"host" toml:"host"`
	API            APISettings `yaml:"api" toml:"api"`
}

// APISettings tunes requests to the GitHub REST API
type APISettings struct {
	BaseURL         string         `yaml:"base_url" toml:"base_url"`
	Retries         *int           `yaml:"retries" toml:"retries"`
	BackoffFactor   *float64       `yaml:"backoff_factor" toml:"backoff_factor"`
	StatusForcelist []int          `yaml:"status_forcelist" toml:"status_forcelist"`
	Headers         HeaderSettings `yaml:"headers" toml:"headers"`
}

// HeaderSettings holds custom request headers
type HeaderSettings struct {
	UserAgent string `yaml:"user_agent" toml:"user_agent"`
}

// StorageSettings locates the version record
type StorageSettings struct {
	VersionFile     string `yaml:"version_file" toml:"version_file"`
	CredentialsFile string `yaml:"credentials_file" toml:"credentials_file"`
}

// DiscordSettings holds notification settings
type DiscordSettings struct {
	Notification NotificationSettings `yaml:"notification" toml:"notification"`
}

// NotificationSettings describes the webhook and message style
type NotificationSettings struct {
	Provider   string `yaml:"provider" toml:"provider"`
	WebhookURL string `yaml:"webhook_url" toml:"webhook_url" masq:"secret"`
	Color      int    `yaml:"color" toml:"color"`
	FooterText string `yaml:"footer_text" toml:"footer_text"`
}

// Load reads, decodes and validates the configuration file
func (c *File) Load() (*Settings, error) {
	raw, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, goerr.Wrap(types.ErrInvalidConfig, "failed to read configuration file",
			goerr.V("path", c.Path), goerr.V("cause", err.Error()))
	}

	return ParseSettings(raw, strings.ToLower(filepath.Ext(c.Path)) == ".toml")
}

// ParseSettings decodes YAML (or TOML) configuration and applies defaults
func ParseSettings(raw []byte, isTOML bool) (*Settings, error) {
	var s Settings
	if isTOML {
		if err := toml.Unmarshal(raw, &s); err != nil {
			return nil, goerr.Wrap(types.ErrInvalidConfig, "failed to parse TOML configuration",
				goerr.V("cause", err.Error()))
		}
	} else {
		if err := yaml.Unmarshal(raw, &s); err != nil {
			return nil, goerr.Wrap(types.ErrInvalidConfig, "failed to parse YAML configuration",
				goerr.V("cause", err.Error()))
		}
	}

	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) applyDefaults() {
	if s.GitHub.VersionPattern == "" {
		s.GitHub.VersionPattern = model.DefaultVersionPattern
	}
	if s.GitHub.Host == "" {
		s.GitHub.Host = "github.com"
	}
	if s.GitHub.Name == "" {
		s.GitHub.Name = s.GitHub.Repository
	}
	if s.GitHub.API.Retries == nil {
		retries := 3
		s.GitHub.API.Retries = &retries
	}
	if s.GitHub.API.BackoffFactor == nil {
		factor := 1.0
		s.GitHub.API.BackoffFactor = &factor
	}
	if len(s.GitHub.API.StatusForcelist) == 0 {
		s.GitHub.API.StatusForcelist = []int{500, 502, 503, 504}
	}
	if s.GitHub.API.Headers.UserAgent == "" {
		s.GitHub.API.Headers.UserAgent = types.AppName + "/" + types.Version
	}
	if s.Storage.VersionFile == "" {
		s.Storage.VersionFile = "last_version.json"
	}
	if s.Discord.Notification.Color == 0 {
		s.Discord.Notification.Color = model.DefaultNotificationColor
	}
	if s.Discord.Notification.FooterText == "" {
		s.Discord.Notification.FooterText = types.AppName
	}
}

// Validate checks fields that have no usable default
func (s *Settings) Validate() error {
	if s.GitHub.Repository == "" {
		return goerr.Wrap(types.ErrInvalidConfig, "github.repository is required")
	}
	if _, err := model.ParseRepository(s.GitHub.Repository); err != nil {
		return err
	}
	if _, err := model.NewVersionPattern(s.GitHub.VersionPattern); err != nil {
		return err
	}
	if *s.GitHub.API.Retries < 0 {
		return goerr.Wrap(types.ErrInvalidConfig, "github.api.retries must not be negative",
			goerr.V("retries", *s.GitHub.API.Retries))
	}
	if *s.GitHub.API.BackoffFactor < 0 {
		return goerr.Wrap(types.ErrInvalidConfig, "github.api.backoff_factor must not be negative",
			goerr.V("backoff_factor", *s.GitHub.API.BackoffFactor))
	}
	return nil
}
