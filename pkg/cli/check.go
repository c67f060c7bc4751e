package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relwatch/pkg/cli/config"
	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/model"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
	githubinfra "github.com/m-mizutani/relwatch/pkg/infra/github"
	"github.com/m-mizutani/relwatch/pkg/infra/notify"
	"github.com/m-mizutani/relwatch/pkg/infra/store"
	"github.com/m-mizutani/relwatch/pkg/usecase"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

func cmdCheck() *cli.Command {
	var (
		fileCfg    config.File
		webhookCfg config.Webhook
		githubCfg  config.GitHub
	)

	flags := append(fileCfg.Flags(), webhookCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)

	return &cli.Command{
		Name:    "check",
		Aliases: []string{"c"},
		Usage:   "Check the latest release once and notify if it is new",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := ctxlog.From(ctx)

			settings, err := fileCfg.Load()
			if err != nil {
				return err
			}

			webhookURL := config.ResolveWebhookURL(
				webhookCfg.URL,
				webhookCfg.ActionsURL,
				settings.Discord.Notification.WebhookURL,
			)
			if webhookURL == "" {
				return goerr.Wrap(types.ErrMissingWebhookURL,
					"set DISCORD_WEBHOOK_URL, INPUT_DISCORD_WEBHOOK_URL or discord.notification.webhook_url")
			}

			versionStore, err := newStore(ctx, settings)
			if err != nil {
				return err
			}
			defer closeStore(ctx, versionStore)

			monitorUC, err := newMonitor(ctx, settings, &githubCfg, versionStore, webhookURL)
			if err != nil {
				return err
			}

			result, err := monitorUC.Check(ctx)
			if err != nil {
				return goerr.Wrap(err, "release check failed")
			}

			logger.Info("Release check completed",
				"outcome", result.Outcome,
				"version", result.Version,
				"previous", result.Previous,
			)
			return nil
		},
	}
}

// newStore opens the version store configured by storage.version_file
func newStore(ctx context.Context, settings *config.Settings) (interfaces.VersionStore, error) {
	var opts []option.ClientOption
	if settings.Storage.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(settings.Storage.CredentialsFile))
	}
	return store.New(ctx, settings.Storage.VersionFile, opts...)
}

func closeStore(ctx context.Context, versionStore interfaces.VersionStore) {
	if err := versionStore.Close(); err != nil {
		ctxlog.From(ctx).Warn("Failed to close version store", "error", err)
	}
}

// newMonitor wires infrastructure into the monitor use case
func newMonitor(ctx context.Context, settings *config.Settings, githubCfg *config.GitHub, versionStore interfaces.VersionStore, webhookURL string) (interfaces.MonitorUseCase, error) {
	repo, err := model.ParseRepository(settings.GitHub.Repository)
	if err != nil {
		return nil, err
	}
	pattern, err := model.NewVersionPattern(settings.GitHub.VersionPattern)
	if err != nil {
		return nil, err
	}

	fetcher, err := newFetcher(ctx, settings, githubCfg)
	if err != nil {
		return nil, err
	}

	notifier, err := notify.New(settings.Discord.Notification.Provider, webhookURL)
	if err != nil {
		return nil, err
	}

	return usecase.NewMonitor(usecase.MonitorConfig{
		Repository: repo,
		Project:    settings.GitHub.Name,
		Pattern:    pattern,
		Host:       settings.GitHub.Host,
		Color:      settings.Discord.Notification.Color,
		Footer:     settings.Discord.Notification.FooterText,
	}, fetcher, versionStore, notifier)
}

func newFetcher(ctx context.Context, settings *config.Settings, githubCfg *config.GitHub) (interfaces.ReleaseFetcher, error) {
	logger := ctxlog.From(ctx)
	api := settings.GitHub.API

	opts := []githubinfra.Option{
		githubinfra.WithUserAgent(api.Headers.UserAgent),
		githubinfra.WithRetryPolicy(githubinfra.RetryPolicy{
			MaxRetries:      *api.Retries,
			BackoffFactor:   *api.BackoffFactor,
			StatusForcelist: api.StatusForcelist,
		}),
	}
	if api.BaseURL != "" {
		opts = append(opts, githubinfra.WithBaseURL(api.BaseURL))
	}

	switch {
	case githubCfg.ResolveToken() != "":
		logger.Debug("Using token authentication for GitHub API")
		opts = append(opts, githubinfra.WithToken(githubCfg.ResolveToken()))
	case githubCfg.HasAppAuth():
		logger.Debug("Using GitHub App authentication", "app_id", githubCfg.AppID)
		opts = append(opts, githubinfra.WithAppAuth(
			githubCfg.AppID, githubCfg.InstallationID, []byte(githubCfg.PrivateKey)))
	default:
		logger.Debug("Using anonymous access to GitHub API")
	}

	return githubinfra.NewClient(ctx, opts...)
}
