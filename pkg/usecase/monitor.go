package usecase

import (
	"context"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/model"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

// MonitorConfig is the immutable per-invocation configuration of a Monitor
type MonitorConfig struct {
	Repository model.Repository
	Project    string // Display name used in notifications
	Pattern    *model.VersionPattern
	Host       string // Web host used to build release URLs
	Color      int
	Footer     string
}

type monitor struct {
	cfg      MonitorConfig
	fetcher  interfaces.ReleaseFetcher
	store    interfaces.VersionStore
	notifier interfaces.Notifier
	now      func() time.Time
}

// MonitorOption is a functional option for the Monitor
type MonitorOption func(*monitor)

// WithClock replaces the time source used for notification timestamps
func WithClock(now func() time.Time) MonitorOption {
	return func(m *monitor) {
		m.now = now
	}
}

// NewMonitor creates a new instance of MonitorUseCase
func NewMonitor(
	cfg MonitorConfig,
	fetcher interfaces.ReleaseFetcher,
	store interfaces.VersionStore,
	notifier interfaces.Notifier,
	opts ...MonitorOption,
) (interfaces.MonitorUseCase, error) {
	if cfg.Pattern == nil {
		return nil, goerr.Wrap(types.ErrInvalidConfig, "version pattern is required")
	}
	if cfg.Repository.Owner == "" || cfg.Repository.Name == "" {
		return nil, goerr.Wrap(types.ErrInvalidConfig, "repository is required")
	}
	if cfg.Project == "" {
		cfg.Project = cfg.Repository.String()
	}
	if cfg.Host == "" {
		cfg.Host = "github.com"
	}
	if cfg.Color == 0 {
		cfg.Color = model.DefaultNotificationColor
	}
	if cfg.Footer == "" {
		cfg.Footer = types.AppName
	}

	m := &monitor{
		cfg:      cfg,
		fetcher:  fetcher,
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Check runs one fetch, filter, compare and notify pass. Expected stops are
// reported through the result outcome; only faults are returned as errors.
func (m *monitor) Check(ctx context.Context) (*model.CheckResult, error) {
	logger := ctxlog.From(ctx).With("repository", m.cfg.Repository.String())
	logger.Info("Checking for a new release")

	release, err := m.fetcher.FetchLatestRelease(ctx, m.cfg.Repository)
	if err != nil {
		logger.Warn("No release found or fetch failed", "error", err)
		return &model.CheckResult{Outcome: model.OutcomeNoRelease}, nil
	}
	tag := release.TagName
	logger.Info("Latest release found", "tag", tag)

	if !m.cfg.Pattern.Match(tag) {
		logger.Info("Version does not match the monitored pattern",
			"tag", tag,
			"pattern", m.cfg.Pattern.String(),
		)
		return &model.CheckResult{Outcome: model.OutcomePatternMismatch, Version: tag}, nil
	}

	record, err := m.store.Load(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load version record")
	}

	var previous string
	if record != nil {
		previous = record.LastVersion
	}
	if previous == tag {
		logger.Info("No new release detected", "tag", tag)
		return &model.CheckResult{Outcome: model.OutcomeUpToDate, Version: tag, Previous: previous}, nil
	}

	logger.Info("New release detected",
		"tag", tag,
		"previous", previous,
		"change", classifyChange(previous, tag),
	)

	notification := &model.Notification{
		Project:    m.cfg.Project,
		Repository: m.cfg.Repository,
		Version:    tag,
		ReleaseURL: m.cfg.Repository.ReleaseURL(m.cfg.Host, tag),
		Color:      m.cfg.Color,
		Footer:     m.cfg.Footer,
		Timestamp:  m.now(),
	}

	sent, err := m.notifier.Notify(ctx, notification)
	if err != nil {
		// Keep the stored version so the next invocation retries this one
		return nil, goerr.Wrap(err, "failed to send notification", goerr.V("tag", tag))
	}
	if !sent {
		logger.Warn("Notification was not sent, version record left unchanged", "tag", tag)
		return &model.CheckResult{Outcome: model.OutcomeNotSent, Version: tag, Previous: previous}, nil
	}

	if err := m.store.Save(ctx, tag); err != nil {
		return nil, goerr.Wrap(err, "failed to save version record", goerr.V("tag", tag))
	}

	return &model.CheckResult{Outcome: model.OutcomeNotified, Version: tag, Previous: previous}, nil
}

// Status returns the stored version record, or nil if there is none
func (m *monitor) Status(ctx context.Context) (*model.VersionRecord, error) {
	record, err := m.store.Load(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load version record")
	}
	return record, nil
}

// classifyChange labels a version transition for logging only
func classifyChange(previous, next string) string {
	if previous == "" {
		return "first"
	}
	prev, err := semver.NewVersion(previous)
	if err != nil {
		return "unknown"
	}
	cur, err := semver.NewVersion(next)
	if err != nil {
		return "unknown"
	}

	switch {
	case cur.GreaterThan(prev):
		return "upgrade"
	case cur.LessThan(prev):
		return "downgrade"
	default:
		return "same"
	}
}
