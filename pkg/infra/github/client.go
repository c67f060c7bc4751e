package github

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/model"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

const maxBackoff = 60 * time.Second

// RetryPolicy controls how transient API failures are retried
type RetryPolicy struct {
	MaxRetries      int     // Retries after the first attempt
	BackoffFactor   float64 // Wait is BackoffFactor * 2^attempt seconds
	StatusForcelist []int   // HTTP status codes that are retried
}

// DefaultRetryPolicy returns the policy used when none is configured
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		BackoffFactor:   1,
		StatusForcelist: []int{500, 502, 503, 504},
	}
}

func (p RetryPolicy) backoff(_, _ time.Duration, attemptNum int, _ *http.Response) time.Duration {
	wait := time.Duration(p.BackoffFactor * math.Pow(2, float64(attemptNum)) * float64(time.Second))
	if wait > maxBackoff || wait < 0 {
		return maxBackoff
	}
	return wait
}

func (p RetryPolicy) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	return slices.Contains(p.StatusForcelist, resp.StatusCode), nil
}

// config holds internal client configuration
type config struct {
	baseURL        string
	token          string
	userAgent      string
	timeout        time.Duration
	retry          RetryPolicy
	appID          int64
	installationID int64
	privateKey     []byte
}

// Option is a functional option for Client configuration
type Option func(*config)

// WithBaseURL sets the REST API base URL, e.g. for GitHub Enterprise
func WithBaseURL(baseURL string) Option {
	return func(c *config) {
		c.baseURL = baseURL
	}
}

// WithToken sets a bearer token used for every request
func WithToken(token string) Option {
	return func(c *config) {
		c.token = token
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *config) {
		c.userAgent = ua
	}
}

// WithTimeout sets the timeout of a single HTTP attempt
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithRetryPolicy sets the retry policy of the HTTP transport
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *config) {
		c.retry = p
	}
}

// WithAppAuth enables GitHub App installation authentication
func WithAppAuth(appID, installationID int64, privateKey []byte) Option {
	return func(c *config) {
		c.appID = appID
		c.installationID = installationID
		c.privateKey = privateKey
	}
}

type client struct {
	githubClient *github.Client
}

// NewClient creates a GitHub release fetcher with a retrying HTTP transport
func NewClient(ctx context.Context, opts ...Option) (interfaces.ReleaseFetcher, error) {
	cfg := &config{
		userAgent: types.AppName + "/" + types.Version,
		timeout:   30 * time.Second,
		retry:     DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.retry.MaxRetries
	retryClient.Backoff = cfg.retry.backoff
	retryClient.CheckRetry = cfg.retry.checkRetry
	// Hand the final response to go-github so the status is reported
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = ctxlog.From(ctx)
	retryClient.HTTPClient.Timeout = cfg.timeout

	httpClient := retryClient.StandardClient()

	if cfg.appID != 0 {
		itr, err := ghinstallation.New(httpClient.Transport, cfg.appID, cfg.installationID, cfg.privateKey)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create GitHub App transport",
				goerr.V("app_id", cfg.appID),
				goerr.V("installation_id", cfg.installationID))
		}
		if cfg.baseURL != "" {
			itr.BaseURL = strings.TrimSuffix(cfg.baseURL, "/")
		}
		httpClient = &http.Client{Transport: itr}
	}

	githubClient := github.NewClient(httpClient)
	if cfg.token != "" {
		githubClient = githubClient.WithAuthToken(cfg.token)
	}
	githubClient.UserAgent = cfg.userAgent

	if cfg.baseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(cfg.baseURL, "/") + "/")
		if err != nil {
			return nil, goerr.Wrap(types.ErrInvalidConfig, "invalid GitHub API base URL",
				goerr.V("base_url", cfg.baseURL), goerr.V("cause", err.Error()))
		}
		githubClient.BaseURL = u
	}

	return &client{
		githubClient: githubClient,
	}, nil
}

// FetchLatestRelease returns the latest published release of repo
func (c *client) FetchLatestRelease(ctx context.Context, repo model.Repository) (*model.Release, error) {
	release, resp, err := c.githubClient.Repositories.GetLatestRelease(ctx, repo.Owner, repo.Name)
	if err != nil {
		opts := []goerr.Option{goerr.V("repository", repo.String())}
		if resp != nil && resp.Response != nil {
			opts = append(opts, goerr.V("status", resp.StatusCode))
		}
		var errResp *github.ErrorResponse
		if errors.As(err, &errResp) {
			opts = append(opts, goerr.V("message", errResp.Message))
			if body := readBody(errResp.Response); body != "" {
				opts = append(opts, goerr.V("body", body))
			}
		}
		return nil, goerr.Wrap(err, "failed to get latest release", opts...)
	}

	if release.GetTagName() == "" {
		return nil, goerr.New("latest release has no tag_name",
			goerr.V("repository", repo.String()),
			goerr.V("status", resp.StatusCode))
	}

	return &model.Release{
		TagName:     release.GetTagName(),
		Name:        release.GetName(),
		HTMLURL:     release.GetHTMLURL(),
		PublishedAt: release.GetPublishedAt().Time,
	}, nil
}

// readBody returns up to 1 KiB of a response body for diagnostics
func readBody(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return ""
	}
	return string(data)
}
