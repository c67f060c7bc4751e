package interfaces

import (
	"context"

	"github.com/m-mizutani/relwatch/pkg/domain/model"
)

// ReleaseFetcher retrieves release information from a repository hosting API
type ReleaseFetcher interface {
	// FetchLatestRelease returns the most recent published release of repo
	FetchLatestRelease(ctx context.Context, repo model.Repository) (*model.Release, error)
}
