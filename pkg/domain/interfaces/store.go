package interfaces

import (
	"context"

	"github.com/m-mizutani/relwatch/pkg/domain/model"
)

// VersionStore persists the single VersionRecord
type VersionStore interface {
	// Load returns the stored record, or nil if there is no usable record
	Load(ctx context.Context) (*model.VersionRecord, error)

	// Save replaces the stored record with version and the current time
	Save(ctx context.Context, version string) error

	// Close releases backend clients
	Close() error
}
