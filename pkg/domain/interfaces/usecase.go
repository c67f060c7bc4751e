package interfaces

import (
	"context"

	"github.com/m-mizutani/relwatch/pkg/domain/model"
)

// MonitorUseCase defines release monitoring operations
type MonitorUseCase interface {
	// Check runs one fetch, filter, compare and notify pass
	Check(ctx context.Context) (*model.CheckResult, error)

	// Status returns the currently stored version record
	Status(ctx context.Context) (*model.VersionRecord, error)
}
