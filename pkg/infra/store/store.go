package store

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
	"google.golang.org/api/option"
)

// New selects a VersionStore backend from location:
//
//   - gs://bucket/object
//   - firestore://project/collection/document
//   - anything else is a local file path
func New(ctx context.Context, location string, opts ...option.ClientOption) (interfaces.VersionStore, error) {
	switch {
	case strings.HasPrefix(location, "gs://"):
		bucket, object, ok := strings.Cut(strings.TrimPrefix(location, "gs://"), "/")
		if !ok || bucket == "" || object == "" {
			return nil, goerr.Wrap(types.ErrInvalidConfig, "storage location must be gs://bucket/object",
				goerr.V("location", location))
		}
		return NewGCS(ctx, bucket, object, opts...)

	case strings.HasPrefix(location, "firestore://"):
		parts := strings.Split(strings.TrimPrefix(location, "firestore://"), "/")
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return nil, goerr.Wrap(types.ErrInvalidConfig, "storage location must be firestore://project/collection/document",
				goerr.V("location", location))
		}
		return NewFirestore(ctx, parts[0], parts[1], parts[2], opts...)

	case location == "":
		return nil, goerr.Wrap(types.ErrInvalidConfig, "storage location is empty")

	default:
		return NewFile(location), nil
	}
}
