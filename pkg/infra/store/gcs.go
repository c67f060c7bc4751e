package store

import (
	"context"
	"errors"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/model"
	"google.golang.org/api/option"
)

type gcsStore struct {
	client *storage.Client
	bucket string
	object string
	now    func() time.Time
}

// NewGCS creates a VersionStore backed by a Cloud Storage object
func NewGCS(ctx context.Context, bucket, object string, opts ...option.ClientOption) (interfaces.VersionStore, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client")
	}

	return &gcsStore{
		client: client,
		bucket: bucket,
		object: object,
		now:    time.Now,
	}, nil
}

func (s *gcsStore) location() string {
	return "gs://" + s.bucket + "/" + s.object
}

// Load reads the version record object
func (s *gcsStore) Load(ctx context.Context) (*model.VersionRecord, error) {
	r, err := s.client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			ctxlog.From(ctx).Debug("Version object does not exist", "object", s.location())
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to open version object", goerr.V("object", s.location()))
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read version object", goerr.V("object", s.location()))
	}

	return decodeRecord(ctx, data, "object", s.location()), nil
}

// Close releases the Cloud Storage client
func (s *gcsStore) Close() error {
	if err := s.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close Cloud Storage client")
	}
	return nil
}

// Save overwrites the version record object
func (s *gcsStore) Save(ctx context.Context, version string) error {
	data, err := encodeRecord(version, s.now())
	if err != nil {
		return err
	}

	w := s.client.Bucket(s.bucket).Object(s.object).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write version object", goerr.V("object", s.location()))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to commit version object", goerr.V("object", s.location()))
	}

	ctxlog.From(ctx).Info("Saved version record", "object", s.location(), "version", version)
	return nil
}
