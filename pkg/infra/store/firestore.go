package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/model"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type firestoreStore struct {
	client     *firestore.Client
	collection string
	document   string
	now        func() time.Time
}

// NewFirestore creates a VersionStore backed by a single Firestore document
func NewFirestore(ctx context.Context, projectID, collection, document string, opts ...option.ClientOption) (interfaces.VersionStore, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Firestore client", goerr.V("project_id", projectID))
	}

	return &firestoreStore{
		client:     client,
		collection: collection,
		document:   document,
		now:        time.Now,
	}, nil
}

func (s *firestoreStore) doc() *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(s.document)
}

// Load reads the version record document
func (s *firestoreStore) Load(ctx context.Context) (*model.VersionRecord, error) {
	logger := ctxlog.From(ctx)
	path := s.collection + "/" + s.document

	snap, err := s.doc().Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			logger.Debug("Version document does not exist", "document", path)
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get version document", goerr.V("document", path))
	}

	var stored storedRecord
	if err := snap.DataTo(&stored); err != nil {
		logger.Warn("Version document is malformed, ignoring it", "document", path, "error", err)
		return nil, nil
	}
	if stored.LastVersion == "" {
		return nil, nil
	}

	record := &model.VersionRecord{LastVersion: stored.LastVersion}
	record.LastCheck, _ = parseCheckTime(stored.LastCheck)
	return record, nil
}

// Close releases the Firestore client
func (s *firestoreStore) Close() error {
	if err := s.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close Firestore client")
	}
	return nil
}

// Save overwrites the version record document
func (s *firestoreStore) Save(ctx context.Context, version string) error {
	record := &model.VersionRecord{
		LastVersion: version,
		LastCheck:   s.now().UTC(),
	}
	if _, err := s.doc().Set(ctx, record); err != nil {
		return goerr.Wrap(err, "failed to save version document",
			goerr.V("document", s.collection+"/"+s.document))
	}

	ctxlog.From(ctx).Info("Saved version record", "document", s.collection+"/"+s.document, "version", version)
	return nil
}
