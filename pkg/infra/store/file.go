package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/model"
)

type fileStore struct {
	path string
	now  func() time.Time
}

// NewFile creates a VersionStore backed by a local JSON file
func NewFile(path string) interfaces.VersionStore {
	return &fileStore{path: path, now: time.Now}
}

// Load reads the version record. A missing file or unparseable content is
// reported as no record.
func (s *fileStore) Load(ctx context.Context) (*model.VersionRecord, error) {
	logger := ctxlog.From(ctx)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("Version file does not exist", "path", s.path)
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to read version file", goerr.V("path", s.path))
	}

	return decodeRecord(ctx, data, "path", s.path), nil
}

// Save replaces the version file atomically
func (s *fileStore) Save(ctx context.Context, version string) error {
	data, err := encodeRecord(version, s.now())
	if err != nil {
		return err
	}

	if err := checkWritable(s.path); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".version-*.json")
	if err != nil {
		return goerr.Wrap(err, "failed to create temporary version file", goerr.V("dir", dir))
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName) // no-op after successful rename
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return goerr.Wrap(err, "failed to write version file", goerr.V("path", tmpName))
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close version file", goerr.V("path", tmpName))
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return goerr.Wrap(err, "failed to set version file permissions", goerr.V("path", tmpName))
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return goerr.Wrap(err, "failed to replace version file", goerr.V("path", s.path))
	}

	ctxlog.From(ctx).Info("Saved version record", "path", s.path, "version", version)
	return nil
}

// checkWritable rejects replacing an existing file that has no owner write
// permission. Rename only needs directory permission, so it is checked here.
func checkWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return goerr.Wrap(err, "failed to stat version file", goerr.V("path", path))
	}
	if info.Mode().Perm()&0200 == 0 {
		return goerr.Wrap(fs.ErrPermission, "version file is read-only",
			goerr.V("path", path), goerr.V("mode", info.Mode().Perm().String()))
	}
	return nil
}

// Close is a no-op for the file backend
func (s *fileStore) Close() error {
	return nil
}

func encodeRecord(version string, now time.Time) ([]byte, error) {
	data, err := json.MarshalIndent(&model.VersionRecord{
		LastVersion: version,
		LastCheck:   now.UTC(),
	}, "", "  ")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode version record")
	}
	return data, nil
}

// storedRecord is the stored shape. last_check is kept raw so that a
// timestamp in another ISO-8601 layout never discards last_version.
type storedRecord struct {
	LastVersion string `json:"last_version" firestore:"last_version"`
	LastCheck   any    `json:"last_check" firestore:"last_check"`
}

// checkTimeLayouts are tried in order; zone-less values are read as UTC
var checkTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func parseCheckTime(v any) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t, true
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	for _, layout := range checkTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// decodeRecord parses stored content. Malformed content is logged and treated
// as no record; it may cause one duplicate notification.
func decodeRecord(ctx context.Context, data []byte, locKey, loc string) *model.VersionRecord {
	logger := ctxlog.From(ctx)

	var stored storedRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		logger.Warn("Version record is malformed, ignoring it",
			locKey, loc,
			"error", err,
		)
		return nil
	}
	if stored.LastVersion == "" {
		logger.Debug("Version record has no version", locKey, loc)
		return nil
	}

	record := &model.VersionRecord{LastVersion: stored.LastVersion}
	if stored.LastCheck != nil {
		t, ok := parseCheckTime(stored.LastCheck)
		if !ok {
			logger.Debug("Version record has unreadable last_check", locKey, loc, "last_check", stored.LastCheck)
		}
		record.LastCheck = t
	}

	return record
}
