package scholar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const DefaultOutputPath = "_data/scholar.json"

// Store owns the snapshot file. It only checks whether a previous file exists;
// the old document is never read back.
type Store struct {
	fs     afero.Fs
	path   string
	logger *zap.Logger
}

func NewStore(fs afero.Fs, path string, logger *zap.Logger) *Store {
	if path == "" {
		path = DefaultOutputPath
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{fs: fs, path: path, logger: logger}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Exists() (bool, error) {
	ok, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", s.path, err)
	}
	return ok, nil
}

// Persist applies the keep-or-fallback decision for r and returns the action
// taken.
func (s *Store) Persist(r Result) (Action, error) {
	prior, err := s.Exists()
	if err != nil {
		return 0, err
	}
	action := r.Decide(prior)
	switch action {
	case ActionWriteSnapshot:
		err = s.Write(r.Snapshot)
	case ActionKeepExisting:
		s.logger.Info("Keeping existing snapshot", zap.String("path", s.path))
	case ActionWriteFallback:
		s.logger.Info("No existing data, writing empty fallback", zap.String("path", s.path))
		err = s.Write(FallbackSnapshot())
	}
	return action, err
}

// Write replaces the snapshot file through a temp file and rename. The
// containing directory must already exist.
func (s *Store) Write(snap Snapshot) error {
	payload, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	ok, err := afero.DirExists(s.fs, dir)
	if err != nil {
		return fmt.Errorf("stat output dir %s: %w", dir, err)
	}
	if !ok {
		return fmt.Errorf("output dir %s: %w", dir, os.ErrNotExist)
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		if rerr := s.fs.Remove(tmpName); rerr != nil {
			s.logger.Warn("Failed to remove temp file", zap.String("path", tmpName), zap.Error(rerr))
		}
	}

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := s.fs.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("rename %s to %s: %w", tmpName, s.path, err)
	}
	return nil
}

type snapshotDocument struct {
	Metrics      any           `json:"metrics"`
	Publications []Publication `json:"publications"`
}

// EncodeSnapshot renders snap as 2-space indented JSON with a trailing
// newline. Missing metrics become {} and missing publications [].
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	doc := snapshotDocument{
		Metrics:      struct{}{},
		Publications: snap.Publications,
	}
	if snap.Metrics != nil {
		m := *snap.Metrics
		if m.CitationsPerYear == nil {
			m.CitationsPerYear = map[string]int{}
		}
		doc.Metrics = m
	}
	if doc.Publications == nil {
		doc.Publications = []Publication{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}
