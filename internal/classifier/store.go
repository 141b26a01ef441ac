package classifier

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrArtifactMissing is returned when a classifier artifact has never been saved.
var ErrArtifactMissing = errors.New("classifier artifact missing")

// Artifact names. They match the file names used by earlier deployments.
const (
	PreprocessorArtifact = "preprocessor"
	ModelArtifact        = "random_forest_model"
)

// ArtifactStore loads and saves named classifier blobs.
type ArtifactStore interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
}

// FileStore keeps each artifact in <Dir>/<name>.gob.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.Dir, name+".gob")
}

func (s *FileStore) Load(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", name, err)
	}
	return data, nil
}

// Save writes through a temp file and a rename so readers never see a partial artifact.
func (s *FileStore) Save(_ context.Context, name string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write artifact %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", name, err)
	}
	return nil
}
