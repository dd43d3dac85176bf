// Package artifacts writes review artifacts to disk as schema-checked JSON files.
package artifacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/contract-review/internal/schemas"
	"github.com/jonathan/contract-review/internal/types"
)

// ErrInvalidID is returned for review IDs that cannot name a directory
var ErrInvalidID = errors.New("invalid review id")

// SchemaFor returns the schema each artifact is validated against
func SchemaFor(name types.ArtifactName) (schemas.Kind, bool) {
	switch name {
	case types.ArtifactSections:
		return schemas.KindSections, true
	case types.ArtifactReferences:
		return schemas.KindReferences, true
	case types.ArtifactIssues:
		return schemas.KindIssues, true
	default:
		return "", false
	}
}

// FileStore keeps one directory of artifacts per review under Root
type FileStore struct {
	root string
	perm os.FileMode
}

// NewFileStore creates a FileStore rooted at root
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root, perm: 0644}
}

// Root returns the store's root directory
func (s *FileStore) Root() string {
	return s.root
}

// Path returns the file path of an artifact. An empty reviewID addresses the root.
func (s *FileStore) Path(reviewID string, name types.ArtifactName) (string, error) {
	dir, err := s.dir(reviewID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name.FileName()), nil
}

// SaveArtifact validates content against the artifact's schema and writes it atomically
func (s *FileStore) SaveArtifact(ctx context.Context, reviewID string, name types.ArtifactName, content any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if kind, ok := SchemaFor(name); ok {
		if err := schemas.Validate(kind, data); err != nil {
			return fmt.Errorf("refusing to write %s: %w", name, err)
		}
	}

	path, err := s.Path(reviewID, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return writeAtomic(path, append(data, '\n'), s.perm)
}

// LoadArtifact reads a stored artifact
func (s *FileStore) LoadArtifact(reviewID string, name types.ArtifactName) ([]byte, error) {
	path, err := s.Path(reviewID, name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (s *FileStore) dir(reviewID string) (string, error) {
	if reviewID == "" {
		return s.root, nil
	}
	if reviewID == "." || reviewID == ".." || strings.ContainsAny(reviewID, `/\`) || filepath.VolumeName(reviewID) != "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, reviewID)
	}
	return filepath.Join(s.root, reviewID), nil
}

// writeAtomic writes data to a temp file in the destination directory and renames it into place
func writeAtomic(dest string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	_ = os.Chmod(tmpPath, perm)

	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
