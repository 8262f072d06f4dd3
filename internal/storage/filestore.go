package storage

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var ErrFileNotFound = errors.New("file not found")

// FileStore keeps ticket photos under a single root directory. Paths handed
// in and out are relative to that root and use forward slashes.
type FileStore struct {
	fs   afero.Fs
	root string
}

func NewFileStore(fs afero.Fs, root string) *FileStore {
	return &FileStore{fs: fs, root: filepath.Clean(root)}
}

// NewOSFileStore roots the store on the local disk and creates the directory.
func NewOSFileStore(root string) (*FileStore, error) {
	fs := afero.NewOsFs()
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", root, err)
	}
	return NewFileStore(fs, root), nil
}

// Open returns the bytes stored at rel. Missing files and paths that escape
// the root both report ErrFileNotFound.
func (s *FileStore) Open(rel string) ([]byte, error) {
	full, ok := s.resolve(rel)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, rel)
	}
	data, err := afero.ReadFile(s.fs, full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, rel)
		}
		return nil, fmt.Errorf("read %s: %w", rel, err)
	}
	return data, nil
}

// Save writes data under a fresh name that keeps the extension of name and
// returns the relative path to store on the job.
func (s *FileStore) Save(name string, data []byte) (string, error) {
	ext := strings.ToLower(path.Ext(filepath.Base(name)))
	rel := path.Join("tickets", uuid.NewString()+ext)
	full, _ := s.resolve(rel)

	if err := s.fs.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create dir for %s: %w", rel, err)
	}
	if err := afero.WriteFile(s.fs, full, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", rel, err)
	}
	return rel, nil
}

func (s *FileStore) resolve(rel string) (string, bool) {
	rel = strings.TrimSpace(strings.ReplaceAll(rel, "\\", "/"))
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return "", false
	}
	cleaned := path.Clean(rel)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", false
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), true
}
