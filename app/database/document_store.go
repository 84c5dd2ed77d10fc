package database

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileDocumentStore keeps rendered feed XML as one file per feed id
// under a data directory. Writes go through a temp file and rename so
// readers never observe a partially written document.
type FileDocumentStore struct {
	dir string
}

func NewFileDocumentStore(dir string) (*FileDocumentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}
	return &FileDocumentStore{dir: dir}, nil
}

func (s *FileDocumentStore) Write(id string, content string) error {
	path := s.Path(id)

	tmp, err := os.CreateTemp(s.dir, id+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp document: %w", err)
	}

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp document: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace document: %w", err)
	}

	return nil
}

func (s *FileDocumentStore) Read(id string) (string, error) {
	content, err := os.ReadFile(s.Path(id))
	if os.IsNotExist(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return string(content), nil
}

func (s *FileDocumentStore) Remove(id string) error {
	err := os.Remove(s.Path(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove document: %w", err)
	}
	return nil
}

func (s *FileDocumentStore) Path(id string) string {
	return filepath.Join(s.dir, id+".xml")
}
