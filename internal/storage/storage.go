// Package storage persists audio artifacts on the local filesystem under a
// stable public path.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes audio files into a directory served at a public base URL.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates the store, ensuring the directory exists.
func NewLocalStore(dir, publicBaseURL string) (*LocalStore, error) {
	if dir == "" {
		dir = "static/audio"
	}
	if publicBaseURL == "" {
		publicBaseURL = "/static/audio"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimSuffix(publicBaseURL, "/")}, nil
}

// Save writes data under filename and returns its public URL and physical path.
func (s *LocalStore) Save(filename string, data []byte) (string, string, error) {
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write audio file: %w", err)
	}
	return s.baseURL + "/" + filename, path, nil
}

// Delete removes a previously saved file. A missing file is not an error.
func (s *LocalStore) Delete(storagePath string) error {
	if err := os.Remove(storagePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete audio file: %w", err)
	}
	return nil
}
