package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"whitelister/models"
)

// FileStore persists the settings record as a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed settings store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the durable record. A missing file is not an error and returns
// (nil, nil); an unreadable or undecodable file is a hard error so startup
// never proceeds on corrupt state.
func (s *FileStore) Load(ctx context.Context) (*models.Settings, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", s.path, err)
	}

	var settings models.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings file %s: %w", s.path, err)
	}
	if settings.SubmittedWallets == nil {
		settings.SubmittedWallets = make(map[int64][]string)
	}

	return &settings, nil
}

// Save serializes the full record and replaces the previous file contents.
// The record is written to a temp file in the same directory and renamed into
// place, so a crash mid-write never leaves a partial record behind.
func (s *FileStore) Save(ctx context.Context, settings *models.Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".settings-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close settings file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace settings file %s: %w", s.path, err)
	}

	return nil
}
