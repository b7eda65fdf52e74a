package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Transcript file formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FileStore persists a single conversation to a file.
type FileStore struct {
	path   string
	format string
}

// NewFileStore returns a file persister. Paths ending in .yaml or .yml are
// written as YAML, everything else as indented JSON.
func NewFileStore(path string) *FileStore {
	format := FormatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	}
	return &FileStore{path: path, format: format}
}

// Path returns the transcript file path.
func (f *FileStore) Path() string {
	return f.path
}

// Format returns the transcript encoding.
func (f *FileStore) Format() string {
	return f.format
}

// Load reads the transcript. A missing file is an empty conversation.
func (f *FileStore) Load(_ context.Context) (State, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return State{Turns: []Turn{}}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to read transcript %s: %w", f.path, err)
	}

	var state State
	switch f.format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &state)
	default:
		err = json.Unmarshal(data, &state)
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to decode transcript %s: %w", f.path, err)
	}
	if state.Turns == nil {
		state.Turns = []Turn{}
	}
	return state, nil
}

// Save overwrites the transcript. The new content is written to a temporary
// file in the same directory and renamed over the old one.
func (f *FileStore) Save(ctx context.Context, state State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if state.Turns == nil {
		state.Turns = []Turn{}
	}

	data, err := f.encode(state)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp transcript: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write temp transcript: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync temp transcript: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close temp transcript: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		cleanup()
		return fmt.Errorf("failed to set transcript permissions: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace transcript %s: %w", f.path, err)
	}
	return nil
}

func (f *FileStore) encode(state State) ([]byte, error) {
	switch f.format {
	case FormatYAML:
		data, err := yaml.Marshal(state)
		if err != nil {
			return nil, fmt.Errorf("failed to encode transcript as yaml: %w", err)
		}
		return data, nil
	default:
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode transcript as json: %w", err)
		}
		return append(data, '\n'), nil
	}
}
