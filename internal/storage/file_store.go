package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/wordloop/pkg/models"
)

const (
	historyFile  = "history.json"
	favoriteFile = "favorite.json"
)

// historyDoc is the on-disk layout of history.json
type historyDoc struct {
	Data  map[string]models.WordRecord `json:"data"`
	Queue [][]models.QueueEntry        `json:"queue"`
}

// FileStore keeps the state as JSON documents in a directory
type FileStore struct {
	dir       string
	fullLevel int
}

// NewFileStore creates a store in dir for a table with fullLevel levels
func NewFileStore(dir string, fullLevel int) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dir: dir, fullLevel: fullLevel}, nil
}

// Load reads history.json and favorite.json
func (s *FileStore) Load(ctx context.Context) (models.State, error) {
	state := models.NewState(s.fullLevel)

	var doc historyDoc
	found, err := s.readJSON(historyFile, &doc)
	if err != nil {
		return models.State{}, err
	}
	if found {
		state.Records = doc.Data
		state.Queues = doc.Queue
	}

	var favorites []string
	if _, err := s.readJSON(favoriteFile, &favorites); err != nil {
		return models.State{}, err
	}
	state.Favorites = favorites

	Normalize(&state, s.fullLevel)
	if err := Validate(state, s.fullLevel); err != nil {
		return models.State{}, &PersistenceError{Source: filepath.Join(s.dir, historyFile), Err: err}
	}
	return state, nil
}

func (s *FileStore) readJSON(name string, v interface{}) (bool, error) {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, &PersistenceError{Source: path, Err: err}
	}
	return true, nil
}

// Save writes both documents, each through a temporary file and a rename
func (s *FileStore) Save(ctx context.Context, state models.State) error {
	Normalize(&state, s.fullLevel)
	doc := historyDoc{Data: state.Records, Queue: state.Queues}
	if err := s.writeJSON(historyFile, doc); err != nil {
		return err
	}
	return s.writeJSON(favoriteFile, state.Favorites)
}

func (s *FileStore) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

// Close is a no-op for file storage
func (s *FileStore) Close() error {
	return nil
}
