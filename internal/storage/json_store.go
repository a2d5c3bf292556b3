package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// JSONStore persists a single JSON document on disk. All access goes through
// one RWMutex so a read-modify-write in Update is atomic within the process.
type JSONStore struct {
	mu       sync.RWMutex
	filePath string
}

// NewJSONStore creates a new JSON store at dataDir/filename.
func NewJSONStore(dataDir, filename string) (*JSONStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}

	return &JSONStore{
		filePath: filepath.Join(dataDir, filename),
	}, nil
}

// Load decodes the file into data. A missing file leaves data untouched.
func (s *JSONStore) Load(data interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(data)
}

// Update loads into data, calls fn, and saves data if fn returns nil. The
// whole sequence holds the write lock.
func (s *JSONStore) Update(data interface{}, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(data); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	return s.save(data)
}

func (s *JSONStore) load(data interface{}) error {
	file, err := os.Open(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(data)
}

func (s *JSONStore) save(data interface{}) error {
	// Write to a temp file first, then rename over the target.
	tempFile := s.filePath + ".tmp"
	file, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		file.Close()
		os.Remove(tempFile)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, s.filePath)
}
