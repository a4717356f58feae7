package sendlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/altafino/report-courier/internal/models"
)

// FileStorage implements the Storage interface using a JSON file.
type FileStorage struct {
	basePath    string
	logPath     string
	mu          sync.RWMutex
	initialized bool
}

// NewFileStorage creates a new file-based send log.
func NewFileStorage(basePath string) (*FileStorage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	return &FileStorage{
		basePath: basePath,
		logPath:  filepath.Join(basePath, "send_log.json"),
	}, nil
}

// Initialize prepares the storage for use
func (fs *FileStorage) Initialize() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.MkdirAll(fs.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	if _, err := os.Stat(fs.logPath); os.IsNotExist(err) {
		if err := fs.saveEntries([]models.SendLogEntry{}); err != nil {
			return fmt.Errorf("failed to create send log file: %w", err)
		}
	}

	fs.initialized = true
	return nil
}

// Close cleans up any resources
func (fs *FileStorage) Close() error {
	// No resources to clean up for file storage
	return nil
}

// Append adds a new entry to the send log
func (fs *FileStorage) Append(entry models.SendLogEntry) error {
	if !fs.initialized {
		return ErrStorageNotInitialized
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.loadEntriesLocked()
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	return fs.saveEntries(entries)
}

// List retrieves all entries
func (fs *FileStorage) List() ([]models.SendLogEntry, error) {
	if !fs.initialized {
		return nil, ErrStorageNotInitialized
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	return fs.loadEntriesLocked()
}

// loadEntriesLocked loads all entries from the file (assumes lock is held)
func (fs *FileStorage) loadEntriesLocked() ([]models.SendLogEntry, error) {
	data, err := os.ReadFile(fs.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read send log file: %w", err)
	}

	if len(data) == 0 {
		return []models.SendLogEntry{}, nil
	}

	var entries []models.SendLogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse send log file: %w", err)
	}

	return entries, nil
}

// saveEntries saves all entries to the file
func (fs *FileStorage) saveEntries(entries []models.SendLogEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize send log: %w", err)
	}

	if err := os.WriteFile(fs.logPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write send log file: %w", err)
	}

	return nil
}
