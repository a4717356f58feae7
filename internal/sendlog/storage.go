package sendlog

import (
	"errors"

	"github.com/altafino/report-courier/internal/models"
)

// Storage defines the interface for the durable send log.
type Storage interface {
	// Initialize prepares the storage for use
	Initialize() error

	// Close cleans up any resources used by the storage
	Close() error

	// Append adds a new entry to the send log
	Append(entry models.SendLogEntry) error

	// List retrieves all entries, newest last
	List() ([]models.SendLogEntry, error)
}

// NewStorage creates a storage implementation based on the specified type
func NewStorage(storageType, storagePath string) (Storage, error) {
	switch storageType {
	case "file", "":
		return NewFileStorage(storagePath)
	case "sqlite":
		return NewSQLiteStorage(storagePath)
	default:
		return nil, ErrUnsupportedStorageType
	}
}

// Common errors
var (
	ErrUnsupportedStorageType = errors.New("unsupported storage type")
	ErrStorageNotInitialized  = errors.New("storage not initialized")
)
