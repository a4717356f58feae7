package registry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/altafino/report-courier/internal/models"
)

// state is the persisted shape: registry plus scan configuration.
type state struct {
	Recipients []models.Recipient `json:"recipients"`
	Scan       models.ScanConfig  `json:"scan"`
}

// Store persists the recipient registry and scan configuration to a
// single JSON file.
type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewStore creates a store backed by the given file path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load reads the persisted state. A missing or unreadable file is not
// fatal: the engine starts from an empty registry and disabled scans.
func (s *Store) Load() ([]models.Recipient, models.ScanConfig) {
	empty := models.ScanConfig{Mode: models.ScanDisabled}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read registry, starting empty",
				"path", s.path,
				"error", err,
			)
		}
		return nil, empty
	}
	if len(data) == 0 {
		return nil, empty
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("failed to parse registry, starting empty",
			"path", s.path,
			"error", err,
		)
		return nil, empty
	}
	if st.Scan.Mode == "" {
		st.Scan.Mode = models.ScanDisabled
	}
	return st.Recipients, st.Scan
}

// Save writes the registry and scan configuration atomically
// (write to a temp file, then rename).
func (s *Store) Save(recipients []models.Recipient, scan models.ScanConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(state{Recipients: recipients, Scan: scan}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize registry: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create registry directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace registry: %w", err)
	}
	return nil
}
