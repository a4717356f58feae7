package scan

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/altafino/report-courier/internal/models"
)

// Scanner enumerates the watched folders and detects inventory
// changes through the fingerprint cache.
type Scanner struct {
	logger *slog.Logger
	cache  *FingerprintCache

	mu      sync.Mutex
	folders []string
}

// NewScanner creates a scanner over the given folders.
func NewScanner(folders []string, logger *slog.Logger) *Scanner {
	return &Scanner{
		logger:  logger,
		cache:   &FingerprintCache{},
		folders: append([]string(nil), folders...),
	}
}

// SetFolders replaces the watched folder set and invalidates the
// fingerprint cache so the next pass republishes the inventory.
func (s *Scanner) SetFolders(folders []string) {
	s.mu.Lock()
	s.folders = append([]string(nil), folders...)
	s.mu.Unlock()
	s.cache.Invalidate()
}

// LastScan returns the time of the most recent pass.
func (s *Scanner) LastScan() time.Time {
	return s.cache.LastScan()
}

// Scan enumerates every watched folder and returns the aggregated
// inventory plus whether it differs from the previously published one.
// When nothing changed only the last-scan timestamp is refreshed and
// changed is false.
//
// A folder that cannot be read contributes no entries for this pass;
// the failure is logged as a warning and scanning continues.
func (s *Scanner) Scan() (files []models.FileEntry, changed bool) {
	s.mu.Lock()
	folders := append([]string(nil), s.folders...)
	s.mu.Unlock()

	var names []string
	for _, folder := range folders {
		entries, err := os.ReadDir(folder)
		if err != nil {
			s.logger.Warn("failed to read watched folder",
				"folder", folder,
				"error", err,
			)
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			fe := models.FileEntry{
				Name:         entry.Name(),
				SourceFolder: folder,
			}
			if info, err := entry.Info(); err != nil {
				// Degrade to an unknown timestamp, the match itself
				// only needs the filename.
				s.logger.Debug("failed to stat file",
					"file", filepath.Join(folder, entry.Name()),
					"error", err,
				)
			} else {
				fe.ModTime = info.ModTime()
			}

			files = append(files, fe)
			names = append(names, filepath.Join(folder, entry.Name()))
		}
	}

	now := time.Now()
	fp := Fingerprint(names)
	if !s.cache.Changed(fp) {
		s.cache.Touch(now)
		return nil, false
	}

	s.cache.Store(fp)
	s.cache.Touch(now)

	s.logger.Debug("file inventory changed",
		"folders", len(folders),
		"files", len(files),
	)
	return files, true
}
