package scan

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
}

func TestScannerAggregatesFolders(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	writeFile(t, dirA, "relatorio_JFAL_Varonis_2024.pdf")
	writeFile(t, dirB, "relatorio_JFPE_Backup_2024.pdf")
	// Duplicate filename across folders is kept, not deduplicated
	writeFile(t, dirB, "relatorio_JFAL_Varonis_2024.pdf")
	require.NoError(t, os.Mkdir(filepath.Join(dirA, "subdir"), 0755))

	s := NewScanner([]string{dirA, dirB}, discardLogger())
	files, changed := s.Scan()

	require.True(t, changed)
	assert.Len(t, files, 3, "subdirectories do not contribute entries")
	for _, f := range files {
		assert.False(t, f.ModTime.IsZero())
		assert.NotEmpty(t, f.SourceFolder)
	}
}

func TestScannerFingerprintShortCircuit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pdf")

	s := NewScanner([]string{dir}, discardLogger())

	_, changed := s.Scan()
	require.True(t, changed)
	first := s.LastScan()

	// Nothing changed on disk: pass is a no-op apart from the timestamp
	files, changed := s.Scan()
	assert.False(t, changed)
	assert.Nil(t, files)
	assert.False(t, s.LastScan().Before(first))

	// A new file republishes the inventory
	writeFile(t, dir, "b.pdf")
	files, changed = s.Scan()
	require.True(t, changed)
	assert.Len(t, files, 2)
}

func TestScannerFolderFailureIsIsolated(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pdf")

	s := NewScanner([]string{filepath.Join(dir, "missing"), dir}, discardLogger())
	files, changed := s.Scan()

	require.True(t, changed)
	assert.Len(t, files, 1, "a failing folder contributes no entries but does not abort the pass")
}

func TestScannerSetFoldersInvalidates(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	writeFile(t, dirA, "a.pdf")
	writeFile(t, dirB, "b.pdf")

	s := NewScanner([]string{dirA}, discardLogger())
	_, changed := s.Scan()
	require.True(t, changed)

	s.SetFolders([]string{dirA, dirB})
	files, changed := s.Scan()
	require.True(t, changed, "changing the folder set must force a republish")
	assert.Len(t, files, 2)
}
