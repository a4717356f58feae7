package dispatch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/altafino/report-courier/internal/models"
	"github.com/jhillyerd/enmime"
)

// writeDraft renders the drafted email as an .eml file so an operator
// can open it in a mail client instead of following the mailto link.
func (d *Dispatcher) writeDraft(rec models.Recipient, rt models.RecipientRuntime, to string) (string, error) {
	if err := os.MkdirAll(d.draftsPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create drafts directory: %w", err)
	}

	builder := enmime.Builder().
		From("", d.sender).
		Subject(rt.Content.Subject).
		Text([]byte(rt.Content.Body))

	if rt.Content.BodyHTML != "" {
		builder = builder.HTML([]byte(rt.Content.BodyHTML))
	}
	for _, addr := range splitAddresses(to) {
		builder = builder.To("", addr)
	}
	for _, addr := range splitAddresses(rt.Content.OverrideCc) {
		builder = builder.CC("", addr)
	}

	part, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("failed to build draft message: %w", err)
	}

	name := fmt.Sprintf("%s_%s.eml", cleanFilename(rec.Sigla), time.Now().Format("20060102_150405"))
	path := ensureUniqueFilename(filepath.Join(d.draftsPath, name))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create draft file: %w", err)
	}
	defer f.Close()

	if err := part.Encode(f); err != nil {
		return "", fmt.Errorf("failed to encode draft: %w", err)
	}
	return path, nil
}

// cleanFilename removes potentially dangerous characters from filenames
func cleanFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")

	filename = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '.' || r == '-' || r == '_' || r == ' ' {
			return r
		}
		return '_'
	}, filename)

	return strings.TrimSpace(filename)
}

// ensureUniqueFilename ensures a filename is unique by appending a number if needed
func ensureUniqueFilename(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	basePath := path[:len(path)-len(ext)]

	for i := 1; i < 1000; i++ {
		newPath := fmt.Sprintf("%s_%d%s", basePath, i, ext)
		if _, err := os.Stat(newPath); os.IsNotExist(err) {
			return newPath
		}
	}

	return fmt.Sprintf("%s_%d%s", basePath, time.Now().UnixNano(), ext)
}

func splitAddresses(list string) []string {
	var out []string
	for _, a := range strings.Split(list, ";") {
		a = strings.TrimSpace(a)
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}
