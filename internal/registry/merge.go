package registry

import (
	"strings"

	"github.com/altafino/report-courier/internal/models"
)

// Merge folds imported records into the existing registry. The
// lower-cased trimmed sigla is the merge key: overlapping records have
// their email addresses and services unioned, never replaced, and
// existing recipients are never dropped. New records are appended in
// import order.
func Merge(existing, imported []models.Recipient) []models.Recipient {
	merged := append([]models.Recipient(nil), existing...)
	index := make(map[string]int, len(merged))
	for i, rec := range merged {
		index[rec.Key()] = i
	}

	for _, imp := range imported {
		key := imp.Key()
		if key == "" {
			continue
		}

		i, ok := index[key]
		if !ok {
			merged = append(merged, imp)
			index[key] = len(merged) - 1
			continue
		}

		cur := merged[i]
		cur.Email = unionEmails(cur.Email, imp.Email)
		cur.Services = unionStrings(cur.Services, imp.Services)
		if cur.Name == "" {
			cur.Name = imp.Name
		}
		if cur.Notes == "" {
			cur.Notes = imp.Notes
		}
		merged[i] = cur
	}

	return merged
}

func unionEmails(a, b string) string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range []string{a, b} {
		for _, e := range strings.Split(list, ";") {
			e = strings.TrimSpace(e)
			if e == "" {
				continue
			}
			k := strings.ToLower(e)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, e)
		}
	}
	return strings.Join(out, "; ")
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			k := strings.ToLower(s)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
