package engine

import (
	"github.com/altafino/report-courier/internal/match"
	"github.com/altafino/report-courier/internal/models"
)

// evaluate computes the match result for one recipient against the
// current file inventory.
func evaluate(rules *match.Rules, rec models.Recipient, files []models.FileEntry) models.MatchResult {
	if rules.IsContractVariant(rec) {
		svc := rules.ContractService()
		if f, ok := rules.FindContractFile(files); ok {
			return models.MatchResult{
				Matched: []models.MatchedService{{Service: svc, FileName: f.Name, ModTime: f.ModTime}},
			}
		}
		return models.MatchResult{Missing: []string{svc}}
	}

	if len(rec.Services) == 0 {
		// An operator must assign services before matching can
		// succeed; this is a first-class state, not an error.
		return models.MatchResult{Unconfigured: true}
	}

	var result models.MatchResult
	for _, svc := range rec.Services {
		if f, ok := rules.FindServiceFile(rec, svc, files); ok {
			result.Matched = append(result.Matched, models.MatchedService{
				Service:  svc,
				FileName: f.Name,
				ModTime:  f.ModTime,
			})
		} else {
			result.Missing = append(result.Missing, svc)
		}
	}
	return result
}

// reconcilePass evaluates every recipient against the inventory and
// returns the next runtime map plus the keys whose matched/missing
// sets actually changed. Recipients in sent state are frozen; results
// for unchanged recipients are carried over untouched so downstream
// consumers see no churn.
func reconcilePass(
	rules *match.Rules,
	recipients []models.Recipient,
	prev map[string]models.RecipientRuntime,
	files []models.FileEntry,
) (map[string]models.RecipientRuntime, []string) {
	next := make(map[string]models.RecipientRuntime, len(recipients))
	var changed []string

	for _, rec := range recipients {
		key := rec.Key()
		rt, exists := prev[key]
		if !exists {
			rt = models.RecipientRuntime{Status: models.StatusPending}
		}

		if rt.Status == models.StatusSent {
			next[key] = rt
			continue
		}

		result := evaluate(rules, rec, files)
		if exists && result.Equal(rt.Result) {
			next[key] = rt
			continue
		}

		status := nextStatus(rt.Status, result.Satisfied())
		if status == models.StatusPending {
			// Regression discards generated content so the next
			// satisfaction regenerates it.
			rt.Content = models.EmailContent{}
		}
		rt.Status = status
		rt.Result = result
		next[key] = rt
		changed = append(changed, key)
	}

	return next, changed
}
