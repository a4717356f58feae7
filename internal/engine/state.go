package engine

import "github.com/altafino/report-courier/internal/models"

// nextStatus derives the lifecycle state after a reconciliation pass.
// The progression is pending → file_found → ready → sent; sent is
// terminal for reconciliation and only leaves through an explicit
// reset. Losing satisfaction drops any non-sent recipient back to
// pending.
func nextStatus(current models.RecipientStatus, satisfied bool) models.RecipientStatus {
	if current == models.StatusSent {
		return models.StatusSent
	}
	if !satisfied {
		return models.StatusPending
	}
	switch current {
	case models.StatusReady:
		return models.StatusReady
	case models.StatusFileFound:
		return models.StatusFileFound
	default:
		return models.StatusFileFound
	}
}

// needsContent reports whether the content orchestrator owes this
// recipient a generated subject/body.
func needsContent(rt models.RecipientRuntime) bool {
	switch rt.Status {
	case models.StatusFileFound:
		return true
	case models.StatusReady:
		return rt.Content.Subject == "" && rt.Content.Body == ""
	default:
		return false
	}
}
