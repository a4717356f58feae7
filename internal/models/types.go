package models

import (
	"strings"
	"time"
)

// Recipient is an organization entry in the registry: who receives
// reports, which services it expects and how it is matched on disk.
type Recipient struct {
	Sigla    string   `json:"sigla" yaml:"sigla"`
	Name     string   `json:"name" yaml:"name"`
	Email    string   `json:"email" yaml:"email"` // semicolon-separated addresses
	Services []string `json:"services" yaml:"services"`
	Notes    string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Key returns the merge/grouping key for the recipient.
func (r Recipient) Key() string {
	return strings.ToLower(strings.TrimSpace(r.Sigla))
}

// Emails splits the semicolon-separated address list.
func (r Recipient) Emails() []string {
	var out []string
	for _, e := range strings.Split(r.Email, ";") {
		e = strings.TrimSpace(e)
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

// FileEntry is one file reported by a watched folder. Matching only
// ever looks at Name; ModTime may be zero when retrieval failed.
type FileEntry struct {
	Name         string    `json:"name"`
	SourceFolder string    `json:"source_folder,omitempty"`
	ModTime      time.Time `json:"mod_time,omitempty"`
}

// MatchedService records one satisfied service for a recipient.
type MatchedService struct {
	Service  string    `json:"service"`
	FileName string    `json:"file_name"`
	ModTime  time.Time `json:"mod_time,omitempty"`
}

// MatchResult is the outcome of one reconciliation pass for a single
// recipient.
type MatchResult struct {
	Matched      []MatchedService `json:"matched"`
	Missing      []string         `json:"missing"`
	Unconfigured bool             `json:"unconfigured"`
}

// Satisfied reports whether every configured service has a file. An
// unconfigured recipient is never satisfied.
func (m MatchResult) Satisfied() bool {
	return !m.Unconfigured && len(m.Matched) > 0 && len(m.Missing) == 0
}

// Equal compares two results structurally, in order.
func (m MatchResult) Equal(o MatchResult) bool {
	if m.Unconfigured != o.Unconfigured ||
		len(m.Matched) != len(o.Matched) ||
		len(m.Missing) != len(o.Missing) {
		return false
	}
	for i := range m.Matched {
		if m.Matched[i] != o.Matched[i] {
			return false
		}
	}
	for i := range m.Missing {
		if m.Missing[i] != o.Missing[i] {
			return false
		}
	}
	return true
}

// RecipientStatus is the lifecycle state of a recipient.
type RecipientStatus string

const (
	StatusPending   RecipientStatus = "pending"
	StatusFileFound RecipientStatus = "file_found"
	StatusReady     RecipientStatus = "ready"
	StatusSent      RecipientStatus = "sent"
)

// EmailContent is what the content generator produces for a recipient.
type EmailContent struct {
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	BodyHTML   string `json:"body_html,omitempty"`
	OverrideTo string `json:"override_to,omitempty"`
	OverrideCc string `json:"override_cc,omitempty"`
}

// RecipientRuntime is the derived, ephemeral state for a recipient.
// It is rebuilt from the registry and the file inventory on every
// reconciliation and never persisted on its own.
type RecipientRuntime struct {
	Status  RecipientStatus `json:"status"`
	Result  MatchResult     `json:"result"`
	Content EmailContent    `json:"content"`
}

// ScanMode selects how automatic scans are triggered.
type ScanMode string

const (
	ScanDisabled ScanMode = "disabled"
	ScanInterval ScanMode = "interval"
	ScanFixed    ScanMode = "fixed"
)

// ScanConfig is the persisted scan scheduling configuration.
type ScanConfig struct {
	Mode            ScanMode `json:"mode" yaml:"mode"`
	IntervalMinutes int      `json:"interval_minutes" yaml:"interval_minutes"`
}

// SendLogEntry records one dispatched email.
type SendLogEntry struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	RecipientSigla string    `json:"recipient_sigla"`
	RecipientEmail string    `json:"recipient_email"`
	Subject        string    `json:"subject"`
}
