package dispatch

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/altafino/report-courier/internal/models"
	"github.com/altafino/report-courier/internal/sendlog"
	"github.com/google/uuid"
)

// Dispatcher performs the send action: it renders the draft, appends
// the send log entry and hands back everything the caller needs to
// transition the recipient to sent. Delivery itself is fire and
// forget, the system only records that the action occurred.
type Dispatcher struct {
	logger     *slog.Logger
	store      sendlog.Storage
	sender     string
	draftsPath string
}

// NewDispatcher creates a dispatcher writing drafts to draftsPath. An
// empty draftsPath disables draft files.
func NewDispatcher(store sendlog.Storage, sender, draftsPath string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		logger:     logger,
		store:      store,
		sender:     sender,
		draftsPath: draftsPath,
	}
}

// Result describes one performed send action.
type Result struct {
	MailtoURL string              `json:"mailto_url"`
	DraftPath string              `json:"draft_path,omitempty"`
	Entry     models.SendLogEntry `json:"entry"`
}

// Send renders the draft for a ready recipient, appends the send log
// entry and returns the result. The log entry is durable before the
// caller transitions the recipient to sent.
func (d *Dispatcher) Send(rec models.Recipient, rt models.RecipientRuntime) (Result, error) {
	if rt.Content.Subject == "" {
		return Result{}, fmt.Errorf("recipient %s has no generated content", rec.Sigla)
	}

	to := rt.Content.OverrideTo
	if to == "" {
		to = rec.Email
	}

	res := Result{
		MailtoURL: MailtoURL(to, rt.Content.OverrideCc, rt.Content.Subject, rt.Content.Body),
	}

	if d.draftsPath != "" {
		path, err := d.writeDraft(rec, rt, to)
		if err != nil {
			// The draft file is a convenience; a failure must not
			// abort the send action itself.
			d.logger.Warn("failed to write draft file",
				"sigla", rec.Sigla,
				"error", err,
			)
		} else {
			res.DraftPath = path
		}
	}

	entry := models.SendLogEntry{
		ID:             uuid.New().String(),
		Timestamp:      time.Now().UTC(),
		RecipientSigla: rec.Sigla,
		RecipientEmail: to,
		Subject:        rt.Content.Subject,
	}
	if err := d.store.Append(entry); err != nil {
		return Result{}, fmt.Errorf("failed to append send log: %w", err)
	}
	res.Entry = entry

	d.logger.Info("send action performed",
		"sigla", rec.Sigla,
		"to", to,
		"subject", rt.Content.Subject,
	)
	return res, nil
}

// MailtoURL builds the mailto link for the drafted email.
func MailtoURL(to, cc, subject, body string) string {
	var b strings.Builder
	b.WriteString("mailto:")
	b.WriteString(escapeMailto(to))
	sep := "?"
	if cc != "" {
		b.WriteString(sep + "cc=" + escapeMailto(cc))
		sep = "&"
	}
	b.WriteString(sep + "subject=" + escapeMailto(subject))
	b.WriteString("&body=" + escapeMailto(body))
	return b.String()
}

// escapeMailto percent-encodes a mailto component. QueryEscape uses
// '+' for spaces, which mail clients do not decode.
func escapeMailto(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
