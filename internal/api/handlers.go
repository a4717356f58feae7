package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/altafino/report-courier/internal/dispatch"
	"github.com/altafino/report-courier/internal/engine"
	"github.com/altafino/report-courier/internal/models"
	"github.com/altafino/report-courier/internal/sendlog"
	"github.com/go-chi/chi/v5"
)

// Handlers exposes the engine over HTTP for operational use: status,
// recipient listing, manual scan, send and reset actions. The visual
// registry UI lives elsewhere; this surface is JSON only.
type Handlers struct {
	engine     *engine.Engine
	dispatcher *dispatch.Dispatcher
	sendLog    sendlog.Storage
	logger     *slog.Logger
}

// NewHandlers creates the API handler set.
func NewHandlers(eng *engine.Engine, dispatcher *dispatch.Dispatcher, sendLog sendlog.Storage, logger *slog.Logger) *Handlers {
	return &Handlers{
		engine:     eng,
		dispatcher: dispatcher,
		sendLog:    sendLog,
		logger:     logger,
	}
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status reports the engine state.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"scanning":    h.engine.Scanning(),
		"last_scan":   h.engine.LastScan(),
		"scan_config": h.engine.ScanConfig(),
		"files":       len(h.engine.Inventory()),
		"now":         time.Now(),
	})
}

// ListRecipients returns every recipient with its runtime state.
func (h *Handlers) ListRecipients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Recipients())
}

// GetRecipient returns one recipient by sigla.
func (h *Handlers) GetRecipient(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.Recipient(chi.URLParam(r, "sigla"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// PutRecipients replaces the recipient registry.
func (h *Handlers) PutRecipients(w http.ResponseWriter, r *http.Request) {
	var recipients []models.Recipient
	if err := json.NewDecoder(r.Body).Decode(&recipients); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.engine.SetRecipients(recipients); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Recipients())
}

// ImportRecipients merges imported records into the registry by sigla.
func (h *Handlers) ImportRecipients(w http.ResponseWriter, r *http.Request) {
	var imported []models.Recipient
	if err := json.NewDecoder(r.Body).Decode(&imported); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.engine.ImportRecipients(imported); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Recipients())
}

// TriggerScan runs a manual scan unless one is already in flight.
func (h *Handlers) TriggerScan(w http.ResponseWriter, r *http.Request) {
	if !h.engine.TryScan() {
		writeError(w, http.StatusConflict, errors.New("scan already in progress"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"last_scan": h.engine.LastScan(),
		"files":     len(h.engine.Inventory()),
	})
}

// UpdateScanConfig replaces the scan configuration.
func (h *Handlers) UpdateScanConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.ScanConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.engine.SetScanConfig(cfg); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// Send performs the send action for a ready recipient: claim it,
// dispatch, append the send log, then lock the recipient in sent
// state. The claim is atomic, so concurrent sends for the same sigla
// produce exactly one dispatch.
func (h *Handlers) Send(w http.ResponseWriter, r *http.Request) {
	sigla := chi.URLParam(r, "sigla")

	view, err := h.engine.ClaimSend(sigla)
	if errors.Is(err, engine.ErrRecipientNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	result, err := h.dispatcher.Send(view.Recipient, view.Runtime)
	if err != nil {
		h.engine.ReleaseSend(sigla)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := h.engine.MarkSent(sigla); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Reset returns a sent recipient to pending.
func (h *Handlers) Reset(w http.ResponseWriter, r *http.Request) {
	sigla := chi.URLParam(r, "sigla")
	if err := h.engine.Reset(sigla); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	view, err := h.engine.Recipient(sigla)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SendLog lists the send log entries.
func (h *Handlers) SendLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.sendLog.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []models.SendLogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
