package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/altafino/report-courier/internal/content"
	"github.com/altafino/report-courier/internal/match"
	"github.com/altafino/report-courier/internal/models"
	"github.com/altafino/report-courier/internal/registry"
	"github.com/altafino/report-courier/internal/scan"
)

// ErrRecipientNotFound is returned for operations on unknown siglas.
var ErrRecipientNotFound = fmt.Errorf("recipient not found")

// ErrRecipientNotReady is returned by ClaimSend when the recipient is
// not in ready state, or another send for it is already in flight.
var ErrRecipientNotReady = fmt.Errorf("recipient is not ready to send")

// RecipientView pairs a registry entry with its derived runtime state.
type RecipientView struct {
	Recipient models.Recipient        `json:"recipient"`
	Runtime   models.RecipientRuntime `json:"runtime"`
}

// Engine owns the published application state: the recipient registry,
// the file inventory and the derived per-recipient runtime. All
// updates replace whole collections under the lock, so readers always
// observe a complete batch, never a partial pass.
type Engine struct {
	logger    *slog.Logger
	rules     *match.Rules
	scanner   *scan.Scanner
	generator content.Generator
	store     *registry.Store

	mu         sync.RWMutex
	recipients []models.Recipient
	runtime    map[string]models.RecipientRuntime
	inventory  []models.FileEntry
	scanCfg    models.ScanConfig
	sending    map[string]struct{}

	scanMu   sync.Mutex
	scanning bool
}

// New creates an engine. Recipients and the scan configuration are
// loaded from the registry store; a load failure means empty state.
func New(rules *match.Rules, scanner *scan.Scanner, generator content.Generator, store *registry.Store, logger *slog.Logger) *Engine {
	recipients, scanCfg := store.Load()
	return &Engine{
		logger:     logger,
		rules:      rules,
		scanner:    scanner,
		generator:  generator,
		store:      store,
		recipients: recipients,
		runtime:    make(map[string]models.RecipientRuntime),
		scanCfg:    scanCfg,
		sending:    make(map[string]struct{}),
	}
}

// ScanConfig returns the current scan configuration.
func (e *Engine) ScanConfig() models.ScanConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scanCfg
}

// SetScanConfig replaces and persists the scan configuration.
func (e *Engine) SetScanConfig(cfg models.ScanConfig) error {
	e.mu.Lock()
	e.scanCfg = cfg
	recipients := e.recipients
	e.mu.Unlock()

	if err := e.store.Save(recipients, cfg); err != nil {
		return fmt.Errorf("failed to persist scan config: %w", err)
	}
	return nil
}

// LastScan returns the time of the most recent scan pass.
func (e *Engine) LastScan() time.Time {
	return e.scanner.LastScan()
}

// Scanning reports whether a scan is currently in flight.
func (e *Engine) Scanning() bool {
	e.scanMu.Lock()
	defer e.scanMu.Unlock()
	return e.scanning
}

// TryScan runs one scan pass unless one is already in flight. Scans
// are not reentrant; an overlapping trigger simply returns false.
func (e *Engine) TryScan() bool {
	e.scanMu.Lock()
	if e.scanning {
		e.scanMu.Unlock()
		return false
	}
	e.scanning = true
	e.scanMu.Unlock()

	defer func() {
		e.scanMu.Lock()
		e.scanning = false
		e.scanMu.Unlock()
	}()

	files, changed := e.scanner.Scan()
	if !changed {
		return true
	}

	e.mu.Lock()
	e.inventory = files
	e.mu.Unlock()

	e.reconcile(context.Background())
	return true
}

// Inventory returns the published file inventory.
func (e *Engine) Inventory() []models.FileEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]models.FileEntry(nil), e.inventory...)
}

// Recipients returns every recipient with its runtime state, in
// registry order.
func (e *Engine) Recipients() []RecipientView {
	e.mu.RLock()
	defer e.mu.RUnlock()

	views := make([]RecipientView, 0, len(e.recipients))
	for _, rec := range e.recipients {
		views = append(views, RecipientView{
			Recipient: rec,
			Runtime:   e.runtimeFor(rec.Key()),
		})
	}
	return views
}

// Recipient looks up one recipient by sigla.
func (e *Engine) Recipient(sigla string) (RecipientView, error) {
	key := models.Recipient{Sigla: sigla}.Key()

	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, rec := range e.recipients {
		if rec.Key() == key {
			return RecipientView{Recipient: rec, Runtime: e.runtimeFor(key)}, nil
		}
	}
	return RecipientView{}, ErrRecipientNotFound
}

// runtimeFor must be called with the lock held.
func (e *Engine) runtimeFor(key string) models.RecipientRuntime {
	if rt, ok := e.runtime[key]; ok {
		return rt
	}
	return models.RecipientRuntime{Status: models.StatusPending}
}

// SetRecipients replaces and persists the registry, then reconciles
// against the current inventory.
func (e *Engine) SetRecipients(recipients []models.Recipient) error {
	e.mu.Lock()
	e.recipients = append([]models.Recipient(nil), recipients...)
	scanCfg := e.scanCfg
	e.mu.Unlock()

	if err := e.store.Save(recipients, scanCfg); err != nil {
		return fmt.Errorf("failed to persist registry: %w", err)
	}

	e.reconcile(context.Background())
	return nil
}

// ImportRecipients merges imported records into the registry by sigla,
// unioning emails and services, then persists and reconciles.
func (e *Engine) ImportRecipients(imported []models.Recipient) error {
	e.mu.RLock()
	merged := registry.Merge(e.recipients, imported)
	e.mu.RUnlock()
	return e.SetRecipients(merged)
}

// ClaimSend atomically claims a ready recipient for the send action.
// At most one claim per recipient can be outstanding; concurrent send
// attempts past the first get ErrRecipientNotReady. The caller must
// finish with MarkSent or back out with ReleaseSend.
func (e *Engine) ClaimSend(sigla string) (RecipientView, error) {
	key := models.Recipient{Sigla: sigla}.Key()

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, rec := range e.recipients {
		if rec.Key() != key {
			continue
		}
		rt := e.runtimeFor(key)
		if rt.Status != models.StatusReady {
			return RecipientView{}, ErrRecipientNotReady
		}
		if _, inFlight := e.sending[key]; inFlight {
			return RecipientView{}, ErrRecipientNotReady
		}
		e.sending[key] = struct{}{}
		return RecipientView{Recipient: rec, Runtime: rt}, nil
	}
	return RecipientView{}, ErrRecipientNotFound
}

// ReleaseSend backs out of a claim after a failed dispatch, leaving
// the recipient claimable again.
func (e *Engine) ReleaseSend(sigla string) {
	key := models.Recipient{Sigla: sigla}.Key()

	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sending, key)
}

// MarkSent locks the recipient in sent state; reconciliation no longer
// touches it until an explicit reset.
func (e *Engine) MarkSent(sigla string) error {
	key := models.Recipient{Sigla: sigla}.Key()

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.hasRecipientLocked(key) {
		return ErrRecipientNotFound
	}
	delete(e.sending, key)
	rt := e.runtimeFor(key)
	rt.Status = models.StatusSent
	e.runtime[key] = rt
	return nil
}

// Reset returns a sent recipient to pending, discarding the generated
// content so the next reconciliation regenerates it.
func (e *Engine) Reset(sigla string) error {
	key := models.Recipient{Sigla: sigla}.Key()

	e.mu.Lock()
	if !e.hasRecipientLocked(key) {
		e.mu.Unlock()
		return ErrRecipientNotFound
	}
	delete(e.sending, key)
	e.runtime[key] = models.RecipientRuntime{Status: models.StatusPending}
	e.mu.Unlock()

	e.reconcile(context.Background())
	return nil
}

// hasRecipientLocked must be called with the lock held.
func (e *Engine) hasRecipientLocked(key string) bool {
	for _, rec := range e.recipients {
		if rec.Key() == key {
			return true
		}
	}
	return false
}

// reconcile runs one reconciliation pass and the content orchestrator.
// The pass works on a copy of the runtime map; the publish re-checks
// the live state so a send that landed while the pass was running is
// never rolled back.
func (e *Engine) reconcile(ctx context.Context) {
	e.mu.Lock()
	recipients := e.recipients
	prev := make(map[string]models.RecipientRuntime, len(e.runtime))
	for key, rt := range e.runtime {
		prev[key] = rt
	}
	files := e.inventory
	e.mu.Unlock()

	next, changed := reconcilePass(e.rules, recipients, prev, files)
	if len(changed) > 0 {
		e.logger.Debug("reconciliation updated recipients", "changed", len(changed))
	}

	e.mu.Lock()
	for key, rt := range next {
		if cur, ok := e.runtime[key]; ok && cur.Status == models.StatusSent && rt.Status != models.StatusSent {
			next[key] = cur
		}
	}
	e.runtime = next
	e.mu.Unlock()

	e.generateContent(ctx, recipients, next)
}

// generateContent calls the content generator for every recipient that
// owes content, concurrently, and publishes the merged results as one
// batch once all calls settle. A slow or failed call for one recipient
// never blocks the rest; the generator contract guarantees usable
// content back for each.
func (e *Engine) generateContent(ctx context.Context, recipients []models.Recipient, runtime map[string]models.RecipientRuntime) {
	type job struct {
		key string
		req content.Request
	}

	var jobs []job
	for _, rec := range recipients {
		key := rec.Key()
		rt, ok := runtime[key]
		if !ok || !needsContent(rt) {
			continue
		}

		primary := ""
		if len(rt.Result.Matched) > 0 {
			primary = rt.Result.Matched[0].FileName
		}
		jobs = append(jobs, job{
			key: key,
			req: content.Request{
				Name:        rec.Name,
				Sigla:       rec.Sigla,
				PrimaryFile: primary,
				Services:    rec.Services,
			},
		})
	}
	if len(jobs) == 0 {
		return
	}

	results := make([]models.EmailContent, len(jobs))
	var wg sync.WaitGroup
	for i, j := range jobs {
		wg.Add(1)
		go func(i int, j job) {
			defer wg.Done()
			results[i] = e.generator.Generate(ctx, j.req)
		}(i, j)
	}
	wg.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()
	for i, j := range jobs {
		rt, ok := e.runtime[j.key]
		if !ok || !needsContent(rt) {
			// The recipient regressed or was sent while the call was
			// outstanding; drop the stale content.
			continue
		}
		rt.Content = results[i]
		rt.Status = models.StatusReady
		e.runtime[j.key] = rt
	}

	e.logger.Info("content generated", "recipients", len(jobs))
}
