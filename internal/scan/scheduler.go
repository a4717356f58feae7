package scan

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/altafino/report-courier/internal/models"
	"github.com/altafino/report-courier/internal/types"
	"github.com/go-co-op/gocron"
)

const defaultTickSeconds = 10

// Trigger is what the scheduler drives on each heartbeat. The engine
// implements it; TryScan must refuse to start while a scan is already
// in flight.
type Trigger interface {
	ScanConfig() models.ScanConfig
	LastScan() time.Time
	TryScan() bool
}

// Scheduler runs a fixed-cadence heartbeat and lets the Decider choose
// when an automatic scan actually fires.
type Scheduler struct {
	scheduler *gocron.Scheduler
	logger    *slog.Logger
	trigger   Trigger

	mu      sync.Mutex
	decider *Decider
	job     *gocron.Job
}

// NewScheduler creates a scheduler instance driving the given trigger.
func NewScheduler(trigger Trigger, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		logger:    logger,
		trigger:   trigger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// UpdateJob (re)creates the heartbeat job from the configuration. The
// scan mode itself is read from the trigger on every tick, so registry
// edits to the scan configuration take effect without rescheduling.
func (s *Scheduler) UpdateJob(cfg *types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.job != nil {
		s.scheduler.RemoveByReference(s.job)
		s.job = nil
	}

	tick := cfg.Scanning.TickSeconds
	if tick <= 0 {
		tick = defaultTickSeconds
	}

	s.decider = NewDecider(cfg.Scanning.FixedTimes, cfg.Scanning.WindowMinutes)

	job, err := s.scheduler.Every(tick).Seconds().Do(s.tick)
	if err != nil {
		return fmt.Errorf("failed to schedule heartbeat: %w", err)
	}
	s.job = job

	s.logger.Info("scan heartbeat scheduled",
		"tick_seconds", tick,
		"fixed_times", cfg.Scanning.FixedTimes,
	)
	return nil
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	decider := s.decider
	s.mu.Unlock()
	if decider == nil {
		return
	}

	cfg := s.trigger.ScanConfig()
	now := time.Now()
	if !decider.ShouldFire(cfg, now, s.trigger.LastScan()) {
		return
	}

	if !s.trigger.TryScan() {
		// The window is not consumed; the next tick retries once the
		// in-flight scan finishes.
		s.logger.Debug("automatic scan due, previous scan still running")
		return
	}
	decider.Commit(cfg, now)

	s.logger.Info("automatic scan triggered", "mode", cfg.Mode)
}
