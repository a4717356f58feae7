package scan

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/altafino/report-courier/internal/models"
)

const (
	defaultWindowMinutes = 5
	// minAutoSpacing is the global minimum spacing between any two
	// automatic scans, guarding against tick overlap with a slow scan.
	minAutoSpacing = time.Minute
)

// DefaultFixedTimes are the daily clock times used in fixed mode when
// none are configured.
var DefaultFixedTimes = []string{"08:00", "12:00", "17:00"}

// Decider evaluates on every heartbeat whether an automatic scan
// should fire. It keeps the per-window guard state for fixed mode.
type Decider struct {
	fixedTimes []string
	window     time.Duration

	mu       sync.Mutex
	lastFire time.Time
	fired    map[string]struct{}
}

// NewDecider builds a decider with the given fixed daily times
// ("HH:MM") and firing window in minutes. Zero values fall back to the
// deployment defaults.
func NewDecider(fixedTimes []string, windowMinutes int) *Decider {
	if len(fixedTimes) == 0 {
		fixedTimes = DefaultFixedTimes
	}
	if windowMinutes <= 0 {
		windowMinutes = defaultWindowMinutes
	}
	return &Decider{
		fixedTimes: fixedTimes,
		window:     time.Duration(windowMinutes) * time.Minute,
		fired:      make(map[string]struct{}),
	}
}

// ShouldFire decides whether an automatic scan is due at now, given
// the scheduling configuration and the time of the last completed
// scan. It records nothing; the caller confirms that a scan actually
// started via Commit, so a busy engine leaves the window open and the
// next tick retries.
func (d *Decider) ShouldFire(cfg models.ScanConfig, now, lastScan time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.lastFire.IsZero() && now.Sub(d.lastFire) < minAutoSpacing {
		return false
	}

	switch cfg.Mode {
	case models.ScanInterval:
		if cfg.IntervalMinutes <= 0 {
			return false
		}
		return lastScan.IsZero() || now.Sub(lastScan) >= time.Duration(cfg.IntervalMinutes)*time.Minute

	case models.ScanFixed:
		_, open := d.openWindowLocked(now)
		return open

	default:
		// disabled or unknown mode
		return false
	}
}

// Commit records that an automatic scan fired at now, consuming the
// fixed-time window in fixed mode.
func (d *Decider) Commit(cfg models.ScanConfig, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lastFire = now
	if cfg.Mode != models.ScanFixed {
		return
	}
	if key, open := d.openWindowLocked(now); open {
		d.fired[key] = struct{}{}
	}
	d.pruneFiredLocked(now)
}

// openWindowLocked returns the key of an unfired fixed-time window
// containing now. Must be called with the lock held.
func (d *Decider) openWindowLocked(now time.Time) (string, bool) {
	for _, clock := range d.fixedTimes {
		start, ok := atClock(now, clock)
		if !ok {
			continue
		}
		if now.Before(start) || now.Sub(start) >= d.window {
			continue
		}
		key := fmt.Sprintf("%s@%s", now.Format("2006-01-02"), clock)
		if _, done := d.fired[key]; done {
			continue
		}
		return key, true
	}
	return "", false
}

// pruneFiredLocked drops window guards from previous days. Must be
// called with the lock held.
func (d *Decider) pruneFiredLocked(now time.Time) {
	today := now.Format("2006-01-02")
	for key := range d.fired {
		if !strings.HasPrefix(key, today) {
			delete(d.fired, key)
		}
	}
}

// atClock returns now's date at the given "HH:MM" clock time.
func atClock(now time.Time, clock string) (time.Time, bool) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(now.Year(), now.Month(), now.Day(),
		t.Hour(), t.Minute(), 0, 0, now.Location()), true
}
