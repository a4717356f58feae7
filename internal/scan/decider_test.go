package scan

import (
	"testing"
	"time"

	"github.com/altafino/report-courier/internal/models"
)

func clock(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local)
	if err != nil {
		t.Fatalf("bad clock value %q: %v", value, err)
	}
	return parsed
}

func TestDeciderDisabled(t *testing.T) {
	d := NewDecider(nil, 5)
	cfg := models.ScanConfig{Mode: models.ScanDisabled}
	if d.ShouldFire(cfg, clock(t, "2025-03-10 08:02"), time.Time{}) {
		t.Error("disabled mode must never fire")
	}
}

func TestDeciderInterval(t *testing.T) {
	d := NewDecider(nil, 5)
	cfg := models.ScanConfig{Mode: models.ScanInterval, IntervalMinutes: 30}

	now := clock(t, "2025-03-10 09:00")
	if !d.ShouldFire(cfg, now, time.Time{}) {
		t.Error("interval mode with no previous scan must fire")
	}

	d = NewDecider(nil, 5)
	if d.ShouldFire(cfg, now, now.Add(-10*time.Minute)) {
		t.Error("fired before the interval elapsed")
	}
	if !d.ShouldFire(cfg, now, now.Add(-31*time.Minute)) {
		t.Error("did not fire after the interval elapsed")
	}
}

func TestDeciderIntervalZeroNeverFires(t *testing.T) {
	d := NewDecider(nil, 5)
	cfg := models.ScanConfig{Mode: models.ScanInterval, IntervalMinutes: 0}
	if d.ShouldFire(cfg, clock(t, "2025-03-10 09:00"), time.Time{}) {
		t.Error("interval mode without an interval must not fire")
	}
}

// fireAt runs the decision-then-commit cycle the scheduler performs
// when a scan actually starts.
func fireAt(t *testing.T, d *Decider, cfg models.ScanConfig, now time.Time) bool {
	t.Helper()
	if !d.ShouldFire(cfg, now, time.Time{}) {
		return false
	}
	d.Commit(cfg, now)
	return true
}

func TestDeciderFixedWindow(t *testing.T) {
	d := NewDecider([]string{"08:00", "12:00", "17:00"}, 5)
	cfg := models.ScanConfig{Mode: models.ScanFixed}

	// Before the window: no fire
	if fireAt(t, d, cfg, clock(t, "2025-03-10 07:59")) {
		t.Error("fired before the fixed time")
	}
	// Inside the window: exactly one fire
	if !fireAt(t, d, cfg, clock(t, "2025-03-10 08:02")) {
		t.Error("did not fire inside the window")
	}
	// Repeat inside the same window: guarded
	if fireAt(t, d, cfg, clock(t, "2025-03-10 08:04")) {
		t.Error("re-fired inside the same window")
	}
	// After the window closes: no fire
	if fireAt(t, d, cfg, clock(t, "2025-03-10 08:06")) {
		t.Error("fired after the window closed")
	}
	// Next fixed time the same day fires again
	if !fireAt(t, d, cfg, clock(t, "2025-03-10 12:01")) {
		t.Error("did not fire at the next fixed time")
	}
	// Same window on the next day fires again
	if !fireAt(t, d, cfg, clock(t, "2025-03-11 08:02")) {
		t.Error("did not fire on the next day")
	}
}

func TestDeciderFixedWindowRetriesUntilCommitted(t *testing.T) {
	d := NewDecider([]string{"08:00"}, 5)
	cfg := models.ScanConfig{Mode: models.ScanFixed}

	// The engine is busy: the decision fires but nothing is committed,
	// so later ticks in the same window keep retrying.
	if !d.ShouldFire(cfg, clock(t, "2025-03-10 08:01"), time.Time{}) {
		t.Fatal("first tick inside the window must fire")
	}
	if !d.ShouldFire(cfg, clock(t, "2025-03-10 08:02"), time.Time{}) {
		t.Error("uncommitted window must stay open for the next tick")
	}

	// The scan finally starts; the window is consumed.
	d.Commit(cfg, clock(t, "2025-03-10 08:02"))
	if d.ShouldFire(cfg, clock(t, "2025-03-10 08:04"), time.Time{}) {
		t.Error("committed window must not fire again")
	}
}

func TestDeciderFixedWindowGuardPruned(t *testing.T) {
	d := NewDecider([]string{"08:00", "12:00"}, 5)
	cfg := models.ScanConfig{Mode: models.ScanFixed}

	for day := 10; day <= 12; day++ {
		now := time.Date(2025, 3, day, 8, 2, 0, 0, time.Local)
		if !fireAt(t, d, cfg, now) {
			t.Fatalf("day %d did not fire", day)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.fired) != 1 {
		t.Errorf("window guards from previous days not pruned, got %d entries", len(d.fired))
	}
}

func TestDeciderMinimumSpacing(t *testing.T) {
	d := NewDecider([]string{"08:00", "08:00"}, 5)
	cfg := models.ScanConfig{Mode: models.ScanInterval, IntervalMinutes: 1}

	now := clock(t, "2025-03-10 08:00")
	if !fireAt(t, d, cfg, now) {
		t.Fatal("first fire expected")
	}
	// Under a minute later: the global spacing guard holds even though
	// the interval condition is satisfied again.
	if fireAt(t, d, cfg, now.Add(30*time.Second)) {
		t.Error("fired again within the minimum spacing")
	}
	if !fireAt(t, d, cfg, now.Add(2*time.Minute)) {
		t.Error("did not fire after the spacing elapsed")
	}
}
