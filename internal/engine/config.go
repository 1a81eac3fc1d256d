package engine

import (
	"fmt"

	"github.com/MTorresVidal/InboxOverload/server/internal/domain/rules"
)

// Config holds every tunable of the simulation. All durations are simulated
// milliseconds; the scheduler decides how they map to real time.
type Config struct {
	SessionDurationMs int64 // Hard session cap (default 5 minutes)
	ClockTickMs       int64 // Session clock and focus decay granularity

	EmailIntervalMs int64 // Initial generation cadence; ratchets down, never up
	BurstCount      int   // Messages front-loaded at session start
	BurstStaggerMs  int64

	DrainGraceMs  int64 // Grace before an uncompleted critical starts draining
	DrainPeriodMs int64

	AlertPeriodMs       int64 // How often a priority alert may be raised
	AlertTickMs         int64
	AlertCountdownTicks int // Countdown length in alert ticks (2.0s at 100ms)

	AgentPeriodMs    int64 // Autopilot decision cadence
	AgentWorkDelayMs int64 // Delay before the autopilot finishes "working" a message

	PromptMinProcessed int     // Opt-in prompt needs processed > this...
	PromptFocusBelow   float64 // ...and focus below this, simultaneously

	NoticeScoreMs   int64 // Expiry windows for transient notices
	NoticeMistakeMs int64
	NoticeArrivalMs int64
}

// DefaultConfig returns the canonical game tuning.
func DefaultConfig() Config {
	return Config{
		SessionDurationMs:   300_000,
		ClockTickMs:         100,
		EmailIntervalMs:     rules.EmailIntervalStartMs,
		BurstCount:          5,
		BurstStaggerMs:      800,
		DrainGraceMs:        10_000,
		DrainPeriodMs:       1_000,
		AlertPeriodMs:       8_000,
		AlertTickMs:         100,
		AlertCountdownTicks: 20,
		AgentPeriodMs:       3_000,
		AgentWorkDelayMs:    2_000,
		PromptMinProcessed:  8,
		PromptFocusBelow:    40,
		NoticeScoreMs:       1_000,
		NoticeMistakeMs:     3_000,
		NoticeArrivalMs:     4_000,
	}
}

// Validate rejects configurations that would make the simulation degenerate.
// This is the only fatal error path in the engine; everything past
// construction is a benign no-op.
func (c Config) Validate() error {
	if c.SessionDurationMs <= 0 {
		return fmt.Errorf("session duration must be positive, got %dms", c.SessionDurationMs)
	}
	if c.ClockTickMs <= 0 {
		return fmt.Errorf("clock tick must be positive, got %dms", c.ClockTickMs)
	}
	if c.SessionDurationMs < c.ClockTickMs {
		return fmt.Errorf("session duration %dms is shorter than one clock tick (%dms)", c.SessionDurationMs, c.ClockTickMs)
	}
	if c.EmailIntervalMs < rules.EmailIntervalFloorMs {
		return fmt.Errorf("email interval %dms is below the %dms floor", c.EmailIntervalMs, rules.EmailIntervalFloorMs)
	}
	if c.BurstCount < 0 || c.BurstStaggerMs < 0 {
		return fmt.Errorf("burst settings must be non-negative")
	}
	if c.DrainGraceMs <= 0 || c.DrainPeriodMs <= 0 {
		return fmt.Errorf("drain timings must be positive")
	}
	if c.AlertPeriodMs <= 0 || c.AlertTickMs <= 0 || c.AlertCountdownTicks <= 0 {
		return fmt.Errorf("alert timings must be positive")
	}
	if c.AgentPeriodMs <= 0 || c.AgentWorkDelayMs < 0 {
		return fmt.Errorf("autopilot timings must be positive")
	}
	if c.PromptFocusBelow < 0 || c.PromptFocusBelow > rules.FocusMax {
		return fmt.Errorf("prompt focus threshold %.1f outside [0,%v]", c.PromptFocusBelow, rules.FocusMax)
	}
	return nil
}
