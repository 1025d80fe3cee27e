package harness

import (
	"fmt"
	"log/slog"
	"time"
)

// Mode selects which column-drawing path the harness dispatches to.
type Mode int

const (
	// ModeCompiled dispatches to the generated machine-code loop.
	ModeCompiled Mode = iota
	// ModeReference dispatches to the pure-Go loop.
	ModeReference
)

// Label returns the mode tag used in benchmark records.
func (m Mode) Label() string {
	if m == ModeCompiled {
		return "JIT"
	}

	return "BRANCH"
}

func (m Mode) String() string {
	if m == ModeCompiled {
		return "jit"
	}

	return "branch"
}

// ParseMode parses a mode name as written in config files and flags.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "jit", "compiled":
		return ModeCompiled, nil
	case "branch", "reference":
		return ModeReference, nil
	}

	return 0, fmt.Errorf("unknown mode %q", s)
}

// Controller tracks the active mode and flips it, either on demand or on a
// timer. The timer is evaluated once per frame, at frame start, so a frame
// never changes mode mid-draw.
type Controller struct {
	mode       Mode
	autoSwitch bool
	interval   time.Duration
	lastSwitch time.Time
	now        func() time.Time
	logger     *slog.Logger
}

// NewController creates a Controller starting in initial mode. interval is
// the auto-switch period; auto-switching starts disabled.
func NewController(initial Mode, interval time.Duration, logger *slog.Logger) *Controller {
	c := &Controller{
		mode:     initial,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
	c.lastSwitch = c.now()

	return c
}

// Mode returns the currently active mode.
func (c *Controller) Mode() Mode { return c.mode }

// Toggle flips the active mode and restarts the auto-switch timer.
func (c *Controller) Toggle() Mode {
	if c.mode == ModeCompiled {
		c.mode = ModeReference
	} else {
		c.mode = ModeCompiled
	}

	c.lastSwitch = c.now()

	c.logger.Info("mode switched",
		slog.String("mode", c.mode.Label()),
	)

	return c.mode
}

// SetAutoSwitch enables or disables timed mode switching. Enabling restarts
// the timer so the first switch happens a full interval later.
func (c *Controller) SetAutoSwitch(on bool) {
	if on && !c.autoSwitch {
		c.lastSwitch = c.now()
	}

	c.autoSwitch = on
}

// AutoSwitch reports whether timed switching is enabled.
func (c *Controller) AutoSwitch() bool { return c.autoSwitch }

// SinceSwitch returns the time elapsed since the last mode change.
func (c *Controller) SinceSwitch() time.Duration {
	return c.now().Sub(c.lastSwitch)
}

// tick evaluates the auto-switch timer. Called once per frame from
// Harness.FrameStart.
func (c *Controller) tick() {
	if !c.autoSwitch {
		return
	}

	if c.now().Sub(c.lastSwitch) >= c.interval {
		c.Toggle()
	}
}
