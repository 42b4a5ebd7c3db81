package highlight

import (
	"sync"
	"time"

	"github.com/marchallab/netview/pkg/errors"
	"github.com/marchallab/netview/pkg/network"
)

// DefaultCooldown is how long hover stays disabled after a click.
const DefaultCooldown = 1500 * time.Millisecond

// Controller applies pointer and menu events to a State and keeps the
// current Result. It is safe for concurrent use; cooldown callbacks may run
// on another goroutine.
type Controller struct {
	model     *network.Model
	scheduler Scheduler
	cooldown  time.Duration
	onChange  func(Result)

	mu      sync.Mutex
	state   State
	current Result
	timer   Timer
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithScheduler sets the scheduler used for the click cooldown.
func WithScheduler(s Scheduler) ControllerOption {
	return func(c *Controller) { c.scheduler = s }
}

// WithCooldown sets how long hover is disabled after a click.
func WithCooldown(d time.Duration) ControllerOption {
	return func(c *Controller) { c.cooldown = d }
}

// WithMode sets the initial mode.
func WithMode(m Mode) ControllerOption {
	return func(c *Controller) { c.state.Mode = m }
}

// WithOnChange registers a callback invoked with every new Result. It is
// called with the controller's lock held and must not call back into it.
func WithOnChange(fn func(Result)) ControllerOption {
	return func(c *Controller) { c.onChange = fn }
}

// NewController returns a controller showing the baseline.
func NewController(m *network.Model, opts ...ControllerOption) *Controller {
	c := &Controller{
		model:     m,
		scheduler: RealScheduler{},
		cooldown:  DefaultCooldown,
		state:     NewState(),
	}
	for _, o := range opts {
		o(c)
	}
	c.current = Baseline(m)
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the current result.
func (c *Controller) Current() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Hover focuses t when hover is enabled. Edge targets only apply in paths
// mode. It reports whether the highlight changed.
func (c *Controller) Hover(t Target) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.MouseoverEnabled {
		return false, nil
	}
	return c.focusLocked(t)
}

// Click focuses t regardless of hover, then disables hover for the cooldown.
// A click during a running cooldown restarts it.
func (c *Controller) Click(t Target) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed, err := c.focusLocked(t)
	if err != nil {
		return false, err
	}

	if c.timer != nil {
		c.timer.Stop()
	}
	c.state.MouseoverEnabled = false
	var timer Timer
	timer = c.scheduler.AfterFunc(c.cooldown, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.timer == timer {
			c.state.MouseoverEnabled = true
			c.timer = nil
		}
	})
	c.timer = timer
	return changed, nil
}

// Select focuses t from a menu. Selecting an edge switches to paths mode.
// Hover gating does not apply.
func (c *Controller) Select(t Target) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.Kind == Edge {
		c.state.Mode = Paths
	}
	return c.focusLocked(t)
}

// Clear drops the focus and restores the baseline.
func (c *Controller) Clear() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Focus = Target{}
	c.setLocked(Baseline(c.model))
	return c.current
}

// SetMode switches the mode and recomputes a focused node under it.
func (c *Controller) SetMode(m Mode) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Mode = m
	if c.state.Focus.Kind == Node {
		c.setLocked(Compute(c.model, c.state))
	}
	return c.current
}

// GeneSet highlights gene set id and drops any focus.
func (c *Controller) GeneSet(id string) (Result, error) {
	r, err := GeneSet(c.model, id)
	if err != nil {
		return Result{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Focus = Target{}
	c.setLocked(r)
	return r, nil
}

// Sample highlights condition sample and drops any focus.
func (c *Controller) Sample(sample string) (Result, error) {
	r, err := Sample(c.model, sample)
	if err != nil {
		return Result{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Focus = Target{}
	c.setLocked(r)
	return r, nil
}

// Close cancels a pending cooldown.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) focusLocked(t Target) (bool, error) {
	switch t.Kind {
	case None:
		c.state.Focus = Target{}
		c.setLocked(Baseline(c.model))
		return true, nil
	case Node:
		if _, ok := c.model.NodeByID(t.ID); !ok {
			return false, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", t.ID)
		}
	case Edge:
		if _, ok := c.model.LinkByKey(t.ID); !ok {
			return false, errors.New(errors.ErrCodeEdgeNotFound, "edge %q not found", t.ID)
		}
		if c.state.Mode != Paths {
			return false, nil
		}
	}
	c.state.Focus = t
	c.setLocked(Compute(c.model, c.state))
	return true, nil
}

func (c *Controller) setLocked(r Result) {
	c.current = r
	if c.onChange != nil {
		c.onChange(r)
	}
}
