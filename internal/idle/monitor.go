// Package idle implements the idle-logout countdown shared by every
// authenticated page.
//
// A Monitor arms a deadline as soon as it starts, pushes the deadline out by
// the full window on every Touch, and fires its expiry callback exactly once
// when the window elapses without activity. The browser runs the same
// contract as an inline script (see Signals); the Go model is what the server
// uses for its own session backstop and what the tests pin down.
package idle

import (
	"sync"
	"time"
)

// DefaultWindow is the idle period after which a page navigates to logout.
const DefaultWindow = 120 * time.Minute

// State is the lifecycle position of a Monitor.
type State int

const (
	// Idle means the monitor was created but not started.
	Idle State = iota
	// Scheduled means a deadline is armed.
	Scheduled
	// Fired means the deadline passed without activity. Terminal.
	Fired
	// Stopped means the monitor was cancelled before firing. Terminal.
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scheduled:
		return "scheduled"
	case Fired:
		return "fired"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Monitor is a debounced countdown. It is safe for concurrent use.
type Monitor struct {
	mu       sync.Mutex
	clock    Clock
	window   time.Duration
	onExpire func()

	state    State
	deadline time.Time
	timer    Timer
	// gen invalidates callbacks from timers that were replaced or stopped
	// but had already been dispatched.
	gen uint64
}

// NewMonitor returns an unstarted monitor. A nil clock means SystemClock and
// a non-positive window means DefaultWindow.
func NewMonitor(clock Clock, window time.Duration, onExpire func()) *Monitor {
	if clock == nil {
		clock = SystemClock()
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Monitor{
		clock:    clock,
		window:   window,
		onExpire: onExpire,
	}
}

// Start arms the first deadline. Loading the page counts as activity, so
// there is no extra grace period. Calling Start on a running or finished
// monitor does nothing.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Idle {
		return
	}
	m.armLocked()
}

// Touch records activity: the pending expiry is cancelled and a new one is
// scheduled a full window from now. It returns false once the monitor has
// fired or been stopped. Touching an unstarted monitor starts it.
func (m *Monitor) Touch() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case Fired, Stopped:
		return false
	case Scheduled:
		m.timer.Stop()
	}
	m.armLocked()
	return true
}

// Stop cancels the pending expiry without firing it.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Scheduled && m.state != Idle {
		return
	}
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.gen++
	m.state = Stopped
}

// State reports the current lifecycle state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Deadline returns when the monitor will fire, or the zero time if nothing
// is scheduled.
func (m *Monitor) Deadline() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Scheduled {
		return time.Time{}
	}
	return m.deadline
}

// Remaining returns the time left before expiry, or 0 if nothing is scheduled.
func (m *Monitor) Remaining() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Scheduled {
		return 0
	}
	left := m.deadline.Sub(m.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

// Window returns the configured idle period.
func (m *Monitor) Window() time.Duration {
	return m.window
}

func (m *Monitor) armLocked() {
	m.gen++
	gen := m.gen
	m.deadline = m.clock.Now().Add(m.window)
	m.state = Scheduled
	m.timer = m.clock.AfterFunc(m.window, func() { m.expire(gen) })
}

func (m *Monitor) expire(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.state != Scheduled {
		m.mu.Unlock()
		return
	}
	if left := m.deadline.Sub(m.clock.Now()); left > 0 {
		// Timer delivered early; wait out the rest of the deadline.
		m.timer = m.clock.AfterFunc(left, func() { m.expire(gen) })
		m.mu.Unlock()
		return
	}
	m.state = Fired
	m.timer = nil
	callback := m.onExpire
	m.mu.Unlock()

	if callback != nil {
		callback()
	}
}
