// Package session tracks the server side of a login: which session ids have
// been revoked, and a backstop that revokes sessions that stop making
// requests altogether.
//
// The browser's idle-logout script is the primary mechanism and never talks
// to the server on activity. The backstop window is therefore configured
// well above the browser window; it only catches tabs that were closed or
// scripts that never ran.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"auction-house/internal/idle"
)

// DefaultIdleTimeout is the server backstop for sessions with no requests.
// Browser activity that makes no request does not reach the registry, so a
// user who stays busy on one page for longer than this is still signed out.
const DefaultIdleTimeout = 4 * time.Hour

type entry struct {
	monitor   *idle.Monitor
	expiresAt time.Time
}

// Registry is safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	clock    idle.Clock
	timeout  time.Duration
	sessions map[string]*entry
	// revoked maps a session id to the time its token would have expired
	// anyway; after that the entry is useless and is purged.
	revoked  map[string]time.Time
	onExpire func(sid string)
}

// NewRegistry returns an empty Registry. onExpire, if set, is called after a
// session is revoked for inactivity.
func NewRegistry(clock idle.Clock, timeout time.Duration, onExpire func(sid string)) *Registry {
	if clock == nil {
		clock = idle.SystemClock()
	}
	if timeout <= 0 {
		timeout = DefaultIdleTimeout
	}
	return &Registry{
		clock:    clock,
		timeout:  timeout,
		sessions: make(map[string]*entry),
		revoked:  make(map[string]time.Time),
		onExpire: onExpire,
	}
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// Touch records a request for sid, whose token expires at expiresAt. It
// returns false when the session has been revoked. A session id the
// registry has not seen, e.g. after a restart, is adopted.
func (r *Registry) Touch(sid string, expiresAt time.Time) bool {
	if sid == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.revoked[sid]; ok {
		return false
	}
	if e, ok := r.sessions[sid]; ok {
		if e.monitor.Touch() {
			return true
		}
		// Fired between the map lookup and here; the expiry callback will
		// record the revocation.
		return false
	}

	e := &entry{expiresAt: expiresAt}
	e.monitor = idle.NewMonitor(r.clock, r.timeout, func() { r.expire(sid) })
	r.sessions[sid] = e
	e.monitor.Start()
	logSessionEvent("SESSION_TRACKED", sid, fmt.Sprintf("backstop=%v", r.timeout))
	return true
}

// Revoke ends sid. until is when its token expires; a zero until keeps the
// revocation for one backstop window.
func (r *Registry) Revoke(sid string, until time.Time) {
	if sid == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revokeLocked(sid, until)
	logSessionEvent("SESSION_REVOKED", sid, "reason=logout")
}

// IsRevoked reports whether sid was revoked.
func (r *Registry) IsRevoked(sid string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[sid]
	return ok
}

// Active returns the number of tracked, unrevoked sessions.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Purge forgets revocations whose token has expired and returns how many
// were removed.
func (r *Registry) Purge() int {
	now := r.clock.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for sid, until := range r.revoked {
		if !now.Before(until) {
			delete(r.revoked, sid)
			n++
		}
	}
	return n
}

// StartPurge runs Purge every interval until ctx is cancelled.
func (r *Registry) StartPurge(ctx context.Context, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Purge()
			}
		}
	}()
}

func (r *Registry) revokeLocked(sid string, until time.Time) {
	if e, ok := r.sessions[sid]; ok {
		e.monitor.Stop()
		delete(r.sessions, sid)
		if until.IsZero() {
			until = e.expiresAt
		}
	}
	if until.IsZero() {
		until = r.clock.Now().Add(r.timeout)
	}
	r.revoked[sid] = until
}

func (r *Registry) expire(sid string) {
	r.mu.Lock()
	e, ok := r.sessions[sid]
	if !ok {
		r.mu.Unlock()
		return
	}
	r.revokeLocked(sid, e.expiresAt)
	callback := r.onExpire
	r.mu.Unlock()

	logSessionEvent("SESSION_IDLE_EXPIRED", sid, fmt.Sprintf("idle=%v", r.timeout))
	if callback != nil {
		callback(sid)
	}
}

func logSessionEvent(event, sid, details string) {
	if len(sid) > 8 {
		sid = sid[:8]
	}
	log.Printf("%s session=%s %s", event, sid, details)
}
