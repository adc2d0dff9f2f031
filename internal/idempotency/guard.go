package idempotency

import (
	"net/http"
	"sync"
)

// HeaderKey is the request header the guard attaches its key under.
const HeaderKey = "Idempotency-Key"

// Guard wraps one submission surface (a create/edit modal, a portal form).
// Opening the surface mints one key that is reused across every submit
// attempt until the surface closes; a latch rejects double submits while a
// request is in flight.
type Guard struct {
	mu         sync.Mutex
	open       bool
	submitting bool
	key        string
}

func NewGuard() *Guard {
	return &Guard{}
}

// Open transitions closed->open and generates the cycle's key. Opening an
// already-open guard keeps the existing key.
func (g *Guard) Open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open {
		return
	}
	g.open = true
	g.key = NewKey()
}

// Close discards the held key and releases the latch. The next Open mints a
// fresh key.
func (g *Guard) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = false
	g.submitting = false
	g.key = ""
}

func (g *Guard) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

// Key returns the key of the current open cycle, or "" when closed.
func (g *Guard) Key() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.key
}

// BeginSubmit sets the in-flight latch and returns the cycle's key. It
// reports false when the surface is closed or a submission is already in
// flight (a double-click must not issue a second request or a second key).
func (g *Guard) BeginSubmit() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.open || g.submitting {
		return "", false
	}
	g.submitting = true
	return g.key, true
}

// EndSubmit releases the latch. The key survives for retries until Close.
func (g *Guard) EndSubmit() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.submitting = false
}

// Attach sets the current key on outgoing request metadata. It reports false
// when the guard holds no key.
func (g *Guard) Attach(h http.Header) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.key == "" {
		return false
	}
	h.Set(HeaderKey, g.key)
	return true
}
