package draft

import (
	"sync"

	"github.com/tripdesk/tripdesk/internal/idempotency"
	"github.com/tripdesk/tripdesk/internal/model"
)

// Session pairs the draft manager and the submission guard for one open
// form. The guard opens with the session and closes when it is released.
type Session struct {
	Manager *Manager
	Guard   *idempotency.Guard
}

// Sessions tracks the live form sessions the HTTP layer addresses. One
// session exists per (formType, entityID) pair at a time.
type Sessions struct {
	mu      sync.Mutex
	store   *Store
	options func(form model.FormType, entity model.EntityID) Options
	open    map[string]*Session
}

func NewSessions(store *Store, options func(model.FormType, model.EntityID) Options) *Sessions {
	return &Sessions{
		store:   store,
		options: options,
		open:    make(map[string]*Session),
	}
}

// Acquire returns the live session for the pair, creating it if needed.
// initial is only consumed at creation, as the edit-mode snapshot.
func (s *Sessions) Acquire(form model.FormType, entity model.EntityID, initial model.FormPayload) *Session {
	key := s.store.Key(form, entity)

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.open[key]; ok {
		return sess
	}

	sess := &Session{
		Manager: NewManager(s.store, form, entity, initial, s.options(form, entity)),
		Guard:   idempotency.NewGuard(),
	}
	sess.Guard.Open()
	s.open[key] = sess
	return sess
}

// Get returns the live session for the pair without creating one.
func (s *Sessions) Get(form model.FormType, entity model.EntityID) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.open[s.store.Key(form, entity)]
	return sess, ok
}

// Release tears the session down: the manager stops (cancelling any pending
// debounced write), the guard closes, and the pair can be reopened fresh.
func (s *Sessions) Release(form model.FormType, entity model.EntityID) {
	key := s.store.Key(form, entity)

	s.mu.Lock()
	sess, ok := s.open[key]
	delete(s.open, key)
	s.mu.Unlock()

	if !ok {
		return
	}
	sess.Manager.Stop()
	sess.Guard.Close()
}
