package draft

import (
	"sync"
	"time"

	"github.com/tripdesk/tripdesk/internal/model"
)

// Options configures a Manager for one form session.
type Options struct {
	// Enabled turns draft persistence off entirely when false.
	Enabled bool
	// SaveDelay is the trailing debounce window. Zero means DefaultSaveDelay.
	SaveDelay time.Duration
	// TTL is how long a saved draft stays loadable. Zero means DefaultTTL.
	TTL time.Duration
	// ContentFields lists the field names that count as meaningful content.
	// Empty means every field counts.
	ContentFields []string
	// LeaveGuard is acquired while the form is dirty. Nil means no guard.
	LeaveGuard LeaveGuard
	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Manager is the per-form-session draft controller. One manager owns one
// (formType, entityID) pair for the lifetime of an open form; Stop must be
// called when the session ends so no debounced write lands afterwards.
type Manager struct {
	store  *Store
	form   model.FormType
	entity model.EntityID
	key    string

	// initial is the snapshot dirty-checks compare against in edit mode.
	// Nil means create mode.
	initial model.FormPayload

	enabled       bool
	saveDelay     time.Duration
	ttl           time.Duration
	contentFields []string
	leaveGuard    LeaveGuard
	now           func() time.Time

	mu       sync.Mutex
	timer    *time.Timer
	seq      uint64
	pending  model.FormPayload
	stopped  bool
	dirty    bool
	restored bool
	age      time.Duration
}

func NewManager(store *Store, form model.FormType, entity model.EntityID, initial model.FormPayload, opts Options) *Manager {
	m := &Manager{
		store:         store,
		form:          form,
		entity:        entity,
		key:           store.Key(form, entity),
		initial:       initial.Clone(),
		enabled:       opts.Enabled,
		saveDelay:     opts.SaveDelay,
		ttl:           opts.TTL,
		contentFields: opts.ContentFields,
		leaveGuard:    opts.LeaveGuard,
		now:           opts.Clock,
	}
	if m.saveDelay <= 0 {
		m.saveDelay = DefaultSaveDelay
	}
	if m.ttl <= 0 {
		m.ttl = DefaultTTL
	}
	if m.leaveGuard == nil {
		m.leaveGuard = NoopLeaveGuard{}
	}
	if m.now == nil {
		m.now = time.Now
	}

	// Opening a form is the natural moment to clean the whole namespace,
	// not just this session's key.
	if m.enabled {
		store.Sweep()
	}
	return m
}

// Load fetches this session's draft. It returns nil when drafts are
// disabled, absent, expired or unreadable; an expired record is deleted as a
// side effect of being observed. On a hit it marks the session restored and
// dirty, and records the draft's age for the UI banner.
func (m *Manager) Load() model.FormPayload {
	if !m.enabled {
		return nil
	}

	rec := m.store.Get(m.key)
	if rec == nil {
		return nil
	}
	if rec.Expired(m.now()) {
		m.store.Delete(m.key)
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.restored = true
	m.age = time.Duration(m.now().UnixMilli()-rec.SavedAt) * time.Millisecond
	m.setDirtyLocked(true)
	return rec.Data
}

// Save schedules a debounced persist of payload. Calling it again before the
// window elapses restarts the timer, so only the last payload in a burst is
// written. The write itself is skipped when the payload has no meaningful
// content.
func (m *Manager) Save(payload model.FormPayload) {
	if !m.enabled {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}

	m.pending = payload.Clone()
	if m.timer != nil {
		m.timer.Stop()
	}
	// The sequence number invalidates a timer that already fired and is
	// waiting on the lock; only the newest armed write may persist.
	m.seq++
	seq := m.seq
	m.timer = time.AfterFunc(m.saveDelay, func() { m.flush(seq) })
}

// flush runs when the debounce timer fires.
func (m *Manager) flush(seq uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped || m.pending == nil || seq != m.seq {
		return
	}

	payload := m.pending
	m.pending = nil
	m.timer = nil

	if !HasMeaningfulContent(payload, m.contentFields) {
		return
	}

	now := m.now()
	m.store.Set(m.key, &Record{
		Data:      payload,
		SavedAt:   now.UnixMilli(),
		ExpiresAt: now.Add(m.ttl).UnixMilli(),
	})
	m.setDirtyLocked(m.computeDirty(payload))
}

// Clear cancels any pending debounced write, deletes the stored draft and
// resets the restored/age/dirty state. Call it on successful submission or
// explicit discard; it always wins a race against a pending timer.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancelTimerLocked()
	if m.enabled {
		m.store.Delete(m.key)
	}
	m.restored = false
	m.age = 0
	m.setDirtyLocked(false)
}

// DismissRestoredNotice clears only the restored flag and its age, leaving
// the stored draft untouched. Used when the user acknowledges the "we
// restored your draft" banner without discarding the draft.
func (m *Manager) DismissRestoredNotice() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restored = false
	m.age = 0
}

// UpdateDirtyState recomputes the dirty flag from payload without touching
// storage, so a navigation guard can read dirtiness synchronously.
func (m *Manager) UpdateDirtyState(payload model.FormPayload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.setDirtyLocked(m.computeDirty(payload))
}

// Stop ends the session: the pending timer is cancelled before returning, so
// no write can land after the owning form has been torn down, and the leave
// guard is released.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.stopped = true
	m.cancelTimerLocked()
	m.setDirtyLocked(false)
}

func (m *Manager) IsDirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty
}

// HasDraftLoaded reports whether Load restored a draft this session and the
// restored banner has not been dismissed.
func (m *Manager) HasDraftLoaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restored
}

// DraftAge is how old the restored draft was at load time.
func (m *Manager) DraftAge() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.age
}

// IsEditMode reports whether this session edits an existing entity.
func (m *Manager) IsEditMode() bool {
	return m.entity != ""
}

// computeDirty implements the two dirty-check modes. Create mode: dirty as
// soon as the payload has meaningful content. Edit mode: dirty when any
// field differs from the initial snapshot.
func (m *Manager) computeDirty(payload model.FormPayload) bool {
	if m.initial == nil {
		return HasMeaningfulContent(payload, m.contentFields)
	}
	return !payloadEquals(payload, m.initial)
}

// setDirtyLocked registers/deregisters the leave guard strictly in step with
// dirty transitions. Callers hold m.mu.
func (m *Manager) setDirtyLocked(dirty bool) {
	if dirty == m.dirty {
		return
	}
	m.dirty = dirty
	if dirty {
		m.leaveGuard.Register("unsaved " + string(m.form) + " form changes")
	} else {
		m.leaveGuard.Deregister()
	}
}

func (m *Manager) cancelTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.seq++
	m.pending = nil
}
