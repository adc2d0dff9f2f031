package draft

import (
	"sync"
	"testing"
	"time"

	"github.com/tripdesk/tripdesk/internal/model"
	"github.com/tripdesk/tripdesk/internal/store"
)

const testDelay = 20 * time.Millisecond

// settle waits comfortably past the debounce window.
func settle() {
	time.Sleep(5 * testDelay)
}

// fakeClock lets tests move time forward without sleeping out a TTL.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingGuard captures leave-guard transitions.
type recordingGuard struct {
	mu         sync.Mutex
	registered bool
	registers  int
	releases   int
}

func (g *recordingGuard) Register(reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.registered = true
	g.registers++
}

func (g *recordingGuard) Deregister() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.registered = false
	g.releases++
}

func (g *recordingGuard) state() (bool, int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.registered, g.registers, g.releases
}

func newTestManager(t *testing.T, entity model.EntityID, initial model.FormPayload, clock *fakeClock) (*Manager, *Store) {
	t.Helper()
	s := NewStore(store.NewMemoryStore(), "draft_")
	opts := Options{Enabled: true, SaveDelay: testDelay}
	if clock != nil {
		opts.Clock = clock.Now
		s.now = clock.Now
	}
	m := NewManager(s, model.FormTrip, entity, initial, opts)
	t.Cleanup(m.Stop)
	return m, s
}

func TestManagerSaveThenLoad(t *testing.T) {
	m, s := newTestManager(t, "7", nil, nil)

	payload := model.FormPayload{"title": "Paris trip", "travelers": []any{"Ana", "Bruno"}}
	m.Save(payload)
	settle()

	// A second manager simulates the reload: restored state belongs to the
	// new form session, not the one that wrote the draft.
	reloaded := NewManager(s, model.FormTrip, "7", nil, Options{Enabled: true, SaveDelay: testDelay})
	defer reloaded.Stop()

	got := reloaded.Load()
	if got == nil {
		t.Fatal("Expected saved draft to load after the debounce window")
	}
	if got["title"] != "Paris trip" {
		t.Errorf("Expected title to round-trip, got %v", got["title"])
	}
	if !reloaded.HasDraftLoaded() {
		t.Error("Expected restored flag to be set after a hit")
	}
	if !reloaded.IsDirty() {
		t.Error("Expected a restored draft to mark the form dirty")
	}
}

func TestManagerDebounceKeepsLastWrite(t *testing.T) {
	m, s := newTestManager(t, "7", nil, nil)

	m.Save(model.FormPayload{"title": "first"})
	m.Save(model.FormPayload{"title": "second"})
	m.Save(model.FormPayload{"title": "final"})
	settle()

	rec := s.Get(s.Key(model.FormTrip, "7"))
	if rec == nil {
		t.Fatal("Expected a record after the debounce window")
	}
	if rec.Data["title"] != "final" {
		t.Errorf("Expected only the last save in the burst to persist, got %v", rec.Data["title"])
	}
}

func TestManagerSkipsEmptyPayload(t *testing.T) {
	m, s := newTestManager(t, "7", nil, nil)

	m.Save(model.FormPayload{"title": "   ", "notes": ""})
	settle()

	if rec := s.Get(s.Key(model.FormTrip, "7")); rec != nil {
		t.Errorf("Expected no record for an effectively-empty form, got %+v", rec)
	}
	if m.Load() != nil {
		t.Error("Expected Load to return nil after a skipped write")
	}
}

func TestManagerContentFields(t *testing.T) {
	s := NewStore(store.NewMemoryStore(), "draft_")
	m := NewManager(s, model.FormTrip, "7", nil, Options{
		Enabled:       true,
		SaveDelay:     testDelay,
		ContentFields: []string{"title"},
	})
	defer m.Stop()

	// Content outside the tracked fields does not justify a write.
	m.Save(model.FormPayload{"title": "", "notes": "remember the visa"})
	settle()

	if rec := s.Get(s.Key(model.FormTrip, "7")); rec != nil {
		t.Errorf("Expected untracked fields to be ignored, got %+v", rec)
	}
}

func TestManagerClearBeforeDebounceFires(t *testing.T) {
	m, s := newTestManager(t, "7", nil, nil)

	m.Save(model.FormPayload{"title": "Paris trip"})
	m.Clear()
	settle()

	if rec := s.Get(s.Key(model.FormTrip, "7")); rec != nil {
		t.Errorf("Expected clear to win the race against the pending write, got %+v", rec)
	}
	if m.Load() != nil {
		t.Error("Expected Load to return nil after clear")
	}
}

func TestManagerStopCancelsPendingWrite(t *testing.T) {
	m, s := newTestManager(t, "7", nil, nil)

	m.Save(model.FormPayload{"title": "Paris trip"})
	m.Stop()
	settle()

	if rec := s.Get(s.Key(model.FormTrip, "7")); rec != nil {
		t.Errorf("Expected no write after teardown, got %+v", rec)
	}
}

func TestManagerExpiry(t *testing.T) {
	clock := newFakeClock()
	m, s := newTestManager(t, "7", nil, clock)

	m.Save(model.FormPayload{"title": "Paris trip"})
	settle()

	if m.Load() == nil {
		t.Fatal("Expected draft to load within its TTL")
	}

	clock.Advance(24*time.Hour + time.Minute)

	if got := m.Load(); got != nil {
		t.Errorf("Expected expired draft to read as absent, got %+v", got)
	}
	key := s.Key(model.FormTrip, "7")
	if rec := s.Get(key); rec != nil {
		t.Error("Expected expired record to be deleted as a side effect of Load")
	}
}

func TestManagerConstructionSweep(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(store.NewMemoryStore(), "draft_")
	s.now = clock.Now

	stale := s.Key(model.FormClient, "9")
	s.Set(stale, record(model.FormPayload{"name": "old"}, clock.Now().Add(-48*time.Hour), 24*time.Hour))

	// Instantiating a manager for a different key sweeps the namespace.
	m := NewManager(s, model.FormTrip, "7", nil, Options{Enabled: true, SaveDelay: testDelay, Clock: clock.Now})
	defer m.Stop()

	if rec := s.Get(stale); rec != nil {
		t.Error("Expected construction sweep to remove expired records under other keys")
	}
}

func TestManagerDirtyCreateMode(t *testing.T) {
	m, _ := newTestManager(t, "", nil, nil)

	m.UpdateDirtyState(model.FormPayload{"title": "", "travelers": []any{}})
	if m.IsDirty() {
		t.Error("Expected all-empty payload to be clean in create mode")
	}

	m.UpdateDirtyState(model.FormPayload{"title": "Paris trip", "travelers": []any{}})
	if !m.IsDirty() {
		t.Error("Expected one filled field to make create mode dirty")
	}

	if m.IsEditMode() {
		t.Error("Expected a manager without an entity id to be in create mode")
	}
}

func TestManagerDirtyEditMode(t *testing.T) {
	initial := model.FormPayload{"title": "Rome", "travelers": []any{"Ana"}, "notes": ""}
	m, _ := newTestManager(t, "7", initial, nil)

	if !m.IsEditMode() {
		t.Error("Expected a manager with an entity id to be in edit mode")
	}

	m.UpdateDirtyState(model.FormPayload{"title": "Rome", "travelers": []any{"Ana"}, "notes": ""})
	if m.IsDirty() {
		t.Error("Expected payload equal to the snapshot to be clean")
	}

	m.UpdateDirtyState(model.FormPayload{"title": "Rome", "travelers": []any{"Ana", "Bruno"}, "notes": ""})
	if !m.IsDirty() {
		t.Error("Expected a sequence content change to make the form dirty")
	}

	m.UpdateDirtyState(model.FormPayload{"title": "Rome", "travelers": []any{"Ana"}, "notes": ""})
	if m.IsDirty() {
		t.Error("Expected reverting the change to make the form clean again")
	}
}

func TestManagerLeaveGuardFollowsDirty(t *testing.T) {
	guard := &recordingGuard{}
	s := NewStore(store.NewMemoryStore(), "draft_")
	m := NewManager(s, model.FormTrip, "", nil, Options{
		Enabled:    true,
		SaveDelay:  testDelay,
		LeaveGuard: guard,
	})
	defer m.Stop()

	m.UpdateDirtyState(model.FormPayload{"title": "Paris trip"})
	if registered, registers, _ := guard.state(); !registered || registers != 1 {
		t.Errorf("Expected guard registered once on dirty, got registered=%v registers=%d", registered, registers)
	}

	// Repeated dirty updates must not stack registrations.
	m.UpdateDirtyState(model.FormPayload{"title": "Paris trip, day 2"})
	if _, registers, _ := guard.state(); registers != 1 {
		t.Errorf("Expected no re-registration while already dirty, got %d", registers)
	}

	m.UpdateDirtyState(model.FormPayload{"title": ""})
	if registered, _, releases := guard.state(); registered || releases != 1 {
		t.Errorf("Expected guard released when clean, got registered=%v releases=%d", registered, releases)
	}
}

func TestManagerStopReleasesGuard(t *testing.T) {
	guard := &recordingGuard{}
	s := NewStore(store.NewMemoryStore(), "draft_")
	m := NewManager(s, model.FormTrip, "", nil, Options{
		Enabled:    true,
		SaveDelay:  testDelay,
		LeaveGuard: guard,
	})

	m.UpdateDirtyState(model.FormPayload{"title": "Paris trip"})
	m.Stop()

	if registered, _, _ := guard.state(); registered {
		t.Error("Expected teardown to release the leave guard")
	}
}

func TestManagerDismissRestoredNotice(t *testing.T) {
	m, s := newTestManager(t, "7", nil, nil)

	m.Save(model.FormPayload{"title": "Paris trip"})
	settle()

	reloaded := NewManager(s, model.FormTrip, "7", nil, Options{Enabled: true, SaveDelay: testDelay})
	defer reloaded.Stop()

	if reloaded.Load() == nil {
		t.Fatal("Expected draft to load")
	}
	if !reloaded.HasDraftLoaded() {
		t.Fatal("Expected restored flag after load")
	}

	reloaded.DismissRestoredNotice()

	if reloaded.HasDraftLoaded() {
		t.Error("Expected restored flag cleared after dismissal")
	}
	if reloaded.DraftAge() != 0 {
		t.Error("Expected draft age cleared after dismissal")
	}
	if s.Get(s.Key(model.FormTrip, "7")) == nil {
		t.Error("Expected the stored draft to survive dismissal")
	}
}

func TestManagerDisabled(t *testing.T) {
	s := NewStore(store.NewMemoryStore(), "draft_")
	m := NewManager(s, model.FormTrip, "7", nil, Options{Enabled: false, SaveDelay: testDelay})
	defer m.Stop()

	m.Save(model.FormPayload{"title": "Paris trip"})
	settle()

	if rec := s.Get(s.Key(model.FormTrip, "7")); rec != nil {
		t.Errorf("Expected disabled manager to never write, got %+v", rec)
	}
	if m.Load() != nil {
		t.Error("Expected disabled manager to always load nil")
	}
}

func TestManagerIsolationBetweenEntities(t *testing.T) {
	s := NewStore(store.NewMemoryStore(), "draft_")
	m7 := NewManager(s, model.FormTrip, "7", nil, Options{Enabled: true, SaveDelay: testDelay})
	defer m7.Stop()
	m8 := NewManager(s, model.FormTrip, "8", nil, Options{Enabled: true, SaveDelay: testDelay})
	defer m8.Stop()

	m7.Save(model.FormPayload{"title": "Trip seven"})
	m8.Save(model.FormPayload{"title": "Trip eight"})
	settle()

	m7.Clear()

	if got := m7.Load(); got != nil {
		t.Errorf("Expected trip 7 draft cleared, got %+v", got)
	}
	got := m8.Load()
	if got == nil {
		t.Fatal("Expected trip 8 draft to be untouched by trip 7's clear")
	}
	if got["title"] != "Trip eight" {
		t.Errorf("Expected trip 8 payload, got %v", got["title"])
	}
}

func TestManagerSaveLoadScenario(t *testing.T) {
	// save at t=0, load after the window returns the payload, load past the
	// TTL returns nil and removes the key.
	clock := newFakeClock()
	m, s := newTestManager(t, "", nil, clock)

	m.Save(model.FormPayload{"title": "Paris trip"})
	settle()

	clock.Advance(600 * time.Millisecond)
	got := m.Load()
	if got == nil || got["title"] != "Paris trip" {
		t.Fatalf("Expected draft within TTL, got %+v", got)
	}

	clock.Advance(24 * time.Hour)
	if got := m.Load(); got != nil {
		t.Errorf("Expected expired draft to be gone, got %+v", got)
	}
	keys, _ := keysOf(s)
	if len(keys) != 0 {
		t.Errorf("Expected the storage key to be removed, found %v", keys)
	}
}

func keysOf(s *Store) ([]string, error) {
	return s.kv.KeysWithPrefix(s.prefix)
}
