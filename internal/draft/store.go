package draft

import (
	"encoding/json"
	"time"

	"github.com/tripdesk/tripdesk/internal/model"
	"github.com/tripdesk/tripdesk/internal/store"
)

// Store wraps a KVStore with draft record encoding and the fault semantics
// the form layer relies on: storage faults never propagate, they degrade to
// "no draft". Corrupt entries are deleted when observed.
type Store struct {
	kv     store.KVStore
	prefix string

	now func() time.Time
}

func NewStore(kv store.KVStore, prefix string) *Store {
	return &Store{
		kv:     kv,
		prefix: prefix,
		now:    time.Now,
	}
}

// Prefix returns the namespace prefix all draft keys live under.
func (s *Store) Prefix() string {
	return s.prefix
}

// Key derives the storage key for a form session using the store's prefix.
func (s *Store) Key(form model.FormType, entity model.EntityID) string {
	return Key(s.prefix, form, entity)
}

// Get returns the record stored under key, or nil if it is absent,
// unreadable, or corrupt. A corrupt entry is deleted before returning.
func (s *Store) Get(key string) *Record {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		draftLogger.Warn().Err(err).Str("key", key).Msg("Draft read failed, treating as absent")
		return nil
	}
	if !ok {
		return nil
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		draftLogger.Warn().Err(err).Str("key", key).Msg("Corrupt draft record, deleting")
		s.Delete(key)
		return nil
	}
	return &rec
}

// Set persists a record. Storage failures (quota, disabled store) are logged
// and swallowed; a failed set simply leaves no draft behind.
func (s *Store) Set(key string, rec *Record) {
	raw, err := json.Marshal(rec)
	if err != nil {
		draftLogger.Warn().Err(err).Str("key", key).Msg("Draft encode failed, skipping save")
		return
	}
	if err := s.kv.Set(key, raw); err != nil {
		draftLogger.Warn().Err(err).Str("key", key).Msg("Draft write failed, skipping save")
	}
}

// Delete removes a record. No-ops when the key is absent or storage fails.
func (s *Store) Delete(key string) {
	if err := s.kv.Delete(key); err != nil {
		draftLogger.Warn().Err(err).Str("key", key).Msg("Draft delete failed")
	}
}

// Sweep walks every key under the draft namespace and removes entries that
// are expired or cannot be decoded. Returns the number of removed entries.
func (s *Store) Sweep() int {
	keys, err := s.kv.KeysWithPrefix(s.prefix)
	if err != nil {
		draftLogger.Warn().Err(err).Msg("Draft sweep failed to list keys")
		return 0
	}

	removed := 0
	for _, key := range keys {
		raw, ok, err := s.kv.Get(key)
		if err != nil || !ok {
			continue
		}

		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			s.Delete(key)
			removed++
			continue
		}
		if rec.Expired(s.now()) {
			s.Delete(key)
			removed++
		}
	}

	if removed > 0 {
		draftLogger.Info().Int("removed", removed).Msg("Draft sweep removed stale records")
	}
	return removed
}
