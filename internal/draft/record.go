// Package draft implements form draft persistence: a fault-swallowing store
// over a local key-value backend, and a per-form-session manager that
// debounces saves, tracks dirtiness, and expires stale records.
package draft

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/tripdesk/tripdesk/internal/model"
)

// DefaultTTL is how long a saved draft stays loadable.
const DefaultTTL = 24 * time.Hour

// DefaultSaveDelay is the trailing debounce window for saves.
const DefaultSaveDelay = 500 * time.Millisecond

// Record is the persisted shape of a draft.
type Record struct {
	Data      model.FormPayload `json:"data"`
	SavedAt   int64             `json:"savedAt"`   // epoch milliseconds
	ExpiresAt int64             `json:"expiresAt"` // epoch milliseconds
}

func (r *Record) Expired(now time.Time) bool {
	return now.UnixMilli() > r.ExpiresAt
}

var draftLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	draftLogger = l
}
