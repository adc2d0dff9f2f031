// Package idempotency issues the opaque keys that let the REST backend
// collapse duplicate retries of one logical submission, and guards a
// submission surface so the key lives exactly as long as one open cycle.
package idempotency

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewKey produces an opaque token combining a time-derived component with
// independent random bits. Repeated calls in the same process do not collide
// in practice; no persistence or registry is involved.
func NewKey() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36) + "-" + uuid.New().String()
}
