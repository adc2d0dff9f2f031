// Package store provides the local key-value stores draft records persist to.
package store

import "github.com/rs/zerolog"

// KVStore is a fast local key-value store. Implementations are synchronous
// relative to the caller and never perform network I/O.
type KVStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
	KeysWithPrefix(prefix string) ([]string, error)
}

var storeLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	storeLogger = l
}
