package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/tripdesk/tripdesk/internal/db"
	"github.com/tripdesk/tripdesk/internal/util/compression"
)

// SQLiteStore is a KVStore over the drafts table. Values are compressed
// before they hit the database, the way post content is stored elsewhere
// in the product family.
type SQLiteStore struct {
	db         db.DB
	compressor compression.Compressor
}

func NewSQLiteStore(database db.DB, compressor compression.Compressor) *SQLiteStore {
	if compressor == nil {
		compressor = compression.NoopCompressor{}
	}
	return &SQLiteStore{
		db:         database,
		compressor: compressor,
	}
}

func (s *SQLiteStore) Get(key string) ([]byte, bool, error) {
	row := s.db.Get().QueryRow(`SELECT record FROM drafts WHERE key = ?`, key)

	var compressed []byte
	if err := row.Scan(&compressed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error scanning draft record: %w", err)
	}

	value, err := s.compressor.Decompress(compressed)
	if err != nil {
		return nil, false, fmt.Errorf("error decompressing draft record: %w", err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(key string, value []byte) error {
	compressed, err := s.compressor.Compress(value)
	if err != nil {
		return fmt.Errorf("error compressing draft record: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO drafts (key, record, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET record = excluded.record, updated_at = CURRENT_TIMESTAMP`,
		key, compressed,
	)
	if err != nil {
		return fmt.Errorf("error upserting draft record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM drafts WHERE key = ?`, key); err != nil {
		return fmt.Errorf("error deleting draft record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) KeysWithPrefix(prefix string) ([]string, error) {
	// substr avoids LIKE wildcard semantics; "_" is common in key prefixes.
	rows, err := s.db.Query(`SELECT key FROM drafts WHERE substr(key, 1, ?) = ?`, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("error querying draft keys: %w", err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("error scanning draft key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
