package db

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewSQLite(t *testing.T) {
	database := NewSQLite("./unused.db")

	if database == nil {
		t.Fatal("Expected non-nil SQLite instance")
	}
	if database.conn != nil {
		t.Error("Expected connection to be nil before InitDB")
	}
}

func TestSQLiteBasicOperations(t *testing.T) {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))

	dbFile, err := os.CreateTemp("", "test-db-*.sqlite")
	if err != nil {
		t.Fatalf("Failed to create temp db file: %v", err)
	}
	defer os.Remove(dbFile.Name())
	dbFile.Close()

	database := NewSQLite(dbFile.Name())
	if err := database.InitDB(); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	t.Run("Drafts table exists", func(t *testing.T) {
		if _, err := database.Exec(
			`INSERT INTO drafts (key, record) VALUES (?, ?)`, "draft_trip_7", []byte("payload"),
		); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}

		rows, err := database.Query(`SELECT key FROM drafts`)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		defer rows.Close()

		var keys []string
		for rows.Next() {
			var key string
			if err := rows.Scan(&key); err != nil {
				t.Fatalf("Scan failed: %v", err)
			}
			keys = append(keys, key)
		}
		if len(keys) != 1 || keys[0] != "draft_trip_7" {
			t.Errorf("Expected one inserted key, got %v", keys)
		}
	})

	t.Run("Get exposes the raw connection", func(t *testing.T) {
		if database.Get() == nil {
			t.Error("Expected underlying connection after InitDB")
		}
	})

	t.Run("InitDB is idempotent", func(t *testing.T) {
		if err := database.InitDB(); err != nil {
			t.Errorf("Expected re-init to succeed, got %v", err)
		}
	})
}

func TestSQLiteCloseWithoutInit(t *testing.T) {
	database := NewSQLite("./unused.db")
	if err := database.Close(); err != nil {
		t.Errorf("Expected closing an uninitialized db to no-op, got %v", err)
	}
}
