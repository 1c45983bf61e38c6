package corpus

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates a new SQLite database and a Store for testing.
// It uses t.Cleanup to ensure resources are released.
func setupTestDB(t *testing.T) (*sql.DB, *Store) {
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbFile+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}

	s, err := NewStore(db)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(s.Close)

	return db, s
}

// setupTestDBWithCorpus also stores a two-document corpus named "fish".
func setupTestDBWithCorpus(t *testing.T) (context.Context, *Store, []Document) {
	_, s := setupTestDB(t)
	ctx := context.Background()

	var docs []Document
	for _, text := range []string{"one fish two fish", "red fish blue fish"} {
		doc, err := s.AddDocument(ctx, "fish", strings.NewReader(text))
		if err != nil {
			t.Fatalf("setup: AddDocument() failed: %v", err)
		}
		docs = append(docs, doc)
	}
	return ctx, s, docs
}
