package corpus

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// ErrCorpusNotFound is returned when a corpus has no documents.
var ErrCorpusNotFound = errors.New("corpus: corpus not found")

// ErrDocumentNotFound is returned when a document id is unknown.
var ErrDocumentNotFound = errors.New("corpus: document not found")

// SetupSchema initializes the tables used by the Store. It should be called
// once on a new database before any other operations are performed. It is
// idempotent and safe to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {
	const (
		schemaDocuments = `
CREATE TABLE IF NOT EXISTS corpus_documents (
    seq         INTEGER PRIMARY KEY AUTOINCREMENT,
    doc_id      TEXT    NOT NULL UNIQUE,
    corpus_name TEXT    NOT NULL,
    content     TEXT    NOT NULL,
    char_count  INTEGER NOT NULL,
    added_at    INTEGER NOT NULL
);
`
		indexCorpus = `CREATE INDEX IF NOT EXISTS idx_corpus_documents_name ON corpus_documents (corpus_name, seq);`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	// If the transaction succeeds, tx.Commit() will be called first, and the rollback will do nothing.
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaDocuments); err != nil {
		return fmt.Errorf("could not create documents schema: %w", err)
	}
	if _, err = tx.Exec(indexCorpus); err != nil {
		return fmt.Errorf("could not create corpus index: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// Store keeps named corpora of training text in a SQLite database. A corpus
// is an ordered list of documents; each document is trained as its own
// character stream.
type Store struct {
	db                 *sql.DB
	stmtInsertDocument *sql.Stmt
	stmtListDocuments  *sql.Stmt
	stmtGetContent     *sql.Stmt
	stmtListCorpora    *sql.Stmt
	stmtDeleteDocument *sql.Stmt
	stmtCountDocuments *sql.Stmt
	stmtSumChars       *sql.Stmt
	logger             *slog.Logger
}

// NewStore creates a Store on db, which must already have the schema from
// SetupSchema. It pre-compiles all SQL statements, returning an error if any
// preparation fails.
func NewStore(db *sql.DB) (*Store, error) {
	stmtInsertDocument, err := db.Prepare(`INSERT INTO corpus_documents (doc_id, corpus_name, content, char_count, added_at) VALUES (?, ?, ?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtListDocuments, err := db.Prepare(`SELECT doc_id, corpus_name, char_count, added_at FROM corpus_documents WHERE corpus_name = ? ORDER BY seq;`)
	if err != nil {
		return nil, err
	}

	stmtGetContent, err := db.Prepare(`SELECT content FROM corpus_documents WHERE doc_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtListCorpora, err := db.Prepare(`SELECT corpus_name, COUNT(*), coalesce(SUM(char_count), 0) FROM corpus_documents GROUP BY corpus_name;`)
	if err != nil {
		return nil, err
	}

	stmtDeleteDocument, err := db.Prepare(`DELETE FROM corpus_documents WHERE doc_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtCountDocuments, err := db.Prepare(`SELECT COUNT(*) FROM corpus_documents;`)
	if err != nil {
		return nil, err
	}

	stmtSumChars, err := db.Prepare(`SELECT coalesce(SUM(char_count), 0), coalesce(SUM(length(CAST(content AS BLOB))), 0) FROM corpus_documents;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:                 db,
		stmtInsertDocument: stmtInsertDocument,
		stmtListDocuments:  stmtListDocuments,
		stmtGetContent:     stmtGetContent,
		stmtListCorpora:    stmtListCorpora,
		stmtDeleteDocument: stmtDeleteDocument,
		stmtCountDocuments: stmtCountDocuments,
		stmtSumChars:       stmtSumChars,
		logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases all prepared SQL statements held by the Store. It does not
// close the database.
func (s *Store) Close() {
	_ = s.stmtInsertDocument.Close()
	_ = s.stmtListDocuments.Close()
	_ = s.stmtGetContent.Close()
	_ = s.stmtListCorpora.Close()
	_ = s.stmtDeleteDocument.Close()
	_ = s.stmtCountDocuments.Close()
	_ = s.stmtSumChars.Close()
}

// SetLogger sets the logger for the Store. By default, all logs are discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}
