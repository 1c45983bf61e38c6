package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/CTAG07/charkov/pkg/markov"
	"github.com/google/uuid"
)

// Document describes one stored text of a corpus.
type Document struct {
	ID      string    `json:"id"`
	Corpus  string    `json:"corpus"`
	Chars   int       `json:"chars"`
	AddedAt time.Time `json:"added_at"`
}

// CorpusInfo holds the summary of a single corpus.
type CorpusInfo struct {
	Name      string `json:"name"`
	Documents int    `json:"documents"`
	Chars     int    `json:"chars"`
}

// AddDocument reads all text from r and stores it as a new document at the
// end of the named corpus. The corpus is created implicitly.
func (s *Store) AddDocument(ctx context.Context, corpusName string, r io.Reader) (Document, error) {
	if corpusName == "" {
		return Document{}, errors.New("corpus: corpus name is required")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("could not read document for corpus '%s': %w", corpusName, err)
	}
	text := string(data)

	doc := Document{
		ID:      uuid.NewString(),
		Corpus:  corpusName,
		Chars:   utf8.RuneCountInString(text),
		AddedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err = s.stmtInsertDocument.ExecContext(ctx, doc.ID, doc.Corpus, text, doc.Chars, doc.AddedAt.UnixMilli()); err != nil {
		return Document{}, fmt.Errorf("could not insert document into corpus '%s': %w", corpusName, err)
	}

	s.logger.InfoContext(ctx, "Document added",
		slog.String("corpus_name", corpusName),
		slog.String("doc_id", doc.ID),
		slog.Int("chars", doc.Chars),
	)
	return doc, nil
}

// Documents lists the documents of a corpus in the order they were added. It
// returns ErrCorpusNotFound if the corpus has no documents.
func (s *Store) Documents(ctx context.Context, corpusName string) ([]Document, error) {
	rows, err := s.stmtListDocuments.QueryContext(ctx, corpusName)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var docs []Document
	for rows.Next() {
		var doc Document
		var addedAt int64
		if err = rows.Scan(&doc.ID, &doc.Corpus, &doc.Chars, &addedAt); err != nil {
			return nil, err
		}
		doc.AddedAt = time.UnixMilli(addedAt).UTC()
		docs = append(docs, doc)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCorpusNotFound, corpusName)
	}
	return docs, nil
}

// Content returns the text of a document.
func (s *Store) Content(ctx context.Context, id string) (string, error) {
	var content string
	err := s.stmtGetContent.QueryRowContext(ctx, id).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	if err != nil {
		return "", err
	}
	return content, nil
}

// Corpora returns a summary of every corpus, keyed by name.
func (s *Store) Corpora(ctx context.Context) (map[string]CorpusInfo, error) {
	rows, err := s.stmtListCorpora.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	corpora := make(map[string]CorpusInfo)
	for rows.Next() {
		var info CorpusInfo
		if err = rows.Scan(&info.Name, &info.Documents, &info.Chars); err != nil {
			return nil, err
		}
		corpora[info.Name] = info
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return corpora, nil
}

// RemoveDocument deletes a single document.
func (s *Store) RemoveDocument(ctx context.Context, id string) error {
	res, err := s.stmtDeleteDocument.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("could not remove document %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	s.logger.InfoContext(ctx, "Document removed", slog.String("doc_id", id))
	return nil
}

// RemoveCorpus deletes every document of a corpus. The operation is performed
// within a transaction.
func (s *Store) RemoveCorpus(ctx context.Context, corpusName string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	res, err := tx.ExecContext(ctx, "DELETE FROM corpus_documents WHERE corpus_name = ?", corpusName)
	if err != nil {
		return fmt.Errorf("failed to remove documents for corpus '%s': %w", corpusName, err)
	}
	removed, _ := res.RowsAffected()
	if removed == 0 {
		return fmt.Errorf("%w: %s", ErrCorpusNotFound, corpusName)
	}

	s.logger.InfoContext(ctx, "Corpus removed successfully",
		slog.String("corpus_name", corpusName),
		slog.Int64("documents_removed", removed),
	)

	return tx.Commit()
}

// TrainModel trains m on every document of a corpus, in the order the
// documents were added. Each document is a separate training pass, so no
// window spans two documents.
func (s *Store) TrainModel(ctx context.Context, corpusName string, m *markov.Model) error {
	docs, err := s.Documents(ctx, corpusName)
	if err != nil {
		return err
	}
	var chars int
	for _, doc := range docs {
		content, err := s.Content(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("could not load document %s: %w", doc.ID, err)
		}
		if err = m.Train(strings.NewReader(content)); err != nil {
			return fmt.Errorf("training on document %s failed: %w", doc.ID, err)
		}
		chars += doc.Chars
	}

	s.logger.InfoContext(ctx, "Model trained from corpus",
		slog.String("corpus_name", corpusName),
		slog.Int("documents", len(docs)),
		slog.Int("chars", chars),
		slog.Int("windows", m.Len()),
	)
	return nil
}
