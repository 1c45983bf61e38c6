package corpus

import (
	"context"
	"sort"
)

// DBStats holds aggregated statistics for the entire store.
type DBStats struct {
	Corpora   []CorpusInfo `json:"corpora"`   // Every corpus, sorted by name
	Documents int          `json:"documents"` // The number of documents in all corpora
	Chars     int          `json:"chars"`     // The number of characters in all documents
	Bytes     int64        `json:"bytes"`     // The UTF-8 size of all documents
}

// GetStats returns a snapshot of statistics for the entire store.
func (s *Store) GetStats(ctx context.Context) (*DBStats, error) {
	corpora, err := s.Corpora(ctx)
	if err != nil {
		return nil, err
	}

	var documents int
	if err = s.stmtCountDocuments.QueryRowContext(ctx).Scan(&documents); err != nil {
		return nil, err
	}

	var chars int
	var size int64
	if err = s.stmtSumChars.QueryRowContext(ctx).Scan(&chars, &size); err != nil {
		return nil, err
	}

	list := make([]CorpusInfo, 0, len(corpora))
	for _, info := range corpora {
		list = append(list, info)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})

	return &DBStats{
		Corpora:   list,
		Documents: documents,
		Chars:     chars,
		Bytes:     size,
	}, nil
}
