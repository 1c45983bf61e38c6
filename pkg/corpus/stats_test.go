package corpus

import (
	"strings"
	"testing"
)

func TestGetStats(t *testing.T) {
	ctx, s, _ := setupTestDBWithCorpus(t)
	if _, err := s.AddDocument(ctx, "alpha", strings.NewReader("日本")); err != nil {
		t.Fatal(err)
	}

	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}

	if stats.Documents != 3 {
		t.Errorf("expected 3 documents, got %d", stats.Documents)
	}
	wantChars := len("one fish two fish") + len("red fish blue fish") + 2
	if stats.Chars != wantChars {
		t.Errorf("expected %d chars, got %d", wantChars, stats.Chars)
	}
	wantBytes := int64(len("one fish two fish") + len("red fish blue fish") + len("日本"))
	if stats.Bytes != wantBytes {
		t.Errorf("expected %d bytes, got %d", wantBytes, stats.Bytes)
	}
	if len(stats.Corpora) != 2 || stats.Corpora[0].Name != "alpha" || stats.Corpora[1].Name != "fish" {
		t.Errorf("expected corpora sorted by name, got %+v", stats.Corpora)
	}
}

func TestGetStatsEmpty(t *testing.T) {
	_, s := setupTestDB(t)
	stats, err := s.GetStats(t.Context())
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.Documents != 0 || stats.Chars != 0 || stats.Bytes != 0 || len(stats.Corpora) != 0 {
		t.Errorf("expected empty stats, got %+v", stats)
	}
}
