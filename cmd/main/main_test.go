package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CTAG07/charkov/pkg/corpus"
)

// cyclicCorpus has exactly one successor per window of length 2, so every
// generation from it is the same whatever the random state.
const cyclicCorpus = "abcabcabc"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig returns the default configuration with all paths inside a
// temporary directory.
func testConfig(t *testing.T) *Config {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DatabasePath = filepath.Join(dir, "charkov.db")
	cfg.HistoryFile = filepath.Join(dir, "history")
	return cfg
}

// newTestServer builds a Server on a fresh database.
func newTestServer(t *testing.T, cfg *Config) *Server {
	db, err := initDB(cfg.DatabasePath)
	if err != nil {
		t.Fatalf("initDB() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store, err := corpus.NewStore(db)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(store.Close)

	s, err := NewServer(t.Context(), cfg, discardLogger(), db, store)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return s
}

// doRequest sends a request straight to h. A string body is sent as is, any
// other non-nil body is encoded as JSON.
func doRequest(t *testing.T, h http.Handler, method, path string, body any, key string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if key != "" {
		req.Header.Set(authHeader, key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rec.Body.String(), err)
	}
	return v
}

// cliHarness runs the binary's entry point against a config file and
// database in a temporary directory.
type cliHarness struct {
	dir        string
	configPath string
}

func newCLIHarness(t *testing.T) *cliHarness {
	cfg := testConfig(t)
	dir := filepath.Dir(cfg.DatabasePath)
	h := &cliHarness{dir: dir, configPath: filepath.Join(dir, "charkov.json")}
	if err := writeConfig(h.configPath, cfg); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return h
}

// file writes content to a file in the harness directory and returns its path.
func (h *cliHarness) file(t *testing.T, name, content string) string {
	path := filepath.Join(h.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func (h *cliHarness) run(t *testing.T, stdin string, args ...string) (string, error) {
	var out bytes.Buffer
	err := run(t.Context(), append([]string{"-config", h.configPath}, args...), strings.NewReader(stdin), &out, io.Discard)
	return out.String(), err
}
