package main

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/CTAG07/charkov/pkg/corpus"
)

// CorpusAPI exposes the corpus store over HTTP.
type CorpusAPI struct {
	store        *corpus.Store
	maxBodyBytes int64
	logger       *slog.Logger
}

func NewCorpusAPI(store *corpus.Store, maxBodyBytes int64, logger *slog.Logger) *CorpusAPI {
	return &CorpusAPI{store: store, maxBodyBytes: maxBodyBytes, logger: logger}
}

// RegisterRoutes sets up the routing for all /api/corpora endpoints.
func (c *CorpusAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/corpora", c.handleStats)
	mux.HandleFunc("/api/corpora/", c.handleCorpus)
}

func (c *CorpusAPI) handleStats(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) || !requireScope(w, r, scopeCorpusRead) {
		return
	}
	stats, err := c.store.GetStats(r.Context())
	if err != nil {
		c.logger.Error("Failed to get corpus stats", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve corpus stats")
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// handleCorpus serves /api/corpora/{name} and /api/corpora/{name}/{document}.
func (c *CorpusAPI) handleCorpus(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/corpora/"), "/")
	parts := strings.Split(path, "/")
	name := parts[0]
	if name == "" || len(parts) > 2 {
		respondWithError(w, http.StatusBadRequest, "Expected /api/corpora/{name}[/{document}]")
		return
	}

	if len(parts) == 2 {
		if !allowMethod(w, r, http.MethodDelete) || !requireScope(w, r, scopeCorpusWrite) {
			return
		}
		err := c.store.RemoveDocument(r.Context(), parts[1])
		if errors.Is(err, corpus.ErrDocumentNotFound) {
			respondWithError(w, http.StatusNotFound, "Document not found")
			return
		}
		if err != nil {
			c.logger.Error("Failed to remove document", "id", parts[1], "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to remove document")
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	switch r.Method {
	case http.MethodGet:
		if !requireScope(w, r, scopeCorpusRead) {
			return
		}
		docs, err := c.store.Documents(r.Context(), name)
		if errors.Is(err, corpus.ErrCorpusNotFound) {
			respondWithError(w, http.StatusNotFound, "Corpus not found")
			return
		}
		if err != nil {
			c.logger.Error("Failed to list documents", "corpus", name, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to list documents")
			return
		}
		respondWithJSON(w, http.StatusOK, docs)

	case http.MethodPost:
		if !requireScope(w, r, scopeCorpusWrite) {
			return
		}
		body := r.Body
		if c.maxBodyBytes > 0 {
			body = http.MaxBytesReader(w, r.Body, c.maxBodyBytes)
		}
		doc, err := c.store.AddDocument(r.Context(), name, body)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				respondWithError(w, http.StatusRequestEntityTooLarge, "Document too large")
				return
			}
			c.logger.Error("Failed to add document", "corpus", name, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to add document")
			return
		}
		respondWithJSON(w, http.StatusCreated, doc)

	case http.MethodDelete:
		if !requireScope(w, r, scopeCorpusWrite) {
			return
		}
		err := c.store.RemoveCorpus(r.Context(), name)
		if errors.Is(err, corpus.ErrCorpusNotFound) {
			respondWithError(w, http.StatusNotFound, "Corpus not found")
			return
		}
		if err != nil {
			c.logger.Error("Failed to remove corpus", "corpus", name, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to remove corpus")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
