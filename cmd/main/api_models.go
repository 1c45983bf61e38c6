package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/CTAG07/charkov/pkg/corpus"
	"github.com/CTAG07/charkov/pkg/markov"
)

// hostedModel is a named in-memory model. A Model is not safe for concurrent
// use, so every access goes through mu.
type hostedModel struct {
	mu     sync.Mutex
	name   string
	corpus string
	seed   *int64
	model  *markov.Model
}

// ModelInfo describes a hosted model.
type ModelInfo struct {
	Name   string            `json:"name"`
	Corpus string            `json:"corpus,omitempty"`
	Seed   *int64            `json:"seed,omitempty"`
	Stats  markov.ModelStats `json:"stats"`
}

func (h *hostedModel) info() ModelInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.infoLocked()
}

func (h *hostedModel) infoLocked() ModelInfo {
	return ModelInfo{
		Name:   h.name,
		Corpus: h.corpus,
		Seed:   h.seed,
		Stats:  h.model.Stats(),
	}
}

// ModelAPI holds the hosted models and the handlers that operate on them.
type ModelAPI struct {
	mu       sync.RWMutex
	models   map[string]*hostedModel
	store    *corpus.Store
	defaults ModelConfig
	limits   ServerConfig
	logger   *slog.Logger
}

// NewModelAPI creates a new instance of the ModelAPI.
func NewModelAPI(store *corpus.Store, defaults ModelConfig, limits ServerConfig, logger *slog.Logger) *ModelAPI {
	return &ModelAPI{
		models:   make(map[string]*hostedModel),
		store:    store,
		defaults: defaults,
		limits:   limits,
		logger:   logger,
	}
}

// RegisterRoutes sets up the routing for all /api/models endpoints.
func (a *ModelAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/models", a.handleListAndCreateModels)
	mux.HandleFunc("/api/models/", a.handleModelByName)
}

type CreateModelRequest struct {
	Name         string `json:"name"`
	WindowLength int    `json:"window_length"`
	Seed         *int64 `json:"seed"`
	Corpus       string `json:"corpus"`
}

type GenerateRequest struct {
	Seed   string `json:"seed"`
	Length int    `json:"length"`
}

type GenerateResponse struct {
	Text      string `json:"text"`
	Generated int    `json:"generated"`
}

type PruneRequest struct {
	MinCount int `json:"min_count"`
}

type PruneResponse struct {
	Removed int               `json:"removed"`
	Stats   markov.ModelStats `json:"stats"`
}

// errModelExists is returned by create when the name is already taken.
var errModelExists = errors.New("model already exists")

// create builds, trains and registers a new model.
func (a *ModelAPI) create(ctx context.Context, req CreateModelRequest) (*hostedModel, error) {
	window := req.WindowLength
	if window == 0 {
		window = a.defaults.WindowLength
	}

	var opts []markov.Option
	if req.Seed != nil {
		opts = append(opts, markov.WithSeed(*req.Seed))
	}
	m, err := markov.NewModel(window, opts...)
	if err != nil {
		return nil, err
	}
	m.SetLogger(a.logger.With("model", req.Name))

	if req.Corpus != "" {
		if err = a.store.TrainModel(ctx, req.Corpus, m); err != nil {
			return nil, err
		}
	}

	h := &hostedModel{name: req.Name, corpus: req.Corpus, seed: req.Seed, model: m}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.models[req.Name]; exists {
		return nil, errModelExists
	}
	a.models[req.Name] = h
	return h, nil
}

func (a *ModelAPI) lookup(name string) (*hostedModel, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	h, ok := a.models[name]
	return h, ok
}

func (a *ModelAPI) remove(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.models[name]; !ok {
		return false
	}
	delete(a.models, name)
	return true
}

// list returns the info of every hosted model sorted by name.
func (a *ModelAPI) list() []ModelInfo {
	a.mu.RLock()
	hosted := make([]*hostedModel, 0, len(a.models))
	for _, h := range a.models {
		hosted = append(hosted, h)
	}
	a.mu.RUnlock()

	infos := make([]ModelInfo, 0, len(hosted))
	for _, h := range hosted {
		infos = append(infos, h.info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// handleListAndCreateModels handles GET for listing and POST for creating models.
func (a *ModelAPI) handleListAndCreateModels(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !requireScope(w, r, scopeModelsRead) {
			return
		}
		respondWithJSON(w, http.StatusOK, a.list())

	case http.MethodPost:
		if !requireScope(w, r, scopeModelsWrite) {
			return
		}
		var req CreateModelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
			return
		}
		if req.Name == "" || strings.Contains(req.Name, "/") {
			respondWithError(w, http.StatusBadRequest, "A model name without '/' is required")
			return
		}

		h, err := a.create(r.Context(), req)
		switch {
		case errors.Is(err, markov.ErrInvalidWindowLength):
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, corpus.ErrCorpusNotFound):
			respondWithError(w, http.StatusNotFound, fmt.Sprintf("Corpus %q not found", req.Corpus))
			return
		case errors.Is(err, errModelExists):
			respondWithError(w, http.StatusConflict, fmt.Sprintf("Model %q already exists", req.Name))
			return
		case err != nil:
			a.logger.Error("Failed to create model", "name", req.Name, "error", err)
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to create model: %v", err))
			return
		}

		a.logger.Info("Model created", "name", req.Name, "corpus", req.Corpus)
		respondWithJSON(w, http.StatusCreated, h.info())

	default:
		w.Header().Set("Allow", "GET, POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleModelByName routes actions for a specific model, e.g., train, generate, prune, delete.
func (a *ModelAPI) handleModelByName(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/models/")
	parts := strings.Split(strings.TrimSuffix(path, "/"), "/")
	name := parts[0]

	if name == "" {
		respondWithError(w, http.StatusBadRequest, "Model name not specified")
		return
	}

	h, ok := a.lookup(name)
	if !ok {
		respondWithError(w, http.StatusNotFound, "Model not found")
		return
	}

	if len(parts) == 1 { // Path is just /api/models/{name}
		switch r.Method {
		case http.MethodGet:
			if !requireScope(w, r, scopeModelsRead) {
				return
			}
			respondWithJSON(w, http.StatusOK, h.info())
		case http.MethodDelete:
			if !requireScope(w, r, scopeModelsWrite) {
				return
			}
			if !a.remove(name) {
				respondWithError(w, http.StatusNotFound, "Model not found")
				return
			}
			a.logger.Info("Model removed", "name", name)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.Header().Set("Allow", "GET, DELETE")
			respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	action := parts[1]
	switch action {
	case "train":
		if !allowMethod(w, r, http.MethodPost) || !requireScope(w, r, scopeModelsWrite) {
			return
		}
		a.handleTrain(w, r, h)

	case "generate":
		if !allowMethod(w, r, http.MethodPost) || !requireScope(w, r, scopeModelsRead) {
			return
		}
		a.handleGenerate(w, r, h)

	case "prune":
		if !allowMethod(w, r, http.MethodPost) || !requireScope(w, r, scopeModelsWrite) {
			return
		}
		a.handlePrune(w, r, h)

	case "dump":
		if !allowMethod(w, r, http.MethodGet) || !requireScope(w, r, scopeModelsRead) {
			return
		}
		h.mu.Lock()
		dump := h.model.String()
		h.mu.Unlock()
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(dump))

	case "stream":
		if !allowMethod(w, r, http.MethodGet) || !requireScope(w, r, scopeModelsRead) {
			return
		}
		a.handleStream(w, r, h)

	default:
		respondWithError(w, http.StatusNotFound, "Unknown action for model")
	}
}

// handleTrain trains the model on the raw request body.
func (a *ModelAPI) handleTrain(w http.ResponseWriter, r *http.Request, h *hostedModel) {
	body := r.Body
	if a.limits.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, a.limits.MaxBodyBytes)
	}

	h.mu.Lock()
	err := h.model.Train(body)
	info := h.infoLocked()
	h.mu.Unlock()

	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Training text too large")
			return
		}
		a.logger.Error("Failed to train model", "name", h.name, "error", err)
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Training failed: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, info)
}

// generationLength applies the configured default and upper bound.
func (a *ModelAPI) generationLength(requested int) (int, error) {
	if requested == 0 {
		requested = a.defaults.Length
	}
	if requested < 0 || (a.limits.MaxLength > 0 && requested > a.limits.MaxLength) {
		return 0, fmt.Errorf("length must be between 1 and %d", a.limits.MaxLength)
	}
	return requested, nil
}

func (a *ModelAPI) handleGenerate(w http.ResponseWriter, r *http.Request, h *hostedModel) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	length, err := a.generationLength(req.Length)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.mu.Lock()
	text := h.model.Generate(req.Seed, length)
	h.mu.Unlock()

	respondWithJSON(w, http.StatusOK, GenerateResponse{
		Text:      text,
		Generated: len([]rune(text)) - len([]rune(req.Seed)),
	})
}

func (a *ModelAPI) handlePrune(w http.ResponseWriter, r *http.Request, h *hostedModel) {
	var req PruneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}

	h.mu.Lock()
	removed := h.model.Prune(req.MinCount)
	stats := h.model.Stats()
	h.mu.Unlock()

	respondWithJSON(w, http.StatusOK, PruneResponse{Removed: removed, Stats: stats})
}

// allowMethod writes a 405 and returns false unless r uses method.
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}
