package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentcommand/unisearch/internal/config"
	"github.com/agentcommand/unisearch/internal/models"
	"github.com/agentcommand/unisearch/internal/pipeline"
)

type queryRequest struct {
	Query string            `json:"query"`
	Mode  models.SearchMode `json:"mode,omitempty"`
}

// handleLiveQuery feeds one keystroke-level input value through the
// debounce gate. The search, if any, completes asynchronously into the
// current-response slot.
func (s *Server) handleLiveQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.pipeline.UpdateQuery(req.Query)
	s.respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// handleSubmitQuery dispatches immediately, bypassing the idle window, and
// returns the slot as it stands after the dispatch.
func (s *Server) handleSubmitQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.pipeline.SubmitQuery(req.Query)
	resp, processing := s.pipeline.Presenter().Current()
	s.respondJSON(w, http.StatusOK, currentResponse{Response: resp, Processing: processing})
}

type currentResponse struct {
	Response   *models.SemanticSearchResponse `json:"response"`
	Processing bool                           `json:"processing"`
}

func (s *Server) handleCurrentResponse(w http.ResponseWriter, r *http.Request) {
	resp, processing := s.pipeline.Presenter().Current()
	s.respondJSON(w, http.StatusOK, currentResponse{Response: resp, Processing: processing})
}

func (s *Server) handleClearQuery(w http.ResponseWriter, r *http.Request) {
	s.pipeline.Clear()
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// handleSearch runs one synchronous search without touching the
// current-response slot.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.String("query", req.Query), zap.String("mode", string(req.Mode)))
	resp, err := s.pipeline.Execute(r.Context(), req.Query, req.Mode)
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyQuery) {
			s.respondError(w, http.StatusBadRequest, "query must not be empty")
			return
		}
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type selfTestRequest struct {
	Queries []string `json:"queries,omitempty"`
}

// handleSelfTest runs the canned query batch and reports per-query outcomes.
func (s *Server) handleSelfTest(w http.ResponseWriter, r *http.Request) {
	var req selfTestRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	queries := req.Queries
	if len(queries) == 0 {
		queries = s.cfg.Search.SelfTestQueries
	}
	if len(queries) == 0 {
		s.respondError(w, http.StatusBadRequest, "no self-test queries configured")
		return
	}
	report := s.pipeline.RunSelfTest(r.Context(), queries)
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleIndexDocument(w http.ResponseWriter, r *http.Request) {
	var input models.DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	doc, err := s.indexer.IndexDocument(r.Context(), &input)
	if err != nil {
		s.logger.Error("indexing failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": doc.ID, "status": "indexed"})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 50)
	docs, err := s.store.ListDocuments(r.Context(), offset, limit)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.indexer.DeleteDocument(r.Context(), id); err != nil {
		s.logger.Error("deletion failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type ingestRequest struct {
	Path string `json:"path"`
}

// handleIngestPath ingests a file, or every allowed file under a directory.
func (s *Server) handleIngestPath(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "path not found")
		return
	}
	if info.IsDir() {
		n, err := s.indexer.IndexDirectory(r.Context(), abs, s.cfg.Watch.Extensions)
		if err != nil {
			s.logger.Error("directory ingest failed", zap.String("path", abs), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]interface{}{"path": abs, "indexed": n})
		return
	}
	if err := s.indexer.IndexFile(r.Context(), abs, nil); err != nil {
		s.logger.Error("file ingest failed", zap.String("path", abs), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"path": abs, "indexed": 1})
}

type memoryRequest struct {
	Agent   string   `json:"agent"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags,omitempty"`
}

func (s *Server) handleCreateMemory(w http.ResponseWriter, r *http.Request) {
	var req memoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Summary == "" {
		s.respondError(w, http.StatusBadRequest, "summary is required")
		return
	}
	mem := &models.MemoryRecord{
		ID:        uuid.New().String(),
		Agent:     req.Agent,
		Summary:   req.Summary,
		Tags:      req.Tags,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateMemory(r.Context(), mem); err != nil {
		s.logger.Error("memory create failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, mem)
}

func (s *Server) handleListMemories(w http.ResponseWriter, r *http.Request) {
	agent := r.URL.Query().Get("agent")
	limit := queryInt(r, "limit", 50)
	mems, err := s.store.ListMemories(r.Context(), agent, limit)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"memories": mems})
}

func (s *Server) handleDeleteMemory(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteMemory(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docs, err := s.store.CountDocuments(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	chunks, err := s.store.CountChunks(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	memories, err := s.store.CountMemories(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"documents": docs,
		"chunks":    chunks,
		"memories":  memories,
		"config": map[string]interface{}{
			"embedding_dimensions": s.cfg.Embedding.Dimensions,
			"chunk_size":           s.cfg.Search.ChunkSize,
			"chunk_overlap":        s.cfg.Search.ChunkOverlap,
			"max_results":          s.cfg.Search.MaxResults,
			"debounce_ms":          s.cfg.Search.DebounceMs,
			"database_path":        s.cfg.Storage.DatabasePath,
			"bleve_index_path":     s.cfg.Storage.BleveIndexPath,
			"vector_index_path":    s.cfg.Storage.VectorIndexPath,
		},
	}
	if s.watch != nil {
		resp["watch_directories"] = s.watch.Directories()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWatchList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"directories": s.watch.Directories()})
}

type watchAddRequest struct {
	Path string `json:"path"`
	Sync *bool  `json:"sync,omitempty"`
}

func (s *Server) handleWatchAdd(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	var req watchAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "directory not found")
		return
	}
	if !info.IsDir() {
		s.respondError(w, http.StatusBadRequest, "path is not a directory")
		return
	}
	ingestExisting := true
	if req.Sync != nil {
		ingestExisting = *req.Sync
	}
	if err := s.watch.AddDirectory(abs, ingestExisting); err != nil {
		s.logger.Error("watch add failed", zap.String("path", abs), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchRoots()
	s.respondJSON(w, http.StatusCreated, map[string]string{"path": abs, "status": "added"})
}

func (s *Server) handleWatchRemove(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		var body watchAddRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			path = body.Path
		}
	}
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required (query or body)")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	if err := s.watch.RemoveDirectory(abs); err != nil {
		s.logger.Error("watch remove failed", zap.String("path", abs), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchRoots()
	s.respondJSON(w, http.StatusOK, map[string]string{"path": abs, "status": "removed"})
}

// persistWatchRoots writes the current watch roots back to the config file.
func (s *Server) persistWatchRoots() {
	if s.configPath == "" {
		return
	}
	s.cfgMu.Lock()
	s.cfg.Watch.Directories = s.watch.Directories()
	err := config.Save(s.configPath, s.cfg)
	s.cfgMu.Unlock()
	if err != nil {
		s.logger.Warn("failed to persist watch config", zap.Error(err))
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
