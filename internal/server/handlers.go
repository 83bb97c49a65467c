package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/datadetector/internal/config"
	"github.com/hyperjump/datadetector/internal/extract"
	"github.com/hyperjump/datadetector/internal/fileid"
	"github.com/hyperjump/datadetector/internal/models"
	"github.com/hyperjump/datadetector/internal/storage"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type detectResponse struct {
	*models.FileResult
	Probabilities []float64 `json:"probabilities"`
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.logger.Debug("detect request",
		zap.String("content_type", up.contentType),
		zap.Int("bytes", len(up.content)),
		zap.Int("truncate_rows", up.truncateRows))

	sheets, err := s.detector.DetectSheetsReader(r.Context(), bytes.NewReader(up.content), up.options()...)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("detection failed", zap.Error(err))
		}
		s.respondError(w, status, err.Error())
		return
	}
	ct, _ := extract.ParseContentType(up.contentType)
	result := &models.FileResult{
		ID:           fileid.UploadID(),
		ContentType:  string(ct),
		Size:         int64(len(up.content)),
		TruncateRows: up.truncateRows,
		Sheets:       sheets,
		DetectedAt:   time.Now().UTC(),
	}

	status := http.StatusOK
	if storeResult(r) {
		if err := s.storage.SaveFileResult(r.Context(), result); err != nil {
			s.logger.Error("save result failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		status = http.StatusCreated
	} else {
		result.ID = ""
	}
	s.respondJSON(w, status, detectResponse{FileResult: result, Probabilities: result.Probabilities()})
}

// storeResult reports whether a detect request asked for its result to be kept. Results
// are kept unless store is a false boolean.
func storeResult(r *http.Request) bool {
	raw := r.URL.Query().Get("store")
	if raw == "" {
		return true
	}
	keep, err := strconv.ParseBool(raw)
	return err != nil || keep
}

type sheetFeatures struct {
	Index    int                `json:"index"`
	Name     string             `json:"name"`
	Features map[string]float64 `json:"features"`
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	sheets, err := s.detector.FeaturesReader(r.Context(), bytes.NewReader(up.content), up.options()...)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("feature extraction failed", zap.Error(err))
		}
		s.respondError(w, status, err.Error())
		return
	}
	out := make([]sheetFeatures, len(sheets))
	for i, sh := range sheets {
		out[i] = sheetFeatures{Index: sh.Index, Name: sh.Name, Features: sh.Features.Map()}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"sheets": out})
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		s.respondError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}
	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil || limit < 1 {
		s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	results, err := s.storage.ListFileResults(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("list results failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := s.storage.CountFiles(r.Context())
	if err != nil {
		s.logger.Error("count results failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []*models.FileResult{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"total":   total,
		"offset":  offset,
		"limit":   limit,
	})
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := s.storage.GetFileResult(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "result not found")
			return
		}
		s.logger.Error("get result failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, detectResponse{FileResult: result, Probabilities: result.Probabilities()})
}

func (s *Server) handleDeleteResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete result request", zap.String("id", id))
	if err := s.storage.DeleteFileResult(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "result not found")
			return
		}
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	files, err := s.storage.CountFiles(ctx)
	if err != nil {
		s.logger.Error("status: count files failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sheets, err := s.storage.CountSheets(ctx)
	if err != nil {
		s.logger.Error("status: count sheets failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	dataSheets, err := s.storage.CountDataSheets(ctx)
	if err != nil {
		s.logger.Error("status: count data sheets failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"files":       files,
		"sheets":      sheets,
		"data_sheets": dataSheets,
	}

	cfg := s.currentConfig()
	resp["config"] = map[string]interface{}{
		"model_runtime": cfg.Model.Runtime,
		"threshold":     cfg.Detect.Threshold,
		"truncate_rows": cfg.Detect.TruncateRows,
		"database_path": cfg.Storage.DatabasePath,
	}
	if cfg.Storage.DatabasePath != "" {
		if size, err := storage.DatabaseSizeBytes(cfg.Storage.DatabasePath); err == nil {
			resp["disk_usage_bytes"] = size
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWatchDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	dirs := s.watch.Directories()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"directories": dirs})
}

type watchAddRequest struct {
	Path string `json:"path"`
	Sync *bool  `json:"sync,omitempty"`
}

func (s *Server) handleWatchDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	var req watchAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
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
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "directory not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !info.IsDir() {
		s.respondError(w, http.StatusBadRequest, "path is not a directory")
		return
	}
	syncExisting := true
	if req.Sync != nil {
		syncExisting = *req.Sync
	}
	s.logger.Debug("watch add directory request", zap.String("path", abs), zap.Bool("sync_existing", syncExisting))
	if err := s.watch.AddDirectory(abs, syncExisting); err != nil {
		s.logger.Error("watch add directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusCreated, map[string]string{"path": abs, "status": "added"})
}

func (s *Server) handleWatchDirectoriesRemove(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		var body struct {
			Path string `json:"path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Path != "" {
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
	s.logger.Debug("watch remove directory request", zap.String("path", abs))
	if err := s.watch.RemoveDirectory(abs); err != nil {
		s.logger.Error("watch remove directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusOK, map[string]string{"path": abs, "status": "removed"})
}

// persistWatchDirectories writes the watched roots back to the config file. Failure is
// logged; the in-memory watcher already holds the change.
func (s *Server) persistWatchDirectories() {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.cfg.Watch.Directories = s.watch.Directories()
	if s.configPath == "" {
		return
	}
	if err := config.Save(s.configPath, s.cfg); err != nil {
		s.logger.Warn("failed to persist watch config", zap.Error(err))
	}
}

// currentConfig returns a snapshot of the server configuration.
func (s *Server) currentConfig() config.Config {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	return *s.cfg
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
