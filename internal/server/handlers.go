package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/ruslat/internal/match"
	"github.com/hyperjump/ruslat/internal/models"
	"github.com/hyperjump/ruslat/internal/storage"
)

// handleUsersByPage answers with the ids of users whose page handle matches.
// A blank page is reported as {"error": ...} with status 200.
func (s *Server) handleUsersByPage(w http.ResponseWriter, r *http.Request) {
	// chi routes on RawPath when it is set, leaving the parameter escaped.
	page := chi.URLParam(r, "page")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(page); err == nil {
			page = unescaped
		}
	}
	s.logger.Debug("users by page request", zap.String("page", page))

	ids, err := s.engine.SearchByPage(page)
	if errors.Is(err, match.ErrEmptyQuery) {
		s.respondError(w, http.StatusOK, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("page lookup failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, ids)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.engine.Users())
}

func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	s.logger.Debug("user search request", zap.String("query", q))
	s.respondJSON(w, http.StatusOK, s.engine.Search(q))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if u, ok := s.engine.Snapshot().User(id); ok {
		s.respondJSON(w, http.StatusOK, u)
		return
	}
	s.respondError(w, http.StatusNotFound, "user not found")
}

// userBody is the payload of PUT /api/users/{id}.
type userBody struct {
	Name   string `json:"name"`
	Page   string `json:"page"`
	Avatar string `json:"avatar"`
}

// handlePutUser creates or updates one stored user and reloads the indexes.
// Edits last until the users file is imported again.
func (s *Server) handlePutUser(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		s.respondError(w, http.StatusNotImplemented, "storage not configured")
		return
	}
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var body userBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		s.respondError(w, http.StatusBadRequest, storage.ErrMissingName.Error())
		return
	}

	status := http.StatusOK
	user, err := s.storage.GetUser(ctx, id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusCreated
		user = &models.User{ID: id}
	case err != nil:
		s.logger.Error("get user failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	user.Name = body.Name
	user.Page = strings.TrimSpace(body.Page)
	user.Avatar = body.Avatar

	if err := s.storage.UpsertUser(ctx, user); err != nil {
		s.logger.Error("upsert user failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !s.reload(w, r) {
		return
	}
	s.respondJSON(w, status, user)
}

// handleDeleteUser removes one stored user and reloads the indexes.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		s.respondError(w, http.StatusNotImplemented, "storage not configured")
		return
	}
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if _, err := s.storage.GetUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "user not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.storage.DeleteUser(ctx, id); err != nil {
		s.logger.Error("delete user failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !s.reload(w, r) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reload rebuilds the engine from storage, answering 500 on failure.
func (s *Server) reload(w http.ResponseWriter, r *http.Request) bool {
	if err := s.engine.Reload(r.Context()); err != nil {
		s.logger.Error("reload failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type sizer interface {
	SizeBytes() (int64, error)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	resp := map[string]interface{}{
		"users":     len(snap.Users),
		"handles":   snap.Handles.Len(),
		"loaded_at": snap.LoadedAt.Format(time.RFC3339),
	}
	if s.storage != nil {
		count, err := s.storage.CountUsers(r.Context())
		if err != nil {
			s.logger.Error("status: count users failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["stored_users"] = count
		if sz, ok := s.storage.(sizer); ok {
			if n, err := sz.SizeBytes(); err == nil {
				resp["disk_usage_bytes"] = n
			}
		}
	}
	if s.usersFile != "" {
		resp["users_file"] = s.usersFile
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWatchFiles(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"files": s.watch.Files()})
}

// handleReload reimports the users file when one is configured, otherwise
// rebuilds the indexes from storage.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.indexer != nil && s.usersFile != "" {
		s.indexer.Forget(s.usersFile)
		res, err := s.indexer.ImportFile(ctx, s.usersFile)
		if err != nil {
			s.logger.Error("reload failed", zap.Error(err))
			s.respondError(w, statusFor(err), err.Error())
			return
		}
		s.respondJSON(w, http.StatusOK, res)
		return
	}
	if err := s.engine.Reload(ctx); err != nil {
		s.logger.Error("reload failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"users": len(s.engine.Users())})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrUnsupportedFormat),
		errors.Is(err, storage.ErrMissingName),
		errors.Is(err, storage.ErrDuplicateID):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
