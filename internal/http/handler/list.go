package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hallgrim/dayplan/internal/api"
	"github.com/hallgrim/dayplan/internal/http/response"
	"github.com/hallgrim/dayplan/internal/storage/sql/repository"
)

// CreateList handles POST /v1/lists.
func (s *Server) CreateList(w http.ResponseWriter, r *http.Request) {
	var req api.CreateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		response.BadRequest(w, "title is required")
		return
	}

	list := repository.List{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateList(r.Context(), list); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.Created(w, api.ListResponse{List: listToDTO(list, nil)})
}

// GetList handles GET /v1/lists/{listID}.
func (s *Server) GetList(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	list, items, err := s.store.GetList(r.Context(), listID)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, api.ListResponse{List: listToDTO(list, items)})
}

// MoveList handles POST /v1/lists/{listID}:move, rescheduling every dated
// item in the list to the target date.
func (s *Server) MoveList(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")

	var req api.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}
	if req.TargetDate.IsZero() {
		response.BadRequest(w, "targetDate is required")
		return
	}

	moved, err := s.store.MoveListDate(r.Context(), listID, req.TargetDate)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, api.MoveResponse{Moved: moved})
}
