package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hallgrim/dayplan/internal/api"
	"github.com/hallgrim/dayplan/internal/domain"
	"github.com/hallgrim/dayplan/internal/http/response"
	"github.com/hallgrim/dayplan/internal/storage/sql/repository"
)

// CreateItem handles POST /v1/lists/{listID}/items. A recurring request is
// expanded over the generation horizon and persisted as one batch; the
// response carries every created record.
func (s *Server) CreateItem(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")

	var req api.CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}
	if err := validateText(req.Text); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	priority, err := domain.NewPriority(req.Priority)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	var items []repository.Item
	if req.IsRecurring {
		items, err = s.expandRecurring(req, priority)
		if err != nil {
			response.FromDomainError(w, r, err)
			return
		}
	} else {
		now := time.Now().UTC()
		items = []repository.Item{{
			ID:        newPersistedID().Value(),
			Text:      req.Text,
			Priority:  int(priority),
			DueAt:     req.DueDate,
			CreatedAt: now,
			UpdatedAt: now,
		}}
	}

	created, err := s.store.CreateItems(r.Context(), listID, items)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.Created(w, api.CreateItemResponse{Items: itemsToDTOs(created)})
}

func (s *Server) expandRecurring(req api.CreateItemRequest, priority domain.Priority) ([]repository.Item, error) {
	pattern := req.RecurrencePattern
	if pattern == nil {
		return nil, domain.ErrPatternIncomplete
	}
	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	if !pattern.Submittable() {
		return nil, domain.ErrPatternIncomplete
	}
	loc, err := pattern.Location()
	if err != nil {
		return nil, err
	}

	rangeStart := pattern.StartDate.At(domain.TimeOfDay{}, loc)
	rangeEnd := rangeStart.AddDate(0, 0, s.cfg.GenerationHorizonDays)
	instances, err := s.generator.Instances(
		domain.Item{Text: req.Text, Priority: priority},
		pattern, rangeStart, rangeEnd,
	)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, domain.ErrPatternIncomplete
	}

	items := make([]repository.Item, 0, len(instances))
	for _, inst := range instances {
		items = append(items, repository.Item{
			ID:         inst.ID.Value(),
			Text:       inst.Text,
			Priority:   int(inst.Priority),
			DueAt:      inst.DueAt,
			Recurring:  true,
			Recurrence: inst.Recurrence,
			CreatedAt:  inst.CreatedAt,
			UpdatedAt:  inst.UpdatedAt,
		})
	}
	return items, nil
}

// UpdateItem handles PUT /v1/lists/{listID}/items/{itemID} with full-replace
// semantics.
func (s *Server) UpdateItem(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	itemID := chi.URLParam(r, "itemID")

	var req api.UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}
	if err := validateText(req.Item.Text); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	priority, err := domain.NewPriority(req.Item.Priority)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	updated, err := s.store.UpdateItem(r.Context(), repository.Item{
		ID:         itemID,
		ListID:     listID,
		Text:       req.Item.Text,
		Completed:  req.Item.Completed,
		Priority:   int(priority),
		DueAt:      req.Item.DueDate,
		Recurring:  req.Item.IsRecurring,
		Recurrence: req.Item.RecurrencePattern,
		Version:    req.Item.Version,
	})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, api.ItemResponse{Item: itemToDTO(updated)})
}

// DeleteItem handles DELETE /v1/lists/{listID}/items/{itemID}.
func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	itemID := chi.URLParam(r, "itemID")

	if err := s.store.DeleteItem(r.Context(), listID, itemID); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.NoContent(w)
}

// Reorder handles POST /v1/lists/{listID}/items:reorder, persisting a whole
// ordering in one transaction.
func (s *Server) Reorder(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")

	var req api.ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}
	positions := make([]repository.Position, 0, len(req.Positions))
	for _, p := range req.Positions {
		positions = append(positions, repository.Position{ID: p.ID, Position: p.Position})
	}

	if err := s.store.UpdatePositions(r.Context(), listID, positions); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.NoContent(w)
}

// Move handles POST /v1/lists/{listID}/items/{itemID}:move.
func (s *Server) Move(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	itemID := chi.URLParam(r, "itemID")

	var req api.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}
	if req.TargetDate.IsZero() {
		response.BadRequest(w, "targetDate is required")
		return
	}

	moved, err := s.store.MoveItemDate(r.Context(), listID, itemID, req.TargetDate)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, api.MoveResponse{Moved: moved})
}
