// Package api defines the JSON wire contract of the task-storage API and a
// client for it. The same DTOs are served by internal/http, so client and
// server cannot drift apart.
package api

import (
	"time"

	"github.com/hallgrim/dayplan/internal/domain"
	"github.com/hallgrim/dayplan/internal/engine"
)

// ItemDTO is the wire form of an item.
type ItemDTO struct {
	ID                string                    `json:"id"`
	Text              string                    `json:"text"`
	Completed         bool                      `json:"completed"`
	Priority          int                       `json:"priority"`
	DueDate           *time.Time                `json:"dueDate,omitempty"`
	Position          int                       `json:"position"`
	IsRecurring       bool                      `json:"isRecurring"`
	RecurrencePattern *domain.RecurrencePattern `json:"recurrencePattern,omitempty"`
	CreatedAt         time.Time                 `json:"createdAt"`
	UpdatedAt         time.Time                 `json:"updatedAt"`
	Version           int                       `json:"version"`
}

// ListDTO is the wire form of a list with its ordered items.
type ListDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Items     []ItemDTO `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateListRequest creates an empty list.
type CreateListRequest struct {
	Title string `json:"title"`
}

// ListResponse wraps a single list.
type ListResponse struct {
	List ListDTO `json:"list"`
}

// CreateItemRequest creates one item, or a whole instance batch when
// IsRecurring is set and the pattern expands to multiple occurrences.
type CreateItemRequest struct {
	Text              string                    `json:"text"`
	Priority          int                       `json:"priority"`
	DueDate           *time.Time                `json:"dueDate,omitempty"`
	IsRecurring       bool                      `json:"isRecurring"`
	RecurrencePattern *domain.RecurrencePattern `json:"recurrencePattern,omitempty"`
}

// CreateItemResponse returns every created record; a single non-recurring
// create yields exactly one entry.
type CreateItemResponse struct {
	Items []ItemDTO `json:"items"`
}

// UpdateItemRequest replaces an item with full-record semantics.
type UpdateItemRequest struct {
	Item ItemDTO `json:"item"`
}

// ItemResponse wraps the canonical record after a mutation.
type ItemResponse struct {
	Item ItemDTO `json:"item"`
}

// PositionDTO is one entry of a batch reorder.
type PositionDTO struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// ReorderRequest persists a whole ordering in one call.
type ReorderRequest struct {
	Positions []PositionDTO `json:"positions"`
}

// MoveRequest moves an item to another date.
type MoveRequest struct {
	TargetDate domain.Date `json:"targetDate"`
}

// MoveResponse reports whether the server accepted the move.
type MoveResponse struct {
	Moved bool `json:"moved"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine code and a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Stable error codes used in ErrorDetail.Code.
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeValidationError = "VALIDATION_ERROR"
	CodeListNotFound    = "LIST_NOT_FOUND"
	CodeItemNotFound    = "ITEM_NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeInternalError   = "INTERNAL_ERROR"
)

// RecordToDTO converts an engine record to its wire form.
func RecordToDTO(rec engine.ItemRecord) ItemDTO {
	return ItemDTO{
		ID:                rec.ID,
		Text:              rec.Text,
		Completed:         rec.Completed,
		Priority:          int(rec.Priority),
		DueDate:           rec.DueAt,
		Position:          rec.Position,
		IsRecurring:       rec.Recurring,
		RecurrencePattern: rec.Recurrence,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
		Version:           rec.Version,
	}
}

// DTOToRecord converts a wire item to an engine record.
func DTOToRecord(dto ItemDTO) engine.ItemRecord {
	return engine.ItemRecord{
		ID:         dto.ID,
		Text:       dto.Text,
		Completed:  dto.Completed,
		Priority:   domain.Priority(dto.Priority),
		DueAt:      dto.DueDate,
		Position:   dto.Position,
		Recurring:  dto.IsRecurring,
		Recurrence: dto.RecurrencePattern,
		CreatedAt:  dto.CreatedAt,
		UpdatedAt:  dto.UpdatedAt,
		Version:    dto.Version,
	}
}

// DTOToItem converts a wire item to a cache item under its persisted
// identity.
func DTOToItem(dto ItemDTO) domain.Item {
	return domain.Item{
		ID:         domain.PersistedID(dto.ID),
		Text:       dto.Text,
		Completed:  dto.Completed,
		Priority:   domain.Priority(dto.Priority),
		DueAt:      dto.DueDate,
		Position:   dto.Position,
		Recurring:  dto.IsRecurring,
		Recurrence: dto.RecurrencePattern,
		State:      domain.StateActive,
		CreatedAt:  dto.CreatedAt,
		UpdatedAt:  dto.UpdatedAt,
		Version:    dto.Version,
	}
}

// ListToContainer converts a wire list to a cache container.
func ListToContainer(dto ListDTO) *domain.Container {
	ct := &domain.Container{ID: dto.ID, Title: dto.Title}
	for _, it := range dto.Items {
		ct.Items = append(ct.Items, DTOToItem(it))
	}
	return ct
}
