package engine

import (
	"context"
	"time"

	"github.com/hallgrim/dayplan/internal/domain"
)

// CreateItemParams carries a create call to the task-storage API.
type CreateItemParams struct {
	Text       string
	Priority   domain.Priority
	DueAt      *time.Time
	Recurring  bool
	Recurrence *domain.RecurrencePattern
}

// ItemRecord is the authoritative server-side record of an item. The server
// owns the identity, the normalized timestamps and the version counter;
// everything else may be stale relative to local edits made after dispatch.
type ItemRecord struct {
	ID         string
	Text       string
	Completed  bool
	Priority   domain.Priority
	DueAt      *time.Time
	Position   int
	Recurring  bool
	Recurrence *domain.RecurrencePattern
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int
}

// PositionUpdate is one entry of a batch reorder call.
type PositionUpdate struct {
	ID       string
	Position int
}

// Store is the remote task-storage API the reconciler persists against.
// Implementations must be safe for concurrent use; calls are issued from
// persistence goroutines after the optimistic mutation has been applied.
type Store interface {
	// CreateItem persists a new item. When the params describe a
	// recurring creation the server expands the pattern and returns the
	// full instance batch; otherwise the slice holds exactly one record.
	CreateItem(ctx context.Context, containerID string, params CreateItemParams) ([]ItemRecord, error)

	// UpdateItem replaces the item with full-record semantics and returns
	// the canonical record.
	UpdateItem(ctx context.Context, containerID string, record ItemRecord) (ItemRecord, error)

	// DeleteItem removes the item.
	DeleteItem(ctx context.Context, containerID, itemID string) error

	// UpdatePositions persists a whole new ordering in one batched call.
	UpdatePositions(ctx context.Context, containerID string, order []PositionUpdate) error

	// MoveToDate moves the item to another due date. It reports whether
	// the server accepted the move.
	MoveToDate(ctx context.Context, containerID, itemID string, target domain.Date) (bool, error)

	// MoveContainerToDate reschedules every dated item in the container to
	// the target date in one call. It reports whether the server accepted
	// the move.
	MoveContainerToDate(ctx context.Context, containerID string, target domain.Date) (bool, error)
}
