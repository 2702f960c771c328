package domain

import "fmt"

// Priority is the item priority level.
// Value object - 1 is "no priority", 4 is the highest.
type Priority int

const (
	PriorityNone   Priority = 1
	PriorityLow    Priority = 2
	PriorityMedium Priority = 3
	PriorityHigh   Priority = 4
)

// NewPriority validates and creates a Priority. Zero maps to PriorityNone.
func NewPriority(v int) (Priority, error) {
	if v == 0 {
		return PriorityNone, nil
	}
	if v < int(PriorityNone) || v > int(PriorityHigh) {
		return 0, fmt.Errorf("priority must be 1..4, got %d", v)
	}
	return Priority(v), nil
}

// ItemState is the transient lifecycle state of an item in the local cache.
// Value object - immutable string enum.
type ItemState string

const (
	// StateActive is the normal editable state.
	StateActive ItemState = "ACTIVE"
	// StateCompletedPending means the item was checked off and the
	// cancellable grace timer is running.
	StateCompletedPending ItemState = "COMPLETED_PENDING"
	// StateSoftDeleted means the grace timer fired; the item is awaiting
	// the short, non-cancellable purge delay.
	StateSoftDeleted ItemState = "SOFT_DELETED"
	// StatePurged means the item was removed from its container and the
	// remote delete was issued.
	StatePurged ItemState = "PURGED"
)
