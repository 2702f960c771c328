package domain

import "time"

// Item is the unit of scheduling: a single row in a list or in a task
// outline. Position is a dense integer unique within the owning container;
// ascending position is display order.
type Item struct {
	ID        ItemID
	Text      string
	Completed bool
	Priority  Priority
	DueAt     *time.Time
	Position  int

	Recurring  bool
	Recurrence *RecurrencePattern

	// State is the transient lifecycle state driven by the completion
	// timer machinery. Persisted items at rest are StateActive.
	State ItemState

	CreatedAt time.Time
	UpdatedAt time.Time

	// Version is the server's optimistic-locking counter. Zero for items
	// that have never been persisted.
	Version int
}

// NewPlaceholder returns an empty editable item under a fresh temporary
// identity. Containers are never left without at least one of these.
func NewPlaceholder() Item {
	return Item{
		ID:       NewTemporaryID(),
		Priority: PriorityNone,
		State:    StateActive,
	}
}

// Clone returns a deep copy of the item.
func (it Item) Clone() Item {
	out := it
	if it.DueAt != nil {
		due := *it.DueAt
		out.DueAt = &due
	}
	out.Recurrence = it.Recurrence.Clone()
	return out
}
