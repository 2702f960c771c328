package engine

import (
	"fmt"
	"time"

	"github.com/hallgrim/dayplan/internal/domain"
)

// Draft is the user-entered content of a not-yet-persisted item.
type Draft struct {
	Text       string
	Priority   domain.Priority
	DueAt      *time.Time
	Recurring  bool
	Recurrence *domain.RecurrencePattern
}

// MutationError reports the asynchronous failure of one mutation's
// persistence call. Failures are isolated: one failed mutation never stops
// the reconciler loop or affects other in-flight mutations.
type MutationError struct {
	Op          string
	ContainerID string
	ItemID      domain.ItemID
	Err         error

	// RolledBack reports whether the optimistic mutation was reverted to
	// its pre-mutation snapshot.
	RolledBack bool
}

func (e MutationError) Error() string {
	return fmt.Sprintf("%s on %s (%s): %v", e.Op, e.ContainerID, e.ItemID, e.Err)
}

func (e MutationError) Unwrap() error { return e.Err }
