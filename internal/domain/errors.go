package domain

import "errors"

// Sentinel errors shared across the engine, the API client and the server.
// Callers match with errors.Is; wrapping sites add context with %w.

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrListNotFound indicates the specified list does not exist.
	ErrListNotFound = errors.New("list not found")

	// ErrItemNotFound indicates the specified item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidID indicates the provided ID format is invalid.
	ErrInvalidID = errors.New("invalid ID format")

	// ErrTextTooLong indicates an item text exceeds the storage limit.
	ErrTextTooLong = errors.New("item text too long")
)

// Recurrence pattern validation errors. These are rejected synchronously,
// before any persistence call is dispatched.
var (
	ErrInvalidPatternType = errors.New("invalid recurrence pattern type")
	ErrPatternIncomplete  = errors.New("recurrence pattern resolves to no occurrences")
	ErrInvalidWeekday     = errors.New("weekday must be between 0 (Sunday) and 6 (Saturday)")
	ErrInvalidMonthDay    = errors.New("day of month must be 1..31 or -1 for last day")
	ErrInvalidOrdinal     = errors.New("weekday ordinal must be 1..5 or -1 for last")
	ErrInvalidYearlyDate  = errors.New("yearly date has no valid month/day")
	ErrInvalidTimeOfDay   = errors.New("time of day must be HH:MM")
	ErrInvalidTimeZone    = errors.New("unknown IANA time zone")
	ErrEndBeforeStart     = errors.New("end date is before start date")
)

// Persistence outcome errors surfaced asynchronously by the reconciler.
var (
	// ErrTransientNetwork marks a persistence failure that may succeed on
	// retry. The optimistic mutation is kept and the failure is reported,
	// never silently swallowed.
	ErrTransientNetwork = errors.New("transient network failure")

	// ErrConflict indicates the server rejected a mutation because the
	// referenced item no longer exists (for example a concurrent delete).
	// The local copy must be dropped from the cache.
	ErrConflict = errors.New("remote item no longer exists")

	// ErrPromotionFailed indicates a temporary item could not be created on
	// the server. The item stays in the container under its temporary
	// identity so the user's text is not lost.
	ErrPromotionFailed = errors.New("item creation failed, keeping local copy")

	// ErrVersionConflict indicates an optimistic-locking version mismatch.
	ErrVersionConflict = errors.New("version conflict")
)
