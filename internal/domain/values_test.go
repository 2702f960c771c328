package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPriority_ZeroMapsToNone(t *testing.T) {
	p, err := NewPriority(0)
	require.NoError(t, err)
	assert.Equal(t, PriorityNone, p)
}

func TestNewPriority_ValidRange(t *testing.T) {
	for v := 1; v <= 4; v++ {
		p, err := NewPriority(v)
		require.NoError(t, err)
		assert.Equal(t, Priority(v), p)
	}
}

func TestNewPriority_OutOfRange(t *testing.T) {
	_, err := NewPriority(5)
	require.Error(t, err)

	_, err = NewPriority(-1)
	require.Error(t, err)
}

func TestNewPlaceholder(t *testing.T) {
	it := NewPlaceholder()

	assert.True(t, it.ID.IsTemporary())
	assert.Empty(t, it.Text)
	assert.False(t, it.Completed)
	assert.Equal(t, PriorityNone, it.Priority)
	assert.Equal(t, StateActive, it.State)
	assert.Zero(t, it.Version)
}

func TestItemClone_DeepCopiesPointers(t *testing.T) {
	due := mustParseTime(t, "2024-06-01T09:00:00Z")
	it := Item{
		ID:    PersistedID("s1"),
		Text:  "original",
		DueAt: &due,
		Recurrence: &RecurrencePattern{
			Type:       PatternWeekly,
			DaysOfWeek: []int{1, 3},
			TimeZone:   "UTC",
			StartDate:  Date{Year: 2024, Month: 6, Day: 1},
		},
	}

	clone := it.Clone()
	clone.DueAt = nil
	clone.Recurrence.DaysOfWeek[0] = 5

	require.NotNil(t, it.DueAt)
	assert.Equal(t, due, *it.DueAt)
	assert.Equal(t, []int{1, 3}, it.Recurrence.DaysOfWeek)
}
