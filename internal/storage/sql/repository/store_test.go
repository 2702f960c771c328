package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hallgrim/dayplan/internal/domain"
	sqlstorage "github.com/hallgrim/dayplan/internal/storage/sql"
	"github.com/hallgrim/dayplan/internal/storage/sql/repository"
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	store, err := sqlstorage.NewStore(context.Background(), sqlstorage.DBConfig{
		Driver: sqlstorage.DriverSQLite,
		DSN:    ":memory:",
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestList(t *testing.T, store *repository.Store) string {
	t.Helper()
	listID := "list-" + t.Name()
	require.NoError(t, store.CreateList(context.Background(), repository.List{
		ID:        listID,
		Title:     "Test",
		CreatedAt: time.Now().UTC(),
	}))
	return listID
}

func seedItems(t *testing.T, store *repository.Store, listID string, texts ...string) []repository.Item {
	t.Helper()
	now := time.Now().UTC()
	items := make([]repository.Item, 0, len(texts))
	for i, text := range texts {
		items = append(items, repository.Item{
			ID:        fmt.Sprintf("item-%d", i+1),
			Text:      text,
			Priority:  int(domain.PriorityNone),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	created, err := store.CreateItems(context.Background(), listID, items)
	require.NoError(t, err)
	return created
}

func TestCreateAndGetList(t *testing.T) {
	store := newTestStore(t)
	listID := newTestList(t, store)

	list, items, err := store.GetList(context.Background(), listID)
	require.NoError(t, err)
	assert.Equal(t, listID, list.ID)
	assert.Equal(t, "Test", list.Title)
	assert.Empty(t, items)
}

func TestGetList_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, _, err := store.GetList(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrListNotFound)
}

func TestCreateItems_TailPositions(t *testing.T) {
	store := newTestStore(t)
	listID := newTestList(t, store)

	first := seedItems(t, store, listID, "a", "b")
	assert.Equal(t, 0, first[0].Position)
	assert.Equal(t, 1, first[1].Position)
	assert.Equal(t, 1, first[0].Version)

	// A later batch continues at the tail.
	now := time.Now().UTC()
	second, err := store.CreateItems(context.Background(), listID, []repository.Item{
		{ID: "item-3", Text: "c", CreatedAt: now, UpdatedAt: now},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second[0].Position)

	_, items, err := store.GetList(context.Background(), listID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, it := range items {
		assert.Equal(t, i, it.Position)
	}
}

func TestCreateItems_UnknownList(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()
	_, err := store.CreateItems(context.Background(), "missing", []repository.Item{
		{ID: "item-1", Text: "a", CreatedAt: now, UpdatedAt: now},
	})
	require.ErrorIs(t, err, domain.ErrListNotFound)
}

func TestCreateItems_RecurrenceRoundTrip(t *testing.T) {
	store := newTestStore(t)
	listID := newTestList(t, store)

	due := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	pattern := &domain.RecurrencePattern{
		Type:       domain.PatternWeekly,
		DaysOfWeek: []int{1, 3, 5},
		TimeOfDay:  domain.TimeOfDay{Hour: 9},
		TimeZone:   "Europe/Oslo",
		StartDate:  domain.Date{Year: 2024, Month: time.June, Day: 10},
	}
	now := time.Now().UTC()
	_, err := store.CreateItems(context.Background(), listID, []repository.Item{{
		ID:         "item-1",
		Text:       "standup",
		DueAt:      &due,
		Recurring:  true,
		Recurrence: pattern,
		CreatedAt:  now,
		UpdatedAt:  now,
	}})
	require.NoError(t, err)

	got, err := store.GetItem(context.Background(), listID, "item-1")
	require.NoError(t, err)
	assert.True(t, got.Recurring)
	require.NotNil(t, got.Recurrence)
	assert.Equal(t, *pattern, *got.Recurrence)
	require.NotNil(t, got.DueAt)
	assert.True(t, got.DueAt.Equal(due))
}

func TestUpdateItem_BumpsVersion(t *testing.T) {
	store := newTestStore(t)
	listID := newTestList(t, store)
	created := seedItems(t, store, listID, "a")

	item := created[0]
	item.ListID = listID
	item.Text = "edited"
	item.Completed = true

	updated, err := store.UpdateItem(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)
	assert.True(t, updated.Completed)
	assert.Equal(t, 2, updated.Version)

	updated.Text = "edited twice"
	again, err := store.UpdateItem(context.Background(), updated)
	require.NoError(t, err)
	assert.Equal(t, 3, again.Version)
}

func TestUpdateItem_StaleVersionConflicts(t *testing.T) {
	store := newTestStore(t)
	listID := newTestList(t, store)
	created := seedItems(t, store, listID, "a")

	item := created[0]
	item.ListID = listID
	item.Text = "edited"

	_, err := store.UpdateItem(context.Background(), item)
	require.NoError(t, err)

	// Replaying the same write against the bumped row must fail, not
	// silently clobber the newer state.
	item.Text = "stale edit"
	_, err = store.UpdateItem(context.Background(), item)
	require.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestUpdateItem_NotFound(t *testing.T) {
	store := newTestStore(t)
	listID := newTestList(t, store)

	_, err := store.UpdateItem(context.Background(), repository.Item{ID: "missing", ListID: listID})
	require.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestDeleteItem_SoftDeleteAndRenumber(t *testing.T) {
	store := newTestStore(t)
	listID := newTestList(t, store)
	seedItems(t, store, listID, "a", "b", "c", "d")

	require.NoError(t, store.DeleteItem(context.Background(), listID, "item-2"))

	_, items, err := store.GetList(context.Background(), listID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, it := range items {
		assert.Equal(t, i, it.Position)
	}
	assert.Equal(t, []string{"a", "c", "d"}, rowTexts(items))

	_, err = store.GetItem(context.Background(), listID, "item-2")
	require.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestDeleteItem_NotFound(t *testing.T) {
	store := newTestStore(t)
	listID := newTestList(t, store)
	require.ErrorIs(t, store.DeleteItem(context.Background(), listID, "missing"), domain.ErrItemNotFound)
}

func TestUpdatePositions_Batch(t *testing.T) {
	store := newTestStore(t)
	listID := newTestList(t, store)
	seedItems(t, store, listID, "a", "b", "c")

	err := store.UpdatePositions(context.Background(), listID, []repository.Position{
		{ID: "item-3", Position: 0},
		{ID: "item-1", Position: 1},
		{ID: "item-2", Position: 2},
	})
	require.NoError(t, err)

	_, items, err := store.GetList(context.Background(), listID)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, rowTexts(items))
}

func TestUpdatePositions_UnknownIDFailsBatch(t *testing.T) {
	store := newTestStore(t)
	listID := newTestList(t, store)
	seedItems(t, store, listID, "a", "b")

	err := store.UpdatePositions(context.Background(), listID, []repository.Position{
		{ID: "item-2", Position: 0},
		{ID: "missing", Position: 1},
	})
	require.ErrorIs(t, err, domain.ErrItemNotFound)

	// The whole batch rolled back: original order intact.
	_, items, err := store.GetList(context.Background(), listID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rowTexts(items))
}

func TestMoveItemDate_KeepsWallClock(t *testing.T) {
	store := newTestStore(t)
	listID := newTestList(t, store)

	due := time.Date(2024, 6, 1, 14, 45, 0, 0, time.UTC)
	now := time.Now().UTC()
	_, err := store.CreateItems(context.Background(), listID, []repository.Item{{
		ID: "item-1", Text: "a", DueAt: &due, CreatedAt: now, UpdatedAt: now,
	}})
	require.NoError(t, err)

	moved, err := store.MoveItemDate(context.Background(), listID, "item-1",
		domain.Date{Year: 2024, Month: time.June, Day: 20})
	require.NoError(t, err)
	assert.True(t, moved)

	got, err := store.GetItem(context.Background(), listID, "item-1")
	require.NoError(t, err)
	require.NotNil(t, got.DueAt)
	assert.True(t, got.DueAt.Equal(time.Date(2024, 6, 20, 14, 45, 0, 0, time.UTC)))
}

func TestMoveItemDate_NotFound(t *testing.T) {
	store := newTestStore(t)
	listID := newTestList(t, store)
	_, err := store.MoveItemDate(context.Background(), listID, "missing",
		domain.Date{Year: 2024, Month: time.June, Day: 20})
	require.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestMoveListDate_MovesDatedItemsOnly(t *testing.T) {
	store := newTestStore(t)
	listID := newTestList(t, store)

	dueA := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	dueB := time.Date(2024, 6, 2, 14, 30, 0, 0, time.UTC)
	now := time.Now().UTC()
	_, err := store.CreateItems(context.Background(), listID, []repository.Item{
		{ID: "item-1", Text: "a", DueAt: &dueA, CreatedAt: now, UpdatedAt: now},
		{ID: "item-2", Text: "b", DueAt: &dueB, CreatedAt: now, UpdatedAt: now},
		{ID: "item-3", Text: "c", CreatedAt: now, UpdatedAt: now},
	})
	require.NoError(t, err)

	moved, err := store.MoveListDate(context.Background(), listID,
		domain.Date{Year: 2024, Month: time.June, Day: 10})
	require.NoError(t, err)
	assert.True(t, moved)

	_, items, err := store.GetList(context.Background(), listID)
	require.NoError(t, err)
	require.Len(t, items, 3)

	require.NotNil(t, items[0].DueAt)
	assert.True(t, items[0].DueAt.Equal(time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2, items[0].Version)

	require.NotNil(t, items[1].DueAt)
	assert.True(t, items[1].DueAt.Equal(time.Date(2024, 6, 10, 14, 30, 0, 0, time.UTC)))
	assert.Equal(t, 2, items[1].Version)

	assert.Nil(t, items[2].DueAt)
	assert.Equal(t, 1, items[2].Version)
}

func TestMoveListDate_UnknownList(t *testing.T) {
	store := newTestStore(t)
	_, err := store.MoveListDate(context.Background(), "missing",
		domain.Date{Year: 2024, Month: time.June, Day: 10})
	require.ErrorIs(t, err, domain.ErrListNotFound)
}

func TestPurgeSoftDeleted_CutoffRespected(t *testing.T) {
	store := newTestStore(t)
	listID := newTestList(t, store)
	seedItems(t, store, listID, "a", "b")

	require.NoError(t, store.DeleteItem(context.Background(), listID, "item-1"))

	// A cutoff in the past purges nothing, the delete just happened.
	purged, err := store.PurgeSoftDeleted(context.Background(), time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, purged)

	purged, err = store.PurgeSoftDeleted(context.Background(), time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	// Live rows are untouched.
	_, items, err := store.GetList(context.Background(), listID)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, rowTexts(items))
}

func rowTexts(items []repository.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}
