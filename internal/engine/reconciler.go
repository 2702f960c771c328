// Package engine implements the optimistic item-lifecycle reconciler: a
// typed in-memory cache of containers that every mutation (user-driven or
// timer-driven) flows through, paired with asynchronous persistence against
// the remote task-storage API.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hallgrim/dayplan/internal/domain"
	"github.com/hallgrim/dayplan/internal/recurring"
)

// Default timing and expansion configuration.
const (
	// DefaultGracePeriod is how long a completed item waits before soft
	// deletion; unchecking within this window cancels the deletion.
	DefaultGracePeriod = 3 * time.Second

	// DefaultPurgeDelay is the short, non-cancellable pause between soft
	// deletion and removal, leaving room for an exit animation.
	DefaultPurgeDelay = 600 * time.Millisecond

	// DefaultGenerationHorizonDays bounds how far ahead a recurring
	// creation is materialized.
	DefaultGenerationHorizonDays = 90
)

// Config holds reconciler configuration. Zero values take the defaults
// above; Clock and Logger default to the real clock and slog.Default.
type Config struct {
	GracePeriod           time.Duration
	PurgeDelay            time.Duration
	GenerationHorizonDays int

	Clock  Clock
	Logger *slog.Logger

	// OnError receives every asynchronous persistence failure. Optional.
	OnError func(MutationError)
}

func (cfg *Config) applyDefaults() {
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}
	if cfg.PurgeDelay <= 0 {
		cfg.PurgeDelay = DefaultPurgeDelay
	}
	if cfg.GenerationHorizonDays <= 0 {
		cfg.GenerationHorizonDays = DefaultGenerationHorizonDays
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
}

// Reconciler applies every mutation to the cache first, dispatches the
// equivalent persistence call, and reconciles the authoritative response
// back in without disturbing local edits made after dispatch. All cache
// access is serialized through one mutex, so timer expiry and concurrent
// user edits on the same item are never applied out of order or lost.
type Reconciler struct {
	mu     sync.Mutex
	cache  *cache
	store  Store
	timers *timerRegistry
	gen    *recurring.Generator
	cfg    Config

	wg sync.WaitGroup
}

// New creates a reconciler persisting against store.
func New(store Store, cfg Config) *Reconciler {
	cfg.applyDefaults()
	return &Reconciler{
		cache:  newCache(),
		store:  store,
		timers: newTimerRegistry(cfg.Clock),
		gen:    recurring.NewGenerator(domain.NewTemporaryID),
		cfg:    cfg,
	}
}

// Load seeds or replaces a container in the cache, renumbering it and
// applying the placeholder policy so there is always an editable row.
func (r *Reconciler) Load(ct *domain.Container) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(ct.Items) == 0 {
		ct.Items = append(ct.Items, domain.NewPlaceholder())
	}
	ct.Renumber()
	r.cache.put(ct)
}

// Snapshot returns a deep copy of the container for rendering or
// inspection. The copy is detached from the live cache.
func (r *Reconciler) Snapshot(containerID string) (*domain.Container, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ct, ok := r.cache.get(containerID)
	if !ok {
		return nil, false
	}
	return ct.Clone(), true
}

// State returns the lifecycle state of one item.
func (r *Reconciler) State(containerID string, id domain.ItemID) (domain.ItemState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ct, ok := r.cache.get(containerID)
	if !ok {
		return "", false
	}
	it := ct.Find(id)
	if it == nil {
		return "", false
	}
	return it.State, true
}

// Wait blocks until every in-flight persistence call has completed.
func (r *Reconciler) Wait() { r.wg.Wait() }

// Close cancels all outstanding timers and drains in-flight persistence.
func (r *Reconciler) Close() {
	r.timers.stopAll()
	r.wg.Wait()
}

// CreateItem inserts a new item optimistically and dispatches the create
// call. For a recurring draft the pattern is expanded over the generation
// horizon and the whole instance batch is inserted together, each instance
// independently promotable. The returned identity is temporary until the
// server response promotes it in place.
//
// An incomplete recurring pattern is rejected synchronously, before any
// dispatch.
func (r *Reconciler) CreateItem(ctx context.Context, containerID string, draft Draft, anchor domain.ItemID) (domain.ItemID, error) {
	if draft.Recurring {
		if draft.Recurrence == nil {
			return domain.ItemID{}, domain.ErrPatternIncomplete
		}
		if err := draft.Recurrence.Validate(); err != nil {
			return domain.ItemID{}, err
		}
		if !draft.Recurrence.Submittable() {
			return domain.ItemID{}, domain.ErrPatternIncomplete
		}
		return r.createRecurring(ctx, containerID, draft)
	}
	return r.createSingle(ctx, containerID, draft, anchor)
}

func (r *Reconciler) createSingle(ctx context.Context, containerID string, draft Draft, anchor domain.ItemID) (domain.ItemID, error) {
	item := domain.NewPlaceholder()
	item.Text = draft.Text
	item.Priority = draft.Priority
	item.DueAt = draft.DueAt

	r.mu.Lock()
	ct, ok := r.cache.get(containerID)
	if !ok {
		r.mu.Unlock()
		return domain.ItemID{}, domain.ErrListNotFound
	}
	ct.InsertAfter(anchor, item)
	params := CreateItemParams{
		Text:     draft.Text,
		Priority: draft.Priority,
		DueAt:    draft.DueAt,
	}
	r.mu.Unlock()

	tempID := item.ID
	r.dispatch(ctx, func(ctx context.Context) {
		records, err := r.store.CreateItem(ctx, containerID, params)
		if err != nil || len(records) == 0 {
			if err == nil {
				err = errors.New("create returned no record")
			}
			// The item stays in the container as Temporary so the
			// user's text is not lost.
			r.report("create", containerID, tempID, errors.Join(domain.ErrPromotionFailed, err), false)
			return
		}
		r.promoteSingle(containerID, tempID, params, records[0])
	})

	return tempID, nil
}

func (r *Reconciler) createRecurring(ctx context.Context, containerID string, draft Draft) (domain.ItemID, error) {
	pattern := draft.Recurrence
	loc, err := pattern.Location()
	if err != nil {
		return domain.ItemID{}, err
	}

	rangeStart := pattern.StartDate.At(domain.TimeOfDay{}, loc)
	rangeEnd := rangeStart.AddDate(0, 0, r.cfg.GenerationHorizonDays)

	instances, err := r.gen.Instances(
		domain.Item{Text: draft.Text, Priority: draft.Priority},
		pattern, rangeStart, rangeEnd,
	)
	if err != nil {
		return domain.ItemID{}, err
	}
	if len(instances) == 0 {
		return domain.ItemID{}, domain.ErrPatternIncomplete
	}

	r.mu.Lock()
	ct, ok := r.cache.get(containerID)
	if !ok {
		r.mu.Unlock()
		return domain.ItemID{}, domain.ErrListNotFound
	}
	for _, inst := range instances {
		ct.Items = append(ct.Items, inst)
	}
	ct.Renumber()
	r.mu.Unlock()

	params := CreateItemParams{
		Text:       draft.Text,
		Priority:   draft.Priority,
		Recurring:  true,
		Recurrence: pattern.Clone(),
	}
	firstID := instances[0].ID
	predicted := make(map[time.Time]domain.ItemID, len(instances))
	for _, inst := range instances {
		predicted[inst.DueAt.UTC()] = inst.ID
	}

	r.dispatch(ctx, func(ctx context.Context) {
		records, err := r.store.CreateItem(ctx, containerID, params)
		if err != nil {
			r.report("create_recurring", containerID, firstID, errors.Join(domain.ErrPromotionFailed, err), false)
			return
		}
		r.promoteBatch(containerID, predicted, params, records)
	})

	return firstID, nil
}

// promoteSingle swaps the temporary identity for the server one at the same
// index and merges the server-owned fields. Text committed while the create
// was in flight is pushed in a follow-up update now that the item has a
// server identity.
func (r *Reconciler) promoteSingle(containerID string, tempID domain.ItemID, sent CreateItemParams, record ItemRecord) {
	r.mu.Lock()
	persistedID := domain.PersistedID(record.ID)
	ct, ok := r.cache.get(containerID)
	if !ok {
		r.mu.Unlock()
		return
	}
	if !ct.Promote(tempID, persistedID) {
		r.mu.Unlock()
		// Deleted locally before the create resolved; remove remotely.
		r.deleteRemote(context.Background(), containerID, persistedID)
		return
	}
	it := ct.Find(persistedID)
	mergeSentText(it, sent.Text, record)
	var pending *ItemRecord
	if it.Text != record.Text {
		rec, _ := recordFromItem(*it)
		pending = &rec
	}
	// The server appended the record at the tail; an anchored mid-list
	// insert needs the shifted suffix pushed so the remote order matches
	// the local one.
	var suffix []PositionUpdate
	if idx := ct.IndexOf(persistedID); idx >= 0 && idx < len(ct.Items)-1 {
		suffix = positionUpdates(ct, idx)
	}
	r.mu.Unlock()

	if len(suffix) > 0 {
		r.dispatch(context.Background(), func(ctx context.Context) {
			r.syncPositions(ctx, "insert_renumber", containerID, suffix)
		})
	}
	if pending != nil {
		r.dispatch(context.Background(), func(ctx context.Context) {
			resp, err := r.store.UpdateItem(ctx, containerID, *pending)
			if err != nil {
				r.report("promote_flush", containerID, persistedID, err, false)
				return
			}
			r.merge(containerID, persistedID, *pending, resp)
		})
	}
}

// promoteBatch reconciles a recurring create response against the
// optimistically inserted instances. The server is authoritative for the
// batch: unpredicted records are inserted, predicted instances the server
// did not return are removed.
func (r *Reconciler) promoteBatch(containerID string, predicted map[time.Time]domain.ItemID, sent CreateItemParams, records []ItemRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ct, ok := r.cache.get(containerID)
	if !ok {
		return
	}

	matched := make(map[domain.ItemID]bool, len(predicted))
	for _, rec := range records {
		var key time.Time
		if rec.DueAt != nil {
			key = rec.DueAt.UTC()
		}
		persistedID := domain.PersistedID(rec.ID)
		if tempID, ok := predicted[key]; ok {
			if ct.Promote(tempID, persistedID) {
				matched[tempID] = true
				mergeSentText(ct.Find(persistedID), sent.Text, rec)
				continue
			}
		}
		ct.Append(itemFromRecord(rec))
	}

	for _, tempID := range predicted {
		if !matched[tempID] {
			ct.Remove(tempID)
		}
	}
}

// CommitText records the outcome of one edit session as an explicit
// (original, candidate) pair. The cache always reflects the candidate; the
// update call is only dispatched when the committed text differs from the
// value captured when the editor took focus, so unchanged commits cost no
// remote write.
func (r *Reconciler) CommitText(ctx context.Context, containerID string, id domain.ItemID, original, candidate string) error {
	r.mu.Lock()
	ct, ok := r.cache.get(containerID)
	if !ok {
		r.mu.Unlock()
		return domain.ErrListNotFound
	}
	it := ct.Find(id)
	if it == nil {
		r.mu.Unlock()
		return domain.ErrItemNotFound
	}
	previous := it.Text
	it.Text = candidate
	record, persisted := recordFromItem(*it)
	r.mu.Unlock()

	if candidate == original {
		return nil
	}
	if !persisted {
		// Not yet promoted; the pending create carries the latest text
		// merge via the sent-snapshot comparison.
		return nil
	}

	r.dispatch(ctx, func(ctx context.Context) {
		resp, err := r.store.UpdateItem(ctx, containerID, record)
		if err != nil {
			r.handleUpdateFailure("commit_text", containerID, id, err, func(it *domain.Item) {
				if it.Text == candidate {
					it.Text = previous
				}
			})
			return
		}
		r.merge(containerID, id, record, resp)
	})
	return nil
}

// ToggleComplete drives the completion state machine. Checking an active
// item starts the cancellable grace timer; checking it again within the
// grace window cancels the pending deletion and issues a plain mark-active
// update instead.
func (r *Reconciler) ToggleComplete(ctx context.Context, containerID string, id domain.ItemID) error {
	r.mu.Lock()
	ct, ok := r.cache.get(containerID)
	if !ok {
		r.mu.Unlock()
		return domain.ErrListNotFound
	}
	it := ct.Find(id)
	if it == nil {
		r.mu.Unlock()
		return domain.ErrItemNotFound
	}

	switch it.State {
	case domain.StateActive:
		it.Completed = true
		it.State = domain.StateCompletedPending
		record, persisted := recordFromItem(*it)
		r.mu.Unlock()

		r.timers.schedule(id, r.cfg.GracePeriod, func() {
			r.onGraceExpired(containerID, id)
		})
		if persisted {
			r.dispatchUpdate(ctx, "complete", containerID, id, record, true)
		}
		return nil

	case domain.StateCompletedPending:
		it.Completed = false
		it.State = domain.StateActive
		record, persisted := recordFromItem(*it)
		r.mu.Unlock()

		r.timers.cancel(id)
		if persisted {
			r.dispatchUpdate(ctx, "uncomplete", containerID, id, record, false)
		}
		return nil

	default:
		// Soft-deleted items are past the point of interaction.
		r.mu.Unlock()
		return nil
	}
}

// onGraceExpired runs when the grace timer fires. State is re-checked under
// the lock: an uncheck that raced the timer wins, and the item stays
// active.
func (r *Reconciler) onGraceExpired(containerID string, id domain.ItemID) {
	r.mu.Lock()
	ct, ok := r.cache.get(containerID)
	if !ok {
		r.mu.Unlock()
		return
	}
	it := ct.Find(id)
	if it == nil || it.State != domain.StateCompletedPending {
		r.mu.Unlock()
		return
	}
	it.State = domain.StateSoftDeleted
	r.mu.Unlock()

	r.timers.schedule(id, r.cfg.PurgeDelay, func() {
		r.onPurgeExpired(containerID, id)
	})
}

// onPurgeExpired removes the soft-deleted item from its container and
// issues the remote delete.
func (r *Reconciler) onPurgeExpired(containerID string, id domain.ItemID) {
	r.mu.Lock()
	ct, ok := r.cache.get(containerID)
	if !ok {
		r.mu.Unlock()
		return
	}
	it := ct.Find(id)
	if it == nil || it.State != domain.StateSoftDeleted {
		r.mu.Unlock()
		return
	}
	at := ct.IndexOf(id)
	ct.Remove(id)
	suffix := positionUpdates(ct, at)
	r.mu.Unlock()

	if id.IsPersisted() {
		r.dispatch(context.Background(), func(ctx context.Context) {
			r.deleteRemote(ctx, containerID, id)
			r.syncPositions(ctx, "purge_renumber", containerID, suffix)
		})
	}
}

// DeleteItem removes the item immediately, renumbers the remainder, and
// dispatches the remote delete plus a partial position update for the
// suffix after the removed index.
func (r *Reconciler) DeleteItem(ctx context.Context, containerID string, id domain.ItemID) error {
	r.mu.Lock()
	ct, ok := r.cache.get(containerID)
	if !ok {
		r.mu.Unlock()
		return domain.ErrListNotFound
	}
	at := ct.IndexOf(id)
	if at < 0 {
		r.mu.Unlock()
		return domain.ErrItemNotFound
	}
	ct.Remove(id)
	suffix := positionUpdates(ct, at)
	r.mu.Unlock()

	r.timers.cancel(id)

	if !id.IsPersisted() {
		return nil
	}
	r.dispatch(ctx, func(ctx context.Context) {
		r.deleteRemote(ctx, containerID, id)
		r.syncPositions(ctx, "delete_renumber", containerID, suffix)
	})
	return nil
}

// MoveItem relocates the item at fromIndex to toIndex and persists the new
// ordering in one batched call, falling back to one update per item when
// the batch fails. The local order is never reverted by a reorder
// persistence failure; the fallback is the recovery.
func (r *Reconciler) MoveItem(ctx context.Context, containerID string, fromIndex, toIndex int) error {
	r.mu.Lock()
	ct, ok := r.cache.get(containerID)
	if !ok {
		r.mu.Unlock()
		return domain.ErrListNotFound
	}
	if !ct.Move(fromIndex, toIndex) {
		r.mu.Unlock()
		return domain.ErrItemNotFound
	}
	order := positionUpdates(ct, 0)
	records := persistedRecords(ct)
	r.mu.Unlock()

	r.dispatch(ctx, func(ctx context.Context) {
		if err := r.store.UpdatePositions(ctx, containerID, order); err == nil {
			return
		}
		// Batch failed: persist the reorder one item at a time rather
		// than dropping it.
		for _, rec := range records {
			if _, err := r.store.UpdateItem(ctx, containerID, rec); err != nil {
				r.report("reorder_fallback", containerID, domain.PersistedID(rec.ID), err, false)
			}
		}
	})
	return nil
}

// MoveToDate moves the item to another due date, keeping its wall-clock
// time. The optimistic change is rolled back if the server refuses the
// move.
func (r *Reconciler) MoveToDate(ctx context.Context, containerID string, id domain.ItemID, target domain.Date) error {
	r.mu.Lock()
	ct, ok := r.cache.get(containerID)
	if !ok {
		r.mu.Unlock()
		return domain.ErrListNotFound
	}
	it := ct.Find(id)
	if it == nil {
		r.mu.Unlock()
		return domain.ErrItemNotFound
	}
	previous := it.DueAt
	moved := retarget(it.DueAt, target)
	it.DueAt = moved
	r.mu.Unlock()

	if !id.IsPersisted() {
		return nil
	}
	r.dispatch(ctx, func(ctx context.Context) {
		accepted, err := r.store.MoveToDate(ctx, containerID, id.Value(), target)
		if err == nil && accepted {
			return
		}
		if err == nil {
			err = errors.New("server refused move")
		}
		r.handleUpdateFailure("move_to_date", containerID, id, err, func(it *domain.Item) {
			if sameInstant(it.DueAt, moved) {
				it.DueAt = previous
			}
		})
	})
	return nil
}

// MoveContainerToDate reschedules every dated item in the container to the
// target date, keeping each item's wall-clock time, and persists the move
// with one container-level call. Undated items stay undated. The optimistic
// change is rolled back if the server refuses the move; a transient failure
// keeps it.
func (r *Reconciler) MoveContainerToDate(ctx context.Context, containerID string, target domain.Date) error {
	r.mu.Lock()
	ct, ok := r.cache.get(containerID)
	if !ok {
		r.mu.Unlock()
		return domain.ErrListNotFound
	}
	previous := make(map[domain.ItemID]*time.Time)
	moved := make(map[domain.ItemID]*time.Time)
	for i := range ct.Items {
		it := &ct.Items[i]
		if it.DueAt == nil {
			continue
		}
		previous[it.ID] = it.DueAt
		m := retarget(it.DueAt, target)
		it.DueAt = m
		moved[it.ID] = m
	}
	r.mu.Unlock()

	if len(moved) == 0 {
		return nil
	}
	r.dispatch(ctx, func(ctx context.Context) {
		accepted, err := r.store.MoveContainerToDate(ctx, containerID, target)
		if err == nil && accepted {
			return
		}
		if err == nil {
			err = errors.New("server refused move")
		}
		if errors.Is(err, domain.ErrTransientNetwork) {
			r.report("move_container", containerID, domain.ItemID{}, err, false)
			return
		}
		r.mu.Lock()
		if ct, ok := r.cache.get(containerID); ok {
			for i := range ct.Items {
				it := &ct.Items[i]
				if m, ok := moved[it.ID]; ok && sameInstant(it.DueAt, m) {
					it.DueAt = previous[it.ID]
				}
			}
		}
		r.mu.Unlock()
		r.report("move_container", containerID, domain.ItemID{}, err, true)
	})
	return nil
}

// dispatchUpdate issues a full-replace update for a completion toggle. A
// definitive failure reverts the toggle, but only if no later toggle has
// changed the flag again. Reverting a failed uncheck restores the pending
// deletion, grace timer included, so the item does not strand as completed
// but never deleted.
func (r *Reconciler) dispatchUpdate(ctx context.Context, op, containerID string, id domain.ItemID, record ItemRecord, completed bool) {
	r.dispatch(ctx, func(ctx context.Context) {
		resp, err := r.store.UpdateItem(ctx, containerID, record)
		if err != nil {
			r.handleUpdateFailure(op, containerID, id, err, func(it *domain.Item) {
				if it.Completed != completed {
					return
				}
				it.Completed = !completed
				if completed {
					if it.State == domain.StateCompletedPending {
						it.State = domain.StateActive
						r.timers.cancel(id)
					}
				} else if it.State == domain.StateActive {
					it.State = domain.StateCompletedPending
					r.timers.schedule(id, r.cfg.GracePeriod, func() {
						r.onGraceExpired(containerID, id)
					})
				}
			})
			return
		}
		r.merge(containerID, id, record, resp)
	})
}

// handleUpdateFailure classifies a persistence failure. Conflicts drop the
// dangling local copy; transient failures keep the optimistic state;
// definitive failures roll back via revert. Every outcome is reported.
func (r *Reconciler) handleUpdateFailure(op, containerID string, id domain.ItemID, err error, revert func(*domain.Item)) {
	switch {
	case isConflict(err):
		r.mu.Lock()
		if ct, ok := r.cache.get(containerID); ok {
			ct.Remove(id)
		}
		r.mu.Unlock()
		r.timers.cancel(id)
		r.report(op, containerID, id, err, false)

	case errors.Is(err, domain.ErrTransientNetwork):
		r.report(op, containerID, id, err, false)

	default:
		r.mu.Lock()
		if ct, ok := r.cache.get(containerID); ok {
			if it := ct.Find(id); it != nil {
				revert(it)
			}
		}
		r.mu.Unlock()
		r.report(op, containerID, id, err, true)
	}
}

// merge folds the canonical server record back into the cached item,
// overwriting only server-owned fields. User-owned fields are taken from
// the response only when the cache still holds the value that was
// dispatched: a local edit issued after dispatch wins over the resolving
// response, regardless of network ordering.
func (r *Reconciler) merge(containerID string, id domain.ItemID, sent ItemRecord, resp ItemRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ct, ok := r.cache.get(containerID)
	if !ok {
		return
	}
	it := ct.Find(id)
	if it == nil {
		return
	}
	it.Version = resp.Version
	it.CreatedAt = resp.CreatedAt
	it.UpdatedAt = resp.UpdatedAt
	if it.Text == sent.Text {
		it.Text = resp.Text
	}
	if it.Completed == sent.Completed {
		it.Completed = resp.Completed
	}
	if sameInstant(it.DueAt, sent.DueAt) {
		it.DueAt = resp.DueAt
	}
}

func (r *Reconciler) deleteRemote(ctx context.Context, containerID string, id domain.ItemID) {
	if err := r.store.DeleteItem(ctx, containerID, id.Value()); err != nil && !isConflict(err) {
		r.report("delete", containerID, id, err, false)
	}
}

func (r *Reconciler) syncPositions(ctx context.Context, op, containerID string, order []PositionUpdate) {
	if len(order) == 0 {
		return
	}
	if err := r.store.UpdatePositions(ctx, containerID, order); err != nil {
		r.report(op, containerID, domain.ItemID{}, err, false)
	}
}

func (r *Reconciler) dispatch(ctx context.Context, fn func(context.Context)) {
	ctx = context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn(ctx)
	}()
}

func (r *Reconciler) report(op, containerID string, id domain.ItemID, err error, rolledBack bool) {
	r.cfg.Logger.Error("persistence call failed",
		"op", op, "container", containerID, "item", id.String(),
		"rolled_back", rolledBack, "error", err)
	if r.cfg.OnError != nil {
		r.cfg.OnError(MutationError{
			Op:          op,
			ContainerID: containerID,
			ItemID:      id,
			Err:         err,
			RolledBack:  rolledBack,
		})
	}
}

func isConflict(err error) bool {
	return errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrVersionConflict) ||
		errors.Is(err, domain.ErrItemNotFound) ||
		errors.Is(err, domain.ErrNotFound)
}

// recordFromItem builds the wire record for a full-replace update. The
// second return reports whether the item has a server identity yet.
func recordFromItem(it domain.Item) (ItemRecord, bool) {
	return ItemRecord{
		ID:         it.ID.Value(),
		Text:       it.Text,
		Completed:  it.Completed,
		Priority:   it.Priority,
		DueAt:      it.DueAt,
		Position:   it.Position,
		Recurring:  it.Recurring,
		Recurrence: it.Recurrence.Clone(),
		Version:    it.Version,
	}, it.ID.IsPersisted()
}

func itemFromRecord(rec ItemRecord) domain.Item {
	return domain.Item{
		ID:         domain.PersistedID(rec.ID),
		Text:       rec.Text,
		Completed:  rec.Completed,
		Priority:   rec.Priority,
		DueAt:      rec.DueAt,
		Recurring:  rec.Recurring,
		Recurrence: rec.Recurrence,
		State:      domain.StateActive,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
		Version:    rec.Version,
	}
}

// mergeSentText applies the server record to a just-promoted item,
// preserving text edited after the create was dispatched.
func mergeSentText(it *domain.Item, sentText string, rec ItemRecord) {
	if it == nil {
		return
	}
	it.Version = rec.Version
	it.CreatedAt = rec.CreatedAt
	it.UpdatedAt = rec.UpdatedAt
	if it.Text == sentText {
		it.Text = rec.Text
	}
}

// positionUpdates returns the remote position entries for the suffix of the
// container starting at index from, persisted items only. Temporary items
// get their position on promotion.
func positionUpdates(ct *domain.Container, from int) []PositionUpdate {
	var out []PositionUpdate
	for i := from; i < len(ct.Items); i++ {
		it := ct.Items[i]
		if it.ID.IsPersisted() {
			out = append(out, PositionUpdate{ID: it.ID.Value(), Position: it.Position})
		}
	}
	return out
}

func persistedRecords(ct *domain.Container) []ItemRecord {
	var out []ItemRecord
	for _, it := range ct.Items {
		if rec, ok := recordFromItem(it); ok {
			out = append(out, rec)
		}
	}
	return out
}

// retarget moves an instant to the target calendar date, keeping its
// wall-clock time and location. A nil due date lands at midnight on the
// target date.
func retarget(due *time.Time, target domain.Date) *time.Time {
	loc := time.Local
	var tod domain.TimeOfDay
	if due != nil {
		loc = due.Location()
		tod = domain.TimeOfDay{Hour: due.Hour(), Minute: due.Minute()}
	}
	moved := target.At(tod, loc)
	return &moved
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
