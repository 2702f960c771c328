package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hallgrim/dayplan/internal/domain"
)

// fakeClock drives timer expiry deterministically from the test body.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	when    time.Time
	fn      func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, when: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward, firing due timers in order. Callbacks run
// without the clock lock held, so they may schedule follow-up timers, which
// fire too if they fall within the advanced window.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.when.After(target) {
				continue
			}
			if next == nil || t.when.Before(next.when) {
				next = t
			}
		}
		if next == nil {
			break
		}
		if next.when.After(c.now) {
			c.now = next.when
		}
		next.fired = true
		fn := next.fn
		c.mu.Unlock()
		fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// fakeStore is a function-field test double for the remote task-storage
// API. Unset fields succeed with canned responses; every call is recorded.
type fakeStore struct {
	mu sync.Mutex

	createFn    func(containerID string, params CreateItemParams) ([]ItemRecord, error)
	updateFn    func(containerID string, record ItemRecord) (ItemRecord, error)
	deleteFn    func(containerID, itemID string) error
	positionsFn func(containerID string, order []PositionUpdate) error
	moveFn      func(containerID, itemID string, target domain.Date) (bool, error)
	moveListFn  func(containerID string, target domain.Date) (bool, error)

	nextID    int
	creates   []CreateItemParams
	updates   []ItemRecord
	deletes   []string
	reorders  [][]PositionUpdate
	dateMoves []string
	listMoves []domain.Date
}

func newFakeStore() *fakeStore { return &fakeStore{} }

func (s *fakeStore) newServerID() string {
	s.nextID++
	return fmt.Sprintf("srv-%d", s.nextID)
}

func (s *fakeStore) CreateItem(_ context.Context, containerID string, params CreateItemParams) ([]ItemRecord, error) {
	s.mu.Lock()
	s.creates = append(s.creates, params)
	fn := s.createFn
	if fn != nil {
		s.mu.Unlock()
		return fn(containerID, params)
	}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := ItemRecord{
		ID:         s.newServerID(),
		Text:       params.Text,
		Priority:   params.Priority,
		DueAt:      params.DueAt,
		Recurring:  params.Recurring,
		Recurrence: params.Recurrence,
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    1,
	}
	s.mu.Unlock()
	return []ItemRecord{rec}, nil
}

func (s *fakeStore) UpdateItem(_ context.Context, containerID string, record ItemRecord) (ItemRecord, error) {
	s.mu.Lock()
	s.updates = append(s.updates, record)
	fn := s.updateFn
	s.mu.Unlock()
	if fn != nil {
		return fn(containerID, record)
	}
	record.Version++
	return record, nil
}

func (s *fakeStore) DeleteItem(_ context.Context, containerID, itemID string) error {
	s.mu.Lock()
	s.deletes = append(s.deletes, itemID)
	fn := s.deleteFn
	s.mu.Unlock()
	if fn != nil {
		return fn(containerID, itemID)
	}
	return nil
}

func (s *fakeStore) UpdatePositions(_ context.Context, containerID string, order []PositionUpdate) error {
	s.mu.Lock()
	s.reorders = append(s.reorders, order)
	fn := s.positionsFn
	s.mu.Unlock()
	if fn != nil {
		return fn(containerID, order)
	}
	return nil
}

func (s *fakeStore) MoveToDate(_ context.Context, containerID, itemID string, target domain.Date) (bool, error) {
	s.mu.Lock()
	s.dateMoves = append(s.dateMoves, itemID)
	fn := s.moveFn
	s.mu.Unlock()
	if fn != nil {
		return fn(containerID, itemID, target)
	}
	return true, nil
}

func (s *fakeStore) MoveContainerToDate(_ context.Context, containerID string, target domain.Date) (bool, error) {
	s.mu.Lock()
	s.listMoves = append(s.listMoves, target)
	fn := s.moveListFn
	s.mu.Unlock()
	if fn != nil {
		return fn(containerID, target)
	}
	return true, nil
}

func (s *fakeStore) createCalls() []CreateItemParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CreateItemParams(nil), s.creates...)
}

func (s *fakeStore) updateCalls() []ItemRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ItemRecord(nil), s.updates...)
}

func (s *fakeStore) deleteCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deletes...)
}

func (s *fakeStore) reorderCalls() [][]PositionUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]PositionUpdate(nil), s.reorders...)
}

func (s *fakeStore) listMoveCalls() []domain.Date {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Date(nil), s.listMoves...)
}

// errorCollector gathers OnError reports for assertions.
type errorCollector struct {
	mu     sync.Mutex
	errors []MutationError
}

func (c *errorCollector) collect(me MutationError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, me)
}

func (c *errorCollector) all() []MutationError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]MutationError(nil), c.errors...)
}
