package engine

import (
	"sync"
	"time"

	"github.com/hallgrim/dayplan/internal/domain"
)

// timerRegistry owns every outstanding completion/purge timer, keyed by item
// identity. At most one timer is outstanding per item: scheduling a new one
// implicitly cancels the previous one. The registry's lifetime is tied to
// the reconciler that owns it, so timers never leak across sessions.
type timerRegistry struct {
	mu     sync.Mutex
	clock  Clock
	timers map[domain.ItemID]Timer
}

func newTimerRegistry(clock Clock) *timerRegistry {
	return &timerRegistry{
		clock:  clock,
		timers: make(map[domain.ItemID]Timer),
	}
}

// schedule arms a timer for the item, cancelling any prior one for the same
// identity. The callback runs exactly once unless cancelled first; the
// registry entry is cleared before the callback is invoked.
func (r *timerRegistry) schedule(id domain.ItemID, d time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prior, ok := r.timers[id]; ok {
		prior.Stop()
	}
	r.timers[id] = r.clock.AfterFunc(d, func() {
		r.mu.Lock()
		delete(r.timers, id)
		r.mu.Unlock()
		fn()
	})
}

// cancel stops the item's outstanding timer, if any. It reports whether a
// timer was cancelled before firing.
func (r *timerRegistry) cancel(id domain.ItemID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.timers[id]
	if !ok {
		return false
	}
	delete(r.timers, id)
	return t.Stop()
}

// stopAll cancels every outstanding timer. Called on reconciler shutdown.
func (r *timerRegistry) stopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.timers {
		t.Stop()
		delete(r.timers, id)
	}
}
