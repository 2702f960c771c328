package recurring

import (
	"fmt"
	"time"

	"github.com/hallgrim/dayplan/internal/domain"
)

// Generator materializes item instances from a recurrence pattern. The same
// generator backs both sides of the create call: the client feeds it a
// temporary-identity factory for optimistic instances, the server a
// persisted-identity factory. Because expansion is deterministic, the two
// sides agree on the instance dates.
type Generator struct {
	engine *Engine
	newID  func() domain.ItemID
}

// NewGenerator creates a generator that mints instance identities with
// newID.
func NewGenerator(newID func() domain.ItemID) *Generator {
	return &Generator{engine: NewEngine(), newID: newID}
}

// Instances expands the pattern over [rangeStart, rangeEnd] and returns one
// item per occurrence, carrying the draft's text and priority. Each instance
// is due at its occurrence instant and is independently promotable.
func (g *Generator) Instances(draft domain.Item, pattern *domain.RecurrencePattern, rangeStart, rangeEnd time.Time) ([]domain.Item, error) {
	occurrences, err := g.engine.Expand(pattern, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to expand pattern: %w", err)
	}

	now := time.Now().UTC()
	items := make([]domain.Item, 0, len(occurrences))
	for _, occ := range occurrences {
		due := occ
		items = append(items, domain.Item{
			ID:         g.newID(),
			Text:       draft.Text,
			Priority:   draft.Priority,
			DueAt:      &due,
			Recurring:  true,
			Recurrence: pattern.Clone(),
			State:      domain.StateActive,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return items, nil
}
