package engine

import "github.com/hallgrim/dayplan/internal/domain"

// cache is the strongly-typed in-memory collection of containers, keyed by
// container ID. It is owned by the reconciler and mutated only under the
// reconciler's lock; nothing else holds a reference to the live containers.
type cache struct {
	containers map[string]*domain.Container
}

func newCache() *cache {
	return &cache{containers: make(map[string]*domain.Container)}
}

func (c *cache) get(containerID string) (*domain.Container, bool) {
	ct, ok := c.containers[containerID]
	return ct, ok
}

func (c *cache) put(ct *domain.Container) {
	c.containers[ct.ID] = ct
}
