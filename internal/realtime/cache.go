package realtime

import (
	"sort"
	"sync"

	"pos-service/internal/models"
)

// Cache is the local resource store keyed by kind then id. It is the same
// reducer displays run on their side: Add/Update upsert, Delete removes.
// The hub feeds it on every publish so a connecting display can be brought
// up to date with a full snapshot before live deliveries start.
type Cache struct {
	mu        sync.RWMutex
	resources map[string]map[string]models.Resource
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{resources: make(map[string]map[string]models.Resource)}
}

// Apply reduces one change envelope into the store. Deletes of unknown ids
// and envelopes without payloads are no-ops.
func (c *Cache) Apply(change Change) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch change.Op {
	case OpAdd, OpUpdate:
		if change.Payload == nil {
			return
		}
		kind := c.resources[change.ResourceType]
		if kind == nil {
			kind = make(map[string]models.Resource)
			c.resources[change.ResourceType] = kind
		}
		kind[change.ID] = change.Payload

	case OpDelete:
		delete(c.resources[change.ResourceType], change.ID)
	}
}

// Get returns the cached resource for kind/id, if present.
func (c *Cache) Get(resourceType, id string) (models.Resource, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.resources[resourceType][id]
	return r, ok
}

// Len returns the number of cached resources of the given kind.
func (c *Cache) Len(resourceType string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.resources[resourceType])
}

// Changes renders the current state as Add envelopes, ordered by kind and
// id so snapshots are deterministic.
func (c *Cache) Changes() []Change {
	c.mu.RLock()
	defer c.mu.RUnlock()

	kinds := make([]string, 0, len(c.resources))
	for kind := range c.resources {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	var changes []Change
	for _, kind := range kinds {
		ids := make([]string, 0, len(c.resources[kind]))
		for id := range c.resources[kind] {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			changes = append(changes, Added(c.resources[kind][id]))
		}
	}
	return changes
}
