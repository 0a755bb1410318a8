package realtime

import (
	"testing"

	"pos-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheReducer(t *testing.T) {
	cache := NewCache()

	product := models.Product{ID: "prod-1", CategoryID: "cat-1", Name: "Cola", Price: 350, Active: true}
	cache.Apply(Added(product))
	assert.Equal(t, 1, cache.Len(models.ResourceTypeProduct))

	// update replaces in place
	product.Price = 400
	cache.Apply(Updated(product))
	assert.Equal(t, 1, cache.Len(models.ResourceTypeProduct))

	got, ok := cache.Get(models.ResourceTypeProduct, "prod-1")
	require.True(t, ok)
	assert.EqualValues(t, 400, got.(models.Product).Price)

	cache.Apply(Deleted(product))
	assert.Equal(t, 0, cache.Len(models.ResourceTypeProduct))

	// deleting an unknown id is a no-op
	cache.Apply(DeletedID(models.ResourceTypeProduct, "prod-404"))
	_, ok = cache.Get(models.ResourceTypeProduct, "prod-404")
	assert.False(t, ok)
}

func TestCacheKeysByKindAndID(t *testing.T) {
	cache := NewCache()

	// same id under two kinds must not collide
	cache.Apply(Added(models.Category{ID: "shared", Name: "Drinks"}))
	cache.Apply(Added(models.Station{ID: "shared", Name: "Bar", CategoryIDs: []string{"c"}, InputStatuses: []string{"ordered"}, OutputStatus: models.StatusReady}))

	assert.Equal(t, 1, cache.Len(models.ResourceTypeCategory))
	assert.Equal(t, 1, cache.Len(models.ResourceTypeStation))

	cache.Apply(DeletedID(models.ResourceTypeCategory, "shared"))
	assert.Equal(t, 0, cache.Len(models.ResourceTypeCategory))
	assert.Equal(t, 1, cache.Len(models.ResourceTypeStation))
}

func TestCacheChangesAreDeterministicAdds(t *testing.T) {
	cache := NewCache()
	cache.Apply(Added(models.Category{ID: "b", Name: "Snacks"}))
	cache.Apply(Added(models.Category{ID: "a", Name: "Drinks"}))
	cache.Apply(Added(models.Order{ID: "o1", EventID: "e1", Number: 1, Status: models.StatusDraft}))

	changes := cache.Changes()
	require.Len(t, changes, 3)
	for _, change := range changes {
		assert.Equal(t, OpAdd, change.Op)
	}
	// ordered by kind then id
	assert.Equal(t, "a", changes[0].ID)
	assert.Equal(t, "b", changes[1].ID)
	assert.Equal(t, "o1", changes[2].ID)
}
