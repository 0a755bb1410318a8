package realtime

import (
	"encoding/json"
	"testing"

	"pos-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	resources := []models.Resource{
		models.Category{ID: "cat-1", Name: "Drinks", Position: 1},
		models.User{ID: "user-1", Name: "Alex", Role: models.RoleCashier},
		models.Product{ID: "prod-1", CategoryID: "cat-1", Name: "Cola", Price: 350, Active: true},
		models.OrderLine{ID: "line-1", OrderID: "order-1", ProductID: "prod-1", CategoryID: "cat-1", Quantity: 2, UnitPrice: 350, Status: models.StatusOrdered},
		models.Order{ID: "order-1", EventID: "event-1", Number: 42, Total: 700, Status: models.StatusOrdered},
		models.Station{ID: "st-1", Name: "Bar", CategoryIDs: []string{"cat-1"}, InputStatuses: []string{"ordered"}, OutputStatus: models.StatusReady},
		models.Event{ID: "event-1", Name: "Summer Fair", Active: true},
	}

	for _, resource := range resources {
		original := Added(resource)
		assert.Equal(t, resource.ResourceType(), original.ResourceType)

		data, err := original.Encode()
		require.NoError(t, err)

		decoded, err := Decode(data)
		require.NoError(t, err, "kind %s", resource.ResourceType())

		assert.Equal(t, resource.ResourceType(), decoded.ResourceType)
		assert.Equal(t, OpAdd, decoded.Op)
		assert.Equal(t, resource.ResourceID(), decoded.ID)
		assert.Equal(t, resource, decoded.Payload)
	}
}

func TestEnvelopeWireShape(t *testing.T) {
	order := models.Order{ID: "order-1", EventID: "event-1", Number: 7, Status: models.StatusDraft}

	data, err := Updated(order).Encode()
	require.NoError(t, err)

	var wire map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.JSONEq(t, `"order"`, string(wire["resource_type"]))

	var message map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(wire["message"], &message))
	assert.Contains(t, message, "Update")
	assert.NotContains(t, message, "Add")
	assert.NotContains(t, message, "Delete")
}

func TestDeleteEnvelopeCarriesOnlyID(t *testing.T) {
	line := models.OrderLine{ID: "line-9", OrderID: "order-1"}

	data, err := Deleted(line).Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"resource_type":"item","message":{"Delete":"line-9"}}`, string(data))

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, OpDelete, decoded.Op)
	assert.Equal(t, "line-9", decoded.ID)
	assert.Nil(t, decoded.Payload)
}

func TestDecodeUnknownResourceType(t *testing.T) {
	_, err := Decode([]byte(`{"resource_type":"hologram","message":{"Add":{"id":"x"}}}`))
	assert.ErrorIs(t, err, ErrUnknownResourceType)

	_, err = Decode([]byte(`{"resource_type":"hologram","message":{"Delete":"x"}}`))
	assert.ErrorIs(t, err, ErrUnknownResourceType)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"resource_type":"order","message":{}}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"resource_type":"order","message":{"Add":"not an object"}}`))
	assert.Error(t, err)
}
