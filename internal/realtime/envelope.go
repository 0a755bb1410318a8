// Package realtime implements the resource-change notification core: the
// change envelope wire format, the broadcast hub fanning committed mutations
// out to every connected display, and the per-connection WebSocket session.
package realtime

import (
	"encoding/json"
	"errors"
	"fmt"

	"pos-service/internal/models"
)

// Change operations
const (
	OpAdd    = "Add"
	OpUpdate = "Update"
	OpDelete = "Delete"
)

// ErrUnknownResourceType is returned by Decode when the envelope carries a
// discriminator this build does not know. Receivers drop such envelopes
// silently; an unknown kind is a forward-compatibility escape hatch, not a
// hard fault.
var ErrUnknownResourceType = errors.New("unknown resource type")

// Change is the envelope broadcast for every committed entity mutation.
// ResourceType is set once at construction from the payload's static kind
// and never recomputed, so discriminator and payload cannot diverge.
type Change struct {
	ResourceType string
	Op           string
	Payload      models.Resource // nil for deletes
	ID           string          // resource id; for deletes the only payload
}

// Added builds an Add envelope for a committed insert.
func Added(r models.Resource) Change {
	return Change{ResourceType: r.ResourceType(), Op: OpAdd, Payload: r, ID: r.ResourceID()}
}

// Updated builds an Update envelope for a committed mutation.
func Updated(r models.Resource) Change {
	return Change{ResourceType: r.ResourceType(), Op: OpUpdate, Payload: r, ID: r.ResourceID()}
}

// Deleted builds a Delete envelope for a committed removal.
func Deleted(r models.Resource) Change {
	return Change{ResourceType: r.ResourceType(), Op: OpDelete, ID: r.ResourceID()}
}

// DeletedID builds a Delete envelope when only the id survives the removal.
func DeletedID(resourceType, id string) Change {
	return Change{ResourceType: resourceType, Op: OpDelete, ID: id}
}

// wireEnvelope is the JSON shape written to clients:
//
//	{"resource_type":"order","message":{"Update":{...}}}
//	{"resource_type":"item","message":{"Delete":"<id>"}}
type wireEnvelope struct {
	ResourceType string      `json:"resource_type"`
	Message      wireMessage `json:"message"`
}

type wireMessage struct {
	Add    json.RawMessage `json:"Add,omitempty"`
	Update json.RawMessage `json:"Update,omitempty"`
	Delete string          `json:"Delete,omitempty"`
}

// Encode serializes the envelope to its wire form.
func (c Change) Encode() ([]byte, error) {
	env := wireEnvelope{ResourceType: c.ResourceType}

	switch c.Op {
	case OpDelete:
		env.Message.Delete = c.ID
	case OpAdd, OpUpdate:
		payload, err := json.Marshal(c.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", c.ResourceType, err)
		}
		if c.Op == OpAdd {
			env.Message.Add = payload
		} else {
			env.Message.Update = payload
		}
	default:
		return nil, fmt.Errorf("unknown change op: %q", c.Op)
	}

	return json.Marshal(env)
}

// Decode parses a wire envelope back into a typed Change. The discriminator
// is read first and selects the concrete payload decoder; an unrecognized
// discriminator yields ErrUnknownResourceType.
func Decode(data []byte) (Change, error) {
	var env wireEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Change{}, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}

	change := Change{ResourceType: env.ResourceType}

	var payload json.RawMessage
	switch {
	case env.Message.Delete != "":
		change.Op = OpDelete
		change.ID = env.Message.Delete
		if _, ok := decoders[env.ResourceType]; !ok {
			return Change{}, fmt.Errorf("%w: %q", ErrUnknownResourceType, env.ResourceType)
		}
		return change, nil
	case env.Message.Add != nil:
		change.Op = OpAdd
		payload = env.Message.Add
	case env.Message.Update != nil:
		change.Op = OpUpdate
		payload = env.Message.Update
	default:
		return Change{}, errors.New("envelope carries no operation")
	}

	decode, ok := decoders[env.ResourceType]
	if !ok {
		return Change{}, fmt.Errorf("%w: %q", ErrUnknownResourceType, env.ResourceType)
	}

	resource, err := decode(payload)
	if err != nil {
		return Change{}, fmt.Errorf("failed to decode %s payload: %w", env.ResourceType, err)
	}

	change.Payload = resource
	change.ID = resource.ResourceID()
	return change, nil
}

// decoders is the closed union over the known resource kinds. Adding a kind
// means adding exactly one entry here and one ResourceType method.
var decoders = map[string]func(json.RawMessage) (models.Resource, error){
	models.ResourceTypeCategory: decodeInto[models.Category],
	models.ResourceTypeUser:     decodeInto[models.User],
	models.ResourceTypeProduct:  decodeInto[models.Product],
	models.ResourceTypeItem:     decodeInto[models.OrderLine],
	models.ResourceTypeOrder:    decodeInto[models.Order],
	models.ResourceTypeStation:  decodeInto[models.Station],
	models.ResourceTypeEvent:    decodeInto[models.Event],
}

func decodeInto[T models.Resource](data json.RawMessage) (models.Resource, error) {
	var resource T
	if err := json.Unmarshal(data, &resource); err != nil {
		return nil, err
	}
	return resource, nil
}
