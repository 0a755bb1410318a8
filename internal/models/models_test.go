package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{StatusDraft, StatusOrdered, true},
		{StatusOrdered, StatusReady, true},
		{StatusReady, StatusCompleted, true},
		{StatusDraft, StatusCancelled, true},
		{StatusOrdered, StatusCancelled, true},
		{StatusReady, StatusCancelled, true},
		{StatusCompleted, StatusOrdered, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusDraft, false},
		{StatusDraft, StatusReady, false},
		{StatusOrdered, StatusCompleted, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.ok, CanTransition(c.from, c.to),
			"%s -> %s", c.from, c.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusDraft.Terminal())
	assert.False(t, OrderStatus("bogus").Terminal())
}

func TestStationValidate(t *testing.T) {
	station := Station{
		ID:            "st-1",
		Name:          "Bar",
		CategoryIDs:   []string{"drinks"},
		InputStatuses: []string{string(StatusOrdered)},
		OutputStatus:  StatusReady,
	}
	assert.NoError(t, station.Validate())

	noCategories := station
	noCategories.CategoryIDs = nil
	err := noCategories.Validate()
	assert.ErrorIs(t, err, ErrInvalidStation)

	noStatuses := station
	noStatuses.InputStatuses = []string{}
	assert.ErrorIs(t, noStatuses.Validate(), ErrInvalidStation)

	badInput := station
	badInput.InputStatuses = []string{"frying"}
	assert.ErrorIs(t, badInput.Validate(), ErrInvalidStation)

	badOutput := station
	badOutput.OutputStatus = "done-ish"
	assert.ErrorIs(t, badOutput.Validate(), ErrInvalidStation)
}

func TestStationMembership(t *testing.T) {
	station := Station{
		CategoryIDs:   []string{"drinks", "snacks"},
		InputStatuses: []string{string(StatusOrdered), string(StatusReady)},
	}

	assert.True(t, station.HandlesCategory("drinks"))
	assert.False(t, station.HandlesCategory("grill"))
	assert.True(t, station.AcceptsStatus(StatusOrdered))
	assert.False(t, station.AcceptsStatus(StatusCompleted))
}
