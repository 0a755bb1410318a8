package service

import (
	"context"
	"testing"

	"pos-service/internal/models"
	"pos-service/internal/realtime"

	"github.com/stretchr/testify/assert"
)

func TestInvalidStationRejectedBeforePublish(t *testing.T) {
	hub := realtime.NewHub(16)
	sub := hub.Subscribe()
	defer sub.Close()

	// validation runs before any store or hub interaction, so a nil store
	// never gets touched
	stations := NewStationService(nil, hub, nil, nil)
	ctx := context.Background()

	invalid := &StationRequest{
		Name:          "Bar",
		CategoryIDs:   []string{},
		InputStatuses: []string{string(models.StatusOrdered)},
		OutputStatus:  string(models.StatusReady),
	}

	_, err := stations.CreateStation(ctx, invalid)
	assert.ErrorIs(t, err, models.ErrInvalidStation)

	_, err = stations.UpdateStation(ctx, "station-1", invalid)
	assert.ErrorIs(t, err, models.ErrInvalidStation)

	invalid.CategoryIDs = []string{"cat-1"}
	invalid.OutputStatus = "burnt"
	_, err = stations.UpdateStation(ctx, "station-1", invalid)
	assert.ErrorIs(t, err, models.ErrInvalidStation)

	select {
	case change := <-sub.C():
		t.Fatalf("rejected station reached subscribers: %s %s", change.ResourceType, change.Op)
	default:
	}
}
