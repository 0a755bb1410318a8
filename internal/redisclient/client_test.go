package redisclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotVersionBumps(t *testing.T) {
	t.Skip("Integration test - requires redis")

	client, err := NewClient("localhost:6379", "", 1)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()

	before, err := client.SnapshotVersion(ctx)
	require.NoError(t, err)

	bumped, err := client.BumpSnapshotVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, bumped)

	after, err := client.SnapshotVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, bumped, after)
}

func TestOrderNumberSeeding(t *testing.T) {
	t.Skip("Integration test - requires redis")

	client, err := NewClient("localhost:6379", "", 1)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()

	require.NoError(t, client.SeedOrderNumber(ctx, "event-seed", 41))
	number, err := client.NextOrderNumber(ctx, "event-seed")
	require.NoError(t, err)
	assert.EqualValues(t, 42, number)

	// Seeding below the current counter is a no-op.
	require.NoError(t, client.SeedOrderNumber(ctx, "event-seed", 10))
	number, err = client.NextOrderNumber(ctx, "event-seed")
	require.NoError(t, err)
	assert.EqualValues(t, 43, number)
}
