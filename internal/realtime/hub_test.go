package realtime

import (
	"fmt"
	"testing"
	"time"

	"pos-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderChange(id string, number int64) Change {
	return Updated(models.Order{ID: id, EventID: "event-1", Number: number, Status: models.StatusOrdered})
}

func TestHubDeliversInPublishOrder(t *testing.T) {
	hub := NewHub(16)
	sub := hub.Subscribe()
	defer sub.Close()

	for i := 1; i <= 5; i++ {
		hub.Publish(orderChange(fmt.Sprintf("order-%d", i), int64(i)))
	}

	for i := 1; i <= 5; i++ {
		select {
		case change := <-sub.C():
			assert.Equal(t, fmt.Sprintf("order-%d", i), change.ID)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for delivery %d", i)
		}
	}
}

func TestLateSubscriberSeesNoReplay(t *testing.T) {
	hub := NewHub(16)

	hub.Publish(orderChange("order-1", 1))
	hub.Publish(orderChange("order-2", 2))

	sub := hub.Subscribe()
	defer sub.Close()

	hub.Publish(orderChange("order-3", 3))

	change := <-sub.C()
	assert.Equal(t, "order-3", change.ID)

	select {
	case extra := <-sub.C():
		t.Fatalf("unexpected delivery: %s", extra.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

// A subscriber that never drains must not block the publisher: publishing
// far more envelopes than the queue holds completes, the excess is dropped.
func TestSaturatedSubscriberNeverBlocksPublisher(t *testing.T) {
	hub := NewHub(4)
	stuck := hub.Subscribe()
	defer stuck.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Publish(orderChange(fmt.Sprintf("order-%d", i), int64(i)))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publisher blocked on saturated subscriber")
	}

	// the queue holds exactly its capacity, in FIFO order
	assert.Len(t, stuck.ch, 4)
	first := <-stuck.C()
	assert.Equal(t, "order-0", first.ID)
}

func TestSlowSubscriberDoesNotStarveOthers(t *testing.T) {
	hub := NewHub(8)

	stuck := hub.Subscribe()
	defer stuck.Close()
	for i := 0; i < 20; i++ {
		hub.Publish(orderChange(fmt.Sprintf("early-%d", i), int64(i)))
	}
	// stuck is saturated now; a fresh subscriber must still get everything
	healthy := hub.Subscribe()
	defer healthy.Close()

	for i := 0; i < 5; i++ {
		hub.Publish(orderChange(fmt.Sprintf("late-%d", i), int64(i)))
	}

	for i := 0; i < 5; i++ {
		select {
		case change := <-healthy.C():
			assert.Equal(t, fmt.Sprintf("late-%d", i), change.ID)
		case <-time.After(time.Second):
			t.Fatalf("healthy subscriber starved after %d deliveries", i)
		}
	}
	assert.Len(t, stuck.ch, 8)
}

func TestSubscriptionCloseDetachesFromHub(t *testing.T) {
	hub := NewHub(16)
	sub := hub.Subscribe()
	require.Equal(t, 1, hub.SubscriberCount())

	sub.Close()
	sub.Close() // idempotent
	assert.Equal(t, 0, hub.SubscriberCount())

	// channel is closed, receivers stop cleanly
	_, ok := <-sub.C()
	assert.False(t, ok)

	// publishing after the close must not panic
	hub.Publish(orderChange("order-1", 1))
}

func TestHubSnapshotReflectsPublishes(t *testing.T) {
	hub := NewHub(16)

	order := models.Order{ID: "order-1", EventID: "event-1", Number: 1, Status: models.StatusDraft}
	hub.Publish(Added(order))

	order.Status = models.StatusOrdered
	hub.Publish(Updated(order))

	line := models.OrderLine{ID: "line-1", OrderID: "order-1", CategoryID: "cat-1", Status: models.StatusOrdered}
	hub.Publish(Added(line))
	hub.Publish(Deleted(line))

	snapshot := hub.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, OpAdd, snapshot[0].Op)
	assert.Equal(t, models.ResourceTypeOrder, snapshot[0].ResourceType)

	got, ok := snapshot[0].Payload.(models.Order)
	require.True(t, ok)
	assert.Equal(t, models.StatusOrdered, got.Status)
}
