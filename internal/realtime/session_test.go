package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pos-service/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startSessionServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		go NewSession(hub, conn).Run()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readChange(t *testing.T, conn *websocket.Conn) Change {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	change, err := Decode(data)
	require.NoError(t, err)
	return change
}

func TestSessionSendsSnapshotThenLiveChanges(t *testing.T) {
	hub := NewHub(16)
	hub.Publish(Added(models.Category{ID: "cat-1", Name: "Drinks"}))

	srv := startSessionServer(t, hub)
	conn := dial(t, srv)

	// snapshot handshake first
	snapshot := readChange(t, conn)
	assert.Equal(t, OpAdd, snapshot.Op)
	assert.Equal(t, models.ResourceTypeCategory, snapshot.ResourceType)
	assert.Equal(t, "cat-1", snapshot.ID)

	// the snapshot frame proves the subscription is active, so this
	// publish must arrive
	order := models.Order{ID: "order-1", EventID: "event-1", Number: 1, Status: models.StatusDraft}
	hub.Publish(Added(order))

	live := readChange(t, conn)
	assert.Equal(t, models.ResourceTypeOrder, live.ResourceType)
	assert.Equal(t, "order-1", live.ID)
}

func TestSessionTeardownOnClientClose(t *testing.T) {
	hub := NewHub(16)
	srv := startSessionServer(t, hub)
	conn := dial(t, srv)

	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, msg))

	// close frame ends the read pump, which drops the subscription
	assert.Eventually(t, func() bool {
		return hub.SubscriberCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSessionIgnoresNonCloseFrames(t *testing.T) {
	hub := NewHub(16)
	srv := startSessionServer(t, hub)
	conn := dial(t, srv)

	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// application data from the client is not part of the protocol and
	// must not end the session
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("hello?")))

	hub.Publish(Added(models.Event{ID: "event-1", Name: "Fair", Active: true}))
	change := readChange(t, conn)
	assert.Equal(t, "event-1", change.ID)
	assert.Equal(t, 1, hub.SubscriberCount())
}
