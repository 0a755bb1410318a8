package realtime

import (
	"time"

	"pos-service/internal/util"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Clients send nothing but
	// control frames on this channel.
	maxMessageSize = 512
)

// Session bridges one WebSocket connection and the hub. Two pumps run for
// the connection's lifetime: the write pump forwards hub deliveries to the
// transport (after an initial full snapshot), the read pump drains inbound
// frames solely to detect close. Whichever pump exits first tears the
// session down; the other then stops on the closed conn/subscription.
type Session struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	sub    *Subscription
	logger *zap.Logger
}

// NewSession subscribes a freshly upgraded connection to the hub.
func NewSession(hub *Hub, conn *websocket.Conn) *Session {
	return &Session{
		id:     uuid.New().String(),
		hub:    hub,
		conn:   conn,
		sub:    hub.Subscribe(),
		logger: util.GetLogger(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Run starts both pumps and blocks until the session ends.
func (s *Session) Run() {
	s.logger.Info("display connected",
		zap.String("session_id", s.id),
		zap.Int("total_sessions", s.hub.SubscriberCount()))

	go s.writePump()
	s.readPump()
}

// readPump drains the connection until a close frame or read error. Any
// non-close frame is ignored.
func (s *Session) readPump() {
	defer s.teardown()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error",
					zap.String("session_id", s.id),
					zap.Error(err))
			}
			return
		}
	}
}

// writePump sends the snapshot handshake, then forwards subscription
// deliveries until the subscription closes or a write fails.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.teardown()
	}()

	for _, change := range s.hub.Snapshot() {
		if err := s.write(change); err != nil {
			return
		}
	}

	for {
		select {
		case change, ok := <-s.sub.C():
			if !ok {
				_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.write(change); err != nil {
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Session) write(change Change) error {
	data, err := change.Encode()
	if err != nil {
		// Encoding is pure; a failure here is a programming error on our
		// side, never the client's. Skip the envelope, keep the session.
		s.logger.Error("failed to encode change envelope",
			zap.String("resource_type", change.ResourceType),
			zap.Error(err))
		return nil
	}

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Session) teardown() {
	s.sub.Close()
	_ = s.conn.Close()
}
