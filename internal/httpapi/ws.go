package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/notify"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard frontend is served from a different origin in dev;
	// signals carry no payload, so cross-origin reads expose nothing.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// changeSignal is what observers receive: the topic that changed and
// when. No payload — the observer re-queries.
type changeSignal struct {
	Topic     string    `json:"topic"`
	ChangedAt time.Time `json:"changed_at"`
}

// handleSubscribe streams coalesced change signals for one topic over
// a WebSocket. Closing the socket (or any read/write error) tears the
// subscription down synchronously.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := notify.Topic(r.URL.Query().Get("topic"))
	switch topic {
	case notify.TopicAccessEvents, notify.TopicAlerts, notify.TopicConfig:
	default:
		writeError(w, http.StatusBadRequest, "invalid_topic",
			"topic must be access_events, alerts, or config")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		s.logger.Printf("subscribe upgrade: %v", err)
		return
	}

	sub := s.dispatcher.Subscribe(topic)

	// Reader goroutine: we never expect client messages, but reading
	// is what detects the peer closing the socket.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		sub.Unsubscribe()
		conn.Close()
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			return
		case <-sub.C():
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(changeSignal{Topic: string(topic), ChangedAt: time.Now().UTC()}); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
