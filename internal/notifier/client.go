package notifier

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/synapse-hq/synapse-hazard-api/internal/monitoring"
)

// ConnState is the lifecycle of a websocket viewer.
type ConnState int32

const (
	StateConnecting ConnState = iota
	StateConnected
	StateDisconnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	}
	return "unknown"
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards are served from arbitrary origins during demos; origin
	// policy is enforced by the CORS layer on the REST surface.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSViewer adapts a gorilla websocket connection to the Viewer interface.
// Writes are serialized by a mutex; gorilla connections allow at most one
// concurrent writer.
type WSViewer struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex

	stateMu sync.Mutex
	state   ConnState
}

// NewWSViewer wraps an established connection and assigns it a viewer id.
func NewWSViewer(conn *websocket.Conn) *WSViewer {
	return &WSViewer{
		id:    uuid.New().String(),
		conn:  conn,
		state: StateConnecting,
	}
}

// ID returns the viewer id assigned at upgrade time.
func (v *WSViewer) ID() string {
	return v.id
}

// State returns the current lifecycle state.
func (v *WSViewer) State() ConnState {
	v.stateMu.Lock()
	defer v.stateMu.Unlock()
	return v.state
}

func (v *WSViewer) setState(s ConnState) {
	v.stateMu.Lock()
	v.state = s
	v.stateMu.Unlock()
}

// Send writes one text frame with a deadline. A send on a disconnected
// viewer fails immediately.
func (v *WSViewer) Send(payload []byte) error {
	if v.State() == StateDisconnected {
		return websocket.ErrCloseSent
	}

	v.writeMu.Lock()
	defer v.writeMu.Unlock()

	v.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return v.conn.WriteMessage(websocket.TextMessage, payload)
}

// Close tears the connection down. Safe to call more than once.
func (v *WSViewer) Close() error {
	if v.State() == StateDisconnected {
		return nil
	}
	v.setState(StateDisconnected)

	v.writeMu.Lock()
	v.conn.SetWriteDeadline(time.Now().Add(writeWait))
	v.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	v.writeMu.Unlock()

	return v.conn.Close()
}

// ServeWS upgrades the request, registers the viewer with the hub and blocks
// reading frames until the client goes away. Inbound frames are discarded;
// the dashboard stream is one-way.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, logger *monitoring.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Websocket upgrade failed", "error", err.Error())
		return
	}

	viewer := NewWSViewer(conn)
	viewer.setState(StateConnected)
	h.Connect(viewer)
	defer h.Disconnect(viewer.ID())

	conn.SetReadLimit(1024)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	stop := make(chan struct{})
	defer close(stop)
	go viewer.pingLoop(stop)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Websocket closed unexpectedly",
					"viewer_id", viewer.ID(),
					"error", err.Error(),
				)
			}
			return
		}
	}
}

func (v *WSViewer) pingLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			v.writeMu.Lock()
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := v.conn.WriteMessage(websocket.PingMessage, nil)
			v.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}
