package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// ErrMalformedEvent marks an inbound frame that could not be decoded as an
// event. It is distinct from transport errors so callers can tell a confused
// client from a vanished one.
var ErrMalformedEvent = errors.New("malformed event")

// Conn abstracts the bidirectional event stream of one interview connection.
// The engine only ever sees this interface; tests drive it with a scripted
// implementation.
type Conn interface {
	// ReadEvent blocks until the next inbound event arrives. A transport
	// failure (including the peer going away) is returned as-is; an
	// undecodable frame is reported wrapped in ErrMalformedEvent.
	ReadEvent(ctx context.Context) (*InboundEvent, error)
	WriteEvent(ev *OutboundEvent) error
}

// wsConn adapts a gorilla websocket connection to the Conn interface.
type wsConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

func newWSConn(conn *websocket.Conn, maxMessageBytes int64, writeTimeout time.Duration) *wsConn {
	conn.SetReadLimit(maxMessageBytes)
	return &wsConn{
		conn:         conn,
		writeTimeout: writeTimeout,
	}
}

func (w *wsConn) ReadEvent(ctx context.Context) (*InboundEvent, error) {
	_, data, err := w.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var ev InboundEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return &ev, nil
}

func (w *wsConn) WriteEvent(ev *OutboundEvent) error {
	_ = w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout))
	if err := w.conn.WriteJSON(ev); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}
