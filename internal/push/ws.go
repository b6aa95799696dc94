package push

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Channel is a live subscription. Events closes when the underlying
// connection drops; the engine does not reconnect on bare disconnect and
// relies on the polling backstop instead.
type Channel interface {
	Events() <-chan Event
	Close() error
}

// Dialer opens an authenticated channel. Swappable in tests.
type Dialer func(ctx context.Context, url, token string) (Channel, error)

type wsChannel struct {
	conn   *websocket.Conn
	events chan Event
}

// DialWebSocket connects to the hub's /realtime endpoint with the bearer
// token set before connect, per the channel contract.
func DialWebSocket(ctx context.Context, rawURL, token string) (Channel, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, toWebSocketURL(rawURL), header)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	ch := &wsChannel{
		conn:   conn,
		events: make(chan Event, 64),
	}
	go ch.readLoop()
	return ch, nil
}

func (c *wsChannel) Events() <-chan Event {
	return c.events
}

func (c *wsChannel) Close() error {
	return c.conn.Close()
}

func (c *wsChannel) readLoop() {
	defer close(c.events)
	for {
		var ev Event
		if err := c.conn.ReadJSON(&ev); err != nil {
			return
		}
		select {
		case c.events <- ev:
		default:
			// Slow consumer: drop the event. The poll backstop repairs any gap.
		}
	}
}

func toWebSocketURL(rawURL string) string {
	switch {
	case strings.HasPrefix(rawURL, "https://"):
		return "wss://" + strings.TrimPrefix(rawURL, "https://")
	case strings.HasPrefix(rawURL, "http://"):
		return "ws://" + strings.TrimPrefix(rawURL, "http://")
	}
	return rawURL
}
