package hub

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"boardsync/internal/push"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// broadcaster fans change events out to every connected realtime client.
type broadcaster struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
	log     *zap.Logger
}

func newBroadcaster(log *zap.Logger) *broadcaster {
	return &broadcaster{
		clients: make(map[*wsClient]struct{}),
		log:     log,
	}
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *wsClient) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// publish sends the event to every client. Clients that cannot keep up are
// dropped; they resync via the snapshot poll.
func (b *broadcaster) publish(ev push.Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		b.log.Error("encode event", zap.Error(err))
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		select {
		case c.send <- msg:
		default:
			delete(b.clients, c)
			c.close()
		}
	}
}

func (b *broadcaster) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Debug("websocket upgrade", zap.Error(err))
		return
	}
	c := &wsClient{conn: conn, send: make(chan []byte, 64)}

	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()

	go b.writeLoop(c)
	b.readLoop(c)
}

func (b *broadcaster) writeLoop(c *wsClient) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, nil)
}

// readLoop drains the connection; clients never send payloads, so any read
// result other than an error is ignored.
func (b *broadcaster) readLoop(c *wsClient) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
	b.mu.Lock()
	delete(b.clients, c)
	b.mu.Unlock()
	c.close()
}

func (b *broadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		delete(b.clients, c)
		c.close()
	}
}
