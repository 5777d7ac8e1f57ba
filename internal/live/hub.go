// Package live pushes attention test events to the subject's browser over a
// websocket.
package live

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"cogscreen/internal/attention"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 64
)

type message struct {
	subject string
	data    []byte
}

type Hub struct {
	register   chan *Client
	unregister chan *Client
	clients    map[*Client]bool
	broadcast  chan message
	done       chan struct{}
	count      atomic.Int64
	log        *zap.Logger
	upgrader   websocket.Upgrader
}

type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	subject string
	send    chan []byte
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan message, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run dispatches messages until ctx is cancelled, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) error {
	defer func() {
		close(h.done)
		for c := range h.clients {
			h.drop(c)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-h.register:
			h.clients[c] = true
			h.count.Add(1)
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				if c.subject != msg.subject {
					continue
				}
				select {
				case c.send <- msg.data:
				default:
					h.log.Warn("Dropping slow websocket client", zap.String("subject", c.subject))
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Add(-1)
}

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Publish sends v as JSON to every client of subject. It never blocks; the
// message is dropped when the hub is stopped or backed up.
func (h *Hub) Publish(subject string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		h.log.Error("Failed to encode websocket message", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- message{subject: subject, data: b}:
	case <-h.done:
	default:
		h.log.Warn("Websocket broadcast queue full", zap.String("subject", subject))
	}
}

// Observer forwards the subject's attention events to its clients.
func (h *Hub) Observer(subject string) attention.Observer {
	return func(e attention.Event) {
		h.Publish(subject, e)
	}
}

// ServeWS upgrades the request and attaches the connection to subject.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, subject string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	c := &Client{hub: h, conn: conn, subject: subject, send: make(chan []byte, sendBuffer)}

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (c *Client) leave() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.done:
	}
}

// readPump discards client frames and notices when the peer goes away.
func (c *Client) readPump() {
	defer func() {
		c.leave()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.leave()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
