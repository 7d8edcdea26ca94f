package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/workiq/weave/internal/engine"
	"github.com/workiq/weave/pkg/log"
)

// Client represents a WebSocket client connection for event streaming
type Client struct {
	conn      *websocket.Conn
	events    <-chan engine.Event
	cancel    func()
	closeOnce sync.Once
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	wsBufferSize   = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  wsBufferSize,
	WriteBufferSize: wsBufferSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed",
			log.Error(err))
		return
	}

	events, cancel := s.events.Subscribe()
	client := &Client{
		conn:   conn,
		events: events,
		cancel: cancel,
	}

	s.registerWebSocket(client)
	go func() {
		client.run()
		s.unregisterWebSocket(client)
	}()
}

// Close tears down the connection. Safe to call more than once
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		_ = c.conn.Close()
	})
}

func (c *Client) run() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	closed := make(chan struct{})
	go c.readUntilClose(closed)

	for {
		select {
		case <-closed:
			return

		case event, ok := <-c.events:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(event); err != nil {
				slog.Error("WebSocket write failed",
					log.Error(err))
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(
				websocket.PingMessage, nil,
			); err != nil {
				return
			}
		}
	}
}

// readUntilClose drains client frames so that pongs are processed and a
// closed connection is noticed promptly
func (c *Client) readUntilClose(closed chan struct{}) {
	defer close(closed)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
