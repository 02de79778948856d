package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mcdev12/awantura/internal/events"
)

// FeedConfig holds the websocket connection settings.
type FeedConfig struct {
	WriteTimeout    time.Duration
	PingInterval    time.Duration
	SendBuffer      int
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		WriteTimeout:    10 * time.Second,
		PingInterval:    30 * time.Second,
		SendBuffer:      64,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// Feed broadcasts the typed event stream to read-only websocket
// spectators. It implements eventbus.Publisher so it plugs into the same
// fan-out as the log and NATS sinks. A spectator that cannot keep up is
// dropped rather than allowed to stall the broadcast.
type Feed struct {
	config   FeedConfig
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	mu      sync.Mutex
	clients map[*feedClient]bool
	closed  bool
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

func NewFeed(cfg FeedConfig, logger zerolog.Logger) *Feed {
	return &Feed{
		config: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     cfg.CheckOrigin,
		},
		logger:  logger.With().Str("component", "ws_feed").Logger(),
		clients: make(map[*feedClient]bool),
	}
}

// HandleWS upgrades the request and streams events until the client
// disconnects.
func (f *Feed) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &feedClient{
		conn: conn,
		send: make(chan []byte, f.config.SendBuffer),
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		conn.Close()
		return
	}
	f.clients[client] = true
	total := len(f.clients)
	f.mu.Unlock()
	f.logger.Info().Str("remote", conn.RemoteAddr().String()).Int("spectators", total).Msg("spectator connected")

	go f.writePump(client)
	f.readPump(client)
}

// readPump discards inbound frames; the feed is one-way. Its real job is
// noticing the disconnect.
func (f *Feed) readPump(c *feedClient) {
	defer f.remove(c)
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *Feed) writePump(c *feedClient) {
	ticker := time.NewTicker(f.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (f *Feed) remove(c *feedClient) {
	f.mu.Lock()
	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		close(c.send)
	}
	f.mu.Unlock()
	c.conn.Close()
}

// Publish fans one event out to every connected spectator.
func (f *Feed) Publish(_ context.Context, event events.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	f.mu.Lock()
	var slow []*feedClient
	for c := range f.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		delete(f.clients, c)
		close(c.send)
	}
	f.mu.Unlock()

	for _, c := range slow {
		f.logger.Warn().Str("remote", c.conn.RemoteAddr().String()).Msg("dropping slow spectator")
		c.conn.Close()
	}
	return nil
}

// Close disconnects every spectator.
func (f *Feed) Close() error {
	f.mu.Lock()
	f.closed = true
	clients := make([]*feedClient, 0, len(f.clients))
	for c := range f.clients {
		clients = append(clients, c)
		delete(f.clients, c)
		close(c.send)
	}
	f.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
	return nil
}
