package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"quicknotes/internal/events"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// wsEvent is the envelope pushed to connected clients.
type wsEvent struct {
	ID        uint64 `json:"id"`
	Timestamp string `json:"timestamp"`
	Topic     string `json:"topic"`
	Payload   any    `json:"payload"`
}

type wsClientInfo struct {
	lastActivity time.Time
	connected    time.Time
}

// Broadcaster fans hub events out to WebSocket clients. Writes happen
// off the subscriber goroutine through a buffered channel; a slow or
// dead client gets dropped, never blocks the hub.
type Broadcaster struct {
	mu             sync.RWMutex
	clients        map[*websocket.Conn]*wsClientInfo
	broadcast      chan wsEvent
	stopCh         chan struct{}
	seq            uint64
	maxConnections int
	idleTimeout    time.Duration
}

// NewBroadcaster builds a Broadcaster subscribed to the hub topics the
// UI cares about.
func NewBroadcaster(hub *events.Hub) *Broadcaster {
	b := &Broadcaster{
		clients:        make(map[*websocket.Conn]*wsClientInfo),
		broadcast:      make(chan wsEvent, 100),
		stopCh:         make(chan struct{}),
		maxConnections: 16,
		idleTimeout:    30 * time.Minute,
	}
	for _, topic := range []string{
		events.TopicRateLimitChanged,
		events.TopicConfigUpdated,
		events.TopicPageSelected,
	} {
		hub.Subscribe(topic, func(_ context.Context, ev events.Event) {
			b.enqueue(ev.Topic, ev.Payload)
		})
	}
	return b
}

// Start launches the broadcast and cleanup goroutines.
func (b *Broadcaster) Start() {
	go func() {
		for {
			select {
			case msg := <-b.broadcast:
				b.mu.RLock()
				for conn, info := range b.clients {
					go func(c *websocket.Conn, m wsEvent) {
						if err := c.WriteJSON(m); err != nil {
							log.Debugf("error writing to WebSocket client: %v", err)
							b.RemoveClient(c)
						}
					}(conn, msg)
					info.lastActivity = time.Now()
				}
				b.mu.RUnlock()

			case <-b.stopCh:
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(2 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				b.cleanupIdle()
			case <-b.stopCh:
				return
			}
		}
	}()
}

// Stop closes every connection and halts the goroutines.
func (b *Broadcaster) Stop() {
	close(b.stopCh)

	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.clients {
		conn.Close()
	}
	b.clients = make(map[*websocket.Conn]*wsClientInfo)
}

func (b *Broadcaster) enqueue(topic string, payload any) {
	msg := wsEvent{
		ID:        atomic.AddUint64(&b.seq, 1),
		Timestamp: time.Now().Format(time.RFC3339),
		Topic:     topic,
		Payload:   payload,
	}
	select {
	case b.broadcast <- msg:
	default:
		// channel full, drop
	}
}

// AddClient registers a connection, rejecting past the connection cap.
func (b *Broadcaster) AddClient(conn *websocket.Conn) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.clients) >= b.maxConnections {
		log.Warnf("WebSocket connection limit reached (%d), rejecting new connection", b.maxConnections)
		return false
	}
	now := time.Now()
	b.clients[conn] = &wsClientInfo{lastActivity: now, connected: now}
	log.Infof("WebSocket client connected (total: %d)", len(b.clients))
	return true
}

// RemoveClient drops and closes a connection.
func (b *Broadcaster) RemoveClient(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.clients[conn]; exists {
		delete(b.clients, conn)
		conn.Close()
		log.Infof("WebSocket client disconnected (remaining: %d)", len(b.clients))
	}
}

// ConnectionCount returns the number of connected clients.
func (b *Broadcaster) ConnectionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *Broadcaster) cleanupIdle() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	for conn, info := range b.clients {
		if now.Sub(info.lastActivity) > b.idleTimeout {
			delete(b.clients, conn)
			conn.Close()
			log.Infof("removed idle WebSocket connection (idle for %v)", now.Sub(info.lastActivity))
		}
	}
}

var wsUpgrader = websocket.Upgrader{
	// The API binds to loopback; the UI may load from file:// with no
	// Origin header at all.
	CheckOrigin: func(*http.Request) bool { return true },
}

// HandleWS upgrades the connection and keeps it alive with pings until
// the client goes away.
func (b *Broadcaster) HandleWS(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if !b.AddClient(conn) {
		_ = conn.WriteJSON(map[string]string{"error": "Maximum connections reached"})
		conn.Close()
		return
	}

	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(10*time.Second)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	// Reader loop: we ignore client payloads, but reading is what
	// notices disconnects and services pong frames.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	}
	close(done)
	b.RemoveClient(conn)
}
