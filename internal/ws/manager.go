package ws

import (
	"context"
	"log/slog"
	"sync"

	"github.com/coder/websocket"

	"skyroute/internal/navigation"
	"skyroute/internal/planner"
)

// Manager owns all live client connections. Each client carries its own
// tracker and voice guide; the manager provides the shared planner and
// session cache and fans advisory messages out to the clients they concern.
type Manager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan Message
	mu         sync.RWMutex
	ctx        context.Context
	cancel     context.CancelFunc

	logger       *slog.Logger
	sessionCache navigation.SessionCache
	planner      *planner.Planner
}

func NewManager(ctx context.Context, logger *slog.Logger, sessionCache navigation.SessionCache, planner *planner.Planner) *Manager {
	ctx, cancel := context.WithCancel(ctx)
	return &Manager{
		clients:      make(map[string]*Client),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		broadcast:    make(chan Message),
		ctx:          ctx,
		cancel:       cancel,
		logger:       logger,
		sessionCache: sessionCache,
		planner:      planner,
	}
}

func (m *Manager) Start() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			m.clients[client.ID] = client
			m.mu.Unlock()
			m.logger.Info("client connected", "clientID", client.ID)
		case client := <-m.unregister:
			m.mu.Lock()
			// A reconnect may have replaced this ID already; only evict
			// the entry if it is still this client.
			if current, ok := m.clients[client.ID]; ok && current == client {
				delete(m.clients, client.ID)
				close(client.send)
				m.logger.Info("client disconnected", "clientID", client.ID)
			}
			m.mu.Unlock()
		case message := <-m.broadcast:
			m.mu.RLock()
			for _, client := range m.clients {
				select {
				case client.send <- message:
				default:
					go m.forceDisconnect(client)
				}
			}
			m.mu.RUnlock()
		case <-m.ctx.Done():
			return
		}
	}
}

// HandleNewConnection wires an accepted websocket into the manager. A second
// connection under the same user replaces the first.
func (m *Manager) HandleNewConnection(userID string, conn *websocket.Conn) {
	m.mu.RLock()
	previous := m.clients[userID]
	m.mu.RUnlock()
	if previous != nil {
		m.forceDisconnect(previous)
	}

	client := NewClient(userID, conn, m)
	client.Start()
}

func (m *Manager) Broadcast(message Message) {
	m.broadcast <- message
}

// ForEachClient runs fn for every connected client. fn must not block; it is
// called under a read lock.
func (m *Manager) ForEachClient(fn func(*Client)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, client := range m.clients {
		fn(client)
	}
}

func (m *Manager) forceDisconnect(c *Client) {
	c.Close()
}

func (m *Manager) Shutdown() {
	m.cancel()
	m.mu.Lock()
	for _, client := range m.clients {
		client.Close()
	}
	m.mu.Unlock()
}
