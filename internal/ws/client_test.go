package ws

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyroute/internal/directions"
	"skyroute/internal/geo"
	"skyroute/internal/navigation"
	"skyroute/internal/planner"
)

// memSessionCache is an in-memory stand-in for the Redis session store.
type memSessionCache struct {
	mu       sync.Mutex
	sessions map[string]*navigation.Session
}

func newMemSessionCache() *memSessionCache {
	return &memSessionCache{sessions: make(map[string]*navigation.Session)}
}

func (m *memSessionCache) SetSession(_ context.Context, s *navigation.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memSessionCache) GetSession(_ context.Context, id string) (*navigation.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, navigation.ErrSessionNotFound
	}
	return s, nil
}

func (m *memSessionCache) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// newServerConn dials a real websocket pair and returns the server side,
// which is the side a Client wraps.
func newServerConn(t *testing.T) *websocket.Conn {
	t.Helper()

	conns := make(chan *websocket.Conn, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dialConn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dialConn.Close(websocket.StatusNormalClosure, "") })

	select {
	case conn := <-conns:
		return conn
	case <-ctx.Done():
		t.Fatal("no server connection accepted")
		return nil
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func clientTestRoute() *directions.Route {
	geometry := []geo.Coordinate{
		{Lon: 0, Lat: 0},
		{Lon: 0, Lat: 0.01},
		{Lon: 0, Lat: 0.02},
	}
	return &directions.Route{
		Geometry: geometry,
		Steps: []directions.Step{
			{Instruction: "Turn right", Maneuver: geometry[1]},
			{Instruction: "Arrive at destination", Maneuver: geometry[2]},
		},
		Summary: directions.Summary{
			Distance: geo.PathLength(geometry),
			Duration: 300,
		},
	}
}

func TestSlowConsumerDoesNotBlockTracker(t *testing.T) {
	manager := NewManager(context.Background(), testLogger(), newMemSessionCache(), nil)
	client := NewClient("u1", newServerConn(t), manager)

	// No write pump running: the buffer fills and stays full, so every
	// display event from here on hits the disconnect path.
	for i := 0; i < sendChannelSize; i++ {
		client.send <- Message{Type: "noise"}
	}

	done := make(chan struct{})
	go func() {
		client.tracker.Start(clientTestRoute())
		client.feed.deliver(navigation.Sample{Lon: 0, Lat: 0})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("position handling blocked once the send buffer filled")
	}
}

func TestReconnectRestoresCachedSession(t *testing.T) {
	logger := testLogger()
	sessions := newMemSessionCache()
	sessions.sessions["u1"] = &navigation.Session{
		ID:        "u1",
		Route:     clientTestRoute(),
		StepIndex: 1,
		Progress:  50,
		State:     navigation.StateNavigating,
	}

	p := planner.New(directions.NewClient("http://unused.invalid", ""), logger)
	manager := NewManager(context.Background(), logger, sessions, p)
	go manager.Start()

	client := NewClient("u1", newServerConn(t), manager)
	client.Start()

	assert.Equal(t, navigation.StateNavigating, client.tracker.State())
	require.Len(t, client.ActiveGeometry(), 3)

	snapshot := client.tracker.Snapshot("u1")
	assert.Equal(t, 1, snapshot.StepIndex)
	assert.Equal(t, 50.0, snapshot.Progress)
}

func TestConnectWithoutCachedSessionStaysIdle(t *testing.T) {
	manager := NewManager(context.Background(), testLogger(), newMemSessionCache(), nil)
	go manager.Start()

	client := NewClient("u1", newServerConn(t), manager)
	client.Start()

	assert.Equal(t, navigation.StateIdle, client.tracker.State())
	assert.Nil(t, client.ActiveGeometry())
}
