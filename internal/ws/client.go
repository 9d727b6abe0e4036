package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"skyroute/internal/directions"
	"skyroute/internal/geo"
	"skyroute/internal/navigation"
	"skyroute/internal/planner"
	"skyroute/internal/voice"
)

const (
	// sendChannelSize controls the max number
	// of messages that can be queued for a client.
	sendChannelSize = 16
	pingPeriod      = (60 * 9 * time.Second) / 10
)

type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type Client struct {
	ID      string
	Conn    *websocket.Conn
	Manager *Manager
	send    chan Message
	ctx     context.Context
	cancel  context.CancelFunc

	feed    *positionFeed
	guide   *voice.Guide
	tracker *navigation.Tracker

	mu   sync.Mutex
	plan *planner.Plan
}

func NewClient(id string, conn *websocket.Conn, manager *Manager) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		ID:      id,
		Conn:    conn,
		Manager: manager,
		send:    make(chan Message, sendChannelSize),
		ctx:     ctx,
		cancel:  cancel,
		feed:    &positionFeed{},
	}
	c.guide = voice.NewGuide(wsSynth{client: c})
	c.tracker = navigation.NewTracker(wsDisplay{client: c}, c.guide, c.feed, manager.logger)
	return c
}

func (c *Client) Start() {
	go c.readPump()
	go c.writePump()
	c.Manager.register <- c
	c.restoreSession()
}

func (c *Client) Close() {
	c.tracker.Stop()
	if err := c.Conn.Close(websocket.StatusNormalClosure, "bye"); err != nil {
		c.Manager.logger.Debug("failed to close connection", "clientID", c.ID, "error", err)
	}
	c.cancel()
}

func (c *Client) Send(msg Message) {
	select {
	case c.send <- msg:
	default:
		// Send runs on tracker callbacks that hold the tracker mutex, and
		// Close stops the tracker. Disconnect from a fresh goroutine so a
		// slow consumer cannot deadlock its own event path.
		go c.Manager.forceDisconnect(c)
	}
}

// ActiveGeometry returns the geometry of the installed route plan, or nil.
// Used by the advisory multicaster to decide whether an advisory concerns
// this client.
func (c *Client) ActiveGeometry() []geo.Coordinate {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.plan == nil {
		return nil
	}
	return c.plan.Route.Geometry
}

func (c *Client) readPump() {
	defer func() {
		c.Manager.unregister <- c
		c.Close()
	}()

	for {
		var msg Message
		if err := wsjson.Read(c.ctx, c.Conn, &msg); err != nil {
			c.Manager.logger.Debug("failed to read message", "clientID", c.ID, "error", err)
			break
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.Conn.Close(websocket.StatusNormalClosure, "bye")
				return
			}
			if err := wsjson.Write(c.ctx, c.Conn, msg); err != nil {
				c.Manager.logger.Warn("failed to write message", "clientID", c.ID, "error", err)
				return
			}
		case <-ticker.C:
			if err := c.Conn.Ping(c.ctx); err != nil {
				c.Manager.logger.Debug("failed to ping client", "clientID", c.ID, "error", err)
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

// routeRequest asks for a new route plan between two endpoints.
type routeRequest struct {
	From    *geo.Coordinate    `json:"from"`
	To      *geo.Coordinate    `json:"to"`
	Profile directions.Profile `json:"profile"`
}

type positionFailure struct {
	Message string `json:"message"`
}

func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case "route":
		var req routeRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			c.Manager.logger.Warn("failed to unmarshal route request", "clientID", c.ID, "error", err)
			return
		}
		c.handleRouteRequest(req)
	case "start":
		c.mu.Lock()
		plan := c.plan
		c.mu.Unlock()

		if plan == nil {
			c.tracker.Start(nil)
			return
		}
		c.tracker.Start(plan.Route)
		c.persistSession()
	case "stop":
		c.tracker.Stop()
		c.dropSession()
	case "position":
		var sample navigation.Sample
		if err := json.Unmarshal(msg.Data, &sample); err != nil {
			c.Manager.logger.Warn("failed to unmarshal position", "clientID", c.ID, "error", err)
			return
		}
		if sample.Timestamp.IsZero() {
			sample.Timestamp = time.Now()
		}
		c.feed.deliver(sample)
		c.persistSession()
	case "position_error":
		var failure positionFailure
		if err := json.Unmarshal(msg.Data, &failure); err != nil {
			c.Manager.logger.Warn("failed to unmarshal position error", "clientID", c.ID, "error", err)
			return
		}
		c.feed.fail(errors.New(failure.Message))
		c.dropSession()
	case "locate":
		if last := c.feed.Last(); last != nil {
			c.sendEvent(eventLocation, last)
		}
	case "toggle_voice":
		enabled := c.guide.Toggle()
		c.sendEvent(eventVoice, map[string]bool{"enabled": enabled})
	case "toggle_view":
		c.tracker.ToggleView()
	default:
		c.Manager.logger.Debug("received unknown type message", "clientID", c.ID, "type", msg.Type)
	}
}

// handleRouteRequest fetches a plan and installs it, replacing any previous
// one wholesale. Failures surface as a single alert describing the cause;
// nothing retries, the user must re-initiate.
func (c *Client) handleRouteRequest(req routeRequest) {
	profile := req.Profile
	if profile == "" {
		profile = directions.ProfileDrivingCar
	}

	plan, err := c.Manager.planner.CreateRoute(c.ctx, req.From, req.To, profile)
	if err != nil {
		c.Manager.logger.Warn("route creation failed", "clientID", c.ID, "error", err)
		c.sendEvent(eventAlert, map[string]string{"text": routeAlert(err)})
		return
	}

	// Tear down the previous session before installing the new plan.
	c.tracker.Stop()
	c.mu.Lock()
	c.plan = plan
	c.mu.Unlock()

	c.sendEvent(eventRoute, plan)
	c.persistSession()
}

// routeAlert maps a route-creation failure to its user-facing message. The
// cause comes from the typed error, never from matching message text.
func routeAlert(err error) string {
	const prefix = "Error creating route. "

	var statusErr *directions.StatusError
	switch {
	case errors.Is(err, directions.ErrMissingEndpoints):
		return "Please select both starting point and destination"
	case errors.Is(err, directions.ErrNoRoute):
		return prefix + "No route found between the selected locations."
	case errors.As(err, &statusErr):
		return prefix + statusErr.Advice()
	default:
		return prefix + "Please try again."
	}
}

// restoreSession reinstalls the cached session, if any, so a reconnecting
// client picks up its route and progress where the previous connection left
// off. The plan is rebuilt locally from the cached route; no new directions
// request is issued.
func (c *Client) restoreSession() {
	session, err := c.Manager.sessionCache.GetSession(c.ctx, c.ID)
	if errors.Is(err, navigation.ErrSessionNotFound) {
		return
	}
	if err != nil {
		c.Manager.logger.Warn("failed to load cached session", "clientID", c.ID, "error", err)
		return
	}
	if session.Route == nil {
		return
	}

	plan := c.Manager.planner.Compose(session.Route)
	c.mu.Lock()
	c.plan = plan
	c.mu.Unlock()

	c.sendEvent(eventRoute, plan)
	c.tracker.Resume(session)
	c.Manager.logger.Info("session restored", "clientID", c.ID, "state", session.State)
}

func (c *Client) persistSession() {
	session := c.tracker.Snapshot(c.ID)
	session.UpdatedAt = time.Now()
	if err := c.Manager.sessionCache.SetSession(c.ctx, session); err != nil {
		c.Manager.logger.Warn("failed to cache session", "clientID", c.ID, "error", err)
	}
}

func (c *Client) dropSession() {
	if err := c.Manager.sessionCache.DeleteSession(c.ctx, c.ID); err != nil {
		c.Manager.logger.Warn("failed to delete session", "clientID", c.ID, "error", err)
	}
}
