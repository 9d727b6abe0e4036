// Package navigation tracks a traveller along an active route: it consumes
// live position samples, advances through turn-by-turn steps, and drives the
// display, camera and voice guidance.
package navigation

import (
	"log/slog"
	"sync"

	"github.com/mohae/deepcopy"

	"skyroute/internal/directions"
	"skyroute/internal/format"
	"skyroute/internal/geo"
)

// State of the tracker. The terminal states behave like Idle: Start accepts
// from any of them and the directions panel has been restored.
type State string

const (
	StateIdle       State = "idle"
	StateNavigating State = "navigating"
	StateArrived    State = "arrived"
	StateStopped    State = "stopped"
	StateError      State = "error"
)

const (
	// announceThreshold is the distance to the next maneuver, in meters,
	// below which the instruction is spoken. Repeated announcements are
	// suppressed by the voice guide, not here.
	announceThreshold = 200.0

	// advanceThreshold is the distance below which the tracker moves on to
	// the next step.
	advanceThreshold = 50.0

	arrivalAnnouncement = "You have reached your destination"

	alertNoRoute       = "Please create a route first"
	alertWatchFailed   = "Live positioning is not available"
	alertPositionError = "Error getting your location. Please make sure location services are enabled."
)

// Speaker is the slice of voice guidance the tracker needs.
type Speaker interface {
	Speak(text string)
}

// Tracker owns the single active navigation session. Samples are delivered
// serially by the position source, so state transitions need no ordering
// logic beyond the mutex guarding concurrent Start/Stop calls.
type Tracker struct {
	mu      sync.Mutex
	display Display
	speaker Speaker
	source  PositionSource
	logger  *slog.Logger

	state       State
	route       *directions.Route
	stepIndex   int
	progress    float64
	firstPerson bool
	sub         Subscription
	lastSample  *Sample
}

func NewTracker(display Display, speaker Speaker, source PositionSource, logger *slog.Logger) *Tracker {
	return &Tracker{
		display: display,
		speaker: speaker,
		source:  source,
		logger:  logger,
		state:   StateIdle,
	}
}

// Start begins navigating the given route. A nil route surfaces a single
// alert and leaves the tracker idle without subscribing to positions.
func (t *Tracker) Start(route *directions.Route) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if route == nil {
		t.display.ShowAlert(alertNoRoute)
		return
	}

	// Replace any previous session wholesale.
	t.cancelWatchLocked()

	// Snapshot so later mutations of the caller's value cannot leak into
	// the active session.
	t.route = deepcopy.Copy(route).(*directions.Route)
	t.stepIndex = 0
	t.progress = 0
	t.lastSample = nil
	t.state = StateNavigating

	t.display.ShowPanel(PanelNavigation)

	sub, err := t.source.Watch(t.handleSample, t.handlePositionError)
	if err != nil {
		t.logger.Error("position watch failed", "error", err)
		t.display.ShowAlert(alertWatchFailed)
		t.finishLocked(StateError)
		return
	}
	t.sub = sub
}

// Resume restores a persisted session and continues navigating from where
// it left off: same route, same step, same progress. Snapshots that were not
// mid-navigation, or whose step index no longer points at a pending step,
// have nothing to continue and are ignored.
func (t *Tracker) Resume(s *Session) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s == nil || s.Route == nil || s.State != StateNavigating {
		return
	}
	if s.StepIndex < 0 || s.StepIndex >= len(s.Route.Steps) {
		return
	}

	t.cancelWatchLocked()

	t.route = deepcopy.Copy(s.Route).(*directions.Route)
	t.stepIndex = s.StepIndex
	t.progress = clampPercent(s.Progress)
	t.lastSample = s.LastPosition
	t.state = StateNavigating

	t.display.ShowPanel(PanelNavigation)
	t.display.SetProgress(t.progress)

	sub, err := t.source.Watch(t.handleSample, t.handlePositionError)
	if err != nil {
		t.logger.Error("position watch failed", "error", err)
		t.display.ShowAlert(alertWatchFailed)
		t.finishLocked(StateError)
		return
	}
	t.sub = sub
}

// Stop ends the session from any state, cancels the position subscription
// and restores the directions panel. Safe to call repeatedly.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finishLocked(StateStopped)
}

// ToggleView switches between the chase camera and the first-person camera.
// No-op without an active route.
func (t *Tracker) ToggleView() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.route == nil {
		return
	}

	t.firstPerson = !t.firstPerson
	if t.firstPerson {
		t.display.SetControlsEnabled(false, false, false)
		if t.lastSample != nil && t.stepIndex < len(t.route.Steps) {
			t.display.MoveCamera(firstPersonPose(*t.lastSample, t.route.Steps[t.stepIndex].Maneuver))
		}
	} else {
		t.display.SetControlsEnabled(true, true, true)
		t.display.MoveCamera(OverviewPose(t.route.Geometry))
	}
}

// State reports the tracker state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Snapshot captures the session for persistence.
func (t *Tracker) Snapshot(id string) *Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	return &Session{
		ID:           id,
		Route:        t.route,
		StepIndex:    t.stepIndex,
		Progress:     t.progress,
		State:        t.state,
		LastPosition: t.lastSample,
	}
}

func (t *Tracker) handleSample(s Sample) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// A sample already in flight when the session was stopped may land
	// here; dropping it keeps the update harmless.
	if t.state != StateNavigating || t.route == nil || t.stepIndex >= len(t.route.Steps) {
		return
	}

	t.lastSample = &s
	pos := s.Coordinate()
	step := t.route.Steps[t.stepIndex]

	distanceToTurn := geo.ChordDistance(pos, step.Maneuver)
	t.display.SetNextTurn(step.Instruction, format.Distance(distanceToTurn))

	if distanceToTurn < announceThreshold {
		t.speaker.Speak(step.Instruction)
	}

	total := t.route.Summary.Distance
	if total > 0 {
		remaining := geo.RemainingDistance(t.route.Geometry, pos)
		t.progress = clampPercent((total - remaining) / total * 100)
		t.display.SetProgress(t.progress)
	}

	if t.firstPerson {
		t.display.MoveCamera(firstPersonPose(s, step.Maneuver))
	} else {
		t.display.MoveCamera(chasePose(s))
	}

	if distanceToTurn < advanceThreshold {
		t.stepIndex++
		if t.stepIndex >= len(t.route.Steps) {
			t.speaker.Speak(arrivalAnnouncement)
			t.finishLocked(StateArrived)
		}
	}
}

func (t *Tracker) handlePositionError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateNavigating {
		return
	}

	t.logger.Error("position update failed", "error", err)
	t.display.ShowAlert(alertPositionError)
	t.finishLocked(StateError)
}

func (t *Tracker) finishLocked(final State) {
	t.cancelWatchLocked()
	if t.state == StateNavigating || final == StateStopped {
		t.state = final
	}
	t.display.ShowPanel(PanelDirections)
}

func (t *Tracker) cancelWatchLocked() {
	if t.sub != nil {
		t.sub.Cancel()
		t.sub = nil
	}
}

func clampPercent(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
