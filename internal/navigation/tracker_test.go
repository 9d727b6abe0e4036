package navigation

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyroute/internal/directions"
	"skyroute/internal/geo"
)

type fakeDisplay struct {
	alerts       []string
	panels       []Panel
	instructions []string
	distances    []string
	progress     []float64
	cameras      []CameraPose
	controls     [][3]bool
}

func (d *fakeDisplay) ShowAlert(text string)                  { d.alerts = append(d.alerts, text) }
func (d *fakeDisplay) ShowPanel(panel Panel)                  { d.panels = append(d.panels, panel) }
func (d *fakeDisplay) SetProgress(percent float64)            { d.progress = append(d.progress, percent) }
func (d *fakeDisplay) MoveCamera(pose CameraPose)             { d.cameras = append(d.cameras, pose) }
func (d *fakeDisplay) SetControlsEnabled(rotate, tilt, zoom bool) {
	d.controls = append(d.controls, [3]bool{rotate, tilt, zoom})
}
func (d *fakeDisplay) SetNextTurn(instruction, distance string) {
	d.instructions = append(d.instructions, instruction)
	d.distances = append(d.distances, distance)
}

type fakeSpeaker struct {
	spoken []string
}

func (s *fakeSpeaker) Speak(text string) { s.spoken = append(s.spoken, text) }

type cancelFunc func()

func (c cancelFunc) Cancel() { c() }

type fakeSource struct {
	onSample func(Sample)
	onError  func(error)
	watchErr error
	watches  int
	cancels  int
}

func (f *fakeSource) Watch(onSample func(Sample), onError func(error)) (Subscription, error) {
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	f.watches++
	f.onSample = onSample
	f.onError = onError
	return cancelFunc(func() { f.cancels++ }), nil
}

func (f *fakeSource) push(lon, lat float64) {
	f.onSample(Sample{Lon: lon, Lat: lat})
}

func testRoute() *directions.Route {
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

func newTestTracker() (*Tracker, *fakeDisplay, *fakeSpeaker, *fakeSource) {
	display := &fakeDisplay{}
	speaker := &fakeSpeaker{}
	source := &fakeSource{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTracker(display, speaker, source, logger), display, speaker, source
}

func TestStartWithoutRoute(t *testing.T) {
	tracker, display, _, source := newTestTracker()

	tracker.Start(nil)

	assert.Equal(t, []string{alertNoRoute}, display.alerts)
	assert.Zero(t, source.watches)
	assert.Equal(t, StateIdle, tracker.State())
}

func TestStartSubscribesAndSwitchesPanel(t *testing.T) {
	tracker, display, _, source := newTestTracker()

	tracker.Start(testRoute())

	assert.Equal(t, 1, source.watches)
	assert.Equal(t, []Panel{PanelNavigation}, display.panels)
	assert.Equal(t, StateNavigating, tracker.State())
}

func TestStartWatchFailure(t *testing.T) {
	tracker, display, _, source := newTestTracker()
	source.watchErr = errors.New("no provider")

	tracker.Start(testRoute())

	assert.Equal(t, []string{alertWatchFailed}, display.alerts)
	assert.Equal(t, StateError, tracker.State())
	assert.Equal(t, Panel(PanelDirections), display.panels[len(display.panels)-1])
}

func TestSampleUpdatesInstructionAndProgress(t *testing.T) {
	tracker, display, speaker, source := newTestTracker()
	tracker.Start(testRoute())

	// Far from the first maneuver: no announcement yet.
	source.push(0, 0)

	require.Equal(t, []string{"Turn right"}, display.instructions)
	require.Len(t, display.progress, 1)
	assert.InDelta(t, 0, display.progress[0], 0.5)
	assert.Empty(t, speaker.spoken)
	require.Len(t, display.cameras, 1)
	assert.Equal(t, chaseDuration, display.cameras[0].Duration)
}

func TestAnnouncementInsideThreshold(t *testing.T) {
	tracker, _, speaker, source := newTestTracker()
	tracker.Start(testRoute())

	// ~111 m short of the maneuver: inside the 200 m announcement window
	// but outside the 50 m advancement window.
	source.push(0, 0.009)

	assert.Equal(t, []string{"Turn right"}, speaker.spoken)
	assert.Equal(t, StateNavigating, tracker.State())

	snapshot := tracker.Snapshot("s1")
	assert.Zero(t, snapshot.StepIndex)
}

func TestStepAdvancement(t *testing.T) {
	tracker, display, _, source := newTestTracker()
	tracker.Start(testRoute())

	// ~22 m short of the first maneuver: advance to the next step.
	source.push(0, 0.0098)

	snapshot := tracker.Snapshot("s1")
	assert.Equal(t, 1, snapshot.StepIndex)
	assert.Equal(t, StateNavigating, tracker.State())

	// The following update shows the next step's instruction.
	source.push(0, 0.0099)
	assert.Equal(t, "Arrive at destination", display.instructions[len(display.instructions)-1])
}

func TestArrivalHappensExactlyOnce(t *testing.T) {
	tracker, display, speaker, source := newTestTracker()
	tracker.Start(testRoute())

	source.push(0, 0.0098) // clears step 0
	source.push(0, 0.0199) // within 50 m of the destination

	assert.Equal(t, StateArrived, tracker.State())
	arrivals := 0
	for _, text := range speaker.spoken {
		if text == arrivalAnnouncement {
			arrivals++
		}
	}
	assert.Equal(t, 1, arrivals)
	assert.Equal(t, 1, source.cancels)
	assert.Equal(t, Panel(PanelDirections), display.panels[len(display.panels)-1])

	// A stale sample delivered after arrival must not resurrect the session.
	updates := len(display.instructions)
	announcements := len(speaker.spoken)
	source.push(0, 0.02)
	assert.Len(t, display.instructions, updates)
	assert.Len(t, speaker.spoken, announcements)
}

func TestProgressClamped(t *testing.T) {
	tracker, display, _, source := newTestTracker()
	tracker.Start(testRoute())

	// Standing at the middle vertex: roughly half the route remains.
	source.push(0, 0.01)
	assert.InDelta(t, 50, display.progress[len(display.progress)-1], 1.0)

	// Past the final vertex nothing remains; progress caps at 100.
	source.push(0, 0.05)
	assert.Equal(t, 100.0, display.progress[len(display.progress)-1])
}

func TestResumeContinuesMidRoute(t *testing.T) {
	tracker, display, _, source := newTestTracker()

	tracker.Resume(&Session{
		ID:        "s1",
		Route:     testRoute(),
		StepIndex: 1,
		Progress:  50,
		State:     StateNavigating,
	})

	assert.Equal(t, StateNavigating, tracker.State())
	assert.Equal(t, 1, source.watches)
	assert.Equal(t, []Panel{PanelNavigation}, display.panels)
	assert.Equal(t, []float64{50}, display.progress)

	// The next sample picks up at the restored step, not at the first one.
	source.push(0, 0.019)
	assert.Equal(t, "Arrive at destination", display.instructions[len(display.instructions)-1])

	snapshot := tracker.Snapshot("s1")
	assert.Equal(t, 1, snapshot.StepIndex)
}

func TestResumeIgnoresUnusableSnapshots(t *testing.T) {
	tracker, _, _, source := newTestTracker()

	tracker.Resume(nil)
	tracker.Resume(&Session{ID: "s1", Route: testRoute(), State: StateStopped})
	tracker.Resume(&Session{ID: "s1", Route: testRoute(), State: StateNavigating, StepIndex: 9})
	tracker.Resume(&Session{ID: "s1", State: StateNavigating})

	assert.Zero(t, source.watches)
	assert.Equal(t, StateIdle, tracker.State())
}

func TestStopCancelsSubscription(t *testing.T) {
	tracker, display, _, source := newTestTracker()
	tracker.Start(testRoute())

	tracker.Stop()

	assert.Equal(t, 1, source.cancels)
	assert.Equal(t, StateStopped, tracker.State())
	assert.Equal(t, Panel(PanelDirections), display.panels[len(display.panels)-1])

	// Stop is idempotent.
	tracker.Stop()
	assert.Equal(t, 1, source.cancels)
}

func TestPositionErrorForcesStop(t *testing.T) {
	tracker, display, _, source := newTestTracker()
	tracker.Start(testRoute())

	source.onError(errors.New("permission denied"))

	assert.Equal(t, StateError, tracker.State())
	assert.Equal(t, []string{alertPositionError}, display.alerts)
	assert.Equal(t, 1, source.cancels)
}

func TestRestartReplacesSubscription(t *testing.T) {
	tracker, _, _, source := newTestTracker()

	tracker.Start(testRoute())
	tracker.Start(testRoute())

	// At most one active subscription: the first watch was cancelled when
	// the second session installed.
	assert.Equal(t, 2, source.watches)
	assert.Equal(t, 1, source.cancels)
}

func TestToggleView(t *testing.T) {
	tracker, display, _, source := newTestTracker()

	// Without a route the toggle is inert.
	tracker.ToggleView()
	assert.Empty(t, display.controls)

	tracker.Start(testRoute())
	source.push(0, 0)

	tracker.ToggleView()
	require.Equal(t, [3]bool{false, false, false}, display.controls[0])
	firstPerson := display.cameras[len(display.cameras)-1]
	assert.Equal(t, eyeHeight, firstPerson.Height)
	assert.Zero(t, firstPerson.Duration)
	assert.Zero(t, firstPerson.Pitch)

	// First-person poses persist across position updates.
	source.push(0, 0.001)
	assert.Equal(t, eyeHeight, display.cameras[len(display.cameras)-1].Height)

	tracker.ToggleView()
	require.Equal(t, [3]bool{true, true, true}, display.controls[1])
	overview := display.cameras[len(display.cameras)-1]
	assert.Equal(t, overviewHeight, overview.Height)
	assert.Equal(t, overviewDuration, overview.Duration)
}

func TestSnapshotIsolatedFromCallerRoute(t *testing.T) {
	tracker, _, _, _ := newTestTracker()
	route := testRoute()
	tracker.Start(route)

	route.Steps[0].Instruction = "mutated"

	snapshot := tracker.Snapshot("s1")
	assert.Equal(t, "Turn right", snapshot.Route.Steps[0].Instruction)
}

func TestChaseHeadingFallback(t *testing.T) {
	tracker, display, _, source := newTestTracker()
	tracker.Start(testRoute())

	heading := 72.5
	source.onSample(Sample{Lon: 0, Lat: 0, Heading: &heading})
	assert.Equal(t, 72.5, display.cameras[len(display.cameras)-1].Heading)

	source.push(0, 0.0001)
	assert.Zero(t, display.cameras[len(display.cameras)-1].Heading)
}
