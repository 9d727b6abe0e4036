package navigation

// Panel identifies which side panel the client shows.
type Panel string

const (
	PanelDirections Panel = "directions"
	PanelNavigation Panel = "navigation"
)

// Display is the tracker's view of the client UI. Over the wire it pushes
// WebSocket events; in tests it records calls.
type Display interface {
	ShowAlert(text string)
	ShowPanel(panel Panel)
	SetNextTurn(instruction, distance string)
	SetProgress(percent float64)
	MoveCamera(pose CameraPose)
	SetControlsEnabled(rotate, tilt, zoom bool)
}
