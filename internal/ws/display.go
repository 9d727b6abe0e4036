package ws

import (
	"encoding/json"

	"skyroute/internal/navigation"
	"skyroute/internal/voice"
)

// Event types pushed to the client.
const (
	eventAlert       = "alert"
	eventPanel       = "panel"
	eventInstruction = "instruction"
	eventProgress    = "progress"
	eventCamera      = "camera"
	eventSpeak       = "speak"
	eventControls    = "controls"
	eventRoute       = "route"
	eventVoice       = "voice"
	eventLocation    = "location"
	eventAdvisory    = "advisory"
)

// wsDisplay renders tracker output as events on the client connection.
type wsDisplay struct {
	client *Client
}

func (d wsDisplay) ShowAlert(text string) {
	d.client.sendEvent(eventAlert, map[string]string{"text": text})
}

func (d wsDisplay) ShowPanel(panel navigation.Panel) {
	d.client.sendEvent(eventPanel, map[string]navigation.Panel{"panel": panel})
}

func (d wsDisplay) SetNextTurn(instruction, distance string) {
	d.client.sendEvent(eventInstruction, map[string]string{
		"text":     instruction,
		"distance": distance,
	})
}

func (d wsDisplay) SetProgress(percent float64) {
	d.client.sendEvent(eventProgress, map[string]float64{"percent": percent})
}

func (d wsDisplay) MoveCamera(pose navigation.CameraPose) {
	d.client.sendEvent(eventCamera, pose)
}

func (d wsDisplay) SetControlsEnabled(rotate, tilt, zoom bool) {
	d.client.sendEvent(eventControls, map[string]bool{
		"rotate": rotate,
		"tilt":   tilt,
		"zoom":   zoom,
	})
}

// wsSynth forwards utterances to the client's speech facility.
type wsSynth struct {
	client *Client
}

func (s wsSynth) Speak(u voice.Utterance) {
	s.client.sendEvent(eventSpeak, u)
}

func (s wsSynth) Cancel() {
	s.client.sendEvent(eventSpeak, map[string]bool{"cancel": true})
}

func (c *Client) sendEvent(eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		c.Manager.logger.Warn("failed to marshal event", "clientID", c.ID, "type", eventType, "error", err)
		return
	}
	c.Send(Message{Type: eventType, Data: data})
}
