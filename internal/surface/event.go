// Package surface turns rendering-surface calls into transportable events
// and back into a region board.
package surface

import (
	"github.com/danielpatrickdp/scenechat/internal/session"
)

// #region event
// EventType names a surface operation.
type EventType string

const (
	EventOpen   EventType = "open"
	EventSet    EventType = "set"
	EventAppend EventType = "append"
	EventBusy   EventType = "busy"
	EventRetry  EventType = "retry"
)

// Event is one rendering instruction. Only the fields relevant to Type are
// set.
type Event struct {
	Type   EventType    `json:"type"`
	Region session.ID   `json:"region,omitempty"`
	Role   session.Role `json:"role,omitempty"`
	Mode   session.Mode `json:"mode,omitempty"`
	Text   string       `json:"text,omitempty"`
	Break  bool         `json:"break,omitempty"`
	On     bool         `json:"on,omitempty"`
}

// Command is an inbound trigger from a client.
type Command struct {
	Op     string `json:"op"`
	Prompt string `json:"prompt,omitempty"`
}

const (
	OpSubmit = "submit"
	OpRetry  = "retry"
)

// #endregion event

// #region emitter
// Emitter is a session.Surface that hands every call to a sink as an Event.
type Emitter func(Event)

var _ session.Surface = Emitter(nil)

func (e Emitter) OpenRegion(id session.ID, role session.Role, text string) {
	e(Event{Type: EventOpen, Region: id, Role: role, Text: text})
}

func (e Emitter) SetRegion(id session.ID, mode session.Mode, text string) {
	e(Event{Type: EventSet, Region: id, Mode: mode, Text: text})
}

func (e Emitter) AppendRegion(id session.ID, p session.Piece) {
	e(Event{Type: EventAppend, Region: id, Text: p.Text, Break: p.LineBreak})
}

func (e Emitter) SetBusy(busy bool) {
	e(Event{Type: EventBusy, On: busy})
}

func (e Emitter) SetRetryAvailable(available bool) {
	e(Event{Type: EventRetry, On: available})
}

// #endregion emitter
