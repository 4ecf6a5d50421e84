package surface

import (
	"strings"

	"github.com/danielpatrickdp/scenechat/internal/session"
)

// #region board
// Region is the client-side view of one output region.
type Region struct {
	ID   session.ID
	Role session.Role
	Mode session.Mode
	Text string
}

// Board replays events into regions, the way a page would. It is not safe
// for concurrent use.
type Board struct {
	order   []session.ID
	regions map[session.ID]*Region
	Busy    bool
	Retry   bool
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{regions: make(map[session.ID]*Region)}
}

// Apply folds ev into the board. Events for unknown regions are ignored.
func (b *Board) Apply(ev Event) {
	switch ev.Type {
	case EventOpen:
		if _, ok := b.regions[ev.Region]; ok {
			return
		}
		b.order = append(b.order, ev.Region)
		b.regions[ev.Region] = &Region{ID: ev.Region, Role: ev.Role, Mode: session.ModePlain, Text: ev.Text}
	case EventSet:
		if r, ok := b.regions[ev.Region]; ok {
			r.Mode, r.Text = ev.Mode, ev.Text
		}
	case EventAppend:
		if r, ok := b.regions[ev.Region]; ok {
			if ev.Break {
				r.Text += "\n"
			} else {
				r.Text += ev.Text
			}
		}
	case EventBusy:
		b.Busy = ev.On
	case EventRetry:
		b.Retry = ev.On
	}
}

// Regions returns the regions in the order they were opened.
func (b *Board) Regions() []Region {
	out := make([]Region, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, *b.regions[id])
	}
	return out
}

// Transcript renders the board as plain text, one region per paragraph.
func (b *Board) Transcript() string {
	var sb strings.Builder
	for i, r := range b.Regions() {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if r.Role == session.RolePrompt {
			sb.WriteString("> ")
		}
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// #endregion board
