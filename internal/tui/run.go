package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/danielpatrickdp/scenechat/internal/surface"
)

// Source is a page that also streams its surface events.
type Source interface {
	Page
	Events() <-chan surface.Event
}

// Run shows src in the terminal until the user quits.
func Run(src Source, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(NewModel(src), append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
	go forward(src.Events(), p.Send)
	_, err := p.Run()
	src.Close()
	return err
}

// forward relays events to send until the stream closes.
func forward(events <-chan surface.Event, send func(tea.Msg)) {
	for ev := range events {
		send(eventMsg(ev))
	}
	send(closedMsg{})
}
