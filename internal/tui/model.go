// Package tui is a terminal front end for one conversation.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/danielpatrickdp/scenechat/internal/session"
	"github.com/danielpatrickdp/scenechat/internal/surface"
)

// Page is what the model drives. *chat.Conversation satisfies it.
type Page interface {
	Submit(prompt string) *session.Session
	Retry() *session.Session
	Close()
}

// #region messages
// eventMsg carries one surface event into Update.
type eventMsg surface.Event

// closedMsg reports that the event stream ended.
type closedMsg struct{}

// #endregion messages

// #region styles
type styles struct {
	Prompt lipgloss.Style
	Answer lipgloss.Style
	Error  lipgloss.Style
	Muted  lipgloss.Style
	Input  lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Prompt: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Answer: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1),
	}
}

// #endregion styles

// #region model
// Model is the bubbletea model for a single page.
type Model struct {
	page     Page
	board    *surface.Board
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model
	styles   styles
	width    int
	closed   bool
}

// NewModel returns a model driving page.
func NewModel(page Page) Model {
	ta := textarea.New()
	ta.Placeholder = "Say something..."
	ta.ShowLineNumbers = false
	ta.SetHeight(1)
	ta.CharLimit = 500
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		page:     page,
		board:    surface.NewBoard(),
		viewport: viewport.New(80, 20),
		textarea: ta,
		spinner:  sp,
		styles:   defaultStyles(),
		width:    80,
	}
}

// Board exposes the replayed regions.
func (m Model) Board() *surface.Board { return m.board }

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		inputHeight := 3 + 1 // bordered textarea plus footer
		h := msg.Height - inputHeight
		if h < 1 {
			h = 1
		}
		m.viewport.Width, m.viewport.Height = msg.Width, h
		m.textarea.SetWidth(msg.Width - 4)
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.page.Close()
			return m, tea.Quit
		case tea.KeyCtrlR:
			if m.board.Retry && !m.board.Busy {
				m.page.Retry()
			}
			return m, nil
		case tea.KeyEnter:
			prompt := m.textarea.Value()
			if strings.TrimSpace(prompt) == "" || m.board.Busy {
				return m, nil
			}
			if m.page.Submit(prompt) != nil {
				m.textarea.Reset()
			}
			return m, nil
		}

	case eventMsg:
		m.board.Apply(surface.Event(msg))
		m.refresh()
		return m, nil

	case closedMsg:
		m.closed = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.render())
	m.viewport.GotoBottom()
}

func (m Model) render() string {
	wrap := lipgloss.NewStyle().Width(m.width)
	parts := make([]string, 0, len(m.board.Regions()))
	for _, r := range m.board.Regions() {
		var s string
		switch {
		case r.Role == session.RolePrompt:
			s = m.styles.Prompt.Render("> " + r.Text)
		case r.Mode == session.ModeError:
			s = m.styles.Error.Render(r.Text)
		case r.Mode == session.ModeLoading:
			s = m.styles.Muted.Render(r.Text)
		default:
			s = m.styles.Answer.Render(r.Text)
		}
		parts = append(parts, wrap.Render(s))
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.styles.Input.Render(m.textarea.View()),
		m.footer(),
	)
}

func (m Model) footer() string {
	var status []string
	if m.board.Busy {
		status = append(status, m.spinner.View()+" busy")
	}
	if m.board.Retry {
		status = append(status, "ctrl+r: retry")
	}
	if m.closed {
		status = append(status, "disconnected")
	}
	status = append(status, "enter: send", "esc: quit")
	return m.styles.Muted.Render(strings.Join(status, "  "))
}

// #endregion model
