package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"voicechat/internal/domain"
)

const (
	headerHeight = 2
	footerHeight = 2
	listeningCue = "Listening..."
)

// Controller is the part of the voice controller the terminal drives.
type Controller interface {
	Toggle(ctx context.Context) error
	Snapshot() domain.Snapshot
}

// Options tunes rendering.
type Options struct {
	Title string
	// MarkdownStyle is a glamour standard style name; empty detects the
	// terminal background.
	MarkdownStyle string
}

// SnapshotMsg carries a controller state change into the program.
type SnapshotMsg struct {
	Snapshot domain.Snapshot
}

type toggleDoneMsg struct {
	err error
}

// Model is the Bubble Tea model of the voice chat terminal.
type Model struct {
	ctx        context.Context
	controller Controller
	opts       Options

	snapshot  domain.Snapshot
	toggleErr error

	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	styles   styles

	width  int
	height int
	ready  bool
}

func NewModel(ctx context.Context, controller Controller, opts Options) Model {
	if opts.Title == "" {
		opts.Title = "Voice Chat"
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#60a5fa"))

	return Model{
		ctx:        ctx,
		controller: controller,
		opts:       opts,
		snapshot:   controller.Snapshot(),
		viewport:   viewport.New(0, 0),
		spinner:    sp,
		styles:     defaultStyles(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 1)
		m.renderer = newRenderer(m.opts.MarkdownStyle, m.bubbleWidth())
		m.ready = true
		m.refresh()

	case SnapshotMsg:
		m.snapshot = msg.Snapshot
		m.toggleErr = nil
		m.refresh()

	case toggleDoneMsg:
		m.toggleErr = msg.err
		if msg.err != nil && m.snapshot.ErrorText != "" {
			// The controller already explains this failure.
			m.toggleErr = nil
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case " ", "enter":
			return m, m.toggle()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// toggle runs off the update loop: the controller publishes snapshots back
// through Program.Send, which would block a synchronous call.
func (m Model) toggle() tea.Cmd {
	ctx, controller := m.ctx, m.controller
	return func() tea.Msg {
		return toggleDoneMsg{err: controller.Toggle(ctx)}
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Starting voice chat..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.viewport.View(),
		m.footerView(),
	)
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m Model) headerView() string {
	state := m.styles.stateIdle.Render("mic off")
	switch {
	case m.snapshot.Listening:
		state = m.styles.stateListening.Render("● listening")
	case m.snapshot.Processing:
		state = m.styles.stateProcessing.Render("thinking")
	}
	title := m.styles.title.Render(m.opts.Title)
	gap := max(m.width-lipgloss.Width(title)-lipgloss.Width(state), 1)
	return m.styles.header.Width(m.width).Render(title + strings.Repeat(" ", gap) + state)
}

func (m Model) footerView() string {
	hint := m.snapshot.Hint()
	style := m.styles.hint
	switch {
	case m.toggleErr != nil:
		hint = m.toggleErr.Error()
		style = m.styles.errorText
	case m.snapshot.ErrorText != "":
		style = m.styles.errorText
	case m.snapshot.Processing:
		hint = m.spinner.View() + " " + hint
	}
	keys := m.styles.keys.Render("space toggle mic • ↑/↓ scroll • q quit")
	return lipgloss.JoinVertical(lipgloss.Left, style.Render(hint), keys)
}

func (m Model) renderHistory() string {
	var b strings.Builder
	for _, entry := range m.snapshot.History {
		b.WriteString(m.renderEntry(entry))
		b.WriteString("\n\n")
	}
	if m.snapshot.Listening {
		text := m.snapshot.InterimText
		if strings.TrimSpace(text) == "" {
			text = listeningCue
		}
		b.WriteString(m.alignRight(m.styles.interim.Width(m.bubbleWidth()).Render(text)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderEntry(entry domain.ChatEntry) string {
	if entry.Role == domain.RoleUser {
		return m.alignRight(m.styles.user.Width(m.bubbleWidth()).Render(entry.Text))
	}

	text := entry.Text
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(entry.Text); err == nil {
			text = strings.Trim(rendered, "\n")
		}
	}
	return m.styles.model.Render(text)
}

func (m Model) alignRight(block string) string {
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, block)
}

func (m Model) bubbleWidth() int {
	return max(m.width*3/4, 20)
}

func newRenderer(style string, width int) *glamour.TermRenderer {
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	renderer, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil
	}
	return renderer
}
