package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/meshcut/debug"
	"github.com/wippyai/meshcut/export"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

type modelState int

const (
	stateList modelState = iota
	stateChannels
)

type interactiveModel struct {
	err      error
	session  *session
	messages *[]string
	channels []channelInfo
	cfg      config
	table    table.Model
	state    modelState
}

type channelInfo struct {
	err     error
	channel export.Channel
	size    uint64
}

type loadedMsg struct {
	err      error
	session  *session
	messages *[]string
}

func newInteractiveModel(cfg config) *interactiveModel {
	return &interactiveModel{cfg: cfg, state: stateList}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

// load runs off the event loop. Debug messages land in a slice that the
// model takes over with loadedMsg; later deliveries happen during Update.
func (m *interactiveModel) load() tea.Msg {
	messages := new([]string)
	s, err := load(m.cfg, func(msg debug.Message, _ any) {
		*messages = append(*messages, fmt.Sprintf("[%s] %s", msg.Severity, msg.Text))
	})
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{session: s, messages: messages}
}

func newTable(rows []row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, name := range columns {
		w := len(name)
		for _, r := range rows {
			w = max(w, len(r.cells()[i]))
		}
		cols[i] = table.Column{Title: name, Width: w}
	}
	trows := make([]table.Row, len(rows))
	for i, r := range rows {
		trows[i] = table.Row(r.cells())
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(trows),
		table.WithFocused(true),
		table.WithHeight(min(len(rows)+1, 15)),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(lipgloss.Color("#87CEEB"))
	styles.Selected = selectedStyle
	t.SetStyles(styles)
	return t
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.session != nil {
				m.session.Close()
			}
			return m, tea.Quit

		case "enter":
			if m.state == stateList && m.session != nil && len(m.session.rows) > 0 {
				m.inspect(m.session.rows[m.table.Cursor()])
				m.state = stateChannels
				return m, nil
			}

		case "esc":
			if m.state == stateChannels {
				m.state = stateList
				m.channels = nil
				return m, nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.session = msg.session
		m.messages = msg.messages
		m.table = newTable(msg.session.rows)
	}

	if m.state == stateList && m.session != nil {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

// inspect runs a size query on every channel of r.
func (m *interactiveModel) inspect(r row) {
	m.channels = m.channels[:0]
	for _, ch := range export.Channels() {
		size, err := m.session.reg.GetData(m.session.ctx, r.handle, ch, 0, nil)
		m.channels = append(m.channels, channelInfo{channel: ch, size: size, err: err})
	}
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.session == nil {
		return "Loading meshes..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("meshcut"))
	fmt.Fprintf(&b, " %s x %s\n\n", m.cfg.src, m.cfg.cut)

	switch m.state {
	case stateList:
		b.WriteString(m.table.View())
		b.WriteString("\n\n")
		for _, line := range *m.messages {
			b.WriteString(helpStyle.Render(line))
			b.WriteByte('\n')
		}
		b.WriteString(helpStyle.Render("↑/↓ select • enter channels • q quit"))

	case stateChannels:
		r := m.session.rows[m.table.Cursor()]
		fmt.Fprintf(&b, "Channels of %s component %s\n\n", kindStyle.Render(r.kind), r.detail)
		for _, ci := range m.channels {
			name := fmt.Sprintf("%-26s", ci.channel)
			if ci.err != nil {
				b.WriteString(name + errorStyle.Render(ci.err.Error()))
			} else {
				b.WriteString(name + valueStyle.Render(fmt.Sprintf("%d bytes", ci.size)))
			}
			b.WriteByte('\n')
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc back • q quit"))
	}

	return b.String()
}

func runInteractive(cfg config) error {
	p := tea.NewProgram(newInteractiveModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
