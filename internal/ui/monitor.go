package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/soundmesh/wam/internal/event"
	"github.com/soundmesh/wam/internal/speaker"
	"github.com/soundmesh/wam/internal/state"
)

// monitorEventBuffer is the capacity of the channel that forwards speaker
// events into the Bubble Tea program. Events beyond it are dropped; the
// next one triggers a fresh snapshot anyway.
const monitorEventBuffer = 32

// speakerEventMsg carries one speaker event into the Update loop.
type speakerEventMsg struct {
	event event.Event
}

// refreshDoneMsg reports the result of the initial state read.
type refreshDoneMsg struct {
	err error
}

// MonitorModel is an interactive live view of one speaker. It subscribes
// to the speaker's event stream and re-renders on every state change.
type MonitorModel struct {
	sp       *speaker.Speaker
	snapshot state.Speaker

	events chan event.Event
	subID  int

	spin      spinner.Model
	volumeBar progress.Model

	width int
	ready bool
	err   error
}

// NewMonitorModel creates a monitor for an already connected speaker.
func NewMonitorModel(sp *speaker.Speaker) *MonitorModel {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = spin.Style.Foreground(PrimaryColor)

	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)

	m := &MonitorModel{
		sp:        sp,
		snapshot:  sp.State(),
		events:    make(chan event.Event, monitorEventBuffer),
		spin:      spin,
		volumeBar: bar,
		width:     GetTerminalWidth(),
	}

	m.subID = sp.Subscribe(0, func(e event.Event) {
		select {
		case m.events <- e:
		default:
		}
	})

	return m
}

// Init implements tea.Model.
func (m *MonitorModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.refresh(), m.nextEvent())
}

// refresh re-reads the full speaker state in the background.
func (m *MonitorModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: m.sp.Update(context.Background())}
	}
}

// nextEvent waits for the next forwarded speaker event.
func (m *MonitorModel) nextEvent() tea.Cmd {
	return func() tea.Msg {
		return speakerEventMsg{event: <-m.events}
	}
}

// Update implements tea.Model.
func (m *MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.sp.Unsubscribe(m.subID)
			return m, tea.Quit
		case "r":
			return m, m.refresh()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width > MaxContentWidth {
			m.width = MaxContentWidth
		}

	case refreshDoneMsg:
		m.ready = true
		m.err = msg.err
		m.snapshot = m.sp.State()

	case speakerEventMsg:
		m.snapshot = m.sp.State()
		if ce, ok := msg.event.(event.ConnectionEvent); ok && ce.Err != nil {
			m.err = ce.Err
		}
		return m, m.nextEvent()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m *MonitorModel) View() string {
	if !m.ready {
		return fmt.Sprintf("\n  %s Reading speaker state...\n", m.spin.View())
	}

	var b strings.Builder
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(ErrorStyle.Render("  " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(HelpStyle.Render("  q quit · r refresh"))
	b.WriteString("\n")
	return b.String()
}

func (m *MonitorModel) renderStatus() string {
	s := m.snapshot

	var b strings.Builder

	title := s.Name
	if title == "" {
		title = m.sp.Addr()
	}
	conn := PlayingStyle.Render("● connected")
	if !s.Connected {
		conn = ErrorStyle.Render("● disconnected")
	}
	b.WriteString(TitleStyle.Render(title) + "  " + conn)
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("%s · %s", s.Model, m.sp.Addr())))
	b.WriteString("\n\n")

	b.WriteString(KeyStyle.Render("Playback:"))
	b.WriteString(renderPlayback(s))
	b.WriteString("\n")

	b.WriteString(KeyStyle.Render("Volume:"))
	b.WriteString(m.volumeBar.ViewAs(float64(s.Volume) / 100.0))
	b.WriteString(ValueStyle.Render(fmt.Sprintf(" %3d%%", s.Volume)))
	if s.Muted {
		b.WriteString(" " + MarkerMuted)
	}
	b.WriteString("\n")

	rows := [][2]string{
		{"Source", s.Playback.Source},
		{"Group", renderGroup(s)},
	}
	if s.Track.Title != "" {
		rows = append(rows, [2]string{"Track", renderTrack(s)})
		if s.Track.Duration > 0 {
			rows = append(rows, [2]string{"Position", fmt.Sprintf("%s / %s",
				formatSeconds(s.Track.Position), formatSeconds(s.Track.Duration))})
		}
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		b.WriteString(KeyStyle.Render(row[0] + ":"))
		b.WriteString(ValueStyle.Render(row[1]))
		b.WriteString("\n")
	}

	return BoxStyle(m.width).Render(strings.TrimRight(b.String(), "\n"))
}

func formatSeconds(s int) string {
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// RunMonitor runs the live monitor until the user quits.
func RunMonitor(sp *speaker.Speaker) error {
	p := tea.NewProgram(NewMonitorModel(sp), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
