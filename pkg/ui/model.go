package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diisilva/deadlock-simulation/pkg/concurrency/lock"
	"github.com/diisilva/deadlock-simulation/pkg/events"
	"github.com/diisilva/deadlock-simulation/pkg/sim"
	"github.com/diisilva/deadlock-simulation/pkg/ui/base"
)

type eventMsg events.Event

type streamClosedMsg struct{}

type snapshotTickMsg time.Time

const snapshotInterval = 200 * time.Millisecond

// Model is the simulator dashboard: the requirement panel, run metrics, the
// live resource/holder/queue boxes and the scrollable event log. It only
// consumes the event stream and lock table snapshots; it never reaches into
// engine internals.
type Model struct {
	scheduler *sim.Scheduler
	tracker   *events.Tracker
	stream    <-chan events.Event

	logView viewport.Model
	spin    spinner.Model
	help    help.Model
	keys    keyMap

	lines    []string
	snaps    []lock.Snapshot
	marks    map[int][]mark
	follow   bool
	done     bool
	showHelp bool
	width    int
	height   int
	started  time.Time
	finished time.Time
}

func NewModel(scheduler *sim.Scheduler, tracker *events.Tracker, stream <-chan events.Event) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(palette.Primary)

	vp := viewport.New(80, 12)

	return Model{
		scheduler: scheduler,
		tracker:   tracker,
		stream:    stream,
		logView:   vp,
		spin:      sp,
		help:      help.New(),
		keys:      keys,
		marks:     make(map[int][]mark),
		follow:    true,
		started:   time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		m.waitForEvent(),
		snapshotTick(),
	)
}

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		e, ok := <-m.stream
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg(e)
	}
}

func snapshotTick() tea.Cmd {
	return tea.Tick(snapshotInterval, func(t time.Time) tea.Msg {
		return snapshotTickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLog()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
		case key.Matches(msg, m.keys.Follow):
			m.follow = !m.follow
			if m.follow {
				m.logView.GotoBottom()
			}
		default:
			// Manual scrolling disables tail-follow.
			var cmd tea.Cmd
			m.logView, cmd = m.logView.Update(msg)
			m.follow = m.logView.AtBottom()
			return m, cmd
		}

	case eventMsg:
		e := events.Event(msg)
		m.appendLine(e)
		if e.Txn > 0 {
			_, seen := m.marks[e.Txn]
			m.marks[e.Txn] = append(m.marks[e.Txn], mark{at: e.Wall.Sub(m.started), kind: e.Kind})
			if !seen {
				m.resizeLog() // a new timeline row shrinks the log
			}
		}
		if e.Kind == events.Done {
			m.done = true
			m.finished = time.Now()
		}
		return m, m.waitForEvent()

	case streamClosedMsg:
		m.done = true

	case snapshotTickMsg:
		m.snaps = m.scheduler.Table().Snapshots()
		return m, snapshotTick()

	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *Model) appendLine(e events.Event) {
	ts := timestampStyle.Render(e.Wall.Format("15:04:05.000"))
	m.lines = append(m.lines, fmt.Sprintf("%s %s", ts, styleFor(e.Kind).Render(e.Message)))
	m.logView.SetContent(strings.Join(m.lines, "\n"))
	if m.follow {
		m.logView.GotoBottom()
	}
}

func (m *Model) resizeLog() {
	if m.width == 0 {
		return
	}
	m.logView.Width = m.width - 4
	// Leave room for the title, the panel row, the timeline and the status bar.
	chrome := 16
	if len(m.marks) > 0 {
		chrome += len(m.marks) + 3
	}
	if h := m.height - chrome; h > 3 {
		m.logView.Height = h
	} else {
		m.logView.Height = 3
	}
}

func (m Model) View() string {
	var sections []string

	sections = append(sections, titleStyle.Render("Wait-Die Transaction Simulator"))

	panels := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.requirementPanel(),
		m.metricsPanel(),
		m.resourcePanel(),
	)
	sections = append(sections, panels)

	if tl := m.timelinePanel(); tl != "" {
		sections = append(sections, tl)
	}

	sections = append(sections, panelStyle.Render(
		panelTitleStyle.Render("Event Log")+"\n"+m.logView.View()))

	sections = append(sections, m.statusBar())
	if m.showHelp {
		sections = append(sections, m.help.FullHelpView(m.keys.FullHelp()))
	}

	return strings.Join(sections, "\n")
}

func (m Model) requirementPanel() string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Requirements"))
	flags := m.tracker.Flags()
	for r := events.Requirement(0); r < events.NumRequirements; r++ {
		b.WriteString("\n")
		if flags[r] {
			b.WriteString(satisfiedStyle.Render("✔ " + r.String()))
		} else {
			b.WriteString(pendingStyle.Render("✗ " + r.String()))
		}
	}
	return panelStyle.Render(b.String())
}

func (m Model) metricsPanel() string {
	metrics := m.tracker.Snapshot()
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Metrics"))
	fmt.Fprintf(&b, "\nAborts:   %d", metrics.Aborts)
	fmt.Fprintf(&b, "\nCommits:  %d", metrics.Commits)
	fmt.Fprintf(&b, "\nWaits:    %d", metrics.Waits)
	fmt.Fprintf(&b, "\nAvg wait: %s", metrics.AvgWait.Round(time.Millisecond))
	fmt.Fprintf(&b, "\nElapsed:  %s", time.Since(m.started).Round(time.Millisecond))
	return panelStyle.Render(b.String())
}

func (m Model) resourcePanel() string {
	boxes := make([]string, 0, len(m.snaps))
	for _, snap := range m.snaps {
		var b strings.Builder
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(snap.Name))
		if snap.Holder == 0 {
			b.WriteString("\nfree")
		} else {
			holder := lipgloss.NewStyle().
				Foreground(base.ForTxn(snap.Holder)).
				Render(fmt.Sprintf("T%d", snap.Holder))
			b.WriteString("\nheld by " + holder)
		}
		if len(snap.Waiting) > 0 {
			names := make([]string, len(snap.Waiting))
			for i, id := range snap.Waiting {
				names[i] = fmt.Sprintf("T%d", id)
			}
			b.WriteString("\nqueue: " + strings.Join(names, " "))
		} else {
			b.WriteString("\nqueue: -")
		}

		style := resourceFreeStyle
		if snap.Holder != 0 {
			style = resourceHeldStyle.BorderForeground(base.ForTxn(snap.Holder))
		}
		boxes = append(boxes, style.Render(b.String()))
	}

	content := panelTitleStyle.Render("Resources") + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
	return panelStyle.Render(content)
}

func (m Model) statusBar() string {
	status := m.spin.View() + " simulation running"
	if m.done {
		status = doneStyle.Render("ALL TRANSACTIONS COMMITTED")
	}
	return statusBarStyle.Render(status + "  " + m.help.ShortHelpView(m.keys.ShortHelp()))
}
