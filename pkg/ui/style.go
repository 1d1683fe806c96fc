package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/diisilva/deadlock-simulation/pkg/events"
	"github.com/diisilva/deadlock-simulation/pkg/ui/base"
)

var (
	palette = base.DarkPalette

	bgDark   = lipgloss.Color("#0F172A")
	bgMedium = lipgloss.Color("#1E293B")

	textPrimary   = lipgloss.Color("#F8FAFC")
	textSecondary = lipgloss.Color("#CBD5E1")
)

var (
	titleStyle = lipgloss.NewStyle().
			Background(palette.Primary).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 2).
			MarginBottom(1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Muted).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true)

	satisfiedStyle = lipgloss.NewStyle().
			Foreground(palette.Success)

	pendingStyle = lipgloss.NewStyle().
			Foreground(palette.Muted)

	resourceFreeStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(palette.Muted).
				Padding(0, 2)

	resourceHeldStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				Padding(0, 2).
				Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(bgMedium).
			Foreground(textSecondary).
			Padding(0, 1)

	doneStyle = lipgloss.NewStyle().
			Background(palette.Success).
			Foreground(bgDark).
			Bold(true).
			Padding(0, 1)

	timestampStyle = lipgloss.NewStyle().
			Foreground(palette.Muted)
)

// kindStyles colors each event kind like the reference simulation's log:
// green for grants, orange for waits, blue for releases, red for deaths,
// purple for commits.
var kindStyles = map[events.Kind]lipgloss.Style{
	events.Started:      lipgloss.NewStyle().Foreground(textPrimary),
	events.LockAcquired: lipgloss.NewStyle().Foreground(palette.Success),
	events.Waiting:      lipgloss.NewStyle().Foreground(palette.Warning),
	events.LockReleased: lipgloss.NewStyle().Foreground(palette.Info),
	events.Read:         lipgloss.NewStyle().Foreground(textSecondary),
	events.Write:        lipgloss.NewStyle().Foreground(palette.Secondary),
	events.Committed:    lipgloss.NewStyle().Foreground(palette.Primary).Bold(true),
	events.Aborted:      lipgloss.NewStyle().Foreground(palette.Error).Bold(true),
	events.Done:         lipgloss.NewStyle().Foreground(palette.Success).Bold(true),
}

func styleFor(kind events.Kind) lipgloss.Style {
	if s, ok := kindStyles[kind]; ok {
		return s
	}
	return lipgloss.NewStyle().Foreground(textPrimary)
}
