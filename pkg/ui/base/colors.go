package base

import "github.com/charmbracelet/lipgloss"

// ColorPalette defines a consistent color scheme for the simulator panels.
type ColorPalette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Info      lipgloss.Color
	Muted     lipgloss.Color
}

// DarkPalette is the default dark theme palette.
var DarkPalette = ColorPalette{
	Primary:   lipgloss.Color("#7C3AED"), // Purple
	Secondary: lipgloss.Color("#06B6D4"), // Cyan
	Success:   lipgloss.Color("#10B981"), // Emerald
	Warning:   lipgloss.Color("#F59E0B"), // Amber
	Error:     lipgloss.Color("#EF4444"), // Red
	Info:      lipgloss.Color("#3B82F6"), // Blue
	Muted:     lipgloss.Color("#94A3B8"), // Slate
}

// TxnColors is the rotating per-transaction color wheel used for event lines
// and resource holders, matching the reference simulation's eight colors.
var TxnColors = []lipgloss.Color{
	"#1F77B4", "#FF7F0E", "#2CA02C", "#D62728",
	"#9467BD", "#8C564B", "#E377C2", "#7F7F7F",
}

// ForTxn returns the display color of a transaction id (ids are 1-based).
func ForTxn(id int) lipgloss.Color {
	if id < 1 {
		return DarkPalette.Muted
	}
	return TxnColors[(id-1)%len(TxnColors)]
}
