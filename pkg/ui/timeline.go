package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/diisilva/deadlock-simulation/pkg/events"
	"github.com/diisilva/deadlock-simulation/pkg/ui/base"
)

// mark is one event placed on a transaction's timeline, offset from the start
// of the run.
type mark struct {
	at   time.Duration
	kind events.Kind
}

// timelineCells maps a transaction's marks onto a row of the given width,
// scaled so the run's span fills the row. A contested cell keeps the latest
// mark, matching how the display favors the most recent state.
func timelineCells(marks []mark, span time.Duration, width int) map[int]events.Kind {
	cells := make(map[int]events.Kind)
	if width < 1 || span <= 0 {
		return cells
	}
	for _, mk := range marks {
		if mk.at < 0 || mk.at > span {
			continue
		}
		idx := int(int64(mk.at) * int64(width-1) / int64(span))
		cells[idx] = mk.kind
	}
	return cells
}

// timelinePanel renders one row per transaction with each event drawn at its
// wall-clock position, colored by kind. The span grows with the run and
// freezes once the simulation is done.
func (m Model) timelinePanel() string {
	if len(m.marks) == 0 {
		return ""
	}

	span := time.Since(m.started)
	if m.done && !m.finished.IsZero() {
		span = m.finished.Sub(m.started)
	}

	width := m.width - 12
	if width < 20 {
		width = 20
	}

	ids := make([]int, 0, len(m.marks))
	for id := range m.marks {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Timeline"))
	for _, id := range ids {
		cells := timelineCells(m.marks[id], span, width)
		label := lipgloss.NewStyle().
			Foreground(base.ForTxn(id)).
			Bold(true).
			Render(fmt.Sprintf("%-4s", fmt.Sprintf("T%d", id)))

		var row strings.Builder
		for i := 0; i < width; i++ {
			if kind, ok := cells[i]; ok {
				row.WriteString(styleFor(kind).Render("■"))
			} else {
				row.WriteString(pendingStyle.Render("·"))
			}
		}
		b.WriteString("\n" + label + row.String())
	}
	return panelStyle.Render(b.String())
}
