package ui

import (
	"testing"
	"time"

	"github.com/diisilva/deadlock-simulation/pkg/events"
)

func TestTimelineCellsScalePositions(t *testing.T) {
	marks := []mark{
		{at: 0, kind: events.Started},
		{at: 500 * time.Millisecond, kind: events.Write},
		{at: time.Second, kind: events.Committed},
	}

	cells := timelineCells(marks, time.Second, 11)

	want := map[int]events.Kind{0: events.Started, 5: events.Write, 10: events.Committed}
	if len(cells) != len(want) {
		t.Fatalf("got %d cells, want %d: %v", len(cells), len(want), cells)
	}
	for idx, kind := range want {
		if cells[idx] != kind {
			t.Errorf("cell %d = %v, want %v", idx, cells[idx], kind)
		}
	}
}

func TestTimelineCellsLatestMarkWins(t *testing.T) {
	marks := []mark{
		{at: 100 * time.Millisecond, kind: events.Waiting},
		{at: 101 * time.Millisecond, kind: events.Aborted},
	}

	cells := timelineCells(marks, 10*time.Second, 20)
	if cells[0] != events.Aborted {
		t.Errorf("contested cell = %v, want the later mark %v", cells[0], events.Aborted)
	}
}

func TestTimelineCellsDegenerateInputs(t *testing.T) {
	marks := []mark{{at: time.Second, kind: events.Read}}

	if cells := timelineCells(marks, 0, 20); len(cells) != 0 {
		t.Errorf("zero span produced cells: %v", cells)
	}
	if cells := timelineCells(marks, time.Second, 0); len(cells) != 0 {
		t.Errorf("zero width produced cells: %v", cells)
	}
	// Marks past the span are dropped rather than clamped onto the edge.
	if cells := timelineCells(marks, 500*time.Millisecond, 20); len(cells) != 0 {
		t.Errorf("out-of-span mark placed: %v", cells)
	}
}
