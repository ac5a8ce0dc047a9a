package grid

import (
	"testing"

	"github.com/hminw18/timecheck-sub000/internal/model"
)

func drag(s *Selection, from, to Cell, via ...Cell) []model.SlotID {
	s.Handle(PointerEvent{Kind: PointerDown, Cell: from})
	for _, c := range via {
		s.Handle(PointerEvent{Kind: PointerMove, Cell: c})
	}
	s.Handle(PointerEvent{Kind: PointerMove, Cell: to})
	return s.Handle(PointerEvent{Kind: PointerUp, Cell: to})
}

func TestDragRectangleDirectionIndependent(t *testing.T) {
	cache := testCache()

	// Start at column 2 / row 3, end at column 0 / row 1: the rectangle is
	// columns [0,2] × rows [1,3] regardless of drag direction.
	forward := NewSelection(cache, model.NewSlotSet())
	got := drag(forward, Cell{Col: 2, Row: 3}, Cell{Col: 0, Row: 1})
	if len(got) != 9 {
		t.Fatalf("committed %d slots, want 9", len(got))
	}

	backward := NewSelection(cache, model.NewSlotSet())
	drag(backward, Cell{Col: 0, Row: 1}, Cell{Col: 2, Row: 3})

	if !forward.target.Equal(backward.target) {
		t.Errorf("direction changed the result: %v vs %v", forward.target.List(), backward.target.List())
	}
	for _, id := range []model.SlotID{"Mon-09:30", "Wed-10:30", "Tue-10:00"} {
		if !forward.target.Has(id) {
			t.Errorf("rectangle missing %q", id)
		}
	}
	if forward.target.Has("Mon-09:00") {
		t.Error("row 0 must stay outside the rectangle")
	}
}

func TestDragSingleCellToggle(t *testing.T) {
	cache := testCache()
	target := model.NewSlotSet("Mon-09:00")
	s := NewSelection(cache, target)

	// Down+up on an occupied cell with no travel removes just that cell.
	s.Handle(PointerEvent{Kind: PointerDown, Cell: Cell{Col: 0, Row: 0}})
	if s.Mode() != ModeRemove {
		t.Fatal("mode should be remove when the anchor cell is occupied")
	}
	s.Handle(PointerEvent{Kind: PointerUp, Cell: Cell{Col: 0, Row: 0}})

	if target.Has("Mon-09:00") || len(target) != 0 {
		t.Errorf("single-cell toggle failed: %v", target.List())
	}

	// And the inverse on an empty cell.
	s.Handle(PointerEvent{Kind: PointerDown, Cell: Cell{Col: 1, Row: 1}})
	if s.Mode() != ModeAdd {
		t.Fatal("mode should be add when the anchor cell is empty")
	}
	s.Handle(PointerEvent{Kind: PointerUp, Cell: Cell{Col: 1, Row: 1}})
	if !target.Has("Tue-09:30") {
		t.Error("single-cell add failed")
	}
}

func TestDragMoveBackToAnchorStillRectangle(t *testing.T) {
	cache := testCache()
	target := model.NewSlotSet()
	s := NewSelection(cache, target)

	// Travel away and back: a rectangle commit of just the anchor cell,
	// not a toggle, but the outcome for ModeAdd is the same single slot.
	got := drag(s, Cell{Col: 0, Row: 0}, Cell{Col: 0, Row: 0}, Cell{Col: 1, Row: 1})
	if len(got) != 1 || got[0] != "Mon-09:00" {
		t.Errorf("commit = %v, want [Mon-09:00]", got)
	}
}

func TestDragIgnoresOutsideCells(t *testing.T) {
	cache := testCache()
	s := NewSelection(cache, model.NewSlotSet())

	if s.Handle(PointerEvent{Kind: PointerDown, Cell: Cell{Col: 9, Row: 9}}) != nil || s.Dragging() {
		t.Fatal("down outside the grid must not start a drag")
	}

	s.Handle(PointerEvent{Kind: PointerDown, Cell: Cell{Col: 0, Row: 0}})
	s.Handle(PointerEvent{Kind: PointerMove, Cell: Cell{Col: 9, Row: 9}}) // ignored
	s.Handle(PointerEvent{Kind: PointerMove, Cell: Cell{Col: 1, Row: 0}})
	got := s.Handle(PointerEvent{Kind: PointerUp, Cell: Cell{Col: 1, Row: 0}})

	if len(got) != 2 {
		t.Errorf("commit = %v, want the 2-cell rectangle", got)
	}
}

func TestDragCommitAppliedInOrder(t *testing.T) {
	cache := testCache()
	target := model.NewSlotSet()
	s := NewSelection(cache, target)

	drag(s, Cell{Col: 0, Row: 0}, Cell{Col: 0, Row: 1})
	if len(target) != 2 {
		t.Fatalf("first drag: target = %v", target.List())
	}

	// Second drag starts on a now-occupied cell, so it removes.
	drag(s, Cell{Col: 0, Row: 0}, Cell{Col: 0, Row: 3})
	if len(target) != 0 {
		t.Errorf("second drag should have removed the column run, got %v", target.List())
	}
}
