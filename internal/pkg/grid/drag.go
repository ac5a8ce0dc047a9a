package grid

import (
	"github.com/hminw18/timecheck-sub000/internal/model"
)

type SelectionMode int

const (
	ModeAdd SelectionMode = iota
	ModeRemove
)

// PointerEvent is the platform-neutral pointer shape. Mouse, pointer and
// touch sequences are adapted to this union outside the engine.
type PointerEvent struct {
	Kind PointerKind
	Cell Cell
}

type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
)

type dragState int

const (
	stateIdle dragState = iota
	stateDragging
)

type rect struct {
	minCol, maxCol int
	minRow, maxRow int
}

// Selection is the rectangular drag state machine: Idle → Dragging → Idle.
// A pointer-down anchors the rectangle and fixes the mode from the anchor
// cell's current membership; each move extends the rectangle to the
// inclusive bounds of both endpoints; pointer-up commits.
type Selection struct {
	cache  *CoordinateCache
	target model.SlotSet

	state  dragState
	mode   SelectionMode
	anchor Cell
	last   Cell
	moved  bool

	// rectCache avoids rescanning the coordinate space on every move; a
	// drag only ever touches a handful of distinct rectangles.
	rectCache map[rect][]model.SlotID
}

func NewSelection(cache *CoordinateCache, target model.SlotSet) *Selection {
	return &Selection{
		cache:     cache,
		target:    target,
		rectCache: make(map[rect][]model.SlotID),
	}
}

func (s *Selection) Dragging() bool { return s.state == stateDragging }

// Handle feeds one pointer event into the machine. It returns the committed
// delta on pointer-up and nil otherwise. Events over cells outside the
// coordinate space are ignored.
func (s *Selection) Handle(ev PointerEvent) []model.SlotID {
	switch ev.Kind {
	case PointerDown:
		id, ok := s.cache.SlotID(ev.Cell)
		if !ok {
			return nil
		}
		s.state = stateDragging
		s.anchor = ev.Cell
		s.last = ev.Cell
		s.moved = false
		if s.target.Has(id) {
			s.mode = ModeRemove
		} else {
			s.mode = ModeAdd
		}

	case PointerMove:
		if s.state != stateDragging {
			return nil
		}
		if _, ok := s.cache.SlotID(ev.Cell); !ok {
			return nil
		}
		if ev.Cell != s.anchor {
			s.moved = true
		}
		s.last = ev.Cell

	case PointerUp:
		if s.state != stateDragging {
			return nil
		}
		s.state = stateIdle

		// A down+up on one cell with no travel is a single-cell toggle,
		// not a rectangle commit.
		if !s.moved && s.last == s.anchor {
			return s.commit([]model.SlotID{s.mustSlot(s.anchor)})
		}

		return s.commit(s.rectSlots(boundsOf(s.anchor, s.last)))
	}

	return nil
}

// Mode reports the pending operation; meaningful only while dragging.
func (s *Selection) Mode() SelectionMode { return s.mode }

func (s *Selection) commit(ids []model.SlotID) []model.SlotID {
	for _, id := range ids {
		if s.mode == ModeAdd {
			s.target.Add(id)
		} else {
			s.target.Remove(id)
		}
	}
	return ids
}

func (s *Selection) rectSlots(r rect) []model.SlotID {
	if ids, ok := s.rectCache[r]; ok {
		return ids
	}

	var ids []model.SlotID
	for col := r.minCol; col <= r.maxCol; col++ {
		for row := r.minRow; row <= r.maxRow; row++ {
			if id, ok := s.cache.SlotID(Cell{Col: col, Row: row}); ok {
				ids = append(ids, id)
			}
		}
	}

	s.rectCache[r] = ids
	return ids
}

func (s *Selection) mustSlot(cell Cell) model.SlotID {
	id, _ := s.cache.SlotID(cell)
	return id
}

func boundsOf(a, b Cell) rect {
	r := rect{minCol: a.Col, maxCol: b.Col, minRow: a.Row, maxRow: b.Row}
	if r.minCol > r.maxCol {
		r.minCol, r.maxCol = r.maxCol, r.minCol
	}
	if r.minRow > r.maxRow {
		r.minRow, r.maxRow = r.maxRow, r.minRow
	}
	return r
}
