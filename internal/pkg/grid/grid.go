// Package grid maps slot ids onto integer (column, row) coordinates for one
// schedule-view configuration and hosts the drag-selection state machine
// that edits a slot set through those coordinates.
package grid

import (
	"github.com/hminw18/timecheck-sub000/internal/model"
)

type Cell struct {
	Col int
	Row int
}

// CoordinateCache is built once per view configuration and owned by its
// caller; it replaces the ad hoc module-level lookup maps of older builds.
type CoordinateCache struct {
	columns []string
	rows    []int

	byID   map[model.SlotID]Cell
	byCell map[Cell]model.SlotID
}

// NewCoordinateCache indexes columns × rows. Columns are dates or weekday
// tokens in display order; rows are minutes-from-midnight half-hour marks.
func NewCoordinateCache(columns []string, rows []int) *CoordinateCache {
	c := &CoordinateCache{
		columns: append([]string(nil), columns...),
		rows:    append([]int(nil), rows...),
		byID:    make(map[model.SlotID]Cell, len(columns)*len(rows)),
		byCell:  make(map[Cell]model.SlotID, len(columns)*len(rows)),
	}

	for ci, col := range columns {
		for ri, minutes := range rows {
			cell := Cell{Col: ci, Row: ri}
			id := model.MakeSlotID(col, minutes)
			c.byID[id] = cell
			c.byCell[cell] = id
		}
	}

	return c
}

// ForEvent builds the cache for an event's slot universe.
func ForEvent(e *model.EventCreate) *CoordinateCache {
	return NewCoordinateCache(e.Columns(), e.TimeRows())
}

func (c *CoordinateCache) Cols() int { return len(c.columns) }
func (c *CoordinateCache) Rows() int { return len(c.rows) }

func (c *CoordinateCache) Cell(id model.SlotID) (Cell, bool) {
	cell, ok := c.byID[id]
	return cell, ok
}

func (c *CoordinateCache) SlotID(cell Cell) (model.SlotID, bool) {
	id, ok := c.byCell[cell]
	return id, ok
}
