package model

import (
	"time"
)

type EventType string

const (
	// EventTypeDate polls concrete calendar dates.
	EventTypeDate EventType = "date"
	// EventTypeDay polls recurring weekdays.
	EventTypeDay EventType = "day"
)

type EventCreate struct {
	Title         string
	EventType     EventType
	SelectedDates []string // "2006-01-02", sorted, date events only
	SelectedDays  []string // "Mon".."Sun", day events only
	StartMinutes  int      // inclusive time-of-day bound
	EndMinutes    int      // exclusive time-of-day bound
	CreatorID     int64
}

type Event struct {
	ID        string
	CreatedAt time.Time
	EventCreate
}

// Columns returns the ordered grid columns for the event.
func (e *EventCreate) Columns() []string {
	if e.EventType == EventTypeDay {
		return e.SelectedDays
	}
	return e.SelectedDates
}

// TimeRows returns the ordered half-hour marks of [StartMinutes, EndMinutes).
func (e *EventCreate) TimeRows() []int {
	var rows []int
	for m := e.StartMinutes; m < e.EndMinutes; m += SlotMinutes {
		rows = append(rows, m)
	}
	return rows
}

// Universe is the full set of valid slots for the event. A slot belongs to
// the universe when its column is selected and its start mark lies inside
// [StartMinutes, EndMinutes).
func (e *EventCreate) Universe() SlotSet {
	cols := e.Columns()
	set := make(SlotSet, len(cols)*(e.EndMinutes-e.StartMinutes)/SlotMinutes)
	for _, col := range cols {
		for m := e.StartMinutes; m < e.EndMinutes; m += SlotMinutes {
			set.Add(MakeSlotID(col, m))
		}
	}
	return set
}

func (e *EventCreate) InUniverse(id SlotID) bool {
	col, minutes, err := ParseSlotID(id)
	if err != nil {
		return false
	}
	if minutes < e.StartMinutes || minutes >= e.EndMinutes {
		return false
	}
	for _, c := range e.Columns() {
		if c == col {
			return true
		}
	}
	return false
}

// Window is the concrete time span calendar providers are queried for.
// Date events span their selected dates; day events look ahead a fixed
// number of weeks so every weekday column sees several occurrences.
func (e *EventCreate) Window(now time.Time) (time.Time, time.Time) {
	if e.EventType == EventTypeDay || len(e.SelectedDates) == 0 {
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 0, 28)
	}

	first, err := time.ParseInLocation(DateColumnLayout, e.SelectedDates[0], time.Local)
	if err != nil {
		first = now
	}
	last, err := time.ParseInLocation(DateColumnLayout, e.SelectedDates[len(e.SelectedDates)-1], time.Local)
	if err != nil {
		last = now
	}

	return first, last.AddDate(0, 0, 1)
}
