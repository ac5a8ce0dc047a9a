package model

import (
	"testing"
	"time"
)

func TestUniverseDayEvent(t *testing.T) {
	e := &EventCreate{
		EventType:    EventTypeDay,
		SelectedDays: []string{"Mon", "Wed"},
		StartMinutes: 9 * 60,
		EndMinutes:   11 * 60,
	}

	u := e.Universe()
	if len(u) != 8 {
		t.Fatalf("universe size = %d, want 8", len(u))
	}
	for _, id := range []SlotID{"Mon-09:00", "Mon-10:30", "Wed-09:00", "Wed-10:30"} {
		if !u.Has(id) {
			t.Errorf("universe missing %q", id)
		}
	}
	if u.Has("Mon-11:00") {
		t.Error("slot starting at the end bound must be excluded")
	}
	if u.Has("Tue-09:00") {
		t.Error("unselected column must be excluded")
	}
}

func TestUniverseDateEvent(t *testing.T) {
	e := &EventCreate{
		EventType:     EventTypeDate,
		SelectedDates: []string{"2025-03-14", "2025-03-15"},
		StartMinutes:  22 * 60,
		EndMinutes:    23 * 60,
	}

	u := e.Universe()
	if len(u) != 4 {
		t.Fatalf("universe size = %d, want 4", len(u))
	}
	if !e.InUniverse("2025-03-14-22:30") {
		t.Error("InUniverse rejected a valid slot")
	}
	if e.InUniverse("2025-03-14-23:00") {
		t.Error("InUniverse accepted a slot outside the time window")
	}
	if e.InUniverse("2025-03-16-22:00") {
		t.Error("InUniverse accepted an unselected date")
	}
	if e.InUniverse("garbage") {
		t.Error("InUniverse accepted a malformed id")
	}
}

func TestWindowDateEvent(t *testing.T) {
	e := &EventCreate{
		EventType:     EventTypeDate,
		SelectedDates: []string{"2025-03-14", "2025-03-16"},
	}

	from, to := e.Window(time.Now())
	if from.Format(DateColumnLayout) != "2025-03-14" {
		t.Errorf("window start = %v", from)
	}
	if to.Format(DateColumnLayout) != "2025-03-17" {
		t.Errorf("window end = %v, want day after last date", to)
	}
}

func TestWindowDayEvent(t *testing.T) {
	e := &EventCreate{EventType: EventTypeDay, SelectedDays: []string{"Mon"}}

	now := time.Date(2025, 3, 14, 15, 30, 0, 0, time.Local)
	from, to := e.Window(now)
	if !from.Equal(time.Date(2025, 3, 14, 0, 0, 0, 0, time.Local)) {
		t.Errorf("window start = %v, want midnight", from)
	}
	if to.Sub(from) != 28*24*time.Hour {
		t.Errorf("window length = %v, want 4 weeks", to.Sub(from))
	}
}
