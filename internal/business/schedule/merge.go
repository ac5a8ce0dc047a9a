// Package schedule owns the per-participant merge of availability sources.
package schedule

import (
	"time"

	"github.com/hminw18/timecheck-sub000/internal/model"
)

// Layers holds one participant's availability inputs before merging.
// Merge order is calendars, then the fixed weekly schedule, then manual
// edits; a later layer's claim on a slot wins the source tag.
type Layers struct {
	Calendar          map[model.SourceTag]model.SlotSet
	Fixed             model.SlotSet
	ManualUnavailable model.SlotSet
	ManualIfNeeded    model.SlotSet
}

func NewLayers() *Layers {
	return &Layers{
		Calendar:          make(map[model.SourceTag]model.SlotSet),
		Fixed:             model.NewSlotSet(),
		ManualUnavailable: model.NewSlotSet(),
		ManualIfNeeded:    model.NewSlotSet(),
	}
}

// LayersFromSchedule recovers the input layers of a persisted schedule
// from its source tags. Manual "if needed" marks are stored directly; a
// manual unavailable mark is any unavailable slot tagged manual.
func LayersFromSchedule(s *model.UserSchedule) *Layers {
	l := NewLayers()

	for id := range s.Unavailable {
		tag := s.SourceOf[id]
		switch {
		case tag == model.SourceManual:
			l.ManualUnavailable.Add(id)
		case tag == model.SourceFixed:
			l.Fixed.Add(id)
		case model.IsCalendarSource(tag):
			set, ok := l.Calendar[tag]
			if !ok {
				set = model.NewSlotSet()
				l.Calendar[tag] = set
			}
			set.Add(id)
		}
	}

	for id := range s.IfNeeded {
		l.ManualIfNeeded.Add(id)
	}

	return l
}

// Merge recomputes the participant schedule from its layers. Every slot is
// clipped to the event universe; unavailable and "if needed" stay mutually
// exclusive with manual edits deciding ties.
func (l *Layers) Merge(event *model.EventCreate) *model.UserSchedule {
	res := model.NewUserSchedule()

	for _, source := range model.CalendarSources {
		for id := range l.Calendar[source] {
			if !event.InUniverse(id) {
				continue
			}
			res.Unavailable.Add(id)
			res.SourceOf[id] = source
		}
	}

	for id := range l.Fixed {
		if !event.InUniverse(id) {
			continue
		}
		res.Unavailable.Add(id)
		res.SourceOf[id] = model.SourceFixed
	}

	for id := range l.ManualUnavailable {
		if !event.InUniverse(id) {
			continue
		}
		res.Unavailable.Add(id)
		res.SourceOf[id] = model.SourceManual
	}

	for id := range l.ManualIfNeeded {
		if !event.InUniverse(id) {
			continue
		}
		res.Unavailable.Remove(id)
		res.IfNeeded.Add(id)
		res.SourceOf[id] = model.SourceManual
	}

	return res
}

// SetCalendar replaces one calendar source's contribution.
func (l *Layers) SetCalendar(source model.SourceTag, slots model.SlotSet) {
	if slots == nil {
		slots = model.NewSlotSet()
	}
	l.Calendar[source] = slots
}

// RemoveCalendar drops a disconnected source's contribution entirely.
func (l *Layers) RemoveCalendar(source model.SourceTag) {
	delete(l.Calendar, source)
}

// SetManual replaces both manual sets at once. Overlap resolves in favor
// of "if needed".
func (l *Layers) SetManual(unavailable, ifNeeded model.SlotSet) {
	l.ManualUnavailable = model.NewSlotSet()
	l.ManualIfNeeded = model.NewSlotSet()
	for id := range unavailable {
		l.ManualUnavailable.Add(id)
	}
	for id := range ifNeeded {
		l.ManualIfNeeded.Add(id)
		l.ManualUnavailable.Remove(id)
	}
}

// ProjectFixed maps a weekday-keyed fixed schedule onto an event's
// columns. Date events get one projected slot per selected date matching
// the weekday; day events keep matching weekday slots as is.
func ProjectFixed(fixed model.SlotSet, event *model.EventCreate) model.SlotSet {
	res := model.NewSlotSet()

	for id := range fixed {
		token, minutes, err := model.ParseSlotID(id)
		if err != nil || !model.IsWeekdayToken(token) {
			continue
		}
		if minutes < event.StartMinutes || minutes >= event.EndMinutes {
			continue
		}

		if event.EventType == model.EventTypeDay {
			if event.InUniverse(id) {
				res.Add(id)
			}
			continue
		}

		for _, date := range event.SelectedDates {
			t, err := parseDate(date)
			if err != nil {
				continue
			}
			if model.WeekdayToken(t) == token {
				res.Add(model.MakeSlotID(date, minutes))
			}
		}
	}

	return res
}

func parseDate(date string) (time.Time, error) {
	return time.ParseInLocation(model.DateColumnLayout, date, time.Local)
}
