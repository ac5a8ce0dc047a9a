package calendar

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/hminw18/timecheck-sub000/internal/model"
)

// maxOccurrences caps a single rule walk so a pathological RRULE cannot
// expand without bound.
const maxOccurrences = 1000

// Expander converts occurrences into slot ids for one event configuration.
// All rounding and windowing lives here; provider adapters only produce
// Occurrence values.
type Expander struct {
	event *model.EventCreate
}

func NewExpander(event *model.EventCreate) *Expander {
	return &Expander{event: event}
}

// Slots expands one concrete occurrence into the slot ids it blocks.
// The start is rounded down and the end rounded up to half-hour marks; a
// slot is emitted per mark t with t in [roundedStart, roundedEnd) whose
// time-of-day lies in the event's [StartMinutes, EndMinutes) window and
// whose column belongs to the universe. Inclusion is decided by the slot's
// own start, so an occurrence ending exactly on the window's end bound
// still emits the slot before it.
//
// Weekday columns represent "every such weekday": for day events a
// non-recurring occurrence carries no signal and yields nothing.
func (x *Expander) Slots(occ Occurrence, recurring bool) []model.SlotID {
	if x.event.EventType == model.EventTypeDay && !recurring {
		return nil
	}

	if !occ.End.After(occ.Start) {
		// Instantaneous markers block nothing; rounding outward would
		// otherwise fabricate a slot for them.
		return nil
	}

	start := roundDown(occ.Start)
	end := roundUp(occ.End)

	var ids []model.SlotID
	for t := start; t.Before(end); t = t.Add(model.SlotMinutes * time.Minute) {
		minutes := t.Hour()*60 + t.Minute()
		if minutes < x.event.StartMinutes || minutes >= x.event.EndMinutes {
			continue
		}

		var column string
		if x.event.EventType == model.EventTypeDay {
			column = model.WeekdayToken(t)
		} else {
			column = t.Format(model.DateColumnLayout)
		}

		id := model.MakeSlotID(column, minutes)
		if x.event.InUniverse(id) {
			ids = append(ids, id)
		}
	}

	return ids
}

// Occurrences materializes a recurrence set inside [windowStart,
// windowEnd]. Each occurrence keeps the duration of the seed occurrence.
func (x *Expander) Occurrences(set *rrule.Set, seed Occurrence, windowStart, windowEnd time.Time) []Occurrence {
	duration := seed.End.Sub(seed.Start)

	starts := set.Between(windowStart, windowEnd, true)
	if len(starts) > maxOccurrences {
		starts = starts[:maxOccurrences]
	}

	res := make([]Occurrence, len(starts))
	for i, s := range starts {
		res[i] = Occurrence{Start: s, End: s.Add(duration)}
	}

	return res
}

// roundDown floors t to the previous half-hour wall-clock mark.
func roundDown(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(),
		(t.Minute()/model.SlotMinutes)*model.SlotMinutes, 0, 0, t.Location())
}

// roundUp ceils t to the next half-hour mark; marks map to themselves.
func roundUp(t time.Time) time.Time {
	down := roundDown(t)
	if down.Equal(t) {
		return t
	}
	return down.Add(model.SlotMinutes * time.Minute)
}
