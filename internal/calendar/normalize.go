package calendar

import (
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"go.uber.org/zap"

	"github.com/hminw18/timecheck-sub000/internal/model"
)

// Normalizer turns raw provider payloads into NormalizedEvents for one
// event configuration. A parse failure on a single item never aborts the
// rest of the batch: third-party feeds are not schema-guaranteed, so the
// offending item is logged and skipped.
type Normalizer struct {
	logger *zap.SugaredLogger
}

func NewNormalizer(logger *zap.SugaredLogger) *Normalizer {
	return &Normalizer{logger: logger}
}

// NormalizeREST handles provider A items. The provider already expands
// recurrence server-side, so every item goes through the non-recurring
// rounding path. For day events a declarative post-filter applies: only
// instances of a recurring series whose weekday is selected and whose
// time of day overlaps the event window survive.
func (n *Normalizer) NormalizeREST(raw []RawEvent, event *model.EventCreate, source model.SourceTag) []NormalizedEvent {
	expander := NewExpander(event)

	var res []NormalizedEvent
	for _, item := range raw {
		if item.Status == "cancelled" || item.Transparency == "transparent" {
			continue
		}
		if item.Start.IsZero() || item.End.IsZero() {
			n.logger.Debugw("skipping malformed provider event",
				"source", source, "id", item.ID, "err", model.ErrMalformedEvent)
			continue
		}

		recurring := item.RecurringEventID != ""

		if event.EventType == model.EventTypeDay {
			if !recurring {
				continue
			}
			if !daySelected(event.SelectedDays, model.WeekdayToken(item.Start)) {
				continue
			}
			if !TimeOfDayOverlaps(clockSpan(item.Start, item.End), event.StartMinutes, event.EndMinutes) {
				continue
			}
		}

		slots := expander.Slots(Occurrence{Start: item.Start, End: item.End}, recurring)
		if len(slots) == 0 {
			continue
		}

		res = append(res, NormalizedEvent{
			ID:          item.ID,
			Title:       item.Summary,
			Source:      source,
			IsRecurring: recurring,
			SlotIDs:     slots,
		})
	}

	return res
}

// NormalizeICal handles provider B payloads: VEVENT and VTODO components
// from a CalDAV query. Recurring VEVENTs are walked occurrence by
// occurrence up to windowEnd, each occurrence individually addressable as
// "<uid>_<occurrence start>". Todos without a due time or already
// completed are dropped; the rest become one-hour blocks at their due
// time.
func (n *Normalizer) NormalizeICal(cals []*ical.Calendar, event *model.EventCreate, source model.SourceTag, windowStart, windowEnd time.Time) []NormalizedEvent {
	expander := NewExpander(event)

	var res []NormalizedEvent
	for _, cal := range cals {
		if cal == nil {
			continue
		}
		for _, comp := range cal.Children {
			switch comp.Name {
			case ical.CompEvent:
				events, err := n.normalizeVEvent(expander, comp, source, windowStart, windowEnd)
				if err != nil {
					n.logger.Debugw("skipping malformed VEVENT", "source", source, "err", err)
					continue
				}
				res = append(res, events...)
			case ical.CompToDo:
				todo, ok, err := n.normalizeVTodo(expander, comp, source)
				if err != nil {
					n.logger.Debugw("skipping malformed VTODO", "source", source, "err", err)
					continue
				}
				if ok {
					res = append(res, todo)
				}
			}
		}
	}

	return res
}

func (n *Normalizer) normalizeVEvent(expander *Expander, comp *ical.Component, source model.SourceTag, windowStart, windowEnd time.Time) ([]NormalizedEvent, error) {
	uid := propValue(comp, ical.PropUID)
	if uid == "" {
		return nil, fmt.Errorf("VEVENT without UID: %w", model.ErrMalformedEvent)
	}

	ev := ical.Event{Component: comp}
	start, err := ev.DateTimeStart(time.Local)
	if err != nil || start.IsZero() {
		return nil, fmt.Errorf("VEVENT %s start: %w", uid, model.ErrMalformedEvent)
	}
	end, err := ev.DateTimeEnd(time.Local)
	if err != nil || end.IsZero() {
		return nil, fmt.Errorf("VEVENT %s end: %w", uid, model.ErrMalformedEvent)
	}

	title := propValue(comp, ical.PropSummary)
	seed := Occurrence{Start: start, End: end}

	set, err := ev.RecurrenceSet(time.Local)
	if err != nil {
		return nil, fmt.Errorf("VEVENT %s recurrence: %w", uid, err)
	}
	if set == nil {
		slots := expander.Slots(seed, false)
		if len(slots) == 0 {
			return nil, nil
		}
		return []NormalizedEvent{{
			ID:      uid,
			Title:   title,
			Source:  source,
			SlotIDs: slots,
		}}, nil
	}

	var res []NormalizedEvent
	occurrences := expander.Occurrences(set, seed, windowStart, windowEnd)
	for _, occ := range occurrences {
		slots := expander.Slots(occ, true)
		if len(slots) == 0 {
			continue
		}
		res = append(res, NormalizedEvent{
			ID:          fmt.Sprintf("%s_%s", uid, occ.Start.Format(time.RFC3339)),
			Title:       title,
			Source:      source,
			IsRecurring: true,
			SlotIDs:     slots,
		})
	}

	return res, nil
}

func (n *Normalizer) normalizeVTodo(expander *Expander, comp *ical.Component, source model.SourceTag) (NormalizedEvent, bool, error) {
	dueProp := comp.Props.Get(ical.PropDue)
	if dueProp == nil {
		// A todo without a due time blocks nothing.
		return NormalizedEvent{}, false, nil
	}
	if propValue(comp, ical.PropStatus) == "COMPLETED" {
		return NormalizedEvent{}, false, nil
	}

	due, err := dueProp.DateTime(time.Local)
	if err != nil {
		return NormalizedEvent{}, false, fmt.Errorf("VTODO due: %w", model.ErrMalformedEvent)
	}

	// Synthetic one-hour block starting at the due time.
	slots := expander.Slots(Occurrence{Start: due, End: due.Add(time.Hour)}, false)
	if len(slots) == 0 {
		return NormalizedEvent{}, false, nil
	}

	return NormalizedEvent{
		ID:      propValue(comp, ical.PropUID),
		Title:   propValue(comp, ical.PropSummary),
		Source:  source,
		IsTask:  true,
		SlotIDs: slots,
	}, true, nil
}

// TimeOfDayOverlaps reports whether an occurrence's clock span intersects
// the [filterStart, filterEnd) window, both in minutes from midnight. A
// filter whose end precedes its start crosses midnight; an occurrence end
// smaller than its start means the occurrence itself wraps past 24:00 and
// is carried as end+24h by clockSpan.
func TimeOfDayOverlaps(span [2]int, filterStart, filterEnd int) bool {
	evStart, evEnd := span[0], span[1]

	if filterStart > filterEnd || evEnd > model.MinutesPerDay {
		return evStart < filterEnd || evEnd > filterStart
	}

	return evStart < filterEnd && evEnd > filterStart
}

func clockSpan(start, end time.Time) [2]int {
	s := start.Hour()*60 + start.Minute()
	e := end.Hour()*60 + end.Minute()
	if !sameDate(start, end) {
		e += model.MinutesPerDay
	}
	return [2]int{s, e}
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func daySelected(days []string, token string) bool {
	for _, d := range days {
		if d == token {
			return true
		}
	}
	return false
}

func propValue(comp *ical.Component, name string) string {
	if p := comp.Props.Get(name); p != nil {
		return p.Value
	}
	return ""
}
