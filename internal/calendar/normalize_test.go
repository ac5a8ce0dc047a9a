package calendar

import (
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"go.uber.org/zap"

	"github.com/hminw18/timecheck-sub000/internal/model"
)

func testNormalizer() *Normalizer {
	return NewNormalizer(zap.NewNop().Sugar())
}

func utc(day string, hour, min int) time.Time {
	d, _ := time.Parse(model.DateColumnLayout, day)
	return d.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func TestTimeOfDayOverlaps(t *testing.T) {
	tests := []struct {
		name                 string
		evStart, evEnd       int
		fStart, fEnd         int
		want                 bool
	}{
		{"midnight filter includes late evening", 23 * 60, 23*60 + 30, 22 * 60, 2 * 60, true},
		{"midnight filter includes early morning", 60, 90, 22 * 60, 2 * 60, true},
		{"midnight filter excludes midday", 10 * 60, 10*60 + 30, 22 * 60, 2 * 60, false},
		{"plain overlap", 9 * 60, 10 * 60, 9*60 + 30, 11 * 60, true},
		{"plain disjoint", 9 * 60, 10 * 60, 10 * 60, 11 * 60, false},
		{"event wrapping past 24h hits morning filter start", 23 * 60, 25 * 60, 0, 2 * 60, true},
	}

	for _, tt := range tests {
		got := TimeOfDayOverlaps([2]int{tt.evStart, tt.evEnd}, tt.fStart, tt.fEnd)
		if got != tt.want {
			t.Errorf("%s: overlap = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNormalizeRESTDateEvent(t *testing.T) {
	n := testNormalizer()
	event := dateEvent([]string{"2025-03-14"}, 9*60, 18*60)

	raw := []RawEvent{
		{ID: "a", Summary: "standup", Start: utc("2025-03-14", 9, 5), End: utc("2025-03-14", 9, 35)},
		{ID: "b", Summary: "declined", Status: "cancelled", Start: utc("2025-03-14", 10, 0), End: utc("2025-03-14", 11, 0)},
		{ID: "c", Summary: "free block", Transparency: "transparent", Start: utc("2025-03-14", 10, 0), End: utc("2025-03-14", 11, 0)},
		{ID: "d", Summary: "broken"},
	}

	got := n.NormalizeREST(raw, event, model.SourceGoogle)
	if len(got) != 1 {
		t.Fatalf("normalized %d events, want 1: %+v", len(got), got)
	}
	if got[0].ID != "a" || got[0].Title != "standup" || got[0].Source != model.SourceGoogle {
		t.Errorf("normalized event = %+v", got[0])
	}
	// 09:05–09:35 rounds to [09:00, 10:00).
	if len(got[0].SlotIDs) != 2 {
		t.Errorf("slots = %v, want two", got[0].SlotIDs)
	}
}

func TestNormalizeRESTDayEventFilter(t *testing.T) {
	n := testNormalizer()
	event := dayEvent([]string{"Fri"}, 9*60, 18*60)

	friday := "2025-03-14"
	raw := []RawEvent{
		// Recurring instance on a selected weekday: kept.
		{ID: "keep", RecurringEventID: "series1", Start: utc(friday, 10, 0), End: utc(friday, 11, 0)},
		// One-off on the same weekday: no signal for weekday columns.
		{ID: "oneoff", Start: utc(friday, 10, 0), End: utc(friday, 11, 0)},
		// Recurring but on an unselected weekday.
		{ID: "monday", RecurringEventID: "series2", Start: utc("2025-03-10", 10, 0), End: utc("2025-03-10", 11, 0)},
		// Recurring on the right weekday but outside the time window.
		{ID: "early", RecurringEventID: "series3", Start: utc(friday, 6, 0), End: utc(friday, 7, 0)},
	}

	got := n.NormalizeREST(raw, event, model.SourceGoogle)
	if len(got) != 1 || got[0].ID != "keep" {
		t.Fatalf("normalized = %+v, want only the recurring Friday instance", got)
	}
	if got[0].SlotIDs[0] != "Fri-10:00" {
		t.Errorf("slots = %v", got[0].SlotIDs)
	}
}

func TestNormalizeRESTIdempotent(t *testing.T) {
	n := testNormalizer()
	event := dateEvent([]string{"2025-03-14"}, 0, 24*60)
	raw := []RawEvent{
		{ID: "a", Start: utc("2025-03-14", 9, 0), End: utc("2025-03-14", 12, 0)},
		{ID: "b", Start: utc("2025-03-14", 11, 0), End: utc("2025-03-14", 13, 0)},
	}

	first := SlotSet(n.NormalizeREST(raw, event, model.SourceGoogle))
	second := SlotSet(n.NormalizeREST(raw, event, model.SourceGoogle))
	if !first.Equal(second) {
		t.Errorf("normalization not idempotent: %v vs %v", first.List(), second.List())
	}
}

func vevent(uid string, start, end time.Time, rule string) *ical.Component {
	comp := ical.NewComponent(ical.CompEvent)
	comp.Props.SetText(ical.PropUID, uid)
	comp.Props.SetText(ical.PropSummary, "busy")

	startProp := ical.NewProp(ical.PropDateTimeStart)
	startProp.SetDateTime(start)
	comp.Props.Set(startProp)

	endProp := ical.NewProp(ical.PropDateTimeEnd)
	endProp.SetDateTime(end)
	comp.Props.Set(endProp)

	if rule != "" {
		// RRULE is a RECUR value; SetText would escape the semicolons.
		ruleProp := ical.NewProp(ical.PropRecurrenceRule)
		ruleProp.Value = rule
		comp.Props.Set(ruleProp)
	}

	return comp
}

func vtodo(uid string, due *time.Time, status string) *ical.Component {
	comp := ical.NewComponent(ical.CompToDo)
	comp.Props.SetText(ical.PropUID, uid)
	comp.Props.SetText(ical.PropSummary, "chore")
	if due != nil {
		dueProp := ical.NewProp(ical.PropDue)
		dueProp.SetDateTime(*due)
		comp.Props.Set(dueProp)
	}
	if status != "" {
		comp.Props.SetText(ical.PropStatus, status)
	}
	return comp
}

func wrap(comps ...*ical.Component) []*ical.Calendar {
	cal := ical.NewCalendar()
	cal.Children = append(cal.Children, comps...)
	return []*ical.Calendar{cal}
}

func TestNormalizeICalSingleEvent(t *testing.T) {
	n := testNormalizer()
	event := dateEvent([]string{"2025-03-14"}, 9*60, 18*60)

	got := n.NormalizeICal(
		wrap(vevent("uid1", utc("2025-03-14", 10, 0), utc("2025-03-14", 11, 0), "")),
		event, model.SourceApple,
		utc("2025-03-14", 0, 0), utc("2025-03-15", 0, 0),
	)

	if len(got) != 1 {
		t.Fatalf("normalized %d events, want 1", len(got))
	}
	if got[0].ID != "uid1" || got[0].IsRecurring || got[0].IsTask {
		t.Errorf("normalized = %+v", got[0])
	}
	if len(got[0].SlotIDs) != 2 {
		t.Errorf("slots = %v", got[0].SlotIDs)
	}
}

func TestNormalizeICalRecurringAddressableOccurrences(t *testing.T) {
	n := testNormalizer()
	event := dayEvent([]string{"Mon"}, 9*60, 18*60)

	got := n.NormalizeICal(
		wrap(vevent("series", utc("2025-03-10", 10, 0), utc("2025-03-10", 11, 0), "FREQ=WEEKLY;BYDAY=MO")),
		event, model.SourceApple,
		utc("2025-03-10", 0, 0), utc("2025-03-24", 23, 59),
	)

	if len(got) != 3 {
		t.Fatalf("normalized %d occurrences, want 3 Mondays", len(got))
	}
	seen := map[string]struct{}{}
	for _, e := range got {
		if !e.IsRecurring {
			t.Errorf("occurrence %q not flagged recurring", e.ID)
		}
		if _, dup := seen[e.ID]; dup {
			t.Errorf("occurrence id %q not unique", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
}

func TestNormalizeICalTodoRules(t *testing.T) {
	n := testNormalizer()
	event := dateEvent([]string{"2025-03-14"}, 0, 24*60)
	due := utc("2025-03-14", 15, 30)

	got := n.NormalizeICal(
		wrap(
			vtodo("no-due", nil, ""),
			vtodo("done", &due, "COMPLETED"),
			vtodo("open", &due, "NEEDS-ACTION"),
		),
		event, model.SourceApple,
		utc("2025-03-14", 0, 0), utc("2025-03-15", 0, 0),
	)

	if len(got) != 1 {
		t.Fatalf("normalized %d todos, want 1: %+v", len(got), got)
	}
	if got[0].ID != "open" || !got[0].IsTask {
		t.Errorf("normalized = %+v", got[0])
	}
	// One-hour block at the due time: 15:30 and 16:00.
	if len(got[0].SlotIDs) != 2 || got[0].SlotIDs[0] != "2025-03-14-15:30" {
		t.Errorf("slots = %v", got[0].SlotIDs)
	}
}

func TestNormalizeICalSkipsMalformedComponent(t *testing.T) {
	n := testNormalizer()
	event := dateEvent([]string{"2025-03-14"}, 0, 24*60)

	// One component has no UID, another an unparseable RRULE;
	// normalization must continue past both.
	broken := ical.NewComponent(ical.CompEvent)
	badRule := vevent("bad-rule", utc("2025-03-14", 10, 0), utc("2025-03-14", 11, 0), "FREQ=NEVERLY")
	good := vevent("good", utc("2025-03-14", 10, 0), utc("2025-03-14", 11, 0), "")

	got := n.NormalizeICal(
		wrap(broken, badRule, good),
		event, model.SourceApple,
		utc("2025-03-14", 0, 0), utc("2025-03-15", 0, 0),
	)

	if len(got) != 1 || got[0].ID != "good" {
		t.Errorf("normalized = %+v, want only the well-formed event", got)
	}
}
