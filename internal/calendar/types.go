package calendar

import (
	"time"

	"github.com/hminw18/timecheck-sub000/internal/model"
)

// Occurrence is one concrete instance in time of a (possibly recurring)
// calendar event. Ephemeral: produced during expansion, never persisted.
type Occurrence struct {
	Start time.Time
	End   time.Time
}

// RawEvent is a provider A (REST feed) item. The provider expands
// recurrence server-side; RecurringEventID links an instance back to its
// recurring series.
type RawEvent struct {
	ID               string
	Summary          string
	Start            time.Time
	End              time.Time
	RecurringEventID string
	Status           string
	Transparency     string
}

// NormalizedEvent is the canonical output of normalization: the slots one
// occurrence blocks inside an event's universe.
type NormalizedEvent struct {
	ID          string
	Title       string
	Source      model.SourceTag
	IsRecurring bool
	// IsTask marks blocks synthesized from VTODO items so the client can
	// label them apart from real events.
	IsTask  bool
	SlotIDs []model.SlotID
}

// SlotSet collects the union of all normalized slot ids.
func SlotSet(events []NormalizedEvent) model.SlotSet {
	set := model.NewSlotSet()
	for _, e := range events {
		for _, id := range e.SlotIDs {
			set.Add(id)
		}
	}
	return set
}
