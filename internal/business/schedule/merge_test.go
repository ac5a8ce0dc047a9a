package schedule

import (
	"testing"

	"github.com/hminw18/timecheck-sub000/internal/model"
)

// 2025-03-10 is a Monday.
func dateEvent() *model.EventCreate {
	return &model.EventCreate{
		EventType:     model.EventTypeDate,
		SelectedDates: []string{"2025-03-10", "2025-03-11"},
		StartMinutes:  9 * 60,
		EndMinutes:    12 * 60,
	}
}

func dayEvent() *model.EventCreate {
	return &model.EventCreate{
		EventType:    model.EventTypeDay,
		SelectedDays: []string{"Mon", "Wed"},
		StartMinutes: 9 * 60,
		EndMinutes:   12 * 60,
	}
}

func slots(ids ...model.SlotID) model.SlotSet {
	set := model.NewSlotSet()
	for _, id := range ids {
		set.Add(id)
	}
	return set
}

func TestMergePrecedence(t *testing.T) {
	event := dateEvent()
	slot := model.MakeSlotID("2025-03-10", 9*60)

	tests := []struct {
		name    string
		setup   func(*Layers)
		wantTag model.SourceTag
	}{
		{
			name: "calendar only",
			setup: func(l *Layers) {
				l.SetCalendar(model.SourceGoogle, slots(slot))
			},
			wantTag: model.SourceGoogle,
		},
		{
			name: "fixed beats calendar",
			setup: func(l *Layers) {
				l.SetCalendar(model.SourceGoogle, slots(slot))
				l.Fixed = slots(slot)
			},
			wantTag: model.SourceFixed,
		},
		{
			name: "manual beats fixed and calendar",
			setup: func(l *Layers) {
				l.SetCalendar(model.SourceGoogle, slots(slot))
				l.Fixed = slots(slot)
				l.SetManual(slots(slot), nil)
			},
			wantTag: model.SourceManual,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLayers()
			tt.setup(l)

			merged := l.Merge(event)
			if !merged.Unavailable.Has(slot) {
				t.Fatal("slot should be unavailable")
			}
			if got := merged.SourceOf[slot]; got != tt.wantTag {
				t.Fatalf("SourceOf = %q, want %q", got, tt.wantTag)
			}
		})
	}
}

func TestMergeIfNeededExclusivity(t *testing.T) {
	event := dateEvent()
	slot := model.MakeSlotID("2025-03-10", 10*60)

	l := NewLayers()
	l.SetCalendar(model.SourceApple, slots(slot))
	l.SetManual(nil, slots(slot))

	merged := l.Merge(event)

	if merged.Unavailable.Has(slot) {
		t.Error("slot must not stay unavailable once marked if-needed")
	}
	if !merged.IfNeeded.Has(slot) {
		t.Error("slot should be if-needed")
	}
	if merged.SourceOf[slot] != model.SourceManual {
		t.Errorf("SourceOf = %q, want manual", merged.SourceOf[slot])
	}
}

func TestSetManualOverlapResolvesToIfNeeded(t *testing.T) {
	slot := model.MakeSlotID("2025-03-10", 9*60)

	l := NewLayers()
	l.SetManual(slots(slot), slots(slot))

	if l.ManualUnavailable.Has(slot) {
		t.Error("overlapping manual mark should resolve to if-needed only")
	}
	if !l.ManualIfNeeded.Has(slot) {
		t.Error("slot missing from if-needed")
	}
}

func TestMergeClipsToUniverse(t *testing.T) {
	event := dateEvent()

	l := NewLayers()
	l.SetCalendar(model.SourceGoogle, slots(
		model.MakeSlotID("2025-03-10", 9*60),
		model.MakeSlotID("2025-03-10", 8*60),  // before window
		model.MakeSlotID("2025-03-12", 9*60),  // unselected date
		model.MakeSlotID("2025-03-10", 12*60), // at exclusive bound
	))

	merged := l.Merge(event)

	if got := len(merged.Unavailable); got != 1 {
		t.Fatalf("unavailable size = %d, want 1", got)
	}
	if !merged.Unavailable.Has(model.MakeSlotID("2025-03-10", 9*60)) {
		t.Error("in-universe slot missing")
	}
}

func TestLayersRoundtrip(t *testing.T) {
	event := dateEvent()

	l := NewLayers()
	l.SetCalendar(model.SourceGoogle, slots(model.MakeSlotID("2025-03-10", 9*60)))
	l.SetCalendar(model.SourceApple, slots(model.MakeSlotID("2025-03-11", 9*60)))
	l.Fixed = slots(model.MakeSlotID("2025-03-10", 10*60))
	l.SetManual(
		slots(model.MakeSlotID("2025-03-11", 10*60)),
		slots(model.MakeSlotID("2025-03-10", 11*60)),
	)

	merged := l.Merge(event)
	again := LayersFromSchedule(merged).Merge(event)

	if !merged.Equal(again) {
		t.Error("merge is not stable under layer recovery")
	}
}

func TestRemoveCalendarKeepsOtherSources(t *testing.T) {
	event := dateEvent()
	shared := model.MakeSlotID("2025-03-10", 9*60)
	googleOnly := model.MakeSlotID("2025-03-10", 10*60)

	l := NewLayers()
	l.SetCalendar(model.SourceGoogle, slots(shared, googleOnly))
	l.SetManual(slots(shared), nil)

	merged := l.Merge(event)

	recovered := LayersFromSchedule(merged)
	recovered.RemoveCalendar(model.SourceGoogle)
	after := recovered.Merge(event)

	if after.Unavailable.Has(googleOnly) {
		t.Error("google-only slot should be gone after disconnect")
	}
	if !after.Unavailable.Has(shared) {
		t.Error("manually marked slot must survive disconnect")
	}
	if after.SourceOf[shared] != model.SourceManual {
		t.Errorf("SourceOf = %q, want manual", after.SourceOf[shared])
	}
}

func TestProjectFixed(t *testing.T) {
	weekly := slots(
		model.MakeSlotID("Mon", 9*60),
		model.MakeSlotID("Mon", 8*60), // outside time window
		model.MakeSlotID("Fri", 9*60), // weekday not in event
	)

	t.Run("date event", func(t *testing.T) {
		got := ProjectFixed(weekly, dateEvent())

		if len(got) != 1 {
			t.Fatalf("projected size = %d, want 1", len(got))
		}
		if !got.Has(model.MakeSlotID("2025-03-10", 9*60)) {
			t.Error("Monday slot should project onto 2025-03-10")
		}
	})

	t.Run("day event", func(t *testing.T) {
		got := ProjectFixed(weekly, dayEvent())

		if len(got) != 1 {
			t.Fatalf("projected size = %d, want 1", len(got))
		}
		if !got.Has(model.MakeSlotID("Mon", 9*60)) {
			t.Error("Monday slot should stay weekday-keyed")
		}
	})
}
