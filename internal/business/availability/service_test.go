package availability

import (
	"testing"

	"github.com/hminw18/timecheck-sub000/internal/model"
)

func dayEvent() *model.EventCreate {
	return &model.EventCreate{
		EventType:    model.EventTypeDay,
		SelectedDays: []string{"Mon"},
		StartMinutes: 9 * 60,
		EndMinutes:   11 * 60,
	}
}

func participant(userID int64, name string, unavailable, ifNeeded []model.SlotID) *model.Participant {
	schedule := model.NewUserSchedule()
	for _, id := range unavailable {
		schedule.Unavailable.Add(id)
		schedule.SourceOf[id] = model.SourceManual
	}
	for _, id := range ifNeeded {
		schedule.IfNeeded.Add(id)
		schedule.SourceOf[id] = model.SourceManual
	}
	return &model.Participant{
		UserID:      userID,
		DisplayName: name,
		Schedule:    schedule,
	}
}

func TestBuildGroupScheduleCounts(t *testing.T) {
	event := dayEvent()

	// A is busy 09:00-10:00, B is fully free.
	a := participant(1, "a",
		[]model.SlotID{model.MakeSlotID("Mon", 9*60), model.MakeSlotID("Mon", 9*60+30)}, nil)
	b := participant(2, "b", nil, nil)

	group := BuildGroupSchedule(event, []*model.Participant{a, b})

	if len(group) != 4 {
		t.Fatalf("group size = %d, want 4", len(group))
	}

	wantCounts := map[model.SlotID]int{
		model.MakeSlotID("Mon", 9*60):     1,
		model.MakeSlotID("Mon", 9*60+30):  1,
		model.MakeSlotID("Mon", 10*60):    2,
		model.MakeSlotID("Mon", 10*60+30): 2,
	}
	for id, want := range wantCounts {
		slot := group[id]
		if slot == nil {
			t.Fatalf("slot %s missing", id)
		}
		if slot.Available.Count != want {
			t.Errorf("slot %s count = %d, want %d", id, slot.Available.Count, want)
		}
		if len(slot.Available.Users) != want {
			t.Errorf("slot %s users = %d, want %d", id, len(slot.Available.Users), want)
		}
	}
}

func TestBuildGroupScheduleInvariantBound(t *testing.T) {
	event := dayEvent()

	participants := []*model.Participant{
		participant(1, "a", []model.SlotID{model.MakeSlotID("Mon", 9*60)}, nil),
		participant(2, "b", nil, []model.SlotID{model.MakeSlotID("Mon", 9*60)}),
		participant(3, "c", nil, nil),
	}

	group := BuildGroupSchedule(event, participants)

	for id, slot := range group {
		total := slot.Available.Count + slot.IfNeeded.Count
		if total > len(participants) {
			t.Errorf("slot %s total %d exceeds participant count", id, total)
		}
	}
}

func TestBuildGroupScheduleIfNeededBucket(t *testing.T) {
	event := dayEvent()
	slot := model.MakeSlotID("Mon", 9*60)

	group := BuildGroupSchedule(event, []*model.Participant{
		participant(1, "a", nil, []model.SlotID{slot}),
	})

	if group[slot].Available.Count != 0 {
		t.Error("if-needed participant must not count as available")
	}
	if group[slot].IfNeeded.Count != 1 {
		t.Error("if-needed bucket missing participant")
	}
}

func TestBestTimes(t *testing.T) {
	event := dayEvent()

	// Both free 10:00-11:00, only B free 09:00-10:00.
	a := participant(1, "a",
		[]model.SlotID{model.MakeSlotID("Mon", 9*60), model.MakeSlotID("Mon", 9*60+30)}, nil)
	b := participant(2, "b", nil, nil)
	group := BuildGroupSchedule(event, []*model.Participant{a, b})

	ranges := BestTimes(event, group, false, 0)

	if len(ranges) != 1 {
		t.Fatalf("got %d ranges, want 1", len(ranges))
	}
	r := ranges[0]
	if r.Column != "Mon" || r.StartMinutes != 10*60 || r.EndMinutes != 11*60 {
		t.Errorf("range = %s %d-%d, want Mon 600-660", r.Column, r.StartMinutes, r.EndMinutes)
	}
	if r.Count != 2 || len(r.Users) != 2 {
		t.Errorf("count = %d users = %d, want 2 and 2", r.Count, len(r.Users))
	}
}

func TestBestTimesIfNeededWidens(t *testing.T) {
	event := dayEvent()
	busy := []model.SlotID{
		model.MakeSlotID("Mon", 10*60),
		model.MakeSlotID("Mon", 10*60+30),
	}

	a := participant(1, "a", busy, nil)
	b := participant(2, "b", nil, busy)
	group := BuildGroupSchedule(event, []*model.Participant{a, b})

	strict := BestTimes(event, group, false, 0)
	if len(strict) != 1 || strict[0].StartMinutes != 9*60 {
		t.Fatalf("strict ranking should pick the morning run, got %+v", strict)
	}

	// With if-needed included the morning still wins on count 2, but the
	// evening run now scores 1 instead of 0.
	wide := BestTimes(event, group, true, 0)
	if len(wide) != 1 || wide[0].Count != 2 {
		t.Fatalf("widened ranking top = %+v, want count 2", wide)
	}
}

func TestBestTimesMergesRunIntersectsUsers(t *testing.T) {
	event := dayEvent()

	// Three participants, always exactly two free, but the pair changes
	// at 10:00: {b,c} before, {a,b} after. Equal-count slots merge into
	// one run whose user list is the intersection, just b.
	a := participant(1, "a", []model.SlotID{
		model.MakeSlotID("Mon", 9*60), model.MakeSlotID("Mon", 9*60+30),
	}, nil)
	b := participant(2, "b", nil, nil)
	c := participant(3, "c", []model.SlotID{
		model.MakeSlotID("Mon", 10*60), model.MakeSlotID("Mon", 10*60+30),
	}, nil)
	group := BuildGroupSchedule(event, []*model.Participant{a, b, c})

	ranges := BestTimes(event, group, false, 0)

	if len(ranges) != 1 {
		t.Fatalf("got %d ranges, want 1 merged run: %+v", len(ranges), ranges)
	}
	r := ranges[0]
	if r.StartMinutes != 9*60 || r.EndMinutes != 11*60 {
		t.Errorf("range = %d-%d, want 540-660", r.StartMinutes, r.EndMinutes)
	}
	if r.Count != 2 {
		t.Errorf("count = %d, want the per-slot maximum 2", r.Count)
	}
	if len(r.Users) != 1 || r.Users[0].ID != 2 {
		t.Errorf("range users = %+v, want only b", r.Users)
	}
}

func TestBestTimesEmptyGroup(t *testing.T) {
	event := dayEvent()
	group := BuildGroupSchedule(event, nil)

	if got := BestTimes(event, group, false, 0); got != nil {
		t.Fatalf("expected no ranges without participants, got %+v", got)
	}
}

func TestBestTimesLimit(t *testing.T) {
	event := dayEvent()
	a := participant(1, "a", []model.SlotID{model.MakeSlotID("Mon", 10*60)}, nil)
	b := participant(2, "b", nil, nil)
	group := BuildGroupSchedule(event, []*model.Participant{a, b})

	ranges := BestTimes(event, group, false, 1)
	if len(ranges) != 1 {
		t.Fatalf("got %d ranges, want 1", len(ranges))
	}
	// Longest run first.
	if ranges[0].StartMinutes != 9*60 {
		t.Errorf("top range starts at %d, want 540", ranges[0].StartMinutes)
	}
}
