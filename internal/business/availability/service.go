// Package availability derives group-level tallies from participant
// schedules.
package availability

import (
	"context"
	"fmt"
	"sort"

	"github.com/hminw18/timecheck-sub000/internal/database"
	"github.com/hminw18/timecheck-sub000/internal/model"
)

type Service struct {
	db           database.PGX
	events       eventsRepository
	participants participantsRepository
}

type eventsRepository interface {
	GetEventByID(ctx context.Context, q database.Queryable, id string) (*model.Event, error)
}

type participantsRepository interface {
	GetParticipants(ctx context.Context, q database.Queryable, eventID string) ([]*model.Participant, error)
}

func NewService(db database.PGX, events eventsRepository, participants participantsRepository) *Service {
	return &Service{
		db:           db,
		events:       events,
		participants: participants,
	}
}

// Snapshot is one complete aggregation of an event. It is rebuilt whole
// from persisted state on every change; nothing is patched incrementally.
type Snapshot struct {
	Event        *model.Event
	Participants []*model.Participant
	Group        model.GroupSchedule
}

func (s *Service) BuildSnapshot(ctx context.Context, eventID string) (*Snapshot, error) {
	event, err := s.events.GetEventByID(ctx, s.db, eventID)
	if err != nil {
		return nil, fmt.Errorf("events.GetEventByID: %w", err)
	}

	participants, err := s.participants.GetParticipants(ctx, s.db, eventID)
	if err != nil {
		return nil, fmt.Errorf("participants.GetParticipants: %w", err)
	}

	return &Snapshot{
		Event:        event,
		Participants: participants,
		Group:        BuildGroupSchedule(&event.EventCreate, participants),
	}, nil
}

// BuildGroupSchedule tallies, per slot of the event universe, who is
// available outright and who is available only if needed. A participant
// with the slot in neither set counts as available.
func BuildGroupSchedule(event *model.EventCreate, participants []*model.Participant) model.GroupSchedule {
	group := make(model.GroupSchedule)

	for id := range event.Universe() {
		slot := &model.GroupSlot{}

		for _, p := range participants {
			ref := model.UserRef{ID: p.UserID, Name: p.DisplayName, Photo: p.PhotoURL}
			switch {
			case p.Schedule.Unavailable.Has(id):
			case p.Schedule.IfNeeded.Has(id):
				slot.IfNeeded.Count++
				slot.IfNeeded.Users = append(slot.IfNeeded.Users, ref)
			default:
				slot.Available.Count++
				slot.Available.Users = append(slot.Available.Users, ref)
			}
		}

		sortRefs(slot.Available.Users)
		sortRefs(slot.IfNeeded.Users)
		group[id] = slot
	}

	return group
}

// BestTimes ranks the event's slots by effective head count and stitches
// top-scoring slots into contiguous per-column runs. Adjacent top-scoring
// slots always merge; each run carries the users free for every slot in
// it, the intersection of the per-slot lists. includeIfNeeded widens
// "free" to cover if-needed marks.
func BestTimes(event *model.EventCreate, group model.GroupSchedule, includeIfNeeded bool, limit int) []model.TimeRange {
	best := 0
	for _, slot := range group {
		if count := effectiveCount(slot, includeIfNeeded); count > best {
			best = count
		}
	}
	if best == 0 {
		return nil
	}

	var res []model.TimeRange
	rows := event.TimeRows()

	for _, column := range event.Columns() {
		var run *model.TimeRange

		for _, minutes := range rows {
			id := model.MakeSlotID(column, minutes)
			slot := group[id]

			if slot == nil || effectiveCount(slot, includeIfNeeded) != best {
				run = nil
				continue
			}

			users := freeUsers(slot, includeIfNeeded)
			if run != nil && run.EndMinutes == minutes {
				run.EndMinutes = minutes + model.SlotMinutes
				run.Users = intersectRefs(run.Users, users)
				continue
			}

			res = append(res, model.TimeRange{
				Column:       column,
				StartMinutes: minutes,
				EndMinutes:   minutes + model.SlotMinutes,
				Count:        best,
				Users:        users,
			})
			run = &res[len(res)-1]
		}
	}

	sort.SliceStable(res, func(i, j int) bool {
		di := res[i].EndMinutes - res[i].StartMinutes
		dj := res[j].EndMinutes - res[j].StartMinutes
		return di > dj
	})

	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res
}

func effectiveCount(slot *model.GroupSlot, includeIfNeeded bool) int {
	if includeIfNeeded {
		return slot.Available.Count + slot.IfNeeded.Count
	}
	return slot.Available.Count
}

func freeUsers(slot *model.GroupSlot, includeIfNeeded bool) []model.UserRef {
	users := append([]model.UserRef(nil), slot.Available.Users...)
	if includeIfNeeded {
		users = append(users, slot.IfNeeded.Users...)
	}
	sortRefs(users)
	return users
}

func intersectRefs(a, b []model.UserRef) []model.UserRef {
	ids := make(map[int64]struct{}, len(b))
	for _, u := range b {
		ids[u.ID] = struct{}{}
	}

	var res []model.UserRef
	for _, u := range a {
		if _, ok := ids[u.ID]; ok {
			res = append(res, u)
		}
	}
	return res
}

func sortRefs(users []model.UserRef) {
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
}
