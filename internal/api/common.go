package api

import (
	"time"

	"github.com/hminw18/timecheck-sub000/internal/business/availability"
	"github.com/hminw18/timecheck-sub000/internal/model"
)

type userResp struct {
	ID       int64  `json:"id,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Photo    string `json:"photo,omitempty"`
}

func mapToUserResp(user *model.User) *userResp {
	return &userResp{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		Photo:    user.Photo,
	}
}

type eventResp struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	EventType     string    `json:"type"`
	SelectedDates []string  `json:"selected_dates,omitempty"`
	SelectedDays  []string  `json:"selected_days,omitempty"`
	StartMinutes  int       `json:"start_minutes"`
	EndMinutes    int       `json:"end_minutes"`
	CreatorID     int64     `json:"creator_id"`
	CreatedAt     time.Time `json:"created_at"`
}

func mapToEventResp(event *model.Event) (*eventResp, error) {
	return &eventResp{
		ID:            event.ID,
		Title:         event.Title,
		EventType:     string(event.EventType),
		SelectedDates: event.SelectedDates,
		SelectedDays:  event.SelectedDays,
		StartMinutes:  event.StartMinutes,
		EndMinutes:    event.EndMinutes,
		CreatorID:     event.CreatorID,
		CreatedAt:     event.CreatedAt,
	}, nil
}

type scheduleResp struct {
	Unavailable []string          `json:"unavailable"`
	IfNeeded    []string          `json:"if_needed"`
	Sources     map[string]string `json:"sources,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Version     int64             `json:"version"`
}

func mapToScheduleResp(p *model.Participant) *scheduleResp {
	sources := make(map[string]string, len(p.Schedule.SourceOf))
	for id, tag := range p.Schedule.SourceOf {
		sources[string(id)] = string(tag)
	}

	return &scheduleResp{
		Unavailable: stringsFromSlotSet(p.Schedule.Unavailable),
		IfNeeded:    stringsFromSlotSet(p.Schedule.IfNeeded),
		Sources:     sources,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.Version,
	}
}

type participantResp struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Photo string `json:"photo,omitempty"`
}

type snapshotResp struct {
	Event        *eventResp                  `json:"event"`
	Participants []participantResp           `json:"participants"`
	Group        map[string]*model.GroupSlot `json:"group"`
}

func mapToSnapshotResp(s *availability.Snapshot) (*snapshotResp, error) {
	event, err := mapToEventResp(s.Event)
	if err != nil {
		return nil, err
	}

	participants := make([]participantResp, len(s.Participants))
	for i, p := range s.Participants {
		participants[i] = participantResp{
			ID:    p.UserID,
			Name:  p.DisplayName,
			Photo: p.PhotoURL,
		}
	}

	group := make(map[string]*model.GroupSlot, len(s.Group))
	for id, slot := range s.Group {
		group[string(id)] = slot
	}

	return &snapshotResp{
		Event:        event,
		Participants: participants,
		Group:        group,
	}, nil
}
