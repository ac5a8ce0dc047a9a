package events

import (
	"time"

	"github.com/hminw18/timecheck-sub000/internal/model"
)

type eventDTO struct {
	ID            string
	EventType     string `db:"type"`
	Title         string
	SelectedDates []string
	SelectedDays  []string
	StartMinutes  int
	EndMinutes    int
	CreatorID     int64
	CreatedAt     time.Time
}

func mapToEvent(dto *eventDTO) *model.Event {
	return &model.Event{
		ID:        dto.ID,
		CreatedAt: dto.CreatedAt,
		EventCreate: model.EventCreate{
			Title:         dto.Title,
			EventType:     model.EventType(dto.EventType),
			SelectedDates: dto.SelectedDates,
			SelectedDays:  dto.SelectedDays,
			StartMinutes:  dto.StartMinutes,
			EndMinutes:    dto.EndMinutes,
			CreatorID:     dto.CreatorID,
		},
	}
}
