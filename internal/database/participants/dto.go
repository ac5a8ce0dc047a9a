package participants

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hminw18/timecheck-sub000/internal/model"
)

type participantDTO struct {
	EventID     string
	UserID      int64
	DisplayName string
	PhotoURL    string
	Unavailable []string
	IfNeeded    []string
	SourceOf    []byte
	UpdatedAt   time.Time
	Version     int64
}

func mapToParticipant(dto *participantDTO) (*model.Participant, error) {
	schedule := model.NewUserSchedule()
	for _, id := range dto.Unavailable {
		schedule.Unavailable.Add(model.SlotID(id))
	}
	for _, id := range dto.IfNeeded {
		schedule.IfNeeded.Add(model.SlotID(id))
	}
	if len(dto.SourceOf) != 0 {
		if err := json.Unmarshal(dto.SourceOf, &schedule.SourceOf); err != nil {
			return nil, fmt.Errorf("decode source_of: %w", err)
		}
	}

	return &model.Participant{
		EventID:     dto.EventID,
		UserID:      dto.UserID,
		DisplayName: dto.DisplayName,
		PhotoURL:    dto.PhotoURL,
		Schedule:    schedule,
		UpdatedAt:   dto.UpdatedAt,
		Version:     dto.Version,
	}, nil
}

func slotList(set model.SlotSet) []string {
	ids := set.List()
	res := make([]string, len(ids))
	for i, id := range ids {
		res[i] = string(id)
	}
	return res
}
