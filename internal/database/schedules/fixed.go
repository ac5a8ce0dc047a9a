package schedules

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"

	"github.com/hminw18/timecheck-sub000/internal/database"
	"github.com/hminw18/timecheck-sub000/internal/model"
)

type fixedDTO struct {
	UserID    int64
	Slots     []string
	UpdatedAt time.Time
}

// GetFixedSchedule returns the user's standing weekly unavailability, or an
// empty one when nothing was saved yet.
func (*Repository) GetFixedSchedule(ctx context.Context, q database.Queryable, userID int64) (*model.FixedSchedule, error) {
	qb := database.PSQL.
		Select("user_id", "slots", "updated_at").
		From(database.FixedSchedulesTable).
		Where(sq.Eq{"user_id": userID})

	dto := &fixedDTO{}
	if err := q.Get(ctx, dto, qb); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.FixedSchedule{UserID: userID, Slots: model.NewSlotSet()}, nil
		}
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	slots := model.NewSlotSet()
	for _, id := range dto.Slots {
		slots.Add(model.SlotID(id))
	}

	return &model.FixedSchedule{
		UserID:    dto.UserID,
		Slots:     slots,
		UpdatedAt: dto.UpdatedAt,
	}, nil
}

func (*Repository) SetFixedSchedule(ctx context.Context, q database.Queryable, schedule *model.FixedSchedule) error {
	ids := schedule.Slots.List()
	slots := make([]string, len(ids))
	for i, id := range ids {
		slots[i] = string(id)
	}

	qb := database.PSQL.
		Insert(database.FixedSchedulesTable).
		Columns("user_id", "slots", "updated_at").
		Values(schedule.UserID, slots, schedule.UpdatedAt).
		Suffix(`on conflict (user_id) do update set
			slots = excluded.slots,
			updated_at = excluded.updated_at`)

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
