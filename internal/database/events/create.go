package events

import (
	"context"
	"fmt"

	"github.com/hminw18/timecheck-sub000/internal/database"
	"github.com/hminw18/timecheck-sub000/internal/model"
)

func (*Repository) CreateEvent(ctx context.Context, q database.Queryable, id string, event *model.EventCreate) (*model.Event, error) {
	qb := database.PSQL.
		Insert(database.EventsTable).
		Columns(
			"id",
			"type",
			"title",
			"selected_dates",
			"selected_days",
			"start_minutes",
			"end_minutes",
			"creator_id",
		).
		Values(
			id,
			event.EventType,
			event.Title,
			event.SelectedDates,
			event.SelectedDays,
			event.StartMinutes,
			event.EndMinutes,
			event.CreatorID,
		).
		Suffix("returning created_at")

	res := &model.Event{ID: id, EventCreate: *event}
	if err := q.Get(ctx, &res.CreatedAt, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	return res, nil
}
