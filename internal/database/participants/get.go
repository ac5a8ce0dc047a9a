package participants

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"

	"github.com/hminw18/timecheck-sub000/internal/database"
	"github.com/hminw18/timecheck-sub000/internal/model"
)

func (*Repository) GetParticipant(ctx context.Context, q database.Queryable, eventID string, userID int64) (*model.Participant, error) {
	qb := baseQuery.
		Where(sq.Eq{"p.event_id": eventID, "p.user_id": userID})

	dto := &participantDTO{}
	if err := q.Get(ctx, dto, qb); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNoRecord
		}
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	return mapToParticipant(dto)
}

func (*Repository) GetParticipants(ctx context.Context, q database.Queryable, eventID string) ([]*model.Participant, error) {
	qb := baseQuery.
		Where(sq.Eq{"p.event_id": eventID}).
		OrderBy("p.user_id")

	var dtos []*participantDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.Participant, len(dtos))
	for i, d := range dtos {
		p, err := mapToParticipant(d)
		if err != nil {
			return nil, err
		}
		res[i] = p
	}

	return res, nil
}

// GetEventIDsByUser lists every event the user participates in. Calendar
// and fixed-schedule changes re-merge all of them.
func (*Repository) GetEventIDsByUser(ctx context.Context, q database.Queryable, userID int64) ([]string, error) {
	qb := database.PSQL.
		Select("event_id").
		From(database.ParticipantsTable).
		Where(sq.Eq{"user_id": userID})

	var ids []string
	if err := q.Select(ctx, &ids, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	return ids, nil
}
