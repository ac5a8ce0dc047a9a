package participants

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hminw18/timecheck-sub000/internal/database"
	"github.com/hminw18/timecheck-sub000/internal/model"
)

// UpsertParticipant writes the (event, user) document. The row's version
// must still equal p.Version; a concurrent writer bumps it and this write
// then affects zero rows and fails with ErrPersistenceConflict. New rows
// insert at version 1 with p.Version == 0.
func (*Repository) UpsertParticipant(ctx context.Context, q database.Queryable, p *model.Participant) error {
	sourceOf, err := json.Marshal(p.Schedule.SourceOf)
	if err != nil {
		return fmt.Errorf("encode source_of: %w", err)
	}

	qb := database.PSQL.
		Insert(database.ParticipantsTable).
		Columns(
			"event_id",
			"user_id",
			"unavailable",
			"if_needed",
			"source_of",
			"version",
			"updated_at",
		).
		Values(
			p.EventID,
			p.UserID,
			slotList(p.Schedule.Unavailable),
			slotList(p.Schedule.IfNeeded),
			sourceOf,
			1,
			p.UpdatedAt,
		).
		Suffix(`on conflict (event_id, user_id) do update set
			unavailable = excluded.unavailable,
			if_needed = excluded.if_needed,
			source_of = excluded.source_of,
			version = `+database.ParticipantsTable+`.version + 1,
			updated_at = excluded.updated_at
			where `+database.ParticipantsTable+`.version = ?`, p.Version)

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrPersistenceConflict
	}

	return nil
}
