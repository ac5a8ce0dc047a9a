package user

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/hminw18/timecheck-sub000/internal/database"
	"github.com/hminw18/timecheck-sub000/internal/model"
)

func (*Repository) UpdateUser(ctx context.Context, q database.Queryable, id int64, info *model.UserCreate) error {
	qb := database.PSQL.
		Update(database.UsersTable).
		Set("full_name", info.FullName).
		Set("photo", info.Photo).
		Where(sq.Eq{"id": id})

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrNoRecord
	}

	return nil
}
