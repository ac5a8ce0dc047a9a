package connections

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/hminw18/timecheck-sub000/internal/database"
	"github.com/hminw18/timecheck-sub000/internal/model"
)

type connectionDTO struct {
	ID         int64
	UserID     int64
	Provider   string
	Credential string
	Account    string
	Status     string
}

func mapToConnection(dto *connectionDTO) *model.CalendarConnection {
	return &model.CalendarConnection{
		ID:         dto.ID,
		UserID:     dto.UserID,
		Provider:   model.CalendarProvider(dto.Provider),
		Credential: dto.Credential,
		Account:    dto.Account,
		Status:     model.ConnectionStatus(dto.Status),
	}
}

// CreateConnection stores a new provider link. One connection per
// (user, provider); a duplicate insert fails with ErrAlreadyExists.
func (*Repository) CreateConnection(ctx context.Context, q database.Queryable, conn *model.CalendarConnection) (int64, error) {
	qb := database.PSQL.
		Insert(database.ConnectionsTable).
		Columns("user_id", "provider", "credential", "account", "status").
		Values(conn.UserID, conn.Provider, conn.Credential, conn.Account, conn.Status).
		Suffix("returning id")

	var id int64
	if err := q.Get(ctx, &id, qb); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, model.ErrAlreadyExists
		}
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	return id, nil
}

func (*Repository) GetConnectionsByUser(ctx context.Context, q database.Queryable, userID int64) ([]*model.CalendarConnection, error) {
	qb := baseQuery.
		Where(sq.Eq{"user_id": userID}).
		OrderBy("provider")

	var dtos []*connectionDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.CalendarConnection, len(dtos))
	for i, d := range dtos {
		res[i] = mapToConnection(d)
	}

	return res, nil
}

func (*Repository) GetConnection(ctx context.Context, q database.Queryable, userID int64, provider model.CalendarProvider) (*model.CalendarConnection, error) {
	qb := baseQuery.
		Where(sq.Eq{"user_id": userID, "provider": provider})

	dto := &connectionDTO{}
	if err := q.Get(ctx, dto, qb); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNoRecord
		}
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	return mapToConnection(dto), nil
}

func (*Repository) UpdateConnectionStatus(ctx context.Context, q database.Queryable, id int64, status model.ConnectionStatus) error {
	qb := database.PSQL.
		Update(database.ConnectionsTable).
		Set("status", status).
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

func (*Repository) DeleteConnection(ctx context.Context, q database.Queryable, userID int64, provider model.CalendarProvider) error {
	qb := database.PSQL.
		Delete(database.ConnectionsTable).
		Where(sq.Eq{"user_id": userID, "provider": provider})

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrNoRecord
	}

	return nil
}
