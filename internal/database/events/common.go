package events

import "github.com/hminw18/timecheck-sub000/internal/database"

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select("id",
		"type",
		"title",
		"selected_dates",
		"selected_days",
		"start_minutes",
		"end_minutes",
		"creator_id",
		"created_at",
	).
	From(database.EventsTable)
