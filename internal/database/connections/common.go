package connections

import "github.com/hminw18/timecheck-sub000/internal/database"

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select(
		"id",
		"user_id",
		"provider",
		"credential",
		"account",
		"status",
	).
	From(database.ConnectionsTable)
