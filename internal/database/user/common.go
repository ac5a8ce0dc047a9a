package user

import (
	"github.com/hminw18/timecheck-sub000/internal/database"
)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select(
		"id",
		"full_name",
		"email",
		"photo",
	).
	From(database.UsersTable)
