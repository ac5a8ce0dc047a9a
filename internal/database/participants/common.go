package participants

import "github.com/hminw18/timecheck-sub000/internal/database"

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select(
		"p.event_id",
		"p.user_id",
		"u.full_name as display_name",
		"u.photo as photo_url",
		"p.unavailable",
		"p.if_needed",
		"p.source_of",
		"p.updated_at",
		"p.version",
	).
	From(database.ParticipantsTable + " p").
	Join(database.UsersTable + " u on u.id = p.user_id")
