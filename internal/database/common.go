package database

import sq "github.com/Masterminds/squirrel"

var PSQL = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	UsersTable          = "users"
	EventsTable         = "events"
	ParticipantsTable   = "event_participants"
	FixedSchedulesTable = "fixed_schedules"
	ConnectionsTable    = "calendar_connections"
)
