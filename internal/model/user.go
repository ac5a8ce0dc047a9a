package model

type UserCreate struct {
	FullName string
	Email    string
	Photo    string
}

type User struct {
	ID int64
	UserCreate
}

// CalendarProvider identifies an external calendar account kind.
type CalendarProvider string

const (
	ProviderGoogle CalendarProvider = "google"
	ProviderApple  CalendarProvider = "apple"
)

func (p CalendarProvider) SourceTag() SourceTag {
	if p == ProviderApple {
		return SourceApple
	}
	return SourceGoogle
}

type ConnectionStatus string

const (
	ConnectionActive ConnectionStatus = "active"
	// ConnectionAuthExpired is set when a fetch fails with an auth error;
	// the client surfaces a "reconnect calendar" state.
	ConnectionAuthExpired ConnectionStatus = "auth_expired"
)

// CalendarConnection stores one user's link to an external calendar.
// Credential is the vault ciphertext of the refresh token (google) or
// app-password (apple); plaintext only exists inside a fetch call.
type CalendarConnection struct {
	ID         int64
	UserID     int64
	Provider   CalendarProvider
	Credential string
	Account    string
	Status     ConnectionStatus
}
