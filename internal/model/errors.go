package model

import "errors"

var ErrNoRecord = errors.New("no record")
var ErrAlreadyExists = errors.New("entity already exists")

// Calendar sync failure taxonomy. Provider failures are isolated per
// provider: none of them may abort the merge of the remaining layers.
var (
	// ErrProviderUnavailable covers network failures and timeouts;
	// retryable, results are surfaced as incomplete.
	ErrProviderUnavailable = errors.New("calendar provider unavailable")
	// ErrProviderAuthExpired means the stored credential no longer works;
	// the connection needs to be re-established by the user.
	ErrProviderAuthExpired = errors.New("calendar credential expired")
	// ErrMalformedEvent marks a single raw item that could not be parsed.
	ErrMalformedEvent = errors.New("malformed calendar event")
)

// ErrPersistenceConflict is returned when a participant document write
// loses against a concurrent write of the same document.
var ErrPersistenceConflict = errors.New("schedule write conflict")
