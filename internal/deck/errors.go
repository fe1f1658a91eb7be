package deck

import "errors"

var (
	// ErrMalformed is returned when the persisted collection cannot be parsed.
	// The store falls back to an empty collection.
	ErrMalformed = errors.New("malformed flashcard collection")

	// ErrNotFound is returned when no card matches the requested German word
	ErrNotFound = errors.New("flashcard not found")
)
