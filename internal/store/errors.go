package store

import "errors"

// Storage sentinels, matched with errors.Is. The store knows nothing
// about HTTP; services translate these into coded domain errors.
var (
	// ErrNotFound reports a missing record or index entry.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists reports an id collision or a unique index
	// conflict. Create and Update wrap it with the offending index
	// and key.
	ErrAlreadyExists = errors.New("record already exists")
)
