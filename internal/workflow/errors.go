package workflow

import (
	"errors"

	"github.com/MrJamesThe3rd/fundflow/internal/rowstore"
)

var (
	// ErrInvalidTransition means the guard of a transition does not hold for the current state.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrConflict means another actor changed or claimed the record while this transition ran.
	// Retrying the whole operation once re-evaluates the guard against the new state.
	ErrConflict = errors.New("concurrent modification")
	ErrNotFound = errors.New("record not found")
	// ErrStoreUnavailable is returned once retries of a transient store failure are exhausted.
	ErrStoreUnavailable = rowstore.ErrUnavailable
)
