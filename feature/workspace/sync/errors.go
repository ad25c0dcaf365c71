package sync

import "errors"

// Input errors are deterministic and caller-fixable; they abort the run
// before or at the offending entity and are never retried. Wrapped errors
// always name the entity type and entity involved.
var (
	ErrEmptyName            = errors.New("entity has an empty name")
	ErrDuplicateName        = errors.New("duplicate entity name")
	ErrConflictingReference = errors.New("conflicting id and name reference forms")
	ErrUnresolvedReference  = errors.New("unresolved name reference")
	ErrContentHashMismatch  = errors.New("content hash mismatch")
	ErrMissingIdentifier    = errors.New("missing identifier required for this operation")
)
