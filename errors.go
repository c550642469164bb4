package roster

import "errors"

var (
	// ErrAssignmentNotFound is returned when an assignment cannot be found.
	ErrAssignmentNotFound = errors.New("roster: assignment not found")

	// ErrDuplicateAssignment is returned when the (user, role, store)
	// triple already has an assignment.
	ErrDuplicateAssignment = errors.New("roster: role already assigned to user at store")

	// ErrEmptyBulkRequest is returned when a bulk assign request carries
	// no items.
	ErrEmptyBulkRequest = errors.New("roster: bulk assign request has no items")
)
