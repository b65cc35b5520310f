package repositories

import "github.com/pkg/errors"

var (
	// ErrConstraintViolation is returned when an insert would break a
	// uniqueness constraint (keypair email/fingerprint, contact
	// fingerprint). The failed insert leaves the table unchanged.
	ErrConstraintViolation = errors.New("uniqueness constraint violated")

	// ErrInvariantViolation is returned on attempts to delete the
	// singleton settings row.
	ErrInvariantViolation = errors.New("operation would violate a storage invariant")
)
