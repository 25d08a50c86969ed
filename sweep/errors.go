package sweep

import "errors"

var (
	// ErrInvalidDestinations is returned when the destination set is empty,
	// oversized, or its percentages do not sum to 100.
	ErrInvalidDestinations = errors.New("invalid destination set")

	// ErrNothingToClaim is returned when the disposable account holds nothing
	// transferable.
	ErrNothingToClaim = errors.New("nothing to claim")

	// ErrNoFeePayer is returned when tokens exist but the disposable account
	// has no SOL for fees and no external fee payer was supplied.
	ErrNoFeePayer = errors.New("no SOL for fees and no external fee payer")
)
