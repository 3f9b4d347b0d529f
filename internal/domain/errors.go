package domain

import "errors"

// The ledger reports every failure as one of this closed set. A failed
// operation leaves all state unchanged.
var (
	// ErrNotOwner is returned when the caller (or the supplied `from`)
	// does not match the token's actual owner
	ErrNotOwner = errors.New("caller is not the token owner")

	// ErrNotApproved is returned when a transfer caller holds neither
	// ownership, a per-token approval, nor an operator grant
	ErrNotApproved = errors.New("caller is not approved to transfer the token")

	// ErrTokenExists is returned when minting a token ID that already exists
	ErrTokenExists = errors.New("token already exists")

	// ErrTokenNotFound is returned when an operation references a
	// nonexistent token
	ErrTokenNotFound = errors.New("token not found")

	// ErrCannotInsert is returned when approving a token that already has
	// an active approval; the approval must be consumed by a transfer first
	ErrCannotInsert = errors.New("token approval already exists")

	// ErrCannotFetchValue is returned when a balance entry is missing where
	// ownership was just confirmed. It marks a broken internal invariant,
	// not a recoverable user error.
	ErrCannotFetchValue = errors.New("balance entry missing for owner")

	// ErrNotAllowed is returned for structural rule violations: a null
	// principal as target, or an operator self-approval
	ErrNotAllowed = errors.New("operation not allowed")
)
