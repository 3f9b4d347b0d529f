package store

import (
	"github.com/feral-file/ff-ledger/internal/domain"
)

// Mapping is a durable key-value mapping supplied by the host. The ledger
// only depends on this logical contract; durability and on-disk format are
// the host's concern.
type Mapping[K comparable, V any] interface {
	// Get retrieves the value for key, reporting whether it is present
	Get(key K) (V, bool)
	// Insert stores value under key, overwriting any existing entry
	Insert(key K, value V)
	// Remove deletes the entry for key; removing an absent key is a no-op
	Remove(key K)
	// Contains reports whether key has an entry
	Contains(key K) bool
}

// OperatorKey identifies one (owner, operator) grant
type OperatorKey struct {
	Owner    domain.Principal
	Operator domain.Principal
}

// State bundles the five ledger mappings:
//   - Owners: token -> owning principal; absence means the token does not exist
//   - Approvals: token -> principal approved to transfer that one token
//   - Operators: (owner, operator) -> presence; a standing blanket grant
//   - Balances: principal -> count of owned tokens, kept in lockstep with Owners
//   - URIs: token -> asset locator, present iff the token exists
type State struct {
	Owners    Mapping[domain.TokenID, domain.Principal]
	Approvals Mapping[domain.TokenID, domain.Principal]
	Operators Mapping[OperatorKey, struct{}]
	Balances  Mapping[domain.Principal, uint64]
	URIs      Mapping[domain.TokenID, domain.TokenURI]
}

// NewMemoryState creates a State backed by in-memory mappings
func NewMemoryState() *State {
	return &State{
		Owners:    NewMemoryMapping[domain.TokenID, domain.Principal](),
		Approvals: NewMemoryMapping[domain.TokenID, domain.Principal](),
		Operators: NewMemoryMapping[OperatorKey, struct{}](),
		Balances:  NewMemoryMapping[domain.Principal, uint64](),
		URIs:      NewMemoryMapping[domain.TokenID, domain.TokenURI](),
	}
}
