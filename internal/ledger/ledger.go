// Package ledger implements the ownership state machine for a universe of
// non-fungible tokens: who owns each token, who may transfer it on the
// owner's behalf, and which operators hold blanket grants over an owner's
// holdings.
//
// The ledger is a pure state-and-rules engine. It trusts the caller identity
// its host resolves, reads and writes state through the store capabilities it
// is handed, and emits events to a Sink. Every operation either completes and
// commits, or fails before any mutation: all documented failures are checked
// up front so no error path leaves partially-applied state. The host's
// invocation model runs operations one at a time, so the engine itself takes
// no locks.
package ledger

import (
	"github.com/feral-file/ff-ledger/internal/domain"
	"github.com/feral-file/ff-ledger/internal/store"
)

// Ledger tracks token ownership, per-token approvals, and operator grants
type Ledger struct {
	state *store.State
	sink  Sink
}

// New creates a ledger over the given state, emitting events to sink
func New(state *store.State, sink Sink) *Ledger {
	return &Ledger{state: state, sink: sink}
}

// BalanceOf returns the number of tokens the owner currently holds
func (l *Ledger) BalanceOf(owner domain.Principal) uint64 {
	count, ok := l.state.Balances.Get(owner)
	if !ok {
		return 0
	}
	return count
}

// OwnerOf returns the owner of the token, reporting whether the token exists
func (l *Ledger) OwnerOf(token domain.TokenID) (domain.Principal, bool) {
	return l.state.Owners.Get(token)
}

// GetApproved returns the principal approved to transfer the token, if any
func (l *Ledger) GetApproved(token domain.TokenID) (domain.Principal, bool) {
	return l.state.Approvals.Get(token)
}

// IsApprovedForAll reports whether operator holds a blanket grant from owner
func (l *Ledger) IsApprovedForAll(owner, operator domain.Principal) bool {
	return l.state.Operators.Contains(store.OperatorKey{Owner: owner, Operator: operator})
}

// TokenURI returns the asset locator of the token, reporting whether the
// token exists
func (l *Ledger) TokenURI(token domain.TokenID) (domain.TokenURI, bool) {
	return l.state.URIs.Get(token)
}

// Mint creates a new token owned by the caller. Any principal may mint to
// themselves; the ledger enforces ownership consistency, not mint policy.
// It emits a Mint event followed by a Transfer from the null principal, so
// observers can treat creation with the same vocabulary as transfers.
func (l *Ledger) Mint(caller domain.Principal, token domain.TokenID, uri domain.TokenURI) error {
	if err := l.addTokenTo(caller, token); err != nil {
		return err
	}
	l.state.URIs.Insert(token, uri)

	l.sink.Emit(domain.NewMintEvent(caller, token, uri))
	l.sink.Emit(domain.NewTransferEvent(domain.NullPrincipal, caller, token))

	return nil
}

// Burn destroys an existing token. Only the literal owner may burn: neither
// a per-token approval nor an operator grant is honored here. Any active
// approval on the token is cleared with it. Emits a Transfer to the null
// principal.
func (l *Ledger) Burn(caller domain.Principal, token domain.TokenID) error {
	owner, ok := l.state.Owners.Get(token)
	if !ok {
		return domain.ErrTokenNotFound
	}
	if owner != caller {
		return domain.ErrNotOwner
	}

	count, ok := l.state.Balances.Get(caller)
	if !ok || count == 0 {
		// Ownership was just confirmed, so a missing or zero balance means
		// the balance invariant is broken.
		return domain.ErrCannotFetchValue
	}

	l.state.Balances.Insert(caller, count-1)
	l.state.Owners.Remove(token)
	l.state.URIs.Remove(token)
	l.state.Approvals.Remove(token)

	l.sink.Emit(domain.NewTransferEvent(caller, domain.NullPrincipal, token))

	return nil
}

// Approve grants `to` the right to transfer the token once. The caller must
// be the owner or one of the owner's operators. An active approval is never
// overwritten: it has to be consumed by a transfer before a new grant is
// accepted.
func (l *Ledger) Approve(caller, to domain.Principal, token domain.TokenID) error {
	owner, ok := l.state.Owners.Get(token)
	if !ok {
		return domain.ErrTokenNotFound
	}
	if owner != caller && !l.IsApprovedForAll(owner, caller) {
		return domain.ErrNotAllowed
	}
	if to.IsNull() {
		return domain.ErrNotAllowed
	}
	if l.state.Approvals.Contains(token) {
		return domain.ErrCannotInsert
	}

	l.state.Approvals.Insert(token, to)

	l.sink.Emit(domain.NewApprovalEvent(caller, to, token))

	return nil
}

// SetApprovalForAll enables or disables operator as a blanket operator over
// all of the caller's current and future tokens. Disabling an absent grant
// is a no-op. The ApprovalForAll event is emitted even when the underlying
// set did not change.
func (l *Ledger) SetApprovalForAll(caller, operator domain.Principal, approved bool) error {
	if operator == caller {
		return domain.ErrNotAllowed
	}
	if caller.IsNull() || operator.IsNull() {
		return domain.ErrNotAllowed
	}

	l.sink.Emit(domain.NewApprovalForAllEvent(caller, operator, approved))

	key := store.OperatorKey{Owner: caller, Operator: operator}
	if approved {
		l.state.Operators.Insert(key, struct{}{})
	} else {
		l.state.Operators.Remove(key)
	}

	return nil
}

// Transfer moves the caller's token to the given destination
func (l *Ledger) Transfer(caller, to domain.Principal, token domain.TokenID) error {
	return l.transferTokenFrom(caller, caller, to, token)
}

// TransferFrom moves a token the caller owns or is approved for from its
// owner to the given destination
func (l *Ledger) TransferFrom(caller, from, to domain.Principal, token domain.TokenID) error {
	return l.transferTokenFrom(caller, from, to, token)
}

// transferTokenFrom checks every precondition against the token's actual
// current owner, then applies the move as one unit: the active approval is
// cleared, ownership flips, and both balances are adjusted. The order of
// checks is contractual — an unauthorized caller gets ErrNotApproved even
// when `from` is also wrong.
func (l *Ledger) transferTokenFrom(caller, from, to domain.Principal, token domain.TokenID) error {
	owner, ok := l.state.Owners.Get(token)
	if !ok {
		return domain.ErrTokenNotFound
	}
	if !l.approvedOrOwner(caller, token, owner) {
		return domain.ErrNotApproved
	}
	if owner != from {
		return domain.ErrNotOwner
	}
	if to.IsNull() {
		return domain.ErrNotAllowed
	}

	count, ok := l.state.Balances.Get(from)
	if !ok || count == 0 {
		return domain.ErrCannotFetchValue
	}

	l.state.Approvals.Remove(token)
	l.state.Balances.Insert(from, count-1)
	l.state.Owners.Remove(token)
	if err := l.addTokenTo(to, token); err != nil {
		return err
	}

	l.sink.Emit(domain.NewTransferEvent(from, to, token))

	return nil
}

// addTokenTo records `to` as the owner of token and increments their balance
func (l *Ledger) addTokenTo(to domain.Principal, token domain.TokenID) error {
	if l.state.Owners.Contains(token) {
		return domain.ErrTokenExists
	}
	if to.IsNull() {
		return domain.ErrNotAllowed
	}

	count, _ := l.state.Balances.Get(to)
	l.state.Balances.Insert(to, count+1)
	l.state.Owners.Insert(token, to)

	return nil
}

// approvedOrOwner reports whether caller may transfer the token: the caller
// is the current owner, holds the token's approval, or is an operator for
// the owner. The null principal is never authorized, even if it happens to
// match stored state.
func (l *Ledger) approvedOrOwner(caller domain.Principal, token domain.TokenID, owner domain.Principal) bool {
	if caller.IsNull() {
		return false
	}
	if caller == owner {
		return true
	}
	if approved, ok := l.state.Approvals.Get(token); ok && approved == caller {
		return true
	}
	return l.IsApprovedForAll(owner, caller)
}
