package ledger

import (
	"fmt"

	"github.com/feral-file/ff-ledger/internal/domain"
	"github.com/feral-file/ff-ledger/internal/store"
)

// Apply replays a previously emitted event into state, without rule checks
// and without re-emitting. The host uses it at startup to rebuild in-memory
// state from the journal; the journal is trusted, so a malformed event means
// the journal itself is corrupt and the replay must abort.
func (l *Ledger) Apply(event domain.Event) error {
	switch event.Type {
	case domain.EventTypeMint:
		// Ownership is established by the creation transfer that follows
		// the mint in the journal; the mint itself carries the URI.
		if event.To == nil {
			return fmt.Errorf("mint event for token %s has no recipient", event.Token)
		}
		l.state.URIs.Insert(event.Token, event.URI)

	case domain.EventTypeTransfer:
		switch {
		case event.From == nil && event.To != nil:
			// Creation: the token enters the ledger.
			l.state.Owners.Insert(event.Token, *event.To)
			l.creditBalance(*event.To)

		case event.From != nil && event.To == nil:
			// Destruction: the token and anything granted against it go away.
			l.state.Approvals.Remove(event.Token)
			l.state.Owners.Remove(event.Token)
			l.state.URIs.Remove(event.Token)
			l.debitBalance(*event.From)

		case event.From != nil && event.To != nil:
			// Ordinary transfer consumes any active approval.
			l.state.Approvals.Remove(event.Token)
			l.state.Owners.Insert(event.Token, *event.To)
			l.debitBalance(*event.From)
			l.creditBalance(*event.To)

		default:
			return fmt.Errorf("transfer event for token %s has neither endpoint", event.Token)
		}

	case domain.EventTypeApproval:
		if event.To == nil {
			return fmt.Errorf("approval event for token %s has no target", event.Token)
		}
		l.state.Approvals.Insert(event.Token, *event.To)

	case domain.EventTypeApprovalForAll:
		key := store.OperatorKey{Owner: event.Owner, Operator: event.Operator}
		if event.Approved {
			l.state.Operators.Insert(key, struct{}{})
		} else {
			l.state.Operators.Remove(key)
		}

	default:
		return fmt.Errorf("unknown event type %q", event.Type)
	}

	return nil
}

func (l *Ledger) creditBalance(p domain.Principal) {
	count, _ := l.state.Balances.Get(p)
	l.state.Balances.Insert(p, count+1)
}

func (l *Ledger) debitBalance(p domain.Principal) {
	count, ok := l.state.Balances.Get(p)
	if !ok || count == 0 {
		// Journal replay of a consistent history never reaches this; leave
		// the balance at zero rather than wrap around.
		l.state.Balances.Insert(p, 0)
		return
	}
	l.state.Balances.Insert(p, count-1)
}
