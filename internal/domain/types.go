package domain

import (
	"strconv"
)

// Principal is an identity capable of owning tokens and being granted
// approvals. The zero value is the null principal, a sentinel meaning
// "no one": it can never be recorded as an owner, approval target, or
// operator, and appears only in event payloads to mark mint-origin and
// burn-destination.
type Principal string

// NullPrincipal is the sentinel principal meaning "no one"
const NullPrincipal Principal = ""

// IsNull reports whether the principal is the null sentinel
func (p Principal) IsNull() bool {
	return p == NullPrincipal
}

// String returns the string representation of the principal
func (p Principal) String() string {
	return string(p)
}

// TokenID is the unique identifier of one non-fungible token
type TokenID uint64

// String returns the decimal representation of the token ID
func (t TokenID) String() string {
	return strconv.FormatUint(uint64(t), 10)
}

// ParseTokenID parses a decimal token ID
func ParseTokenID(s string) (TokenID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return TokenID(n), nil
}

// TokenURI is the opaque locator of the token's external asset. The ledger
// stores it verbatim and attaches no meaning to its contents.
type TokenURI string

// EventType represents the type of ledger event
type EventType string

const (
	// EventTypeMint is emitted when a new token is created
	EventTypeMint EventType = "mint"
	// EventTypeTransfer is emitted when a token changes owner, including
	// the synthetic transfers from and to the null principal that mark
	// token creation and destruction
	EventTypeTransfer EventType = "transfer"
	// EventTypeApproval is emitted when a per-token approval is granted
	EventTypeApproval EventType = "approval"
	// EventTypeApprovalForAll is emitted when an operator is enabled or
	// disabled for an owner
	EventTypeApprovalForAll EventType = "approval_for_all"
)

// Event represents a normalized ledger event
// This is the standard format persisted to the journal and published to NATS
type Event struct {
	Type EventType `json:"type"`
	// From is the sending principal (nil for mint-transfers)
	From *Principal `json:"from,omitempty"`
	// To is the receiving principal (nil for burn-transfers); for approval
	// events it is the approved principal
	To *Principal `json:"to,omitempty"`
	// Owner and Operator are set for approval_for_all events only
	Owner    Principal `json:"owner,omitempty"`
	Operator Principal `json:"operator,omitempty"`
	Approved bool      `json:"approved,omitempty"`
	// Token is the subject token (unset for approval_for_all events)
	Token TokenID `json:"token,omitempty"`
	// URI is set for mint events only
	URI TokenURI `json:"uri,omitempty"`
}

// Valid checks the event shape against its declared type
func (e *Event) Valid() bool {
	switch e.Type {
	case EventTypeMint:
		return e.To != nil && !e.To.IsNull()
	case EventTypeTransfer:
		// A transfer with both ends null is meaningless; one end may be
		// null to denote creation or destruction.
		from := e.From != nil && !e.From.IsNull()
		to := e.To != nil && !e.To.IsNull()
		return from || to
	case EventTypeApproval:
		return e.From != nil && !e.From.IsNull() && e.To != nil && !e.To.IsNull()
	case EventTypeApprovalForAll:
		return !e.Owner.IsNull() && !e.Operator.IsNull()
	default:
		return false
	}
}

// principalPtr returns a pointer to p, or nil if p is the null principal.
// Events carry optional principals as pointers so JSON consumers see an
// absent field rather than an empty string.
func principalPtr(p Principal) *Principal {
	if p.IsNull() {
		return nil
	}
	return &p
}

// NewMintEvent builds the Mint event emitted when a token is created
func NewMintEvent(to Principal, token TokenID, uri TokenURI) Event {
	return Event{
		Type:  EventTypeMint,
		To:    principalPtr(to),
		Token: token,
		URI:   uri,
	}
}

// NewTransferEvent builds a Transfer event. Pass the null principal for
// `from` on creation and for `to` on destruction.
func NewTransferEvent(from, to Principal, token TokenID) Event {
	return Event{
		Type:  EventTypeTransfer,
		From:  principalPtr(from),
		To:    principalPtr(to),
		Token: token,
	}
}

// NewApprovalEvent builds the Approval event for a per-token grant
func NewApprovalEvent(from, to Principal, token TokenID) Event {
	return Event{
		Type:  EventTypeApproval,
		From:  principalPtr(from),
		To:    principalPtr(to),
		Token: token,
	}
}

// NewApprovalForAllEvent builds the ApprovalForAll event for an operator
// grant or revocation
func NewApprovalForAllEvent(owner, operator Principal, approved bool) Event {
	return Event{
		Type:     EventTypeApprovalForAll,
		Owner:    owner,
		Operator: operator,
		Approved: approved,
	}
}
