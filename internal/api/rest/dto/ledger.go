// Package dto defines the request and response bodies of the REST API.
package dto

import (
	"errors"

	"github.com/feral-file/ff-ledger/internal/domain"
)

// MintRequest is the body of POST /api/v1/tokens
type MintRequest struct {
	Token string `json:"token" binding:"required"`
	URI   string `json:"uri"`
}

// Validate checks the request fields beyond binding
func (r *MintRequest) Validate() error {
	if _, err := domain.ParseTokenID(r.Token); err != nil {
		return err
	}
	return nil
}

// ApproveRequest is the body of POST /api/v1/tokens/:token/approvals
type ApproveRequest struct {
	To string `json:"to" binding:"required"`
}

// TransferRequest is the body of POST /api/v1/tokens/:token/transfers.
// From is optional: when present the transfer runs on behalf of that owner,
// otherwise the caller transfers their own token.
type TransferRequest struct {
	From string `json:"from"`
	To   string `json:"to" binding:"required"`
}

// SetOperatorRequest is the body of PUT /api/v1/operators/:operator
type SetOperatorRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// Validate checks the request fields beyond binding
func (r *SetOperatorRequest) Validate() error {
	if r.Approved == nil {
		return errors.New("approved is required")
	}
	return nil
}

// BalanceResponse is the body of GET /api/v1/balances/:principal
type BalanceResponse struct {
	Principal string `json:"principal"`
	Balance   uint64 `json:"balance"`
}

// TokenResponse describes one token's current state
type TokenResponse struct {
	Token    string  `json:"token"`
	Owner    string  `json:"owner"`
	URI      *string `json:"uri,omitempty"`
	Approved *string `json:"approved,omitempty"`
}

// OperatorResponse is the body of GET /api/v1/operators/:owner/:operator
type OperatorResponse struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}
