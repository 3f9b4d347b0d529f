package rest

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-ledger/internal/api/middleware"
	"github.com/feral-file/ff-ledger/internal/api/rest/dto"
	"github.com/feral-file/ff-ledger/internal/domain"
	"github.com/feral-file/ff-ledger/internal/service"
)

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
type Handler interface {
	// GetBalance returns how many tokens a principal holds
	// GET /api/v1/balances/:principal
	GetBalance(c *gin.Context)

	// GetToken returns a token's owner, URI and pending approval
	// GET /api/v1/tokens/:token
	GetToken(c *gin.Context)

	// GetOperator reports whether an operator is enabled for an owner
	// GET /api/v1/operators/:owner/:operator
	GetOperator(c *gin.Context)

	// Mint creates a new token owned by the caller
	// POST /api/v1/tokens
	Mint(c *gin.Context)

	// Burn destroys a token owned by the caller
	// DELETE /api/v1/tokens/:token
	Burn(c *gin.Context)

	// Approve grants a single-use transfer approval on a token
	// POST /api/v1/tokens/:token/approvals
	Approve(c *gin.Context)

	// Transfer moves a token to a new owner, optionally on behalf of the
	// current owner
	// POST /api/v1/tokens/:token/transfers
	Transfer(c *gin.Context)

	// SetOperator enables or disables an operator for the caller
	// PUT /api/v1/operators/:operator
	SetOperator(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	ledger *service.Service
}

// NewHandler creates a new REST API handler over the ledger service
func NewHandler(ledger *service.Service) Handler {
	return &handler{ledger: ledger}
}

// GetBalance returns how many tokens a principal holds
func (h *handler) GetBalance(c *gin.Context) {
	principal := domain.Principal(c.Param("principal"))
	if principal.IsNull() {
		respondBadRequest(c, "Principal is required")
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		Principal: principal.String(),
		Balance:   h.ledger.BalanceOf(principal),
	})
}

// GetToken returns a token's owner, URI and pending approval
func (h *handler) GetToken(c *gin.Context) {
	token, ok := h.tokenParam(c)
	if !ok {
		return
	}

	owner, exists := h.ledger.OwnerOf(token)
	if !exists {
		respondNotFound(c, "Token not found")
		return
	}

	response := dto.TokenResponse{
		Token: token.String(),
		Owner: owner.String(),
	}
	if uri, ok := h.ledger.TokenURI(token); ok && uri != "" {
		s := string(uri)
		response.URI = &s
	}
	if approved, ok := h.ledger.GetApproved(token); ok {
		s := approved.String()
		response.Approved = &s
	}

	c.JSON(http.StatusOK, response)
}

// GetOperator reports whether an operator is enabled for an owner
func (h *handler) GetOperator(c *gin.Context) {
	owner := domain.Principal(c.Param("owner"))
	operator := domain.Principal(c.Param("operator"))
	if owner.IsNull() || operator.IsNull() {
		respondBadRequest(c, "Owner and operator are required")
		return
	}

	c.JSON(http.StatusOK, dto.OperatorResponse{
		Owner:    owner.String(),
		Operator: operator.String(),
		Approved: h.ledger.IsApprovedForAll(owner, operator),
	})
}

// Mint creates a new token owned by the caller
func (h *handler) Mint(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req dto.MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	token, _ := domain.ParseTokenID(req.Token)
	if err := h.ledger.Mint(c.Request.Context(), caller, token, domain.TokenURI(req.URI)); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.TokenResponse{
		Token: token.String(),
		Owner: caller.String(),
	})
}

// Burn destroys a token owned by the caller
func (h *handler) Burn(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	token, ok := h.tokenParam(c)
	if !ok {
		return
	}

	if err := h.ledger.Burn(c.Request.Context(), caller, token); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Approve grants a single-use transfer approval on a token
func (h *handler) Approve(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	token, ok := h.tokenParam(c)
	if !ok {
		return
	}

	var req dto.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	if err := h.ledger.Approve(c.Request.Context(), caller, domain.Principal(req.To), token); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Transfer moves a token to a new owner
func (h *handler) Transfer(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	token, ok := h.tokenParam(c)
	if !ok {
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	ctx := c.Request.Context()
	var err error
	if req.From == "" {
		err = h.ledger.Transfer(ctx, caller, domain.Principal(req.To), token)
	} else {
		err = h.ledger.TransferFrom(ctx, caller, domain.Principal(req.From), domain.Principal(req.To), token)
	}
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetOperator enables or disables an operator for the caller
func (h *handler) SetOperator(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	operator := domain.Principal(c.Param("operator"))
	if operator.IsNull() {
		respondBadRequest(c, "Operator is required")
		return
	}

	var req dto.SetOperatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	if err := h.ledger.SetApprovalForAll(c.Request.Context(), caller, operator, *req.Approved); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": "ff-ledger",
	})
}

// tokenParam parses the :token path parameter, responding on failure
func (h *handler) tokenParam(c *gin.Context) (domain.TokenID, bool) {
	token, err := domain.ParseTokenID(c.Param("token"))
	if err != nil {
		respondBadRequest(c, "Invalid token ID", err.Error())
		return 0, false
	}
	return token, true
}

// caller resolves the acting principal, responding on failure
func (h *handler) caller(c *gin.Context) (domain.Principal, bool) {
	caller, err := middleware.Caller(c)
	if err != nil {
		respondBadRequest(c, "Cannot resolve acting principal", err.Error())
		return domain.NullPrincipal, false
	}
	return caller, true
}
