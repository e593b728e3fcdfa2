package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	contractapp "github.com/mangodeliveries/backend/internal/application/contract"
	"github.com/mangodeliveries/backend/internal/domain/contract"
	"github.com/mangodeliveries/backend/internal/domain/identity"
	"github.com/mangodeliveries/backend/internal/domain/shared"
	"github.com/mangodeliveries/backend/internal/interfaces/http/dto"
	"github.com/mangodeliveries/backend/internal/interfaces/http/middleware"
)

// ContractLedger exposes contract submission, listing and mutation
type ContractLedger interface {
	Create(ctx context.Context, actor *identity.Character, req contractapp.SubmitRequest) (*contract.Contract, error)
	ApplyBatch(ctx context.Context, actor *identity.Character, ops []contractapp.Operation) ([]contractapp.OperationResult, error)
	ListPending(ctx context.Context, ownerID int64) ([]contract.Contract, error)
	ListOngoing(ctx context.Context, ownerID int64) ([]contract.Contract, error)
	ListFinalized(ctx context.Context, ownerID int64) ([]contract.Contract, error)
	History(ctx context.Context, contractID int64) ([]contract.AuditEntry, error)
}

// ContractHandler serves the contract board and its mutations
type ContractHandler struct {
	BaseHandler
	ledger ContractLedger
}

// NewContractHandler creates a ContractHandler
func NewContractHandler(ledger ContractLedger) *ContractHandler {
	return &ContractHandler{ledger: ledger}
}

// RegisterRoutes registers the contract routes
func (h *ContractHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/submit", h.Submit)
	rg.GET("/history", h.History)
	rg.GET("/contracts", h.Contracts)
	rg.POST("/contracts/submit", h.BatchSubmit)
	rg.GET("/contracts/:id/history", h.AuditHistory)
}

// submitRequest is the contract submission body
type submitRequest struct {
	Link        string `json:"link" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	Appraisal   string `json:"appraisal" binding:"required"`
	Multiplier  int    `json:"multiplier"`
}

// Submit opens a new pending contract from an appraisal
func (h *ContractHandler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Alert(c, http.StatusBadRequest, middleware.ValidationMessage(err, "Malformed contract submission."))
		return
	}
	if req.Multiplier == 0 {
		req.Multiplier = 1
	}

	_, err := h.ledger.Create(c.Request.Context(), middleware.CharacterFrom(c), contractapp.SubmitRequest{
		Link:          req.Link,
		Destination:   req.Destination,
		AppraisalCode: req.Appraisal,
		Multiplier:    req.Multiplier,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Alert(c, http.StatusOK, "Contract submitted. Click here to see it.")
}

// History lists the caller's finalized contracts
func (h *ContractHandler) History(c *gin.Context) {
	character := middleware.CharacterFrom(c)
	if character == nil {
		h.Alert(c, http.StatusForbidden, "You need to login before submitting contracts.")
		return
	}

	finalized, err := h.ledger.ListFinalized(c.Request.Context(), character.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewContractViews(finalized))
}

// Contracts returns the full contract board. Staff see every contract;
// members only their own.
func (h *ContractHandler) Contracts(c *gin.Context) {
	character := middleware.CharacterFrom(c)
	if character == nil {
		h.Alert(c, http.StatusForbidden, "You need to login before submitting contracts.")
		return
	}

	staff := character.Director || character.Freighter
	var ownerID int64
	if !staff {
		ownerID = character.ID
	}

	ctx := c.Request.Context()
	pending, err := h.ledger.ListPending(ctx, ownerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	ongoing, err := h.ledger.ListOngoing(ctx, ownerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	finalized, err := h.ledger.ListFinalized(ctx, ownerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"character":          dto.NewCharacterView(character),
		"pendingContracts":   dto.NewContractViews(pending),
		"ongoingContracts":   dto.NewContractViews(ongoing),
		"finalizedContracts": dto.NewContractViews(finalized),
		"director":           character.Director,
		"freighter":          staff,
		"title":              "Contracts - Mango Deliveries",
		"active":             "Contracts",
	})
}

// batchOperation is one mutation in a batch submission
type batchOperation struct {
	ContractID      int64  `json:"contractId"`
	Kind            string `json:"kind"`
	ExpectedVersion int    `json:"expectedVersion"`
	Tax             string `json:"tax,omitempty"`
}

type batchRequest struct {
	Operations []batchOperation `json:"operations"`
}

// operationResult reports one batch operation outcome to the client
type operationResult struct {
	ContractID int64  `json:"contractId"`
	Kind       string `json:"kind"`
	OK         bool   `json:"ok"`
	Alert      string `json:"alert,omitempty"`
}

// BatchSubmit applies a batch of contract mutations. Operations are
// independent: a conflict on one contract never rolls back the others,
// and the response carries every per-operation outcome. The top-level
// status stays wire-compatible with the board UI, which expects 403 and
// the first conflicting contract in the alert.
func (h *ContractHandler) BatchSubmit(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Alert(c, http.StatusBadRequest, "Malformed batch submission.")
		return
	}

	ops := make([]contractapp.Operation, 0, len(req.Operations))
	for _, op := range req.Operations {
		tax := decimal.Zero
		if op.Tax != "" {
			parsed, err := decimal.NewFromString(op.Tax)
			if err != nil {
				h.Alert(c, http.StatusBadRequest, "Malformed tax amount.")
				return
			}
			tax = parsed
		}
		ops = append(ops, contractapp.Operation{
			ContractID:      op.ContractID,
			Kind:            contractapp.OperationKind(op.Kind),
			ExpectedVersion: op.ExpectedVersion,
			TaxAmount:       tax,
		})
	}

	results, err := h.ledger.ApplyBatch(c.Request.Context(), middleware.CharacterFrom(c), ops)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	views := make([]operationResult, 0, len(results))
	var conflict *shared.DomainError
	for _, r := range results {
		view := operationResult{ContractID: r.ContractID, Kind: string(r.Kind), OK: r.Err == nil}
		if r.Err != nil {
			view.Alert = r.Err.Error()
			if conflict == nil && shared.IsCode(r.Err, "CONCURRENT_MODIFICATION") {
				conflict, _ = r.Err.(*shared.DomainError)
			}
		}
		views = append(views, view)
	}

	if conflict != nil {
		c.JSON(http.StatusForbidden, gin.H{
			"alert":   conflict.Message,
			"results": views,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": views})
}

// AuditHistory returns the append-only audit trail for one contract
func (h *ContractHandler) AuditHistory(c *gin.Context) {
	character := middleware.CharacterFrom(c)
	if character == nil || (!character.Director && !character.Freighter) {
		h.Alert(c, http.StatusForbidden, "You aren't allowed to view contract history.")
		return
	}

	contractID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.Alert(c, http.StatusBadRequest, "Malformed contract id.")
		return
	}

	entries, err := h.ledger.History(c.Request.Context(), contractID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAuditEntryViews(entries))
}
