// Card HTTP handlers.
//
// This file exposes the core REST endpoints of the issuing API:
//   - POST /withdraw                   (atomically claim one unused card)
//   - GET  /status/{transactionId}     (resolve a withdrawal outcome)
//   - GET  /status/{transactionId}/wait (long-poll variant)
//   - GET  /cards                      (list unused inventory, paginated)
//   - GET  /cards/categories           (list categories)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cardvault/card-vault-backend/internal/domain"
	"github.com/cardvault/card-vault-backend/internal/http/middleware"
	"github.com/cardvault/card-vault-backend/internal/services"
	"github.com/cardvault/card-vault-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// WithdrawService defines the allocation operation consumed by HTTP handlers.
//
// Implementations must be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type WithdrawService interface {
	// Withdraw claims one unused card in the category for the credential.
	Withdraw(ctx context.Context, apiKeyID, categoryID string) (*services.WithdrawResult, error)
}

// StatusService resolves withdrawal transactions, optionally long-polling
// until the transaction reaches a terminal state.
type StatusService interface {
	GetStatus(ctx context.Context, transactionID string, longPoll bool) (*domain.Transaction, error)
}

// InventoryService exposes read-side card and category queries.
type InventoryService interface {
	ListUnused(ctx context.Context, categoryID string, page, limit int) ([]domain.Card, int64, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

//
// Handler wiring
//

// Handlers groups the card-facing HTTP endpoints. It depends on abstract
// service interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	withdrawSvc  WithdrawService
	statusSvc    StatusService
	inventorySvc InventoryService
}

// New constructs a Handlers instance bound to the given services.
func New(withdrawSvc WithdrawService, statusSvc StatusService, inventorySvc InventoryService) *Handlers {
	return &Handlers{withdrawSvc: withdrawSvc, statusSvc: statusSvc, inventorySvc: inventorySvc}
}

// credentialID extracts the authenticated API key id from the Gin context
// (set by the auth middleware). Routes using these handlers must sit
// behind RequireAPIKey, so an empty result indicates a wiring bug.
func credentialID(c *gin.Context) string {
	if cred, ok := middleware.CredentialFrom(c); ok {
		return cred.ID
	}
	return ""
}

//
// DTOs
//

// WithdrawRequest is the JSON payload for claiming a card.
type WithdrawRequest struct {
	// CategoryID selects the inventory pool to draw from.
	CategoryID string `json:"category_id" binding:"required" example:"a2f1c0de-9b7e-4c11-b1fa-52cf031c1f01"`
}

// WithdrawResponse is returned on a successful claim.
type WithdrawResponse struct {
	TransactionID string `json:"transaction_id" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	CardID        string `json:"card_id"        example:"7f0d2f0a-3d49-4f3e-9f2b-6a1a53dd10b2"`
	Code          string `json:"code"           example:"gc-x7k2m9qwerty"`
	Status        string `json:"status"         example:"completed"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListCardsResponse wraps a page of unused cards and pagination information.
type ListCardsResponse struct {
	Cards      []domain.Card `json:"cards"`
	Pagination Pagination    `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.ClampInt(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

//
// Handlers
//

// Withdraw godoc
// @ID          withdrawCard
// @Summary     Withdraw one card
// @Description Atomically claims one unused card in the category, marks it used, and records a completed transaction.
// @Tags        Cards
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
//
// @Param       Idempotency-Key  header  string  false "Client retry token (validated, not deduplicated)"
// @Param       body             body    handlers.WithdrawRequest  true  "Withdraw payload"
//
// @Success     201  {object}  handlers.WithdrawResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid parameter"
// @Failure     404  {object}  handlers.ErrorResponse  "Category unknown or no cards left"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limit exceeded"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /withdraw [post]
func (h *Handlers) Withdraw(c *gin.Context) {
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidParameter, "category_id is required")
		return
	}

	res, err := h.withdrawSvc.Withdraw(c.Request.Context(), credentialID(c), strings.TrimSpace(req.CategoryID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCategory):
			fail(c, http.StatusBadRequest, ErrCodeInvalidParameter, "category_id is required")
		case errors.Is(err, services.ErrCategoryNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "category not found")
		case errors.Is(err, services.ErrNoAvailableCards):
			fail(c, http.StatusNotFound, ErrCodeNoAvailableCards, "no unused cards remain in this category")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "withdrawal failed")
		}
		return
	}

	middleware.RecordCardWithdrawn(req.CategoryID)
	ok(c, http.StatusCreated, WithdrawResponse{
		TransactionID: res.TransactionID,
		CardID:        res.CardID,
		Code:          res.Code,
		Status:        domain.TxStatusCompleted,
	})
}

// GetStatus godoc
// @ID          getTransactionStatus
// @Summary     Resolve a withdrawal transaction
// @Description Returns the current state of a withdrawal transaction.
// @Tags        Cards
// @Produce     json
// @Security    ApiKeyAuth
//
// @Param       transactionId  path  string  true  "Transaction ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.Transaction
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid parameter"
// @Failure     404  {object}  handlers.ErrorResponse  "Transaction not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /status/{transactionId} [get]
func (h *Handlers) GetStatus(c *gin.Context) {
	h.resolveStatus(c, false)
}

// WaitStatus godoc
// @ID          waitTransactionStatus
// @Summary     Long-poll a withdrawal transaction
// @Description Like GetStatus, but holds the request open (polling every few seconds, bounded) until the transaction reaches a terminal state or the wait window expires. The last observed state is returned either way.
// @Tags        Cards
// @Produce     json
// @Security    ApiKeyAuth
//
// @Param       transactionId  path  string  true  "Transaction ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.Transaction
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid parameter"
// @Failure     404  {object}  handlers.ErrorResponse  "Transaction not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /status/{transactionId}/wait [get]
func (h *Handlers) WaitStatus(c *gin.Context) {
	h.resolveStatus(c, true)
}

func (h *Handlers) resolveStatus(c *gin.Context, longPoll bool) {
	id := c.Param("transactionId")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidParameter, "transaction id must be a UUID")
		return
	}

	tx, err := h.statusSvc.GetStatus(c.Request.Context(), id, longPoll)
	if err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "transaction not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "status lookup failed")
		return
	}
	ok(c, http.StatusOK, tx)
}

// ListCards godoc
// @ID          listCards
// @Summary     List unused cards (paginated)
// @Description Returns a page of unused cards, optionally filtered by category.
// @Tags        Cards
// @Produce     json
// @Security    ApiKeyAuth
//
// @Param       category_id  query  string  false "Filter by category"
// @Param       page         query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size    query  int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListCardsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /cards [get]
func (h *Handlers) ListCards(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.inventorySvc.ListUnused(c.Request.Context(), c.Query("category_id"), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "card listing failed")
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListCardsResponse{
		Cards: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// ListCategories godoc
// @ID          listCategories
// @Summary     List card categories
// @Tags        Cards
// @Produce     json
// @Security    ApiKeyAuth
//
// @Success     200  {array}   domain.Category
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /cards/categories [get]
func (h *Handlers) ListCategories(c *gin.Context) {
	cats, err := h.inventorySvc.Categories(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "category listing failed")
		return
	}
	ok(c, http.StatusOK, cats)
}
