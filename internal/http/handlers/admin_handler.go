// Administrative HTTP handlers.
//
// This file exposes the operator-facing endpoints used to load and inspect
// inventory, manage credentials, and tune the instance:
//   - POST /generate/keys     (mint random card codes, not persisted)
//   - POST /generate/write    (bulk-insert codes as unused cards)
//   - POST /generate/check    (report which codes already exist)
//   - GET  /stats             (inventory counts and per-category breakdown)
//   - GET  /settings          (instance settings)
//   - PUT  /settings          (update announcement)
//   - POST /admin/api-keys    (issue a credential; secret shown once)
//   - GET  /health            (liveness + database reachability)
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cardvault/card-vault-backend/internal/domain"
	"github.com/cardvault/card-vault-backend/internal/repo"
	"github.com/cardvault/card-vault-backend/internal/services"
)

// AdminService defines the operator-facing operations consumed by HTTP
// handlers: code generation, bulk loading, stats, and settings.
type AdminService interface {
	GenerateCodes(count int, prefix string) ([]string, error)
	WriteCodes(ctx context.Context, codes []string, categoryID *string) (*services.WriteResult, error)
	CheckCodes(ctx context.Context, codes []string) ([]string, error)
	Stats(ctx context.Context) (*repo.CardStats, error)
	Settings(ctx context.Context) (*domain.Setting, error)
	UpdateAnnouncement(ctx context.Context, announcement *string) (*domain.Setting, error)
}

// KeyIssuer mints new API credentials.
type KeyIssuer interface {
	Issue(ctx context.Context, name string, platform *string, rateLimitPerMinute int) (*services.IssuedKey, error)
}

// AdminHandlers groups the administrative endpoints.
type AdminHandlers struct {
	svc    AdminService
	keys   KeyIssuer
	db     *gorm.DB
	uptime time.Time
}

// NewAdminHandlers constructs an AdminHandlers. db is used for the health
// probe only.
func NewAdminHandlers(svc AdminService, keys KeyIssuer, db *gorm.DB) *AdminHandlers {
	return &AdminHandlers{svc: svc, keys: keys, db: db, uptime: time.Now()}
}

//
// DTOs
//

// GenerateKeysRequest asks for count random codes with an optional prefix.
type GenerateKeysRequest struct {
	Count  int    `json:"count" binding:"required" example:"100"`
	Prefix string `json:"prefix" example:"gc-"`
}

// GenerateKeysResponse returns the minted codes. They are not persisted
// until written via /generate/write.
type GenerateKeysResponse struct {
	Codes []string `json:"codes"`
}

// WriteCodesRequest bulk-loads codes as unused cards.
type WriteCodesRequest struct {
	Codes      []string `json:"codes" binding:"required"`
	CategoryID *string  `json:"category_id,omitempty"`
}

// CheckCodesRequest asks which of the given codes already exist.
type CheckCodesRequest struct {
	Codes []string `json:"codes" binding:"required"`
}

// CheckCodesResponse lists the subset of submitted codes already present.
type CheckCodesResponse struct {
	Existing []string `json:"existing"`
}

// UpdateSettingsRequest updates instance settings. A null announcement
// clears it.
type UpdateSettingsRequest struct {
	Announcement *string `json:"announcement"`
}

// IssueKeyRequest mints a new API credential.
type IssueKeyRequest struct {
	Name               string  `json:"name" binding:"required" example:"storefront"`
	Platform           *string `json:"platform,omitempty" example:"shopify"`
	RateLimitPerMinute int     `json:"rate_limit_per_minute" example:"100"`
}

// IssueKeyResponse carries the one-time secret. Only its hash is stored;
// the secret cannot be recovered later.
type IssueKeyResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Secret             string `json:"secret"`
	RateLimitPerMinute int    `json:"rate_limit_per_minute"`
}

// HealthResponse reports process liveness and database reachability.
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"ok"`
	UptimeS  int64  `json:"uptime_seconds"`
}

//
// Handlers
//

// GenerateKeys godoc
// @ID          generateCodes
// @Summary     Generate random card codes
// @Description Mints random card codes (not persisted). Use /generate/write to store them.
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
//
// @Param       body  body  handlers.GenerateKeysRequest  true  "Generation payload"
//
// @Success     200  {object}  handlers.GenerateKeysResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid parameter"
// @Router      /generate/keys [post]
func (h *AdminHandlers) GenerateKeys(c *gin.Context) {
	var req GenerateKeysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidParameter, "count is required")
		return
	}

	codes, err := h.svc.GenerateCodes(req.Count, req.Prefix)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidGenerateCount):
			fail(c, http.StatusBadRequest, ErrCodeInvalidParameter, "count must be between 1 and 1000")
		case errors.Is(err, services.ErrInvalidPrefix):
			fail(c, http.StatusBadRequest, ErrCodeInvalidParameter, "prefix too long")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "generation failed")
		}
		return
	}
	ok(c, http.StatusOK, GenerateKeysResponse{Codes: codes})
}

// WriteCodes godoc
// @ID          writeCodes
// @Summary     Bulk-insert card codes
// @Description Stores codes as unused cards, optionally assigned to a category. Codes already present count as duplicates instead of failing the batch.
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
//
// @Param       body  body  handlers.WriteCodesRequest  true  "Write payload"
//
// @Success     200  {object}  services.WriteResult
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid parameter"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /generate/write [post]
func (h *AdminHandlers) WriteCodes(c *gin.Context) {
	var req WriteCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidParameter, "codes is required")
		return
	}

	res, err := h.svc.WriteCodes(c.Request.Context(), req.Codes, req.CategoryID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCodes) {
			fail(c, http.StatusBadRequest, ErrCodeInvalidParameter, "codes must be 1..1000 non-empty strings")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "write failed")
		return
	}
	ok(c, http.StatusOK, res)
}

// CheckCodes godoc
// @ID          checkCodes
// @Summary     Check codes for existence
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
//
// @Param       body  body  handlers.CheckCodesRequest  true  "Check payload"
//
// @Success     200  {object}  handlers.CheckCodesResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid parameter"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /generate/check [post]
func (h *AdminHandlers) CheckCodes(c *gin.Context) {
	var req CheckCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidParameter, "codes is required")
		return
	}

	existing, err := h.svc.CheckCodes(c.Request.Context(), req.Codes)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCodes) {
			fail(c, http.StatusBadRequest, ErrCodeInvalidParameter, "codes must be 1..1000 non-empty strings")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "check failed")
		return
	}
	ok(c, http.StatusOK, CheckCodesResponse{Existing: existing})
}

// Stats godoc
// @ID          cardStats
// @Summary     Inventory statistics
// @Description Returns total/used/unused counts plus a per-category breakdown.
// @Tags        Admin
// @Produce     json
// @Security    ApiKeyAuth
//
// @Success     200  {object}  repo.CardStats
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /stats [get]
func (h *AdminHandlers) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "stats failed")
		return
	}
	ok(c, http.StatusOK, stats)
}

// GetSettings godoc
// @ID          getSettings
// @Summary     Read instance settings
// @Tags        Admin
// @Produce     json
// @Security    ApiKeyAuth
//
// @Success     200  {object}  domain.Setting
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /settings [get]
func (h *AdminHandlers) GetSettings(c *gin.Context) {
	s, err := h.svc.Settings(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "settings lookup failed")
		return
	}
	ok(c, http.StatusOK, s)
}

// UpdateSettings godoc
// @ID          updateSettings
// @Summary     Update instance settings
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
//
// @Param       body  body  handlers.UpdateSettingsRequest  true  "Settings payload"
//
// @Success     200  {object}  domain.Setting
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid parameter"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /settings [put]
func (h *AdminHandlers) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidParameter, "invalid JSON body")
		return
	}

	s, err := h.svc.UpdateAnnouncement(c.Request.Context(), req.Announcement)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "settings update failed")
		return
	}
	ok(c, http.StatusOK, s)
}

// IssueAPIKey godoc
// @ID          issueAPIKey
// @Summary     Issue a new API credential
// @Description Mints a credential and returns the secret once; only its hash is stored.
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
//
// @Param       body  body  handlers.IssueKeyRequest  true  "Credential payload"
//
// @Success     201  {object}  handlers.IssueKeyResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid parameter"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/api-keys [post]
func (h *AdminHandlers) IssueAPIKey(c *gin.Context) {
	var req IssueKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		fail(c, http.StatusBadRequest, ErrCodeInvalidParameter, "name is required")
		return
	}

	issued, err := h.keys.Issue(c.Request.Context(), strings.TrimSpace(req.Name), req.Platform, req.RateLimitPerMinute)
	if err != nil {
		if errors.Is(err, services.ErrInvalidKeyName) {
			fail(c, http.StatusBadRequest, ErrCodeInvalidParameter, "name is required")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "key issuance failed")
		return
	}
	ok(c, http.StatusCreated, IssueKeyResponse{
		ID:                 issued.Key.ID,
		Name:               issued.Key.Name,
		Secret:             issued.Secret,
		RateLimitPerMinute: issued.Key.RateLimitPerMinute,
	})
}

// Health godoc
// @ID          health
// @Summary     Liveness and database probe
// @Tags        Admin
// @Produce     json
//
// @Success     200  {object}  handlers.HealthResponse
// @Failure     503  {object}  handlers.HealthResponse  "Database unreachable"
// @Router      /health [get]
func (h *AdminHandlers) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Database: "ok",
		UptimeS:  int64(time.Since(h.uptime).Seconds()),
	}

	sqlDB, err := h.db.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		resp.Status = "degraded"
		resp.Database = "unreachable"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	ok(c, http.StatusOK, resp)
}
