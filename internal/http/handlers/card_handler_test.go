package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cardvault/card-vault-backend/internal/domain"
	"github.com/cardvault/card-vault-backend/internal/http/middleware"
	"github.com/cardvault/card-vault-backend/internal/services"
)

//
// fakes
//

type fakeWithdraw struct {
	gotAPIKeyID string
	gotCategory string
	res         *services.WithdrawResult
	err         error
}

func (f *fakeWithdraw) Withdraw(ctx context.Context, apiKeyID, categoryID string) (*services.WithdrawResult, error) {
	f.gotAPIKeyID = apiKeyID
	f.gotCategory = categoryID
	return f.res, f.err
}

type fakeStatus struct {
	gotLongPoll bool
	tx          *domain.Transaction
	err         error
}

func (f *fakeStatus) GetStatus(ctx context.Context, transactionID string, longPoll bool) (*domain.Transaction, error) {
	f.gotLongPoll = longPoll
	return f.tx, f.err
}

type fakeInventory struct {
	cards []domain.Card
	total int64
	cats  []domain.Category
	err   error

	gotPage  int
	gotLimit int
}

func (f *fakeInventory) ListUnused(ctx context.Context, categoryID string, page, limit int) ([]domain.Card, int64, error) {
	f.gotPage, f.gotLimit = page, limit
	return f.cards, f.total, f.err
}

func (f *fakeInventory) Categories(ctx context.Context) ([]domain.Category, error) {
	return f.cats, f.err
}

// asCredential injects an authenticated credential the way the auth
// middleware would.
func asCredential(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("auth_credential", middleware.Credential{ID: id, Name: "test", RateLimitPerMinute: 100})
		c.Next()
	}
}

func newCardRouter(w *fakeWithdraw, s *fakeStatus, inv *fakeInventory) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(w, s, inv)
	r.Use(asCredential("key-1"))
	r.POST("/withdraw", h.Withdraw)
	r.GET("/status/:transactionId", h.GetStatus)
	r.GET("/status/:transactionId/wait", h.WaitStatus)
	r.GET("/cards", h.ListCards)
	r.GET("/cards/categories", h.ListCategories)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

//
// Withdraw
//

func TestWithdraw_Created(t *testing.T) {
	fw := &fakeWithdraw{res: &services.WithdrawResult{
		TransactionID: "tx-1", CardID: "card-9", Code: "gc-abc",
	}}
	r := newCardRouter(fw, &fakeStatus{}, &fakeInventory{})

	rec := do(r, http.MethodPost, "/withdraw", `{"category_id":"  cat-1  "}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp WithdrawResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TransactionID != "tx-1" || resp.CardID != "card-9" || resp.Code != "gc-abc" || resp.Status != domain.TxStatusCompleted {
		t.Fatalf("response unexpected: %+v", resp)
	}

	// The handler passes the credential and a trimmed category id through.
	if fw.gotAPIKeyID != "key-1" {
		t.Fatalf("credential id %q", fw.gotAPIKeyID)
	}
	if fw.gotCategory != "cat-1" {
		t.Fatalf("category not trimmed: %q", fw.gotCategory)
	}
}

func TestWithdraw_MissingBody(t *testing.T) {
	r := newCardRouter(&fakeWithdraw{}, &fakeStatus{}, &fakeInventory{})
	rec := do(r, http.MethodPost, "/withdraw", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ErrCodeInvalidParameter) {
		t.Fatalf("body %s", rec.Body.String())
	}
}

func TestWithdraw_ErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"invalid category", services.ErrInvalidCategory, http.StatusBadRequest, ErrCodeInvalidParameter},
		{"unknown category", services.ErrCategoryNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"exhausted", services.ErrNoAvailableCards, http.StatusNotFound, ErrCodeNoAvailableCards},
		{"other", context.DeadlineExceeded, http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newCardRouter(&fakeWithdraw{err: tc.err}, &fakeStatus{}, &fakeInventory{})
			rec := do(r, http.MethodPost, "/withdraw", `{"category_id":"cat-1"}`)
			if rec.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantCode)
			}
			if !strings.Contains(rec.Body.String(), tc.wantBody) {
				t.Fatalf("body %s missing code %q", rec.Body.String(), tc.wantBody)
			}
		})
	}
}

//
// Status
//

func TestGetStatus_InvalidUUID(t *testing.T) {
	r := newCardRouter(&fakeWithdraw{}, &fakeStatus{}, &fakeInventory{})
	rec := do(r, http.MethodGet, "/status/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetStatus_NotFound(t *testing.T) {
	r := newCardRouter(&fakeWithdraw{}, &fakeStatus{err: services.ErrTransactionNotFound}, &fakeInventory{})
	rec := do(r, http.MethodGet, "/status/"+uuid.NewString(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ErrCodeNotFound) {
		t.Fatalf("body %s", rec.Body.String())
	}
}

func TestGetStatus_OK(t *testing.T) {
	fs := &fakeStatus{tx: &domain.Transaction{ID: "tx-1", Status: domain.TxStatusCompleted}}
	r := newCardRouter(&fakeWithdraw{}, fs, &fakeInventory{})

	rec := do(r, http.MethodGet, "/status/"+uuid.NewString(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if fs.gotLongPoll {
		t.Fatalf("plain status must not long-poll")
	}
}

func TestWaitStatus_LongPolls(t *testing.T) {
	fs := &fakeStatus{tx: &domain.Transaction{ID: "tx-1", Status: domain.TxStatusPending}}
	r := newCardRouter(&fakeWithdraw{}, fs, &fakeInventory{})

	rec := do(r, http.MethodGet, "/status/"+uuid.NewString()+"/wait", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !fs.gotLongPoll {
		t.Fatalf("wait variant must long-poll")
	}
}

//
// Listing
//

func TestListCards_PaginationClamping(t *testing.T) {
	inv := &fakeInventory{cards: []domain.Card{}, total: 0}
	r := newCardRouter(&fakeWithdraw{}, &fakeStatus{}, inv)

	rec := do(r, http.MethodGet, "/cards?page=0&page_size=500", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if inv.gotPage != 1 {
		t.Fatalf("page not clamped to 1, got %d", inv.gotPage)
	}
	if inv.gotLimit != 100 {
		t.Fatalf("page_size not capped at 100, got %d", inv.gotLimit)
	}
}

func TestListCards_PaginationMetadata(t *testing.T) {
	inv := &fakeInventory{
		cards: []domain.Card{{ID: "c1", Code: "x"}},
		total: 41,
	}
	r := newCardRouter(&fakeWithdraw{}, &fakeStatus{}, inv)

	rec := do(r, http.MethodGet, "/cards?page=2&page_size=20", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp ListCardsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	p := resp.Pagination
	if p.Page != 2 || p.PageSize != 20 || p.Total != 41 || p.TotalPages != 3 || !p.HasNext {
		t.Fatalf("pagination unexpected: %+v", p)
	}
}

func TestListCategories(t *testing.T) {
	inv := &fakeInventory{cats: []domain.Category{{ID: "cat-1", Name: "gifts"}}}
	r := newCardRouter(&fakeWithdraw{}, &fakeStatus{}, inv)

	rec := do(r, http.MethodGet, "/cards/categories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var cats []domain.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &cats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "gifts" {
		t.Fatalf("categories unexpected: %+v", cats)
	}
}
