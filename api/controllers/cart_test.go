package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avaldez-dev/storefront-core/api/middleware"
	cartsvc "github.com/avaldez-dev/storefront-core/internal/cart"
	"github.com/avaldez-dev/storefront-core/pkg/db/models"
	"github.com/avaldez-dev/storefront-core/pkg/enums"
	"github.com/avaldez-dev/storefront-core/pkg/logger"
	"github.com/avaldez-dev/storefront-core/pkg/types"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "api-test", Output: io.Discard})
}

type stubCartSvc struct {
	view    *cartsvc.View
	err     error
	subject cartsvc.Subject
	product uuid.UUID
	qty     int
	calls   []string
}

func (s *stubCartSvc) View(ctx context.Context, subject cartsvc.Subject) (*cartsvc.View, error) {
	s.calls = append(s.calls, "view")
	s.subject = subject
	return s.view, s.err
}

func (s *stubCartSvc) AddItem(ctx context.Context, subject cartsvc.Subject, productID uuid.UUID, qty int) (*cartsvc.View, error) {
	s.calls = append(s.calls, "add")
	s.subject = subject
	s.product = productID
	s.qty = qty
	return s.view, s.err
}

func (s *stubCartSvc) SetQuantity(ctx context.Context, subject cartsvc.Subject, productID uuid.UUID, qty int) (*cartsvc.View, error) {
	s.calls = append(s.calls, "set")
	s.subject = subject
	s.product = productID
	s.qty = qty
	return s.view, s.err
}

func (s *stubCartSvc) RemoveItem(ctx context.Context, subject cartsvc.Subject, productID uuid.UUID) (*cartsvc.View, error) {
	s.calls = append(s.calls, "remove")
	s.subject = subject
	s.product = productID
	return s.view, s.err
}

func (s *stubCartSvc) Clear(ctx context.Context, subject cartsvc.Subject) (*cartsvc.View, error) {
	s.calls = append(s.calls, "clear")
	s.subject = subject
	return s.view, s.err
}

func (s *stubCartSvc) UserSignedIn(ctx context.Context, user *models.User, cartSessionID string) error {
	s.calls = append(s.calls, "signin")
	return s.err
}

func sampleView(subject cartsvc.Subject) *cartsvc.View {
	return &cartsvc.View{
		Subject: subject,
		Lines: []cartsvc.Line{{
			ID:        uuid.New(),
			ProductID: uuid.New(),
			Quantity:  2,
			Title:     "Walnut Desk Organizer",
			Price:     decimal.NewFromInt(45),
		}},
		Total:      decimal.NewFromInt(90),
		Count:      2,
		SyncStatus: enums.SyncStatusIdle,
	}
}

func withSession(r *http.Request, sessionID string) *http.Request {
	return r.WithContext(middleware.WithCartSession(r.Context(), sessionID))
}

func withUser(r *http.Request, userID uuid.UUID) *http.Request {
	return r.WithContext(middleware.WithUserID(r.Context(), userID.String()))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorEnvelope {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return envelope
}

func TestCartViewAnonymousSubject(t *testing.T) {
	t.Parallel()

	sessionID := uuid.NewString()
	svc := &stubCartSvc{view: sampleView(cartsvc.Subject{SessionID: sessionID})}

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), sessionID)
	rec := httptest.NewRecorder()
	CartView(svc, testLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if svc.subject.Authenticated() {
		t.Fatal("expected an anonymous subject")
	}
	if svc.subject.SessionID != sessionID {
		t.Fatalf("session id = %q, want %q", svc.subject.SessionID, sessionID)
	}
}

func TestCartViewPrefersAuthenticatedSubject(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	svc := &stubCartSvc{view: sampleView(cartsvc.Subject{UserID: userID})}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req = withSession(withUser(req, userID), uuid.NewString())
	rec := httptest.NewRecorder()
	CartView(svc, testLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if svc.subject.UserID != userID {
		t.Fatalf("subject user = %s, want %s", svc.subject.UserID, userID)
	}
}

func TestCartViewWithoutSessionRejected(t *testing.T) {
	t.Parallel()

	svc := &stubCartSvc{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	CartView(svc, testLogger())(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if len(svc.calls) != 0 {
		t.Fatalf("service should not be called, got %v", svc.calls)
	}
}

func TestCartAddItemDefaultsQuantity(t *testing.T) {
	t.Parallel()

	sessionID := uuid.NewString()
	productID := uuid.New()
	svc := &stubCartSvc{view: sampleView(cartsvc.Subject{SessionID: sessionID})}

	body := `{"product_id":"` + productID.String() + `"}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), sessionID)
	rec := httptest.NewRecorder()
	CartAddItem(svc, testLogger())(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if svc.product != productID {
		t.Fatalf("product = %s, want %s", svc.product, productID)
	}
	if svc.qty != 1 {
		t.Fatalf("quantity = %d, want 1", svc.qty)
	}
}

func TestCartAddItemRejectsBadProductID(t *testing.T) {
	t.Parallel()

	svc := &stubCartSvc{}
	body := `{"product_id":"not-a-uuid"}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), uuid.NewString())
	rec := httptest.NewRecorder()
	CartAddItem(svc, testLogger())(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if len(svc.calls) != 0 {
		t.Fatalf("service should not be called, got %v", svc.calls)
	}
}

func TestCartSetQuantityZeroForwarded(t *testing.T) {
	t.Parallel()

	sessionID := uuid.NewString()
	productID := uuid.New()
	svc := &stubCartSvc{view: sampleView(cartsvc.Subject{SessionID: sessionID})}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/"+productID.String(), strings.NewReader(`{"quantity":0}`))
	req = withURLParam(withSession(req, sessionID), "productId", productID.String())
	rec := httptest.NewRecorder()
	CartSetQuantity(svc, testLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if svc.qty != 0 {
		t.Fatalf("quantity = %d, want 0", svc.qty)
	}
	if svc.product != productID {
		t.Fatalf("product = %s, want %s", svc.product, productID)
	}
}

func TestCartSetQuantityRequiresBody(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	svc := &stubCartSvc{}
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/"+productID.String(), strings.NewReader(`{}`))
	req = withURLParam(withSession(req, uuid.NewString()), "productId", productID.String())
	rec := httptest.NewRecorder()
	CartSetQuantity(svc, testLogger())(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCartRemoveItem(t *testing.T) {
	t.Parallel()

	sessionID := uuid.NewString()
	productID := uuid.New()
	svc := &stubCartSvc{view: sampleView(cartsvc.Subject{SessionID: sessionID})}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/"+productID.String(), nil)
	req = withURLParam(withSession(req, sessionID), "productId", productID.String())
	rec := httptest.NewRecorder()
	CartRemoveItem(svc, testLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := svc.calls[len(svc.calls)-1]; got != "remove" {
		t.Fatalf("last call = %q, want remove", got)
	}
}

func TestCartClear(t *testing.T) {
	t.Parallel()

	sessionID := uuid.NewString()
	svc := &stubCartSvc{view: &cartsvc.View{
		Subject:    cartsvc.Subject{SessionID: sessionID},
		Total:      decimal.Zero,
		SyncStatus: enums.SyncStatusIdle,
	}}

	req := withSession(httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil), sessionID)
	rec := httptest.NewRecorder()
	CartClear(svc, testLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := svc.calls[len(svc.calls)-1]; got != "clear" {
		t.Fatalf("last call = %q, want clear", got)
	}
}

func TestCartNilServiceGuard(t *testing.T) {
	t.Parallel()

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), uuid.NewString())
	rec := httptest.NewRecorder()
	CartView(nil, testLogger())(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
