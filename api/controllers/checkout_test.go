package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	cartsvc "github.com/avaldez-dev/storefront-core/internal/cart"
	checkoutsvc "github.com/avaldez-dev/storefront-core/internal/checkout"
	"github.com/avaldez-dev/storefront-core/pkg/db/models"
	"github.com/avaldez-dev/storefront-core/pkg/enums"
	pkgerrors "github.com/avaldez-dev/storefront-core/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubCheckoutSvc struct {
	order    *models.Order
	err      error
	subject  cartsvc.Subject
	shipping checkoutsvc.ShippingForm
	payment  checkoutsvc.PaymentForm
	called   int
}

func (s *stubCheckoutSvc) Execute(ctx context.Context, subject cartsvc.Subject, shipping checkoutsvc.ShippingForm, payment checkoutsvc.PaymentForm) (*models.Order, error) {
	s.called++
	s.subject = subject
	s.shipping = shipping
	s.payment = payment
	return s.order, s.err
}

const checkoutBody = `{
	"shipping": {
		"full_name": "Avery Chen",
		"address": "14 Mill Lane",
		"city": "Portland",
		"postal_code": "97201"
	},
	"payment": {
		"card_number": "4242 4242 4242 4242",
		"expiry": "12/39",
		"cvv": "123"
	}
}`

func TestCheckoutCreatesOrder(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	svc := &stubCheckoutSvc{order: &models.Order{
		ID:     uuid.New(),
		UserID: userID,
		Status: enums.OrderStatusProcessing,
		Total:  decimal.NewFromInt(2500),
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody))
	req = withSession(withUser(req, userID), uuid.NewString())
	rec := httptest.NewRecorder()
	Checkout(svc, testLogger())(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if svc.called != 1 {
		t.Fatalf("execute called %d times, want 1", svc.called)
	}
	if svc.subject.UserID != userID {
		t.Fatalf("subject user = %s, want %s", svc.subject.UserID, userID)
	}
	if svc.shipping.FullName != "Avery Chen" {
		t.Fatalf("shipping name = %q", svc.shipping.FullName)
	}
	if svc.payment.Expiry != "12/39" {
		t.Fatalf("payment expiry = %q", svc.payment.Expiry)
	}
}

func TestCheckoutRequiresAuth(t *testing.T) {
	t.Parallel()

	svc := &stubCheckoutSvc{}
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody)), uuid.NewString())
	rec := httptest.NewRecorder()
	Checkout(svc, testLogger())(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if svc.called != 0 {
		t.Fatal("execute should not run for anonymous requests")
	}
}

func TestCheckoutRejectsIncompleteBody(t *testing.T) {
	t.Parallel()

	svc := &stubCheckoutSvc{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"shipping":{}}`))
	req = withUser(req, uuid.New())
	rec := httptest.NewRecorder()
	Checkout(svc, testLogger())(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if svc.called != 0 {
		t.Fatal("execute should not run on invalid payloads")
	}
}

func TestCheckoutSurfacesPartialOrder(t *testing.T) {
	t.Parallel()

	orderID := uuid.New()
	svc := &stubCheckoutSvc{err: pkgerrors.New(pkgerrors.CodePartialOrder, "order created without line items").
		WithDetails(map[string]any{"order_id": orderID})}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody))
	req = withUser(req, uuid.New())
	rec := httptest.NewRecorder()
	Checkout(svc, testLogger())(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
	envelope := decodeErrorBody(t, rec)
	if envelope.Error.Code != string(pkgerrors.CodePartialOrder) {
		t.Fatalf("error code = %q, want %q", envelope.Error.Code, pkgerrors.CodePartialOrder)
	}
	details, ok := envelope.Error.Details.(map[string]any)
	if !ok {
		t.Fatalf("details = %#v, want map", envelope.Error.Details)
	}
	if details["order_id"] != orderID.String() {
		t.Fatalf("order_id detail = %v, want %s", details["order_id"], orderID)
	}
}
