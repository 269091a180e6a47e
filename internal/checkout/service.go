// Package checkout turns the current cart into a persisted order. The order
// row and its line items are written as two separate calls against stores
// that only offer per-collection atomicity, so the window between them is a
// named failure mode rather than a hidden one.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/avaldez-dev/storefront-core/internal/cart"
	"github.com/avaldez-dev/storefront-core/pkg/db/models"
	"github.com/avaldez-dev/storefront-core/pkg/enums"
	pkgerrors "github.com/avaldez-dev/storefront-core/pkg/errors"
	"github.com/avaldez-dev/storefront-core/pkg/logger"
	"github.com/google/uuid"
)

const (
	minCardDigits = 13
	maxCardDigits = 19
	cvvDigits     = 3
)

// ShippingForm is the address snapshot captured at checkout.
type ShippingForm struct {
	FullName   string
	Address    string
	City       string
	PostalCode string
	Country    string
}

// PaymentForm gates on shape only; no real payment data is transmitted or
// stored anywhere.
type PaymentForm struct {
	CardNumber string
	Expiry     string // MM/YY
	CVV        string
}

type cartAccessor interface {
	View(ctx context.Context, subject cart.Subject) (*cart.View, error)
	Clear(ctx context.Context, subject cart.Subject) (*cart.View, error)
}

type orderWriter interface {
	Create(ctx context.Context, order *models.Order) error
	CreateLines(ctx context.Context, lines []models.OrderLine) error
}

// Service executes checkouts. Retrying a failed checkout creates a new
// order; there is no idempotency token deduplicating attempts.
type Service interface {
	Execute(ctx context.Context, subject cart.Subject, shipping ShippingForm, payment PaymentForm) (*models.Order, error)
}

type service struct {
	carts  cartAccessor
	orders orderWriter
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds the checkout orchestrator.
func NewService(carts cartAccessor, orders orderWriter, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart accessor required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order writer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		carts:  carts,
		orders: orders,
		logg:   logg,
		now:    time.Now,
	}, nil
}

// Execute validates the cart and forms, writes the order row, then its
// lines, and clears the cart only after both writes confirmed. A line write
// failure after the order row landed leaves the order in processing with
// zero lines and returns a partial-order error; the cart is left intact so
// the shopper can retry (which creates a new order).
func (s *service) Execute(ctx context.Context, subject cart.Subject, shipping ShippingForm, payment PaymentForm) (*models.Order, error) {
	if !subject.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout requires a signed-in account")
	}
	if err := validateShipping(shipping); err != nil {
		return nil, err
	}
	if err := validatePayment(payment, s.now().UTC()); err != nil {
		return nil, err
	}

	view, err := s.carts.View(ctx, subject)
	if err != nil {
		return nil, err
	}
	if len(view.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          subject.UserID,
		Status:          enums.OrderStatusProcessing,
		Total:           view.Total,
		ShippingAddress: shipping.concatenated(),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	lines := make([]models.OrderLine, 0, len(view.Lines))
	for _, line := range view.Lines {
		lines = append(lines, models.OrderLine{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			// Price is a value copy frozen at order time; later catalog
			// price changes must not reach this row.
			Price: line.Price,
		})
	}
	if err := s.orders.CreateLines(ctx, lines); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePartialOrder, err, "order created without line items").
			WithDetails(map[string]any{"order_id": order.ID})
	}
	order.Lines = lines

	if _, err := s.carts.Clear(ctx, subject); err != nil {
		// The order stands; a stale cart is recoverable, a lost order is not.
		s.logg.Error(ctx, "failed to clear cart after checkout", err)
	}
	return order, nil
}

func validateShipping(form ShippingForm) error {
	missing := []string{}
	for _, field := range []struct {
		name, value string
	}{
		{"full_name", form.FullName},
		{"address", form.Address},
		{"city", form.City},
		{"postal_code", form.PostalCode},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required shipping fields").
			WithDetails(map[string]any{"fields": missing})
	}
	return nil
}

func validatePayment(form PaymentForm, now time.Time) error {
	digits := digitsOf(form.CardNumber)
	if len(digits) < minCardDigits || len(digits) > maxCardDigits {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("card number must have %d to %d digits", minCardDigits, maxCardDigits))
	}

	cvv := strings.TrimSpace(form.CVV)
	if len(cvv) != cvvDigits || digitsOf(cvv) != cvv {
		return pkgerrors.New(pkgerrors.CodeValidation, "cvv must be 3 digits")
	}

	expiry, err := time.Parse("01/06", strings.TrimSpace(form.Expiry))
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "expiry must be formatted MM/YY")
	}
	// Valid through the end of the stated month.
	if !now.Before(expiry.AddDate(0, 1, 0)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "card is expired")
	}
	return nil
}

func digitsOf(value string) string {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (f ShippingForm) concatenated() string {
	parts := []string{f.FullName, f.Address, f.City + " " + f.PostalCode}
	if strings.TrimSpace(f.Country) != "" {
		parts = append(parts, f.Country)
	}
	return strings.Join(parts, ", ")
}
