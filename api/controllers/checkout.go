package controllers

import (
	"net/http"

	"github.com/avaldez-dev/storefront-core/api/middleware"
	"github.com/avaldez-dev/storefront-core/api/responses"
	"github.com/avaldez-dev/storefront-core/api/validators"
	cartsvc "github.com/avaldez-dev/storefront-core/internal/cart"
	checkoutsvc "github.com/avaldez-dev/storefront-core/internal/checkout"
	pkgerrors "github.com/avaldez-dev/storefront-core/pkg/errors"
	"github.com/avaldez-dev/storefront-core/pkg/logger"
)

type checkoutRequest struct {
	Shipping shippingRequest `json:"shipping" validate:"required"`
	Payment  paymentRequest  `json:"payment" validate:"required"`
}

type shippingRequest struct {
	FullName   string `json:"full_name" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country"`
}

type paymentRequest struct {
	CardNumber string `json:"card_number" validate:"required"`
	Expiry     string `json:"expiry" validate:"required"`
	CVV        string `json:"cvv" validate:"required"`
}

// Checkout turns the signed-in shopper's cart into an order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subject := cartsvc.Subject{
			UserID:    userID,
			SessionID: middleware.CartSessionFromContext(r.Context()),
		}
		order, err := svc.Execute(r.Context(), subject,
			checkoutsvc.ShippingForm{
				FullName:   payload.Shipping.FullName,
				Address:    payload.Shipping.Address,
				City:       payload.Shipping.City,
				PostalCode: payload.Shipping.PostalCode,
				Country:    payload.Shipping.Country,
			},
			checkoutsvc.PaymentForm{
				CardNumber: payload.Payment.CardNumber,
				Expiry:     payload.Payment.Expiry,
				CVV:        payload.Payment.CVV,
			})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
