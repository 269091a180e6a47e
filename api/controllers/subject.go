package controllers

import (
	"net/http"

	"github.com/avaldez-dev/storefront-core/api/middleware"
	"github.com/avaldez-dev/storefront-core/internal/cart"
	pkgerrors "github.com/avaldez-dev/storefront-core/pkg/errors"
	"github.com/google/uuid"
)

// cartSubject resolves who owns the cart for this request: the signed-in
// user when auth context is present, otherwise the anonymous cart session.
func cartSubject(r *http.Request) (cart.Subject, error) {
	sessionID := middleware.CartSessionFromContext(r.Context())

	if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return cart.Subject{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user context")
		}
		return cart.Subject{UserID: userID, SessionID: sessionID}, nil
	}

	if sessionID == "" {
		return cart.Subject{}, pkgerrors.New(pkgerrors.CodeValidation, "cart session missing")
	}
	return cart.Subject{SessionID: sessionID}, nil
}

// authedUserID requires a signed-in user in the request context.
func authedUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user context")
	}
	return userID, nil
}
