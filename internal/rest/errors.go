package rest

import (
	"errors"
	"net/http"

	"velora-api/internal/auth"
	"velora-api/internal/logger"
	"velora-api/internal/order"
	"velora-api/internal/product"
	"velora-api/internal/review"
	"velora-api/internal/user"
	"velora-api/internal/utils"
	"velora-api/internal/validation"

	"go.uber.org/zap"
)

// errMalformedBody marks a request body that could not be decoded.
var errMalformedBody = errors.New("malformed JSON body")

type validationResponse struct {
	Errors validation.Errors `json:"errors"`
}

type serverErrorResponse struct {
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
}

type notFoundResponse struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

// statusFor maps a domain error to its HTTP status and client message.
// ok is false for errors the client cannot act on.
func statusFor(err error) (code int, message string, ok bool) {
	switch {
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest, "Invalid request body", true
	case errors.Is(err, order.ErrNoOrderItems):
		return http.StatusBadRequest, "No order items", true
	case errors.Is(err, order.ErrInvalidStatus), errors.Is(err, order.ErrInvalidTransition):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, user.ErrEmailExists):
		return http.StatusBadRequest, "User already exists", true
	case errors.Is(err, user.ErrCannotDeleteAdmin):
		return http.StatusBadRequest, "Cannot delete admin user", true
	case errors.Is(err, review.ErrUnknownUser):
		return http.StatusBadRequest, "Review user does not exist", true
	case errors.Is(err, auth.ErrPasswordTooLong):
		return http.StatusBadRequest, "Password must be at most 72 bytes", true

	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials", true
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "Not authorized, token failed", true
	case errors.Is(err, order.ErrForbidden):
		return http.StatusUnauthorized, "Not authorized", true

	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, "Not authorized as an admin", true

	case errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound, "User not found", true
	case errors.Is(err, product.ErrNotFound):
		return http.StatusNotFound, "Product not found", true
	case errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound, "Order not found", true

	case errors.Is(err, order.ErrConcurrentUpdate):
		return http.StatusConflict, "Order was updated by another request, retry", true
	}
	return http.StatusInternalServerError, "Server error", false
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		utils.WriteJSON(w, http.StatusBadRequest, validationResponse{Errors: verrs})
		return
	}

	code, message, ok := statusFor(err)
	if ok {
		utils.WriteJSONError(w, message, code)
		return
	}

	logger.FromCtx(r.Context()).Error("request failed",
		zap.String("layer", "rest"),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)

	resp := serverErrorResponse{Message: message}
	if !h.production {
		resp.Description = err.Error()
	}
	utils.WriteJSON(w, code, resp)
}
