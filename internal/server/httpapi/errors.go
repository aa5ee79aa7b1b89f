package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/falcontrade/internal/common"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

// statusFor maps every error to exactly one status code. Anything outside
// the taxonomy is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// detailFor returns the client facing message. Only validation errors carry
// their own text; every other class has a fixed message so that, for example,
// a draft listing and an unknown id are reported identically.
func detailFor(err error, code int) string {
	switch code {
	case http.StatusBadRequest:
		return strings.TrimPrefix(err.Error(), common.ErrValidation.Error()+": ")
	case http.StatusUnauthorized:
		switch {
		case errors.Is(err, common.ErrInvalidCredentials):
			return "Invalid credentials"
		case errors.Is(err, common.ErrTokenExpired):
			return "Token expired"
		case errors.Is(err, common.ErrTokenRevoked):
			return "Token revoked"
		default:
			return "Could not validate credentials"
		}
	case http.StatusForbidden:
		return "Admin only"
	case http.StatusNotFound:
		return "Not found"
	case http.StatusConflict:
		return "Already exists"
	default:
		return "Internal server error"
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	}
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", common.BearerScheme)
	}
	writeJSON(w, code, errorResponse{Detail: detailFor(err, code)})
}
