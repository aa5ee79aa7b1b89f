package httpapi

import (
	"mime"
	"net/http"

	"github.com/dmitrijs2005/falcontrade/internal/common"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	account, err := h.accounts.Register(r.Context(), req.Email, req.Password)
	h.metrics.AuthEvent("register", err == nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info(r.Context(), "account registered", "account_id", account.ID)
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// Login accepts either a JSON body {email, password} or the OAuth2 password
// form fields username and password.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := h.readCredentials(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	token, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	h.metrics.AuthEvent("login", err == nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) readCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var err error
		if mediaType == "multipart/form-data" {
			err = r.ParseMultipartForm(maxBodyBytes)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			return credentialsRequest{}, common.Validationf("malformed form body")
		}
		return credentialsRequest{
			Email:    r.PostFormValue("username"),
			Password: r.PostFormValue("password"),
		}, nil
	default:
		var req credentialsRequest
		err := decodeJSON(w, r, &req)
		return req, err
	}
}

// Logout revokes the presented token. Other sessions of the account stay valid.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authenticated(w, r); !ok {
		h.metrics.AuthEvent("logout", false)
		return
	}

	err := h.accounts.Logout(r.Context(), bearerToken(r))
	h.metrics.AuthEvent("logout", err == nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	account, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, meResponse{Email: account.Email, IsAdmin: account.IsAdmin})
}
