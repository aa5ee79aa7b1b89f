package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Routes builds the router with logging, metrics and panic recovery applied
// to every matched route.
func (h *Handler) Routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.instrument, h.recoverPanics)

	r.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)
	r.HandleFunc("/me", h.Me).Methods(http.MethodGet)

	r.HandleFunc("/listings", h.CreateListing).Methods(http.MethodPost)
	r.HandleFunc("/market", h.Market).Methods(http.MethodGet)
	r.HandleFunc("/listings/{id}", h.GetListing).Methods(http.MethodGet)
	r.HandleFunc("/listings/{id}/messages", h.AddMessage).Methods(http.MethodPost)
	r.HandleFunc("/listings/{id}/messages", h.ListMessages).Methods(http.MethodGet)
	r.HandleFunc("/listings/{id}/attachments", h.RequestUpload).Methods(http.MethodPost)
	r.HandleFunc("/listings/{id}/attachments", h.ListAttachments).Methods(http.MethodGet)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/listings/{id}/publish", h.PublishListing).Methods(http.MethodPost)
	admin.HandleFunc("/listings/{id}", h.DeleteListing).Methods(http.MethodDelete)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/version", h.Version).Methods(http.MethodGet)
	r.HandleFunc("/categories", h.Categories).Methods(http.MethodGet)
	r.Handle("/metrics", h.metrics.Handler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Detail: "Method not allowed"})
	})

	return r
}
