package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/falcontrade/internal/common"
	"github.com/dmitrijs2005/falcontrade/internal/server/services"
	"github.com/gorilla/mux"
)

func (h *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.authenticated(w, r)
	if !ok {
		return
	}

	var req listingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	l, err := h.listings.Create(r.Context(), owner, services.NewListing{
		Type:     req.Type,
		Category: req.Category,
		Title:    req.Title,
		Details:  req.Details,
		Quantity: req.Quantity,
		Incoterm: req.Incoterm,
		Country:  req.Country,
		City:     req.City,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.metrics.ListingEvent("created")
	writeJSON(w, http.StatusOK, toListingResponse(l))
}

// Market is the public discovery view: published listings, newest first.
func (h *Handler) Market(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	q := services.SearchQuery{
		Type:     values.Get("type"),
		Category: values.Get("category"),
		Text:     values.Get("q"),
	}
	var err error
	if q.Limit, err = intParam(values.Get("limit"), "limit"); err != nil {
		h.fail(w, r, err)
		return
	}
	if q.Offset, err = intParam(values.Get("offset"), "offset"); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.discovery.Search(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toListingResponses(result))
}

func (h *Handler) GetListing(w http.ResponseWriter, r *http.Request) {
	l, err := h.listings.GetPublished(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(l))
}

func (h *Handler) PublishListing(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.admin(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.listings.Publish(r.Context(), caller, id); err != nil {
		h.fail(w, r, err)
		return
	}

	h.metrics.ListingEvent("published")
	h.logger.Info(r.Context(), "listing published", "listing_id", id, "admin_id", caller.ID)
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.admin(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.listings.Delete(r.Context(), caller, id); err != nil {
		h.fail(w, r, err)
		return
	}

	h.metrics.ListingEvent("deleted")
	h.logger.Info(r.Context(), "listing deleted", "listing_id", id, "admin_id", caller.ID)
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// intParam parses an optional integer query parameter. Absent means nil.
func intParam(raw, name string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, common.Validationf("%s must be an integer", name)
	}
	return &n, nil
}
