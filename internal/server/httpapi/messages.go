package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

// AddMessage appends to a listing thread. Any stored listing can be addressed,
// published or not.
func (h *Handler) AddMessage(w http.ResponseWriter, r *http.Request) {
	sender, ok := h.authenticated(w, r)
	if !ok {
		return
	}

	var req messageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	m, err := h.messages.Add(r.Context(), sender, mux.Vars(r)["id"], req.Body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMessageResponse(m))
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authenticated(w, r); !ok {
		return
	}

	items, err := h.messages.List(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := make([]messageResponse, 0, len(items))
	for _, m := range items {
		out = append(out, toMessageResponse(m))
	}
	writeJSON(w, http.StatusOK, out)
}
