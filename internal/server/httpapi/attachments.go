package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RequestUpload records an attachment and answers with a presigned PUT URL.
// The client uploads the bytes to object storage directly.
func (h *Handler) RequestUpload(w http.ResponseWriter, r *http.Request) {
	uploader, ok := h.authenticated(w, r)
	if !ok {
		return
	}

	var req attachmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	a, err := h.attachments.RequestUpload(r.Context(), uploader, mux.Vars(r)["id"], req.FileName)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttachmentResponse(a))
}

func (h *Handler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authenticated(w, r); !ok {
		return
	}

	items, err := h.attachments.List(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := make([]attachmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toAttachmentResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}
