package httpapi

import (
	"net/http"
	"time"
)

const serviceName = "FalconTrade API"

// Categories is the fixed set of marketplace category tags offered to clients.
// Listings may still carry any category text.
var Categories = []string{"fertilizer", "grain", "oils", "textiles", "panels", "poultry", "fruits", "metals"}

type versionResponse struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	DeployedAt string `json:"deployed_at"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, versionResponse{
		Name:       serviceName,
		Version:    h.version,
		DeployedAt: h.startedAt.Format(time.RFC3339),
	})
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Categories)
}
