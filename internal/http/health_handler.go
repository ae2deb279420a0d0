package http

import (
	"net/http"

	"github.com/tuanvumaihuynh/bipagem/internal/storage/db"
)

type healthHandler struct {
	checker db.HealthChecker
}

func newHealthHandler(checker db.HealthChecker) *healthHandler {
	return &healthHandler{checker: checker}
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Health handles GET /healthz.
func (h *healthHandler) Health(w http.ResponseWriter, r *http.Request) error {
	if h.checker == nil {
		return writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}

	ok, err := h.checker.IsHealthy(r.Context())
	if err != nil || !ok {
		res := healthResponse{Status: "unavailable"}
		if err != nil {
			res.Error = err.Error()
		}
		return writeJSON(w, http.StatusServiceUnavailable, res)
	}

	return writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
