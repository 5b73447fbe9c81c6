package handlers

import (
	"net/http"

	"github.com/isdelr/planforge-be/internal/services"
)

// TrendingHandler handles requests for the trending-ideas ticker.
type TrendingHandler struct {
	service services.TrendingServiceProvider
}

// NewTrendingHandler creates a new TrendingHandler.
func NewTrendingHandler(service services.TrendingServiceProvider) *TrendingHandler {
	return &TrendingHandler{service: service}
}

// Get returns the current trending ideas in order.
func (h *TrendingHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"trendingIdeas": h.service.Current()})
}
