package handler

import (
	"net/http"
	"time"

	"metalrates/internal/domain"
)

type LiveRatesResponse struct {
	Timestamp time.Time          `json:"ts"`
	Source    string             `json:"source"`
	Estimated bool               `json:"estimated"`
	Rates     []domain.RateEntry `json:"rates"`
}

func toLiveRatesResponse(p domain.RatePayload) LiveRatesResponse {
	rates := p.Rates
	if rates == nil {
		rates = []domain.RateEntry{}
	}
	return LiveRatesResponse{
		Timestamp: p.Timestamp,
		Source:    p.Source,
		Estimated: p.Estimated(),
		Rates:     rates,
	}
}

// GetLiveRates godoc
// @Summary  Current metal rates
// @Tags     rates
// @Produce  json
// @Success  200 {object} LiveRatesResponse
// @Router   /api/v1/rates/live [get]
func (h *Handler) GetLiveRates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, toLiveRatesResponse(h.rates.Current(r.Context())))
}
