package handler

import (
	"errors"
	"net/http"

	"metalrates/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type SetMarginRequest struct {
	Margin *float64 `json:"margin"`
}

// SetMargin godoc
// @Summary  Set the admin margin of a base metal and republish rates
// @Tags     admin
// @Accept   json
// @Produce  json
// @Param    metal path string true "gold or silver"
// @Param    body body SetMarginRequest true "margin per gram"
// @Success  200 {object} LiveRatesResponse
// @Failure  400 {object} errorResponse
// @Security BearerAuth
// @Router   /api/v1/admin/margins/{metal} [put]
func (h *Handler) SetMargin(w http.ResponseWriter, r *http.Request) {
	metal, ok := domain.ParseMetal(chi.URLParam(r, "metal"))
	if !ok {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidMetal.Error())
		return
	}

	var req SetMarginRequest
	if err := decodeBody(w, r, 256, &req); err != nil || req.Margin == nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload, err := h.rates.SetMargin(r.Context(), metal, *req.Margin)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidMetal) || errors.Is(err, domain.ErrInvalidMargin) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		msg := "failed to update margin"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "SetMargin", "metal": metal}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	logrus.WithFields(logrus.Fields{"metal": metal, "margin": *req.Margin}).Info("Margin updated")
	writeJSON(w, http.StatusOK, toLiveRatesResponse(payload))
}
