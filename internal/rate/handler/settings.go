package handler

import (
	"errors"
	"net/http"

	"metalrates/internal/domain"

	"github.com/sirupsen/logrus"
)

// GetBookingSettings godoc
// @Summary  Settings consumed by the booking flow
// @Tags     settings
// @Produce  json
// @Success  200 {object} domain.Settings
// @Router   /api/v1/settings/booking [get]
func (h *Handler) GetBookingSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		msg := "failed to load settings"
		logrus.WithError(err).WithField("handler", "GetBookingSettings").Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// SaveSettings godoc
// @Summary  Replace the booking settings
// @Tags     admin
// @Accept   json
// @Produce  json
// @Param    body body domain.Settings true "settings"
// @Success  200 {object} domain.Settings
// @Failure  400 {object} errorResponse
// @Security BearerAuth
// @Router   /api/v1/admin/settings [put]
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var s domain.Settings
	if err := decodeBody(w, r, 4<<10, &s); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.settings.Save(r.Context(), s); err != nil {
		if errors.Is(err, domain.ErrInvalidSettings) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		msg := "failed to save settings"
		logrus.WithError(err).WithField("handler", "SaveSettings").Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
