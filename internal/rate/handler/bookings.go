package handler

import (
	"errors"
	"net/http"
	"strings"

	"metalrates/internal/booking"
	"metalrates/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type FreezeRateRequest struct {
	Metal         string   `json:"metal_type"`
	WeightGrams   float64  `json:"weight_grams"`
	Contact       string   `json:"contact"`
	AdvanceAmount *float64 `json:"advance_amount,omitempty"`
}

// FreezeRate godoc
// @Summary  Lock the current rate for a weight of metal
// @Tags     bookings
// @Accept   json
// @Produce  json
// @Param    body body FreezeRateRequest true "booking"
// @Success  201 {object} domain.RateLock
// @Failure  400 {object} errorResponse
// @Failure  429 {object} errorResponse
// @Failure  503 {object} errorResponse
// @Router   /api/v1/bookings [post]
func (h *Handler) FreezeRate(w http.ResponseWriter, r *http.Request) {
	var req FreezeRateRequest
	if err := decodeBody(w, r, 1<<10, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lock, err := h.bookings.Freeze(r.Context(), booking.FreezeRequest{
		Metal:         req.Metal,
		WeightGrams:   req.WeightGrams,
		Contact:       req.Contact,
		AdvanceAmount: req.AdvanceAmount,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidMetal), errors.Is(err, domain.ErrInvalidWeight), errors.Is(err, domain.ErrInvalidContact):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrRateUnavailable):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			msg := "failed to lock rate"
			logrus.WithError(err).WithFields(logrus.Fields{"handler": "FreezeRate", "metal": req.Metal}).Error(msg)
			writeError(w, http.StatusInternalServerError, msg)
		}
		return
	}
	writeJSON(w, http.StatusCreated, lock)
}

// GetBooking godoc
// @Summary  Read a rate lock; status resolves expiry at read time
// @Tags     bookings
// @Produce  json
// @Param    id path string true "lock id"
// @Success  200 {object} domain.RateLock
// @Failure  404 {object} errorResponse
// @Router   /api/v1/bookings/{id} [get]
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := lockID(w, r)
	if !ok {
		return
	}

	lock, err := h.bookings.Get(r.Context(), id)
	if err != nil {
		h.writeLockError(w, err, "GetBooking", id)
		return
	}
	writeJSON(w, http.StatusOK, lock)
}

// FulfillBooking godoc
// @Summary  Mark a locked, unexpired booking as fulfilled
// @Tags     admin
// @Produce  json
// @Param    id path string true "lock id"
// @Success  200 {object} domain.RateLock
// @Failure  404 {object} errorResponse
// @Failure  409 {object} errorResponse
// @Security BearerAuth
// @Router   /api/v1/admin/bookings/{id}/fulfill [post]
func (h *Handler) FulfillBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := lockID(w, r)
	if !ok {
		return
	}

	lock, err := h.bookings.Fulfill(r.Context(), id)
	if err != nil {
		h.writeLockError(w, err, "FulfillBooking", id)
		return
	}
	writeJSON(w, http.StatusOK, lock)
}

func lockID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeLockError(w http.ResponseWriter, err error, handler string, id uuid.UUID) {
	switch {
	case errors.Is(err, domain.ErrLockNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
	case errors.Is(err, domain.ErrLockNotActive):
		writeError(w, http.StatusConflict, err.Error())
	default:
		msg := "ups, couldn't process booking this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": handler, "lock_id": id}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
	}
}
