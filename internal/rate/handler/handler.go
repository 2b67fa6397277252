package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"metalrates/internal/adapters/broadcast"
	"metalrates/internal/booking"
	"metalrates/internal/domain"

	"github.com/google/uuid"
)

const defaultStreamHeartbeat = 25 * time.Second

type RateService interface {
	Current(ctx context.Context) domain.RatePayload
	SetMargin(ctx context.Context, metal domain.Metal, amount float64) (domain.RatePayload, error)
}

type RateStream interface {
	Subscribe() *broadcast.Subscription
}

type SettingsStore interface {
	Get(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, s domain.Settings) error
}

type BookingService interface {
	Freeze(ctx context.Context, req booking.FreezeRequest) (domain.RateLock, error)
	Get(ctx context.Context, id uuid.UUID) (domain.RateLock, error)
	Fulfill(ctx context.Context, id uuid.UUID) (domain.RateLock, error)
}

type Handler struct {
	rates     RateService
	stream    RateStream
	settings  SettingsStore
	bookings  BookingService
	heartbeat time.Duration
}

func NewHandler(rates RateService, stream RateStream, settings SettingsStore, bookings BookingService) *Handler {
	return &Handler{
		rates:     rates,
		stream:    stream,
		settings:  settings,
		bookings:  bookings,
		heartbeat: defaultStreamHeartbeat,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, statusCode int, errorMsg string) {
	writeJSON(w, statusCode, errorResponse{
		Error: errorMsg,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// decodeLenientBody accepts fields dst does not declare.
func decodeLenientBody(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	return json.NewDecoder(r.Body).Decode(dst)
}
