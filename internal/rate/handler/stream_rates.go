package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"metalrates/internal/domain"

	"github.com/sirupsen/logrus"
)

const streamEvent = "live-rate"

// StreamRates pushes every published payload as a server-sent event. The
// current payload is sent first so a new client never waits a full tick.
//
// @Summary  Live rate stream (SSE, event "live-rate")
// @Tags     rates
// @Produce  text/event-stream
// @Success  200 {object} LiveRatesResponse
// @Router   /api/v1/rates/stream [get]
func (h *Handler) StreamRates(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub := h.stream.Subscribe()
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, h.rates.Current(r.Context())); err != nil {
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case p, open := <-sub.C:
			if !open {
				return
			}
			if err := writeEvent(w, p); err != nil {
				logrus.WithError(err).WithField("handler", "StreamRates").Debug("Stream client gone")
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, p domain.RatePayload) error {
	b, err := json.Marshal(toLiveRatesResponse(p))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", streamEvent, b)
	return err
}
