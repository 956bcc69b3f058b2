package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/md-rashed-zaman/availability/libs/httpx"
	"github.com/md-rashed-zaman/availability/services/availability-service/internal/calc"
)

type Calculator interface {
	Periods(ctx context.Context, req calc.Request) (calc.PeriodsResponse, error)
	Sessions(ctx context.Context, req calc.Request) (calc.SessionsResponse, error)
}

type AvailabilityHandler struct {
	calc   Calculator
	logger *slog.Logger
}

func NewAvailabilityHandler(c Calculator, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{calc: c, logger: logger}
}

// Register mounts the API routes on mux.
func (h *AvailabilityHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/availability/periods", httpx.AllowMethods(h.Periods, http.MethodPost))
	mux.HandleFunc("/api/v1/availability/sessions", httpx.AllowMethods(h.Sessions, http.MethodPost))
}

func (h *AvailabilityHandler) Periods(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	resp, err := h.calc.Periods(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *AvailabilityHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if req.Interval == "" {
		httpx.WriteError(w, http.StatusBadRequest, "interval is required")
		return
	}
	resp, err := h.calc.Sessions(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *AvailabilityHandler) decode(w http.ResponseWriter, r *http.Request) (calc.Request, bool) {
	var req calc.Request
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if httpx.IsBodyTooLarge(err) {
			httpx.WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return calc.Request{}, false
		}
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return calc.Request{}, false
	}
	return req, true
}

func (h *AvailabilityHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, calc.ErrInvalidRequest) {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error("availability computation failed", "err", err, "request_id", httpx.RequestIDFromContext(r.Context()))
	httpx.WriteError(w, http.StatusInternalServerError, "availability computation failed")
}
