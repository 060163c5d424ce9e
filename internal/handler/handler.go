package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Dan9191/finplan-service/internal/middleware"
	"github.com/Dan9191/finplan-service/internal/models"
	"github.com/Dan9191/finplan-service/internal/repository"
	"github.com/Dan9191/finplan-service/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "timestamp": time.Now().Format(time.RFC3339)})
}

// CreateSession starts a planning session
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.SessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	resp, err := h.svc.StartSession(req.AccessCode)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Capacity computes the affordability verdict for a cashflow profile
func (h *Handler) Capacity(w http.ResponseWriter, r *http.Request) {
	var req models.CapacityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, _ := h.svc.CalculateCapacity(r.Context(), req)
	writeJSON(w, http.StatusOK, result)
}

// CapacityReport computes capacity and emails the verdict
func (h *Handler) CapacityReport(w http.ResponseWriter, r *http.Request) {
	var req models.CapacityReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.SendCapacityReport(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, result)
}

// ReferenceRate returns the cached reference lending rate
func (h *Handler) ReferenceRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.svc.ReferenceRate(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rate)
}

// Position returns the session's debt position
func (h *Handler) Position(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.SessionID(r.Context())
	pos, err := h.svc.Position(sessionID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

// ApplyStrategy applies a repayment strategy once
func (h *Handler) ApplyStrategy(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.SessionID(r.Context())
	var req models.ApplyStrategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pos, err := h.svc.ApplyStrategy(sessionID, req)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

// Projection returns the month-by-month total under one strategy
func (h *Handler) Projection(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.SessionID(r.Context())
	months, ok := monthsParam(w, r)
	if !ok {
		return
	}

	points, err := h.svc.Projection(sessionID, r.URL.Query().Get("strategy"), months)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// Projections returns every strategy's projection keyed by strategy name
func (h *Handler) Projections(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.SessionID(r.Context())
	months, ok := monthsParam(w, r)
	if !ok {
		return
	}

	all, err := h.svc.Projections(sessionID, months)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// Facility returns one facility's balance and ledger
func (h *Handler) Facility(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.SessionID(r.Context())
	view, err := h.svc.Facility(sessionID, facilityParam(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// FacilityFlow projects a facility balance from its ledger
func (h *Handler) FacilityFlow(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.SessionID(r.Context())
	months, ok := monthsParam(w, r)
	if !ok {
		return
	}

	points, err := h.svc.FacilityFlow(sessionID, facilityParam(r), months)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// AddItem records a facility inflow or outflow
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.SessionID(r.Context())
	var req models.FlowItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.svc.AddItem(sessionID, facilityParam(r), directionParam(r), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// UpdateItem edits a facility inflow or outflow
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.SessionID(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req models.FlowItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.svc.UpdateItem(sessionID, facilityParam(r), directionParam(r), id, req)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// RemoveItem deletes a facility inflow or outflow
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.SessionID(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.RemoveItem(sessionID, facilityParam(r), directionParam(r), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail maps service errors to HTTP statuses
func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		writeError(w, http.StatusUnauthorized, "session expired")
	case errors.Is(err, repository.ErrItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrUnknownFacility),
		errors.Is(err, repository.ErrUnknownFlow),
		errors.Is(err, service.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidAccessCode):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrRateUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		h.log.Errorf("Request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func facilityParam(r *http.Request) models.Facility {
	return models.Facility(mux.Vars(r)["facility"])
}

func directionParam(r *http.Request) models.Direction {
	return models.Direction(mux.Vars(r)["direction"])
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return 0, false
	}
	return id, true
}

// monthsParam reads ?months=, 0 when absent
func monthsParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("months")
	if raw == "" {
		return 0, true
	}
	months, err := strconv.Atoi(raw)
	if err != nil || months < 0 {
		writeError(w, http.StatusBadRequest, "months must be a non-negative integer")
		return 0, false
	}
	return months, true
}

// writeJSON encodes before writing the status so an unencodable value becomes a 500
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"response encoding failed"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
