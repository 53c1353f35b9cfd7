package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dam-inspection-system/internal/application"
	"dam-inspection-system/internal/domain"
)

// FleetHandler обробляє HTTP-запити, пов'язані з роботизованим флотом
type FleetHandler struct {
	fleet   *application.FleetRegistry
	tracker *application.MissionTracker
}

// NewFleetHandler створює новий FleetHandler
func NewFleetHandler(fleet *application.FleetRegistry, tracker *application.MissionTracker) *FleetHandler {
	return &FleetHandler{
		fleet:   fleet,
		tracker: tracker,
	}
}

// RegisterRoutes реєструє маршрути для FleetHandler
func (h *FleetHandler) RegisterRoutes(r chi.Router) {
	r.Route("/units", func(r chi.Router) {
		r.Get("/", h.ListUnits)
		r.Post("/", h.RegisterUnit)
		r.Get("/{id}", h.GetUnit)
		r.Put("/{id}/status", h.UpdateUnitStatus)
		r.Put("/{id}/telemetry", h.UpdateUnitTelemetry)
	})
	r.Get("/fleet/status", h.FleetStatus)
}

// ListUnits обробляє GET /units
func (h *FleetHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	units := h.fleet.List()

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := domain.ParseUnitStatus(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		filtered := units[:0]
		for _, u := range units {
			if u.Status == status {
				filtered = append(filtered, u)
			}
		}
		units = filtered
	}

	if units == nil {
		units = []domain.RoboticUnit{}
	}
	writeJSON(w, http.StatusOK, units)
}

// RegisterUnit обробляє POST /units
func (h *FleetHandler) RegisterUnit(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ID           string              `json:"id" validate:"required"`
		Type         *domain.UnitType    `json:"type" validate:"required"`
		Capabilities []domain.Capability `json:"capabilities"`
		BatteryLevel float64             `json:"battery_level" validate:"gte=0,lte=100"`
		Location     domain.Location     `json:"location"`
	}

	if err := decodeRequest(r, &request); err != nil {
		writeError(w, err)
		return
	}

	unit := domain.RoboticUnit{
		ID:           request.ID,
		Type:         *request.Type,
		Status:       domain.UnitStatusIdle,
		Capabilities: request.Capabilities,
		BatteryLevel: request.BatteryLevel,
		Location:     request.Location,
	}
	if err := h.fleet.Register(unit); err != nil {
		writeError(w, err)
		return
	}

	registered, err := h.fleet.Get(unit.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, registered)
}

// GetUnit обробляє GET /units/{id}
func (h *FleetHandler) GetUnit(w http.ResponseWriter, r *http.Request) {
	unit, err := h.fleet.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, unit)
}

// UpdateUnitStatus обробляє PUT /units/{id}/status
func (h *FleetHandler) UpdateUnitStatus(w http.ResponseWriter, r *http.Request) {
	var request struct {
		From *domain.UnitStatus `json:"from" validate:"required"`
		To   *domain.UnitStatus `json:"to" validate:"required"`
	}

	if err := decodeRequest(r, &request); err != nil {
		writeError(w, err)
		return
	}

	unit, err := h.tracker.SetUnitStatus(r.Context(), chi.URLParam(r, "id"), *request.From, *request.To)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, unit)
}

// UpdateUnitTelemetry обробляє PUT /units/{id}/telemetry
func (h *FleetHandler) UpdateUnitTelemetry(w http.ResponseWriter, r *http.Request) {
	var request struct {
		BatteryLevel float64         `json:"battery_level" validate:"gte=0,lte=100"`
		Location     domain.Location `json:"location"`
	}

	if err := decodeRequest(r, &request); err != nil {
		writeError(w, err)
		return
	}

	unit, err := h.fleet.UpdateTelemetry(chi.URLParam(r, "id"), request.BatteryLevel, request.Location)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, unit)
}

// FleetStatus обробляє GET /fleet/status
func (h *FleetHandler) FleetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tracker.FleetStatus())
}
