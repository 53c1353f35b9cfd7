package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dam-inspection-system/internal/application"
	"dam-inspection-system/internal/domain"
	"dam-inspection-system/internal/ports"
)

// StabilityHandler обробляє HTTP-запити стану стійкості та телеметрії
type StabilityHandler struct {
	gauge      *application.StabilityGauge
	integrator *application.SafetyFeedbackIntegrator
	audit      ports.AuditReader
}

// NewStabilityHandler створює новий StabilityHandler. audit може бути nil,
// якщо постійний журнал не налаштовано.
func NewStabilityHandler(
	gauge *application.StabilityGauge,
	integrator *application.SafetyFeedbackIntegrator,
	audit ports.AuditReader,
) *StabilityHandler {
	return &StabilityHandler{
		gauge:      gauge,
		integrator: integrator,
		audit:      audit,
	}
}

// RegisterRoutes реєструє маршрути для StabilityHandler
func (h *StabilityHandler) RegisterRoutes(r chi.Router) {
	r.Route("/stability", func(r chi.Router) {
		r.Get("/", h.GetStability)
		r.Post("/piezometers", h.IngestPiezometer)
		r.Post("/seismic", h.IngestSeismic)
		r.Post("/water-level", h.IngestWaterLevel)
		r.Post("/reset-penalty", h.ResetPenalty)
	})
	r.Route("/telemetry", func(r chi.Router) {
		r.Get("/", h.ListTelemetry)
		r.Get("/stats", h.TelemetryStats)
		r.Get("/report", h.TelemetryReport)
	})
	r.Route("/audit", func(r chi.Router) {
		r.Get("/missions", h.AuditMissions)
		r.Get("/telemetry", h.AuditTelemetry)
	})
}

// GetStability обробляє GET /stability
func (h *StabilityHandler) GetStability(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.gauge.Snapshot())
}

// IngestPiezometer обробляє POST /stability/piezometers
func (h *StabilityHandler) IngestPiezometer(w http.ResponseWriter, r *http.Request) {
	var reading domain.PiezometerData
	if err := decodeRequest(r, &reading); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.gauge.IngestPiezometer(r.Context(), reading))
}

// IngestSeismic обробляє POST /stability/seismic
func (h *StabilityHandler) IngestSeismic(w http.ResponseWriter, r *http.Request) {
	var reading domain.SeismicData
	if err := decodeRequest(r, &reading); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.gauge.IngestSeismic(r.Context(), reading))
}

// IngestWaterLevel обробляє POST /stability/water-level
func (h *StabilityHandler) IngestWaterLevel(w http.ResponseWriter, r *http.Request) {
	var reading domain.WaterLevelData
	if err := decodeRequest(r, &reading); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.gauge.IngestWaterLevel(r.Context(), reading))
}

// ResetPenalty обробляє POST /stability/reset-penalty
func (h *StabilityHandler) ResetPenalty(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.gauge.ResetInspectionPenalty(r.Context()))
}

// ListTelemetry обробляє GET /telemetry
func (h *StabilityHandler) ListTelemetry(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, application.DefaultHistoryLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.integrator.Recent(limit))
}

// TelemetryStats обробляє GET /telemetry/stats
func (h *StabilityHandler) TelemetryStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.integrator.Statistics())
}

// TelemetryReport обробляє GET /telemetry/report
func (h *StabilityHandler) TelemetryReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(h.integrator.Report()))
}

// AuditMissions обробляє GET /audit/missions
func (h *StabilityHandler) AuditMissions(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		http.Error(w, "Audit journal is not configured", http.StatusServiceUnavailable)
		return
	}
	limit, err := queryLimit(r, application.DefaultHistoryLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	missions, err := h.audit.ListMissions(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if missions == nil {
		missions = []*domain.InspectionMission{}
	}
	writeJSON(w, http.StatusOK, missions)
}

// AuditTelemetry обробляє GET /audit/telemetry
func (h *StabilityHandler) AuditTelemetry(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		http.Error(w, "Audit journal is not configured", http.StatusServiceUnavailable)
		return
	}
	limit, err := queryLimit(r, application.DefaultHistoryLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	updates, err := h.audit.ListTelemetry(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if updates == nil {
		updates = []*domain.TelemetryUpdate{}
	}
	writeJSON(w, http.StatusOK, updates)
}
