package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"dam-inspection-system/internal/application"
	"dam-inspection-system/internal/domain"
)

// dispatchResponse відповідь на запит створення місії. Відсутність вільного
// пристрою не є помилкою запиту.
type dispatchResponse struct {
	Dispatched bool                      `json:"dispatched"`
	Mission    *domain.InspectionMission `json:"mission,omitempty"`
	Reason     string                    `json:"reason,omitempty"`
}

// MissionHandler обробляє HTTP-запити, пов'язані з місіями інспекції
type MissionHandler struct {
	dispatcher *application.MissionDispatcher
	tracker    *application.MissionTracker
	results    *application.InspectionResultService
}

// NewMissionHandler створює новий MissionHandler
func NewMissionHandler(
	dispatcher *application.MissionDispatcher,
	tracker *application.MissionTracker,
	results *application.InspectionResultService,
) *MissionHandler {
	return &MissionHandler{
		dispatcher: dispatcher,
		tracker:    tracker,
		results:    results,
	}
}

// RegisterRoutes реєструє маршрути для MissionHandler
func (h *MissionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/missions", func(r chi.Router) {
		r.Get("/", h.ListMissions)
		r.Post("/", h.CreateMission)
		r.Get("/active", h.ActiveMissions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetMission)
			r.Post("/inspect", h.BeginInspection)
			r.Post("/complete", h.CompleteMission)
			r.Post("/abort", h.AbortMission)
			r.Post("/results", h.SubmitResults)
			r.Get("/detections", h.GetDetections)
		})
	})
	r.Route("/anomalies", func(r chi.Router) {
		r.Post("/thermal", h.ThermalAnomaly)
		r.Post("/seepage", h.SeepageAnomaly)
	})
}

// CreateMission обробляє POST /missions
func (h *MissionHandler) CreateMission(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Trigger    *domain.TriggerKind `json:"trigger" validate:"required"`
		TargetArea string              `json:"target_area" validate:"required"`
		Priority   *domain.Priority    `json:"priority"`
	}

	if err := decodeRequest(r, &request); err != nil {
		writeError(w, err)
		return
	}

	priority := domain.PriorityMedium
	if request.Priority != nil {
		priority = *request.Priority
	}

	mission, err := h.dispatcher.Dispatch(r.Context(), *request.Trigger, request.TargetArea, priority)
	h.respondDispatch(w, mission, err)
}

// ThermalAnomaly обробляє POST /anomalies/thermal
func (h *MissionHandler) ThermalAnomaly(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Hotspot     string           `json:"hotspot" validate:"required"`
		Temperature float64          `json:"temperature"`
		Severity    *domain.Severity `json:"severity" validate:"required"`
	}

	if err := decodeRequest(r, &request); err != nil {
		writeError(w, err)
		return
	}

	mission, err := h.dispatcher.DispatchThermal(r.Context(), request.Hotspot, request.Temperature, *request.Severity)
	h.respondDispatch(w, mission, err)
}

// SeepageAnomaly обробляє POST /anomalies/seepage
func (h *MissionHandler) SeepageAnomaly(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Location string  `json:"location" validate:"required"`
		Rate     float64 `json:"seepage_rate" validate:"gte=0"`
		Delta    float64 `json:"seepage_delta"`
	}

	if err := decodeRequest(r, &request); err != nil {
		writeError(w, err)
		return
	}

	mission, err := h.dispatcher.DispatchSeepage(r.Context(), request.Location, request.Rate, request.Delta)
	h.respondDispatch(w, mission, err)
}

func (h *MissionHandler) respondDispatch(w http.ResponseWriter, mission domain.InspectionMission, err error) {
	if errors.Is(err, domain.ErrNoUnitAvailable) {
		writeJSON(w, http.StatusOK, dispatchResponse{Reason: domain.ErrNoUnitAvailable.Error()})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dispatchResponse{Dispatched: true, Mission: &mission})
}

// ListMissions обробляє GET /missions
func (h *MissionHandler) ListMissions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, application.DefaultHistoryLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.tracker.History(limit))
}

// ActiveMissions обробляє GET /missions/active
func (h *MissionHandler) ActiveMissions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tracker.Active())
}

// GetMission обробляє GET /missions/{id}
func (h *MissionHandler) GetMission(w http.ResponseWriter, r *http.Request) {
	id, ok := missionID(w, r)
	if !ok {
		return
	}

	mission, err := h.tracker.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mission)
}

// BeginInspection обробляє POST /missions/{id}/inspect
func (h *MissionHandler) BeginInspection(w http.ResponseWriter, r *http.Request) {
	id, ok := missionID(w, r)
	if !ok {
		return
	}

	unit, err := h.tracker.BeginInspection(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, unit)
}

// CompleteMission обробляє POST /missions/{id}/complete
func (h *MissionHandler) CompleteMission(w http.ResponseWriter, r *http.Request) {
	id, ok := missionID(w, r)
	if !ok {
		return
	}

	var request struct {
		Findings []string `json:"findings"`
	}
	if err := decodeRequest(r, &request); err != nil {
		writeError(w, err)
		return
	}

	mission, err := h.tracker.Complete(r.Context(), id, request.Findings)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mission)
}

// AbortMission обробляє POST /missions/{id}/abort
func (h *MissionHandler) AbortMission(w http.ResponseWriter, r *http.Request) {
	id, ok := missionID(w, r)
	if !ok {
		return
	}

	var request struct {
		Reason string `json:"reason" validate:"required"`
	}
	if err := decodeRequest(r, &request); err != nil {
		writeError(w, err)
		return
	}

	mission, err := h.tracker.Abort(r.Context(), id, request.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mission)
}

// SubmitResults обробляє POST /missions/{id}/results
func (h *MissionHandler) SubmitResults(w http.ResponseWriter, r *http.Request) {
	id, ok := missionID(w, r)
	if !ok {
		return
	}

	var request struct {
		Findings   []string                 `json:"findings"`
		Detections []domain.DetectionResult `json:"detections" validate:"dive"`
	}
	if err := decodeRequest(r, &request); err != nil {
		writeError(w, err)
		return
	}

	outcome, err := h.results.SubmitResults(r.Context(), id, request.Findings, request.Detections)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// GetDetections обробляє GET /missions/{id}/detections. Без параметра key
// повертає список збережених пакетів, з ним віддає сам пакет.
func (h *MissionHandler) GetDetections(w http.ResponseWriter, r *http.Request) {
	id, ok := missionID(w, r)
	if !ok {
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		keys, err := h.results.ArchivedBatches(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, keys)
		return
	}

	if !strings.HasPrefix(key, "missions/"+id.String()+"/") {
		http.Error(w, "Key does not belong to mission", http.StatusBadRequest)
		return
	}

	batch, err := h.results.ArchivedBatch(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	defer batch.Close()

	w.Header().Set("Content-Type", "application/json")
	if _, err := io.Copy(w, batch); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func missionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid mission ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
