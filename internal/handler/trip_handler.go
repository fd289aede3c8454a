package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/n0thing2c/VNGO/internal/models"
	"github.com/n0thing2c/VNGO/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type TripHandler struct {
	svc *service.TripService
}

func NewTripHandler(s *service.TripService) *TripHandler {
	return &TripHandler{svc: s}
}

// @Summary Genera un plan de viaje multi-día
// @Tags trip
// @Accept json
// @Produce json
// @Param body body service.TripRequest true "parámetros del viaje"
// @Success 200 {object} models.TripPlan
// @Router /trip-plan [post]
func (h *TripHandler) PostTripPlan(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req service.TripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "body inválido", 400)
		return
	}
	if req.Province == "" && len(req.PlaceIDs) == 0 {
		http.Error(w, "province o place_ids son obligatorios", 400)
		return
	}

	plan, err := h.svc.GenerateTripPlan(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	_ = json.NewEncoder(w).Encode(plan)
}

// modifyRequest cubre las cuatro acciones sobre un plan ya generado.
type modifyRequest struct {
	Action    string           `json:"action"` // add | remove | swap | alternatives
	Plan      *models.TripPlan `json:"plan"`
	DayNumber int              `json:"day_number"`
	TourID    int              `json:"tour_id,omitempty"`
	OldTourID int              `json:"old_tour_id,omitempty"`
	NewTourID int              `json:"new_tour_id,omitempty"`
	Exclude   []int            `json:"exclude_ids,omitempty"`
	Limit     int              `json:"limit,omitempty"`
}

// @Summary Modifica un plan existente (add / remove / swap / alternatives)
// @Tags trip
// @Accept json
// @Produce json
// @Param body body modifyRequest true "acción y plan"
// @Success 200 {object} map[string]interface{}
// @Router /trip-plan/modify [post]
func (h *TripHandler) PostModify(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req modifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Plan == nil {
		http.Error(w, "body inválido", 400)
		return
	}

	switch req.Action {
	case "add":
		plan, err := h.svc.AddTour(r.Context(), req.Plan, req.DayNumber, req.TourID)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(plan)

	case "remove":
		_ = json.NewEncoder(w).Encode(h.svc.RemoveTour(req.Plan, req.DayNumber, req.TourID))

	case "swap":
		plan, err := h.svc.SwapTour(r.Context(), req.Plan, req.DayNumber, req.OldTourID, req.NewTourID)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(plan)

	case "alternatives":
		alts, err := h.svc.Alternatives(r.Context(), req.Plan, req.DayNumber, req.Exclude, req.Limit)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"alternatives": alts})

	default:
		http.Error(w, "acción desconocida: "+req.Action, 400)
	}
}

// @Summary Historial de planes del usuario
// @Tags trip
// @Produce json
// @Param id path int true "userId"
// @Param limit query int false "cantidad (default 20)"
// @Success 200 {array} models.TripPlanDoc
// @Router /trip-plan/{id}/history [get]
func (h *TripHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)

	docs, err := h.svc.History(r.Context(), userID, limit)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if docs == nil {
		docs = []models.TripPlanDoc{}
	}
	_ = json.NewEncoder(w).Encode(docs)
}

// upgrader global (no afecta a swagger)
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary Plan de viaje con progreso en tiempo real (WebSocket)
// @Tags trip
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /trip-plan/ws [get]
func (h *TripHandler) TripPlanWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "No se pudo abrir WebSocket", 400)
		return
	}
	defer conn.Close()

	// el cliente manda el request como primer mensaje
	var req service.TripRequest
	if err := conn.ReadJSON(&req); err != nil {
		conn.WriteJSON(map[string]any{"type": "error", "error": "request inválido"})
		return
	}

	conn.WriteJSON(map[string]any{
		"type": "start",
		"msg":  "Conexión WS abierta, generando plan…",
	})

	plan, err := h.svc.GenerateWithProgress(r.Context(), req, func(phase, msg string) {
		conn.WriteJSON(map[string]any{
			"type":  "progress",
			"phase": phase,
			"msg":   msg,
		})
	})
	if err != nil {
		conn.WriteJSON(map[string]any{"type": "error", "error": err.Error()})
		return
	}

	conn.WriteJSON(map[string]any{
		"type":        "plan",
		"plan":        plan,
		"generatedAt": time.Now(),
	})
}
