package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/n0thing2c/VNGO/internal/ml"
	"github.com/n0thing2c/VNGO/internal/service"

	"github.com/go-chi/chi/v5"
)

type RecommendHandler struct {
	svc *service.RecommendService
}

func NewRecommendHandler(s *service.RecommendService) *RecommendHandler {
	return &RecommendHandler{svc: s}
}

// @Summary Recomendaciones personalizadas
// @Tags recommend
// @Accept json
// @Produce json
// @Param body body service.RecommendRequest true "parámetros"
// @Success 200 {array} models.RecItem
// @Router /recommendations [post]
func (h *RecommendHandler) PostRecommendations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req service.RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "body inválido", 400)
		return
	}

	items, err := h.svc.Recommend(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	_ = json.NewEncoder(w).Encode(items)
}

// @Summary Búsqueda por criterios (filtrar y puntuar)
// @Tags recommend
// @Produce json
// @Param province query string false "provincia (substring, case-insensitive)"
// @Param tags query string false "tags separados por coma"
// @Param price_min query int false "precio mínimo"
// @Param price_max query int false "precio máximo"
// @Param min_rating query number false "rating promedio mínimo"
// @Param k query int false "cantidad (default 20)"
// @Param user_id query int false "personaliza con el perfil del usuario"
// @Success 200 {array} models.RecItem
// @Router /recommendations/criteria [get]
func (h *RecommendHandler) GetByCriteria(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	q := r.URL.Query()
	req := ml.CriteriaRequest{Province: q.Get("province")}
	if tags := q.Get("tags"); tags != "" {
		req.Tags = strings.Split(tags, ",")
	}
	req.PriceMin, _ = strconv.Atoi(q.Get("price_min"))
	req.PriceMax, _ = strconv.Atoi(q.Get("price_max"))
	req.MinRating, _ = strconv.ParseFloat(q.Get("min_rating"), 64)
	req.TopK, _ = strconv.Atoi(q.Get("k"))
	userID, _ := strconv.Atoi(q.Get("user_id"))

	items, err := h.svc.ByCriteria(r.Context(), userID, req)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	_ = json.NewEncoder(w).Encode(items)
}

// @Summary Tours similares a uno dado
// @Tags tours
// @Produce json
// @Param id path int true "tourId"
// @Param k query int false "cantidad (máx 50)"
// @Success 200 {array} models.RecItem
// @Router /tours/{id}/similar [get]
func (h *RecommendHandler) GetSimilar(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	tourID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	k, _ := strconv.Atoi(r.URL.Query().Get("k"))

	items, err := h.svc.SimilarTours(r.Context(), tourID, k, nil)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	_ = json.NewEncoder(w).Encode(items)
}

// @Summary Explica la similitud entre dos tours
// @Tags tours
// @Produce json
// @Param id1 query int true "primer tourId"
// @Param id2 query int true "segundo tourId"
// @Success 200 {object} models.SimilarityExplanation
// @Router /tours/similarity-explain [get]
func (h *RecommendHandler) GetSimilarityExplain(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id1, _ := strconv.Atoi(r.URL.Query().Get("id1"))
	id2, _ := strconv.Atoi(r.URL.Query().Get("id2"))

	exp, err := h.svc.Explain(r.Context(), id1, id2)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if exp == nil {
		http.Error(w, "tour no encontrado", 404)
		return
	}
	_ = json.NewEncoder(w).Encode(exp)
}

// @Summary Registra una vista de tour
// @Tags tours
// @Produce json
// @Param id path int true "tourId"
// @Param user_id query int true "userId"
// @Success 200 {object} map[string]interface{}
// @Router /tours/{id}/view [post]
func (h *RecommendHandler) PostView(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	tourID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	userID, _ := strconv.Atoi(r.URL.Query().Get("user_id"))
	if userID <= 0 || tourID <= 0 {
		http.Error(w, "user_id y tourId son obligatorios", 400)
		return
	}

	if err := h.svc.TrackView(r.Context(), userID, tourID); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"tracked": true})
}

// @Summary Perfil de preferencias del usuario
// @Tags users
// @Produce json
// @Param id path int true "userId"
// @Success 200 {object} models.PreferenceProfile
// @Router /users/{id}/preferences [get]
func (h *RecommendHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	profile, err := h.svc.Preferences(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	_ = json.NewEncoder(w).Encode(profile)
}

// @Summary Recalcula el perfil de preferencias (invalida caches)
// @Tags users
// @Produce json
// @Param id path int true "userId"
// @Success 200 {object} models.PreferenceProfile
// @Router /users/{id}/preferences/rebuild [post]
func (h *RecommendHandler) PostRebuildPreferences(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	profile, err := h.svc.RebuildPreferences(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	_ = json.NewEncoder(w).Encode(profile)
}
