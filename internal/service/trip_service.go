package service

import (
	"context"
	"log"

	"github.com/n0thing2c/VNGO/internal/models"
)

// TripPlanStore persiste el historial de planes generados.
type TripPlanStore interface {
	Insert(ctx context.Context, doc *models.TripPlanDoc) error
	FindByUser(ctx context.Context, userID int, limit int64) ([]models.TripPlanDoc, error)
}

// ProgressFunc recibe los hitos de una corrida (para el stream websocket).
type ProgressFunc func(phase, message string)

// TripService es la fachada del planner: personalización, hoteles e
// historial alrededor del pipeline puro.
type TripService struct {
	planner *TripPlanner
	hotels  *HotelService
	store   TripPlanStore
	rec     *RecommendService
}

func NewTripService(planner *TripPlanner, hotels *HotelService, store TripPlanStore, rec *RecommendService) *TripService {
	return &TripService{planner: planner, hotels: hotels, store: store, rec: rec}
}

// GenerateTripPlan corre el pipeline completo y guarda el resultado.
func (s *TripService) GenerateTripPlan(ctx context.Context, req TripRequest) (*models.TripPlan, error) {
	return s.GenerateWithProgress(ctx, req, nil)
}

// GenerateWithProgress es la misma corrida pero notificando cada fase.
func (s *TripService) GenerateWithProgress(ctx context.Context, req TripRequest, progress ProgressFunc) (*models.TripPlan, error) {
	notify := func(phase, msg string) {
		if progress != nil {
			progress(phase, msg)
		}
	}

	// perfil del usuario para el bonus de personalización (best-effort)
	if req.UserID > 0 && s.rec != nil && req.ProfileVector == nil {
		notify("profile", "armando perfil de preferencias")
		req.ProfileVector = s.rec.ProfileVectorFor(ctx, req.UserID)
	}

	notify("planning", "puntuando y agendando tours")
	plan, err := s.planner.GenerateTripPlan(ctx, req)
	if err != nil {
		return nil, err
	}

	if plan.Success && s.hotels != nil {
		notify("hotels", "buscando alojamiento")
		plan.Hotels = s.hotels.HotelsForTrip(ctx, plan)
	}

	// solo los planes con contenido van al historial; best-effort, no tira
	// la respuesta
	if plan.Success && req.UserID > 0 && s.store != nil {
		if err := s.store.Insert(ctx, &models.TripPlanDoc{UserID: req.UserID, Plan: *plan}); err != nil {
			log.Printf("[trip] ⚠️ no se pudo guardar plan user=%d: %v", req.UserID, err)
		}
	}

	notify("done", "plan listo")
	return plan, nil
}

// History: planes previos del usuario, más recientes primero.
func (s *TripService) History(ctx context.Context, userID int, limit int64) ([]models.TripPlanDoc, error) {
	return s.store.FindByUser(ctx, userID, limit)
}

// Modificaciones sobre un plan existente (el cliente manda el plan entero).

func (s *TripService) AddTour(ctx context.Context, plan *models.TripPlan, dayNumber, tourID int) (*models.TripPlan, error) {
	return s.planner.AddTour(ctx, plan, dayNumber, tourID)
}

func (s *TripService) RemoveTour(plan *models.TripPlan, dayNumber, tourID int) *models.TripPlan {
	return s.planner.RemoveTour(plan, dayNumber, tourID)
}

func (s *TripService) SwapTour(ctx context.Context, plan *models.TripPlan, dayNumber, oldTourID, newTourID int) (*models.TripPlan, error) {
	return s.planner.SwapTour(ctx, plan, dayNumber, oldTourID, newTourID)
}

func (s *TripService) Alternatives(ctx context.Context, plan *models.TripPlan, dayNumber int, excludeIDs []int, limit int) ([]ScoredTour, error) {
	return s.planner.Alternatives(ctx, plan, dayNumber, excludeIDs, limit)
}
