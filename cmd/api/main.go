package main

import (
	"log"
	"net/http"

	_ "github.com/n0thing2c/VNGO/docs" // swagger docs

	"github.com/n0thing2c/VNGO/internal/cache"
	"github.com/n0thing2c/VNGO/internal/config"
	"github.com/n0thing2c/VNGO/internal/db"
	"github.com/n0thing2c/VNGO/internal/handler"
	"github.com/n0thing2c/VNGO/internal/repository"
	"github.com/n0thing2c/VNGO/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title VNGO Trip Planner API
// @version 1.0
// @description Planificador de viajes y recomendador de tours (content-based, Mongo, Redis)
// @host localhost:8080
// @BasePath /
func main() {
	cfg := config.Load()

	// Mongo y Redis
	db.InitMongo(cfg)
	cache.InitRedis(cfg)

	// repos
	tourRepo := repository.NewTourRepository()
	interactionRepo := repository.NewInteractionRepository()
	recRepo := repository.NewRecommendationRepository()
	tripRepo := repository.NewTripPlanRepository()

	// services
	recSvc := service.NewRecommendService(tourRepo, interactionRepo, recRepo, cfg.CatalogVersion, cfg.ScoreShards)
	planner := service.NewTripPlanner(tourRepo)
	hotelSvc := service.NewHotelService(cfg.RapidAPIKey)
	tripSvc := service.NewTripService(planner, hotelSvc, tripRepo, recSvc)

	// handlers
	recH := handler.NewRecommendHandler(recSvc)
	tripH := handler.NewTripHandler(tripSvc)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", handler.Health)

	// ============================
	// Planificador de viajes
	// ============================
	r.Route("/trip-plan", func(r chi.Router) {
		r.Post("/", tripH.PostTripPlan)
		r.Post("/modify", tripH.PostModify)
		r.Get("/{id}/history", tripH.GetHistory)

		// WebSocket con progreso
		r.Get("/ws", tripH.TripPlanWS)
	})

	// ============================
	// Recomendador
	// ============================
	r.Post("/recommendations", recH.PostRecommendations)
	r.Get("/recommendations/criteria", recH.GetByCriteria)

	r.Route("/tours", func(r chi.Router) {
		r.Get("/{id}/similar", recH.GetSimilar)
		r.Get("/similarity-explain", recH.GetSimilarityExplain)
		r.Post("/{id}/view", recH.PostView)
	})

	r.Route("/users/{id}", func(r chi.Router) {
		r.Get("/preferences", recH.GetPreferences)
		r.Post("/preferences/rebuild", recH.PostRebuildPreferences)
	})

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	log.Printf("HTTP escuchando en :%s", cfg.HTTPPort)
	log.Fatal(http.ListenAndServe(":"+cfg.HTTPPort, r))
}
