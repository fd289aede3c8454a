package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/n0thing2c/VNGO/internal/cache"
	"github.com/n0thing2c/VNGO/internal/ml"
	"github.com/n0thing2c/VNGO/internal/models"
)

// TTLs y límites del recomendador.
const (
	recCacheTTLSeconds     = 3600     // recomendaciones por usuario: 1h
	profileCacheTTLSeconds = 1800     // perfil de preferencias: 30min
	spaceCacheTTLSeconds   = 6 * 3600 // feature space por versión de catálogo

	defaultRecK = 20
	maxRecK     = 50
)

// CatalogStore es el catálogo completo (el planner usa el subset TourCatalog).
type CatalogStore interface {
	TourCatalog
	FetchAll(ctx context.Context) ([]models.TourRecord, error)
}

// InteractionHistory es el historial de interacciones que alimenta el perfil.
type InteractionHistory interface {
	TrackView(ctx context.Context, userID, tourID int) error
	ViewedByUser(ctx context.Context, userID int) ([]models.InteractionEvent, error)
	BookedByUser(ctx context.Context, userID int) ([]models.InteractionEvent, error)
	RatedByUser(ctx context.Context, userID int) ([]models.InteractionEvent, error)
}

// RecommendationStore persiste el historial de corridas.
type RecommendationStore interface {
	Insert(ctx context.Context, rec *models.Recommendation) error
}

// RecommendRequest: parámetros de una recomendación personalizada.
type RecommendRequest struct {
	UserID     int         `json:"user_id"`
	K          int         `json:"k,omitempty"`
	Refresh    bool        `json:"refresh,omitempty"`
	ExcludeIDs []int       `json:"exclude_ids,omitempty"`
	Filters    *ml.Filters `json:"-"`
}

// cacheable: la clave de cache solo codifica (user, k); pedidos con
// exclusiones o filtros propios no pueden compartirla ni escribirla.
func (r RecommendRequest) cacheable() bool {
	return len(r.ExcludeIDs) == 0 && r.Filters == nil
}

// RecommendService orquesta extractor + perfil + recommender con cache en
// Redis e historial en Mongo.
type RecommendService struct {
	catalog  CatalogStore
	history  InteractionHistory
	recStore RecommendationStore

	catalogVersion string
	shards         int

	mu     sync.Mutex
	fitted *ml.Recommender // instancia fitted para la versión actual
}

func NewRecommendService(
	catalog CatalogStore,
	history InteractionHistory,
	recStore RecommendationStore,
	catalogVersion string,
	shards int,
) *RecommendService {
	if catalogVersion == "" {
		catalogVersion = "v1"
	}
	return &RecommendService{
		catalog:        catalog,
		history:        history,
		recStore:       recStore,
		catalogVersion: catalogVersion,
		shards:         shards,
	}
}

func spaceCacheKey(version string) string { return "mlspace:catalog:" + version }

// fitRecommender devuelve un recommender fitted para la versión actual del
// catálogo. El feature space se cachea en Redis por versión: si está, solo
// se transforma el corpus; si no, se ajusta de cero y se guarda.
func (s *RecommendService) fitRecommender(ctx context.Context) (*ml.Recommender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fitted != nil && s.fitted.IsFitted() {
		return s.fitted, nil
	}

	tours, err := s.catalog.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("levantando catálogo: %w", err)
	}

	rec := ml.NewRecommender(s.shards)

	var space ml.FeatureSpace
	hit, err := cache.GetJSON(ctx, spaceCacheKey(s.catalogVersion), &space)
	if err != nil {
		log.Printf("[recommend] ⚠️ cache de feature space falló: %v", err)
		hit = false
	}

	if hit {
		if err := rec.FitWithExtractor(ml.NewFeatureExtractorFromSpace(&space), tours); err != nil {
			return nil, err
		}
	} else {
		if err := rec.Fit(tours); err != nil {
			return nil, err
		}
		if sp := rec.Extractor.Space(); sp != nil {
			if err := cache.SetJSON(ctx, spaceCacheKey(s.catalogVersion), sp, spaceCacheTTLSeconds); err != nil {
				log.Printf("[recommend] ⚠️ no se pudo cachear el feature space: %v", err)
			}
		}
	}

	s.fitted = rec
	return rec, nil
}

// InvalidateCatalog tira el feature space cacheado y fuerza re-fit en la
// próxima corrida (llamar cuando cambia el catálogo).
func (s *RecommendService) InvalidateCatalog(ctx context.Context) {
	s.mu.Lock()
	s.fitted = nil
	s.mu.Unlock()

	if err := cache.Del(ctx, spaceCacheKey(s.catalogVersion)); err != nil {
		log.Printf("[recommend] ⚠️ invalidando feature space: %v", err)
	}
}

// Recommend: recomendaciones personalizadas con cache de 1h por (user, k).
// Sin historial, degrada a ranking por criterios (rating + popularidad).
func (s *RecommendService) Recommend(ctx context.Context, req RecommendRequest) ([]models.RecItem, error) {
	if req.K <= 0 {
		req.K = defaultRecK
	}
	if req.K > maxRecK {
		req.K = maxRecK
	}

	cacheKey := fmt.Sprintf("rec:user:%d:k:%d", req.UserID, req.K)
	if !req.Refresh && req.cacheable() {
		var cached []models.RecItem
		if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	rec, err := s.fitRecommender(ctx)
	if err != nil {
		return nil, err
	}

	viewed, booked, rated, profileVec, err := s.buildProfileVector(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	// los tours ya reservados no se vuelven a recomendar
	exclude := append([]int{}, req.ExcludeIDs...)
	for _, ev := range booked {
		exclude = append(exclude, ev.TourID)
	}

	var items []models.RecItem
	algo := "content_profile"
	if profileVec != nil {
		items, err = rec.RecommendForProfile(profileVec, req.K, exclude, req.Filters)
	} else {
		// cold start: ranking por rating bayesiano + popularidad
		algo = "cold_start_criteria"
		criteria := ml.CriteriaRequest{TopK: req.K, ExcludeIDs: exclude}
		if req.Filters != nil {
			criteria.Province = req.Filters.Province
			criteria.Tags = req.Filters.Tags
			criteria.PriceMin = req.Filters.PriceMin
			criteria.PriceMax = req.Filters.PriceMax
			criteria.DurationMin = req.Filters.DurationMin
			criteria.DurationMax = req.Filters.DurationMax
			criteria.MinRating = req.Filters.MinRating
		}
		items, err = rec.RecommendByCriteria(criteria)
	}
	if err != nil {
		return nil, err
	}

	// historial: best-effort, nunca tira la respuesta
	if s.recStore != nil {
		histErr := s.recStore.Insert(ctx, &models.Recommendation{
			UserID: req.UserID,
			Algo:   algo,
			Params: map[string]any{
				"k":            req.K,
				"interactions": len(viewed) + len(booked) + len(rated),
			},
			Items: items,
		})
		if histErr != nil {
			log.Printf("[recommend] ⚠️ no se pudo guardar historial user=%d: %v", req.UserID, histErr)
		}
	}

	if req.cacheable() {
		if err := cache.SetJSON(ctx, cacheKey, items, recCacheTTLSeconds); err != nil {
			log.Printf("[recommend] ⚠️ no se pudo cachear user=%d: %v", req.UserID, err)
		}
	}
	return items, nil
}

// buildProfileVector arma el perfil del usuario y lo proyecta al espacio de
// features. Sin interacciones devuelve vector nil (cold start).
func (s *RecommendService) buildProfileVector(ctx context.Context, userID int) (
	viewed, booked, rated []models.InteractionEvent, vec []float64, err error,
) {
	if s.history == nil || userID <= 0 {
		return nil, nil, nil, nil, nil
	}

	viewed, err = s.history.ViewedByUser(ctx, userID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	booked, err = s.history.BookedByUser(ctx, userID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	rated, err = s.history.RatedByUser(ctx, userID)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	if len(viewed)+len(booked)+len(rated) == 0 {
		return viewed, booked, rated, nil, nil
	}

	rec, err := s.fitRecommender(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	builder := ml.NewProfileBuilder(rec.Extractor)
	profile := builder.BuildProfile(viewed, booked, rated, nil)
	vec, err = builder.BuildFeatureVector(profile, nil)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return viewed, booked, rated, vec, nil
}

// ProfileVectorFor: vector de perfil para personalizar otros flujos (el
// planner de viajes lo usa). Tolerante: falla o falta de historial ⇒ nil.
func (s *RecommendService) ProfileVectorFor(ctx context.Context, userID int) []float64 {
	_, _, _, vec, err := s.buildProfileVector(ctx, userID)
	if err != nil {
		log.Printf("[recommend] ⚠️ perfil user=%d no disponible: %v", userID, err)
		return nil
	}
	return vec
}

// SimilarTours: vecinos por coseno de un tour del catálogo.
func (s *RecommendService) SimilarTours(ctx context.Context, tourID, topK int, excludeIDs []int) ([]models.RecItem, error) {
	if topK <= 0 {
		topK = defaultRecK
	}
	if topK > maxRecK {
		topK = maxRecK
	}

	cacheKey := fmt.Sprintf("rec:similar:%d:k:%d", tourID, topK)
	if len(excludeIDs) == 0 {
		var cached []models.RecItem
		if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	rec, err := s.fitRecommender(ctx)
	if err != nil {
		return nil, err
	}
	items, err := rec.SimilarTours(tourID, topK, excludeIDs)
	if err != nil {
		return nil, err
	}

	if len(excludeIDs) == 0 {
		if err := cache.SetJSON(ctx, cacheKey, items, recCacheTTLSeconds); err != nil {
			log.Printf("[recommend] ⚠️ no se pudo cachear similares tour=%d: %v", tourID, err)
		}
	}
	return items, nil
}

// ByCriteria: búsqueda filtrar-primero-puntuar-después, opcionalmente
// personalizada con el perfil del usuario.
func (s *RecommendService) ByCriteria(ctx context.Context, userID int, req ml.CriteriaRequest) ([]models.RecItem, error) {
	rec, err := s.fitRecommender(ctx)
	if err != nil {
		return nil, err
	}
	if req.ProfileVector == nil && userID > 0 {
		req.ProfileVector = s.ProfileVectorFor(ctx, userID)
	}
	return rec.RecommendByCriteria(req)
}

// Explain: desglose de por qué dos tours se parecen. IDs desconocidos
// devuelven nil sin error.
func (s *RecommendService) Explain(ctx context.Context, tourID1, tourID2 int) (*models.SimilarityExplanation, error) {
	rec, err := s.fitRecommender(ctx)
	if err != nil {
		return nil, err
	}
	return rec.ExplainSimilarity(tourID1, tourID2)
}

func profileCacheKey(userID int) string { return fmt.Sprintf("profile:user:%d", userID) }

// Preferences: perfil de preferencias del usuario (cache 30min).
func (s *RecommendService) Preferences(ctx context.Context, userID int) (*models.PreferenceProfile, error) {
	var cached models.PreferenceProfile
	if hit, err := cache.GetJSON(ctx, profileCacheKey(userID), &cached); err == nil && hit {
		return &cached, nil
	}
	return s.rebuildPreferences(ctx, userID)
}

// RebuildPreferences fuerza el recálculo e invalida el cache del perfil y de
// las recomendaciones del usuario.
func (s *RecommendService) RebuildPreferences(ctx context.Context, userID int) (*models.PreferenceProfile, error) {
	if err := cache.Del(ctx, profileCacheKey(userID)); err != nil {
		log.Printf("[recommend] ⚠️ invalidando perfil user=%d: %v", userID, err)
	}
	for _, k := range []int{defaultRecK, maxRecK} {
		if err := cache.Del(ctx, fmt.Sprintf("rec:user:%d:k:%d", userID, k)); err != nil {
			log.Printf("[recommend] ⚠️ invalidando recomendaciones user=%d: %v", userID, err)
		}
	}
	return s.rebuildPreferences(ctx, userID)
}

func (s *RecommendService) rebuildPreferences(ctx context.Context, userID int) (*models.PreferenceProfile, error) {
	viewed, err := s.history.ViewedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	booked, err := s.history.BookedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	rated, err := s.history.RatedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	builder := ml.NewProfileBuilder(nil)
	profile := builder.BuildProfile(viewed, booked, rated, nil)

	if err := cache.SetJSON(ctx, profileCacheKey(userID), profile, profileCacheTTLSeconds); err != nil {
		log.Printf("[recommend] ⚠️ no se pudo cachear perfil user=%d: %v", userID, err)
	}
	return &profile, nil
}

// TrackView registra una vista e invalida el perfil cacheado del usuario
// para que la próxima corrida la tenga en cuenta.
func (s *RecommendService) TrackView(ctx context.Context, userID, tourID int) error {
	if err := s.history.TrackView(ctx, userID, tourID); err != nil {
		return err
	}
	if err := cache.Del(ctx, profileCacheKey(userID)); err != nil {
		log.Printf("[recommend] ⚠️ invalidando perfil user=%d: %v", userID, err)
	}
	return nil
}
