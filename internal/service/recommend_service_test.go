package service

import (
	"context"
	"testing"
	"time"

	"github.com/n0thing2c/VNGO/internal/ml"
	"github.com/n0thing2c/VNGO/internal/models"
)

// fakeHistory implementa InteractionHistory en memoria.
type fakeHistory struct {
	viewed []models.InteractionEvent
	booked []models.InteractionEvent
	rated  []models.InteractionEvent
}

func (f *fakeHistory) TrackView(_ context.Context, userID, tourID int) error {
	f.viewed = append(f.viewed, models.InteractionEvent{
		UserID: userID, TourID: tourID, Type: models.InteractionView, Timestamp: time.Now(),
	})
	return nil
}

func (f *fakeHistory) ViewedByUser(_ context.Context, _ int) ([]models.InteractionEvent, error) {
	return f.viewed, nil
}

func (f *fakeHistory) BookedByUser(_ context.Context, _ int) ([]models.InteractionEvent, error) {
	return f.booked, nil
}

func (f *fakeHistory) RatedByUser(_ context.Context, _ int) ([]models.InteractionEvent, error) {
	return f.rated, nil
}

type fakeRecStore struct {
	saved []*models.Recommendation
}

func (f *fakeRecStore) Insert(_ context.Context, rec *models.Recommendation) error {
	f.saved = append(f.saved, rec)
	return nil
}

func newTestRecommendService(history *fakeHistory, store *fakeRecStore) *RecommendService {
	var recStore RecommendationStore
	if store != nil {
		recStore = store
	}
	return NewRecommendService(&fakeCatalog{tours: hanoiTours()}, history, recStore, "test", 1)
}

func TestRecommendRequestCacheable(t *testing.T) {
	cases := []struct {
		name string
		req  RecommendRequest
		want bool
	}{
		{"solo user y k", RecommendRequest{UserID: 1, K: 10}, true},
		{"con exclusiones", RecommendRequest{UserID: 1, K: 10, ExcludeIDs: []int{3}}, false},
		{"con filtros", RecommendRequest{UserID: 1, K: 10, Filters: &ml.Filters{PriceMax: 500000}}, false},
	}
	// la clave de cache solo lleva (user, k): cualquier parámetro extra
	// tiene que sacar al pedido del cache compartido
	for _, c := range cases {
		if got := c.req.cacheable(); got != c.want {
			t.Errorf("%s: cacheable() = %v, esperaba %v", c.name, got, c.want)
		}
	}
}

func TestRecommendColdStartFallsBackToCriteria(t *testing.T) {
	store := &fakeRecStore{}
	s := newTestRecommendService(&fakeHistory{}, store)

	items, err := s.Recommend(context.Background(), RecommendRequest{UserID: 7, K: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) == 0 {
		t.Fatal("sin recomendaciones para un usuario nuevo")
	}
	if len(items) > 3 {
		t.Fatalf("esperaba como máximo 3, obtuve %d", len(items))
	}
	if len(store.saved) != 1 || store.saved[0].Algo != "cold_start_criteria" {
		t.Errorf("historial: %+v", store.saved)
	}
}

func TestRecommendHonorsExcludeIDs(t *testing.T) {
	s := newTestRecommendService(&fakeHistory{}, nil)

	items, err := s.Recommend(context.Background(), RecommendRequest{
		UserID: 7, K: 10, ExcludeIDs: []int{1, 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range items {
		if it.TourID == 1 || it.TourID == 2 {
			t.Errorf("tour excluido %d apareció en los resultados", it.TourID)
		}
	}
}

func TestRecommendExcludesBookedTours(t *testing.T) {
	tours := hanoiTours()
	history := &fakeHistory{
		booked: []models.InteractionEvent{
			{UserID: 7, TourID: 1, Type: models.InteractionBook, Timestamp: time.Now(), Tour: &tours[0]},
		},
	}
	s := newTestRecommendService(history, nil)

	items, err := s.Recommend(context.Background(), RecommendRequest{UserID: 7, K: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) == 0 {
		t.Fatal("sin recomendaciones")
	}
	for _, it := range items {
		if it.TourID == 1 {
			t.Error("el tour ya reservado volvió a recomendarse")
		}
	}
}

func TestRecommendClampsK(t *testing.T) {
	store := &fakeRecStore{}
	s := newTestRecommendService(&fakeHistory{}, store)

	if _, err := s.Recommend(context.Background(), RecommendRequest{UserID: 7, K: 500}); err != nil {
		t.Fatal(err)
	}
	params, ok := store.saved[0].Params.(map[string]any)
	if !ok {
		t.Fatalf("params %T", store.saved[0].Params)
	}
	if params["k"] != maxRecK {
		t.Errorf("k = %v, esperaba el tope %d", params["k"], maxRecK)
	}
}

func TestSimilarToursViaService(t *testing.T) {
	s := newTestRecommendService(&fakeHistory{}, nil)

	items, err := s.SimilarTours(context.Background(), 1, 5, []int{2})
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range items {
		if it.TourID == 1 || it.TourID == 2 {
			t.Errorf("tour %d no debería estar entre los similares", it.TourID)
		}
	}
}
