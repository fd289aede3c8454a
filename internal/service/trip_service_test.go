package service

import (
	"context"
	"testing"

	"github.com/n0thing2c/VNGO/internal/models"
)

type fakeTripStore struct {
	saved []models.TripPlanDoc
}

func (f *fakeTripStore) Insert(_ context.Context, doc *models.TripPlanDoc) error {
	f.saved = append(f.saved, *doc)
	return nil
}

func (f *fakeTripStore) FindByUser(_ context.Context, userID int, _ int64) ([]models.TripPlanDoc, error) {
	var out []models.TripPlanDoc
	for _, d := range f.saved {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func TestGenerateTripPlanPersistsForKnownUser(t *testing.T) {
	store := &fakeTripStore{}
	svc := NewTripService(newTestPlanner(), nil, store, nil)

	plan, err := svc.GenerateTripPlan(context.Background(), TripRequest{
		Province: "Hanoi", NumDays: 2, Budget: 3000000, NumPeople: 2, UserID: 42,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !plan.Success {
		t.Fatalf("plan sin éxito: %s", plan.Reason)
	}

	if len(store.saved) != 1 || store.saved[0].UserID != 42 {
		t.Fatalf("historial: %+v", store.saved)
	}

	docs, err := svc.History(context.Background(), 42, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 {
		t.Fatalf("History devolvió %d documentos", len(docs))
	}
}

func TestGenerateTripPlanAnonymousIsNotPersisted(t *testing.T) {
	store := &fakeTripStore{}
	svc := NewTripService(newTestPlanner(), nil, store, nil)

	if _, err := svc.GenerateTripPlan(context.Background(), TripRequest{
		Province: "Hanoi", NumDays: 1, Budget: 1000000, NumPeople: 1,
	}); err != nil {
		t.Fatal(err)
	}
	if len(store.saved) != 0 {
		t.Fatalf("plan anónimo persistido: %+v", store.saved)
	}
}

func TestGenerateWithProgressReportsPhases(t *testing.T) {
	svc := NewTripService(newTestPlanner(), nil, nil, nil)

	var phases []string
	_, err := svc.GenerateWithProgress(context.Background(), TripRequest{
		Province: "Hanoi", NumDays: 1, Budget: 1000000, NumPeople: 1,
	}, func(phase, _ string) {
		phases = append(phases, phase)
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(phases) < 2 {
		t.Fatalf("fases reportadas: %v", phases)
	}
	if phases[0] != "planning" || phases[len(phases)-1] != "done" {
		t.Errorf("secuencia de fases: %v", phases)
	}
}
