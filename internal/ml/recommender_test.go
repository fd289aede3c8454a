package ml

import (
	"math"
	"testing"
)

func fittedRecommender(t *testing.T) *Recommender {
	t.Helper()
	r := NewRecommender(2)
	if err := r.Fit(sampleCorpus()); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestBayesianRatingShrinksTowardsPrior(t *testing.T) {
	// sin reseñas: exactamente el prior
	if b := BayesianRating(0, 0); math.Abs(b-3.5) > 1e-9 {
		t.Errorf("0 reseñas: %v, esperaba 3.5", b)
	}

	// cinco reseñas de 3.5 equivalen a no tener reseñas
	if b := BayesianRating(3.5, 5); math.Abs(b-3.5) > 1e-9 {
		t.Errorf("5 reseñas de 3.5: %v, esperaba 3.5", b)
	}

	// pocas reseñas perfectas quedan entre el promedio crudo y el prior
	few := BayesianRating(5, 2)
	if few >= 5 || few <= 3.5 {
		t.Errorf("2 reseñas de 5: %v, esperaba en (3.5, 5)", few)
	}

	// muchas reseñas dominan al prior
	many := BayesianRating(5, 1000)
	if many <= few {
		t.Errorf("más reseñas deberían acercarse al promedio: %v <= %v", many, few)
	}
}

func TestCosineSimilarityEdgeCases(t *testing.T) {
	if s := CosineSimilarity([]float64{1, 0}, []float64{1, 0}); math.Abs(s-1) > 1e-9 {
		t.Errorf("vectores iguales: %v", s)
	}
	if s := CosineSimilarity([]float64{0, 0}, []float64{1, 0}); s != 0 {
		t.Errorf("vector nulo: %v, esperaba 0", s)
	}
	if s := CosineSimilarity([]float64{1}, []float64{1, 0}); s != 0 {
		t.Errorf("longitudes distintas: %v, esperaba 0", s)
	}
}

func TestSelfSimilarityIsOne(t *testing.T) {
	r := fittedRecommender(t)
	exp, err := r.ExplainSimilarity(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if exp == nil {
		t.Fatal("explicación nil para un tour conocido")
	}
	if math.Abs(exp.SimilarityScore-1) > 1e-9 {
		t.Errorf("similitud consigo mismo = %v, esperaba 1", exp.SimilarityScore)
	}
}

func TestSimilarToursUnknownIDReturnsEmpty(t *testing.T) {
	r := fittedRecommender(t)
	items, err := r.SimilarTours(99999, 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("esperaba lista vacía, obtuve %v", items)
	}
}

func TestSimilarToursExcludesSelf(t *testing.T) {
	r := fittedRecommender(t)
	items, err := r.SimilarTours(1, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range items {
		if it.TourID == 1 {
			t.Fatal("el propio tour apareció en sus similares")
		}
	}
}

func TestUnfittedRecommenderReturnsErrNotFitted(t *testing.T) {
	r := NewRecommender(0)
	if _, err := r.SimilarTours(1, 5, nil); err != ErrNotFitted {
		t.Errorf("SimilarTours: %v", err)
	}
	if _, err := r.RecommendForProfile(nil, 5, nil, nil); err != ErrNotFitted {
		t.Errorf("RecommendForProfile: %v", err)
	}
	if _, err := r.ExplainSimilarity(1, 2); err != ErrNotFitted {
		t.Errorf("ExplainSimilarity: %v", err)
	}
}

func TestProfileOfFoodLoverRanksFoodTourFirst(t *testing.T) {
	corpus := sampleCorpus()
	r := NewRecommender(1)
	if err := r.Fit(corpus); err != nil {
		t.Fatal(err)
	}

	// perfil: exactamente el vector del tour de comida
	profileVec := r.TourVector(1)
	if profileVec == nil {
		t.Fatal("vector del tour 1 no disponible")
	}

	items, err := r.RecommendForProfile(profileVec, 3, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) == 0 {
		t.Fatal("sin recomendaciones")
	}
	if items[0].TourID != 1 {
		t.Errorf("primer resultado %d, esperaba el tour de comida (1)", items[0].TourID)
	}
	// el tour cultural comparte tag y provincia cero; el de naturaleza no
	// comparte nada: nunca debería ir antes que el cultural
	pos := map[int]int{}
	for i, it := range items {
		pos[it.TourID] = i
	}
	if pos[3] < pos[2] {
		t.Errorf("orden %v: naturaleza antes que cultura para un perfil de comida", items)
	}
}

func TestRecommendForProfileAppliesFilters(t *testing.T) {
	r := fittedRecommender(t)
	profileVec := r.TourVector(1)

	items, err := r.RecommendForProfile(profileVec, 10, nil, &Filters{PriceMax: 400000})
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range items {
		if it.Tour.Price > 400000 {
			t.Errorf("tour %d con precio %d pasó el filtro PriceMax", it.TourID, it.Tour.Price)
		}
	}
}

func TestRecommendByCriteriaFiltersThenScores(t *testing.T) {
	r := fittedRecommender(t)

	items, err := r.RecommendByCriteria(CriteriaRequest{
		Tags: []string{"culture"},
		TopK: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("esperaba 2 tours con tag culture, obtuve %d", len(items))
	}
	for _, it := range items {
		if !it.Tour.Tags.Contains("culture") {
			t.Errorf("tour %d sin el tag requerido", it.TourID)
		}
	}
	// orden descendente por score
	for i := 1; i < len(items); i++ {
		if items[i].Score > items[i-1].Score {
			t.Errorf("resultados fuera de orden: %v", items)
		}
	}
}

func TestRecommendByCriteriaNoMatchesReturnsEmpty(t *testing.T) {
	r := fittedRecommender(t)
	items, err := r.RecommendByCriteria(CriteriaRequest{Province: "Marte"})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Fatalf("esperaba vacío, obtuve %v", items)
	}
}

func TestExplainSimilarityUnknownIDReturnsNil(t *testing.T) {
	r := fittedRecommender(t)
	exp, err := r.ExplainSimilarity(1, 99999)
	if err != nil {
		t.Fatal(err)
	}
	if exp != nil {
		t.Fatalf("esperaba nil, obtuve %+v", exp)
	}
}

func TestExplainSimilarityCommonTags(t *testing.T) {
	r := fittedRecommender(t)
	exp, err := r.ExplainSimilarity(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(exp.CommonTags) != 1 || exp.CommonTags[0] != "culture" {
		t.Errorf("tags en común %v, esperaba [culture]", exp.CommonTags)
	}
	if exp.SameTransportation {
		t.Error("walk vs public marcado como mismo transporte")
	}
	if exp.PriceDifference != 200000 {
		t.Errorf("diferencia de precio %d, esperaba 200000", exp.PriceDifference)
	}
}

func TestShardedSimilaritiesMatchSequential(t *testing.T) {
	corpus := sampleCorpus()

	seq := NewRecommender(1)
	par := NewRecommender(8)
	if err := seq.Fit(corpus); err != nil {
		t.Fatal(err)
	}
	if err := par.Fit(corpus); err != nil {
		t.Fatal(err)
	}

	vec := seq.TourVector(1)
	a := seq.similaritiesTo(vec)
	b := par.similaritiesTo(vec)
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-12 {
			t.Fatalf("fila %d: %v vs %v", i, a[i], b[i])
		}
	}
}
