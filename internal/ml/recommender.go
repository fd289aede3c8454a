package ml

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/n0thing2c/VNGO/internal/models"
)

const (
	// prior bayesiano global para amortiguar tours con pocas reseñas
	bayesianGlobalAvg  = 3.5
	bayesianMinReviews = 5

	// cantidad default de shards (goroutines) para el cálculo de similitudes
	defaultScoreShards = 4
)

// BayesianRating acerca el promedio al prior global 3.5 con 5 reseñas
// virtuales: (n·avg + 5·3.5) / (n+5).
func BayesianRating(avg float64, count int) float64 {
	n := float64(count)
	return (n*avg + bayesianMinReviews*bayesianGlobalAvg) / (n + bayesianMinReviews)
}

// CosineSimilarity entre dos vectores; vector nulo ⇒ 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Filters se aplican después de la similitud como predicado booleano.
type Filters struct {
	Province    string
	Tags        []string
	PriceMin    int
	PriceMax    int
	DurationMin float64
	DurationMax float64
	MinRating   float64
}

// CriteriaRequest es la búsqueda filtrar-primero-puntuar-después.
type CriteriaRequest struct {
	Province      string
	Tags          []string
	PriceMin      int
	PriceMax      int
	DurationMin   float64
	DurationMax   float64
	MinRating     float64
	TopK          int
	ExcludeIDs    []int
	ProfileVector []float64
}

// Recommender: filtrado por contenido con similitud coseno sobre los
// vectores de features del corpus.
type Recommender struct {
	Extractor *FeatureExtractor

	vectors [][]float64
	tours   []models.TourRecord
	index   map[int]int // tourID -> fila
	fitted  bool
	shards  int
}

func NewRecommender(shards int) *Recommender {
	if shards <= 0 {
		shards = defaultScoreShards
	}
	return &Recommender{Extractor: NewFeatureExtractor(), shards: shards}
}

// Fit ajusta el extractor sobre el corpus y guarda un vector por tour.
func (r *Recommender) Fit(tours []models.TourRecord) error {
	if len(tours) == 0 {
		return nil
	}
	vectors, err := r.Extractor.FitTransform(tours)
	if err != nil {
		return err
	}
	r.install(tours, vectors)
	return nil
}

// FitWithExtractor usa un extractor ya fitted (feature space cacheado) y
// solo transforma el corpus actual.
func (r *Recommender) FitWithExtractor(ex *FeatureExtractor, tours []models.TourRecord) error {
	vectors, err := ex.Transform(tours)
	if err != nil {
		return err
	}
	r.Extractor = ex
	r.install(tours, vectors)
	return nil
}

func (r *Recommender) install(tours []models.TourRecord, vectors [][]float64) {
	r.tours = tours
	r.vectors = vectors
	r.index = make(map[int]int, len(tours))
	for i := range tours {
		r.index[tours[i].ID] = i
	}
	r.fitted = true
}

func (r *Recommender) IsFitted() bool { return r.fitted }

// ====== Similitud sharded (fan-out de goroutines con parciales) ======

type simTask struct {
	shardID int
	shards  int
}

type simPartial struct {
	row int
	sim float64
}

// similaritiesTo reparte las filas del corpus entre shards y combina los
// parciales, igual que un coordinador con sus nodos de cómputo.
func (r *Recommender) similaritiesTo(vec []float64) []float64 {
	sims := make([]float64, len(r.vectors))

	shards := r.shards
	if shards > len(r.vectors) {
		shards = len(r.vectors)
	}
	if shards <= 1 {
		for i := range r.vectors {
			sims[i] = CosineSimilarity(vec, r.vectors[i])
		}
		return sims
	}

	resCh := make(chan []simPartial, shards)
	var wg sync.WaitGroup

	for s := 0; s < shards; s++ {
		wg.Add(1)
		go func(t simTask) {
			defer wg.Done()
			var partials []simPartial
			for i := t.shardID; i < len(r.vectors); i += t.shards {
				partials = append(partials, simPartial{
					row: i,
					sim: CosineSimilarity(vec, r.vectors[i]),
				})
			}
			resCh <- partials
		}(simTask{shardID: s, shards: shards})
	}

	wg.Wait()
	close(resCh)

	for partials := range resCh {
		for _, p := range partials {
			sims[p.row] = p.sim
		}
	}
	return sims
}

// SimilarTours: tours más parecidos a tour_id por coseno. Un tour_id
// desconocido devuelve lista vacía (lookup tolerante), no error.
func (r *Recommender) SimilarTours(tourID, topK int, excludeIDs []int) ([]models.RecItem, error) {
	if !r.fitted {
		return nil, ErrNotFitted
	}

	row, ok := r.index[tourID]
	if !ok {
		return []models.RecItem{}, nil
	}

	exclude := toSet(excludeIDs)
	sims := r.similaritiesTo(r.vectors[row])

	order := argsortDesc(sims)
	results := make([]models.RecItem, 0, topK)
	for _, idx := range order {
		if len(results) >= topK {
			break
		}
		id := r.tours[idx].ID
		if id == tourID || exclude[id] {
			continue
		}
		results = append(results, models.RecItem{
			TourID: id,
			Score:  sims[idx],
			Tour:   r.tours[idx].Summary(),
		})
	}
	return results, nil
}

// RecommendForProfile: la misma mecánica pero contra el vector de perfil
// del usuario; los filtros se evalúan después de la similitud.
func (r *Recommender) RecommendForProfile(
	profileVec []float64,
	topK int,
	excludeIDs []int,
	filters *Filters,
) ([]models.RecItem, error) {

	if !r.fitted {
		return nil, ErrNotFitted
	}

	exclude := toSet(excludeIDs)
	sims := r.similaritiesTo(profileVec)

	order := argsortDesc(sims)
	results := make([]models.RecItem, 0, topK)
	for _, idx := range order {
		if len(results) >= topK {
			break
		}
		tour := &r.tours[idx]
		if exclude[tour.ID] {
			continue
		}
		if filters != nil && !matchesFilters(tour, filters) {
			continue
		}
		results = append(results, models.RecItem{
			TourID: tour.ID,
			Score:  sims[idx],
			Tour:   tour.Summary(),
		})
	}
	return results, nil
}

// RecommendByCriteria: dos fases — primero filtrar candidatos, después
// puntuar con el compuesto 30% rating bayesiano / 25% match de tags /
// 35% similitud con el perfil / 10% popularidad. Orden estable: empates
// quedan en el orden de entrada.
func (r *Recommender) RecommendByCriteria(req CriteriaRequest) ([]models.RecItem, error) {
	if !r.fitted {
		return nil, ErrNotFitted
	}

	if req.TopK <= 0 {
		req.TopK = 20
	}
	exclude := toSet(req.ExcludeIDs)

	filters := &Filters{
		Province:    req.Province,
		Tags:        req.Tags,
		PriceMin:    req.PriceMin,
		PriceMax:    req.PriceMax,
		DurationMin: req.DurationMin,
		DurationMax: req.DurationMax,
		MinRating:   req.MinRating,
	}

	var rows []int
	for i := range r.tours {
		if exclude[r.tours[i].ID] {
			continue
		}
		if matchesFilters(&r.tours[i], filters) {
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 {
		return []models.RecItem{}, nil
	}

	scores := make([]float64, len(rows))
	for i, row := range rows {
		scores[i] = r.compositeScore(row, req.Tags, req.ProfileVector)
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })

	if len(idx) > req.TopK {
		idx = idx[:req.TopK]
	}
	results := make([]models.RecItem, 0, len(idx))
	for _, i := range idx {
		row := rows[i]
		results = append(results, models.RecItem{
			TourID: r.tours[row].ID,
			Score:  scores[i],
			Tour:   r.tours[row].Summary(),
		})
	}
	return results, nil
}

func (r *Recommender) compositeScore(row int, preferredTags []string, profileVec []float64) float64 {
	tour := &r.tours[row]
	score := 0.0

	// rating bayesiano (30%)
	if tour.RatingCount > 0 {
		score += (BayesianRating(tour.AverageRating(), tour.RatingCount) / 5.0) * 0.3
	}

	// match de tags (25%)
	if len(preferredTags) > 0 && len(tour.Tags) > 0 {
		matches := 0
		for _, tag := range preferredTags {
			if tour.Tags.Contains(tag) {
				matches++
			}
		}
		score += float64(matches) / float64(len(preferredTags)) * 0.25
	}

	// similitud con el perfil (35%)
	if profileVec != nil {
		score += CosineSimilarity(profileVec, r.vectors[row]) * 0.35
	}

	// popularidad: reseñas con tope en 100 (10%)
	popularity := float64(tour.RatingCount) / 100
	if popularity > 1 {
		popularity = 1
	}
	score += popularity * 0.1

	return score
}

// ExplainSimilarity: diagnóstico puro — coseno crudo más intersecciones y
// deltas absolutos. IDs desconocidos devuelven nil (lookup tolerante).
func (r *Recommender) ExplainSimilarity(tourID1, tourID2 int) (*models.SimilarityExplanation, error) {
	if !r.fitted {
		return nil, ErrNotFitted
	}

	i1, ok1 := r.index[tourID1]
	i2, ok2 := r.index[tourID2]
	if !ok1 || !ok2 {
		return nil, nil
	}

	t1, t2 := &r.tours[i1], &r.tours[i2]

	priceDiff := t1.Price - t2.Price
	if priceDiff < 0 {
		priceDiff = -priceDiff
	}

	return &models.SimilarityExplanation{
		SimilarityScore:    CosineSimilarity(r.vectors[i1], r.vectors[i2]),
		CommonTags:         intersect(t1.Tags, t2.Tags),
		CommonProvinces:    intersect(t1.Provinces(), t2.Provinces()),
		SameTransportation: t1.Transportation == t2.Transportation,
		PriceDifference:    priceDiff,
		DurationDifference: math.Abs(t1.Duration - t2.Duration),
	}, nil
}

// TourVector devuelve el vector de un tour, o nil si no está en el corpus.
func (r *Recommender) TourVector(tourID int) []float64 {
	if row, ok := r.index[tourID]; ok {
		return r.vectors[row]
	}
	return nil
}

func matchesFilters(tour *models.TourRecord, f *Filters) bool {
	if f.Province != "" {
		found := false
		for _, p := range tour.Provinces() {
			if strings.Contains(strings.ToLower(p), strings.ToLower(f.Province)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(f.Tags) > 0 {
		any := false
		for _, tag := range f.Tags {
			if tour.Tags.Contains(tag) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}

	if f.PriceMin > 0 && tour.Price < f.PriceMin {
		return false
	}
	if f.PriceMax > 0 && tour.Price > f.PriceMax {
		return false
	}
	if f.DurationMin > 0 && tour.Duration < f.DurationMin {
		return false
	}
	if f.DurationMax > 0 && tour.Duration > f.DurationMax {
		return false
	}
	if f.MinRating > 0 && tour.AverageRating() < f.MinRating {
		return false
	}
	return true
}

// argsortDesc: índices ordenados por similitud descendente (estable).
func argsortDesc(values []float64) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] > values[idx[b]] })
	return idx
}

func toSet(ids []int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func intersect(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[s] = true
	}
	var out []string
	for _, s := range a {
		if inB[s] {
			out = append(out, s)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}
