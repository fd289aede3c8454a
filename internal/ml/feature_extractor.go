package ml

import (
	"errors"
	"math"
	"sort"

	"github.com/n0thing2c/VNGO/internal/models"
)

// ErrNotFitted es una violación de contrato: transform antes de fit.
var ErrNotFitted = errors.New("feature extractor sin ajustar: llamar Fit antes de Transform")

const numNumericFeatures = 6

// FeatureSpace es el estado fitted completo del extractor. Se comparte por
// referencia entre el scorer de tours y el builder de perfiles para que
// ambos generen vectores en el MISMO espacio, y es serializable para
// cachearlo en Redis por versión de catálogo.
type FeatureSpace struct {
	Tags      []string        `json:"tags"`      // vocabulario ordenado
	Provinces []string        `json:"provinces"` // vocabulario ordenado
	NumMeans  []float64       `json:"num_means"`
	NumStds   []float64       `json:"num_stds"`
	Text      *TextVectorizer `json:"text"`
}

// Dim es la longitud fija de todo vector emitido en este espacio.
func (s *FeatureSpace) Dim() int {
	return numNumericFeatures + len(s.Tags) + len(models.TransportationTypes) +
		len(models.MeetingLocations) + len(s.Provinces) + s.Text.Dim()
}

// FeatureExtractor convierte tours en vectores numéricos de longitud fija:
// numéricos escalados[6] ++ tags multi-hot ++ transporte one-hot[3] ++
// encuentro one-hot[3] ++ provincias multi-hot ++ texto TF-IDF[≤100].
type FeatureExtractor struct {
	space  *FeatureSpace
	fitted bool
}

func NewFeatureExtractor() *FeatureExtractor {
	return &FeatureExtractor{}
}

// NewFeatureExtractorFromSpace reconstruye un extractor desde un espacio
// cacheado (salta el escaneo del corpus).
func NewFeatureExtractorFromSpace(space *FeatureSpace) *FeatureExtractor {
	if space == nil {
		return &FeatureExtractor{}
	}
	return &FeatureExtractor{space: space, fitted: true}
}

func (e *FeatureExtractor) IsFitted() bool { return e.fitted }

func (e *FeatureExtractor) Space() *FeatureSpace { return e.space }

// Fit escanea el corpus: vocabularios de tags/provincias, scaler numérico
// (media 0 / desvío 1) y modelo de texto sobre las descripciones.
func (e *FeatureExtractor) Fit(tours []models.TourRecord) *FeatureExtractor {
	if len(tours) == 0 {
		return e
	}

	tagSet := make(map[string]bool)
	provSet := make(map[string]bool)
	docs := make([]string, 0, len(tours))

	for i := range tours {
		for _, tag := range tours[i].Tags {
			tagSet[tag] = true
		}
		for _, p := range tours[i].Places {
			if name := p.ProvinceName(); name != "" {
				provSet[name] = true
			}
		}
		docs = append(docs, tours[i].Description)
	}

	space := &FeatureSpace{
		Tags:      sortedKeys(tagSet),
		Provinces: sortedKeys(provSet),
		Text:      &TextVectorizer{},
	}
	space.Text.Fit(docs)

	// scaler sobre {price, duration, avg_rating, min_people, max_people, rating_count}
	space.NumMeans = make([]float64, numNumericFeatures)
	space.NumStds = make([]float64, numNumericFeatures)

	rows := make([][numNumericFeatures]float64, len(tours))
	for i := range tours {
		rows[i] = numericRow(&tours[i])
		for j := 0; j < numNumericFeatures; j++ {
			space.NumMeans[j] += rows[i][j]
		}
	}
	n := float64(len(tours))
	for j := 0; j < numNumericFeatures; j++ {
		space.NumMeans[j] /= n
	}
	for i := range rows {
		for j := 0; j < numNumericFeatures; j++ {
			d := rows[i][j] - space.NumMeans[j]
			space.NumStds[j] += d * d
		}
	}
	for j := 0; j < numNumericFeatures; j++ {
		space.NumStds[j] = math.Sqrt(space.NumStds[j] / n)
		if space.NumStds[j] == 0 {
			// columna constante: escala 1 para no dividir por cero
			space.NumStds[j] = 1
		}
	}

	e.space = space
	e.fitted = true
	return e
}

// Transform emite un vector por tour. Tags/provincias fuera del vocabulario
// fitted se ignoran en silencio (política explícita, no un descuido).
func (e *FeatureExtractor) Transform(tours []models.TourRecord) ([][]float64, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}

	out := make([][]float64, len(tours))
	for i := range tours {
		out[i] = e.transformOne(&tours[i])
	}
	return out, nil
}

func (e *FeatureExtractor) FitTransform(tours []models.TourRecord) ([][]float64, error) {
	return e.Fit(tours).Transform(tours)
}

// Dim es la longitud de los vectores que emite este extractor.
func (e *FeatureExtractor) Dim() int {
	if !e.fitted {
		return 0
	}
	return e.space.Dim()
}

func (e *FeatureExtractor) transformOne(t *models.TourRecord) []float64 {
	s := e.space
	vec := make([]float64, 0, s.Dim())

	// numéricos escalados
	row := numericRow(t)
	for j := 0; j < numNumericFeatures; j++ {
		vec = append(vec, (row[j]-s.NumMeans[j])/s.NumStds[j])
	}

	// tags multi-hot sobre el vocabulario fitted
	tagIdx := indexOf(s.Tags)
	tagVec := make([]float64, len(s.Tags))
	for _, tag := range t.Tags {
		if i, ok := tagIdx[tag]; ok {
			tagVec[i] = 1
		}
	}
	vec = append(vec, tagVec...)

	// transporte one-hot
	for _, tr := range models.TransportationTypes {
		if t.Transportation == tr {
			vec = append(vec, 1)
		} else {
			vec = append(vec, 0)
		}
	}

	// punto de encuentro one-hot
	for _, m := range models.MeetingLocations {
		if t.MeetingLocation == m {
			vec = append(vec, 1)
		} else {
			vec = append(vec, 0)
		}
	}

	// provincias multi-hot
	provIdx := indexOf(s.Provinces)
	provVec := make([]float64, len(s.Provinces))
	for _, p := range t.Places {
		if i, ok := provIdx[p.ProvinceName()]; ok {
			provVec[i] = 1
		}
	}
	vec = append(vec, provVec...)

	// texto (descripción vacía → segmento en cero)
	vec = append(vec, s.Text.Transform(t.Description)...)

	return vec
}

func numericRow(t *models.TourRecord) [numNumericFeatures]float64 {
	return [numNumericFeatures]float64{
		float64(t.Price),
		t.Duration,
		t.AverageRating(),
		float64(t.MinPeople),
		float64(t.MaxPeople),
		float64(t.RatingCount),
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func indexOf(items []string) map[string]int {
	idx := make(map[string]int, len(items))
	for i, s := range items {
		idx[s] = i
	}
	return idx
}
