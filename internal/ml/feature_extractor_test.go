package ml

import (
	"math"
	"testing"

	"github.com/n0thing2c/VNGO/internal/models"
)

func sampleCorpus() []models.TourRecord {
	return []models.TourRecord{
		{
			ID: 1, Name: "Street Food Walk", Tags: models.Tags{"food", "culture"},
			Transportation: "walk", MeetingLocation: "first",
			Price: 300000, Duration: 3, MinPeople: 1, MaxPeople: 8,
			RatingTotal: 45, RatingCount: 10,
			Description: "Explore the best street food stalls of the old quarter",
			Places:      []models.Place{{ID: 1, Province: "Hà Nội", ProvinceEn: "Hanoi"}},
		},
		{
			ID: 2, Name: "Imperial Citadel Tour", Tags: models.Tags{"culture", "history"},
			Transportation: "public", MeetingLocation: "yours",
			Price: 500000, Duration: 4, MinPeople: 2, MaxPeople: 15,
			RatingTotal: 38, RatingCount: 8,
			Description: "Walk through centuries of imperial history and architecture",
			Places:      []models.Place{{ID: 2, ProvinceEn: "Hue"}},
		},
		{
			ID: 3, Name: "Mekong Boat Trip", Tags: models.Tags{"nature", "adventure"},
			Transportation: "private", MeetingLocation: "mine",
			Price: 800000, Duration: 6, MinPeople: 4, MaxPeople: 20,
			RatingTotal: 20, RatingCount: 4,
			Description: "Cruise the Mekong delta and visit floating markets",
			Places:      []models.Place{{ID: 3, ProvinceEn: "Can Tho"}},
		},
	}
}

func TestTransformBeforeFitReturnsErrNotFitted(t *testing.T) {
	e := NewFeatureExtractor()
	if _, err := e.Transform(sampleCorpus()); err != ErrNotFitted {
		t.Fatalf("esperaba ErrNotFitted, obtuve %v", err)
	}
}

func TestAllVectorsHaveSameLength(t *testing.T) {
	e := NewFeatureExtractor()
	vecs, err := e.FitTransform(sampleCorpus())
	if err != nil {
		t.Fatal(err)
	}

	dim := e.Dim()
	if dim == 0 {
		t.Fatal("Dim() devolvió 0 después de Fit")
	}
	for i, v := range vecs {
		if len(v) != dim {
			t.Errorf("vector %d: len=%d, esperaba %d", i, len(v), dim)
		}
	}
}

func TestUnknownTagsAreIgnored(t *testing.T) {
	corpus := sampleCorpus()
	e := NewFeatureExtractor()
	if _, err := e.FitTransform(corpus); err != nil {
		t.Fatal(err)
	}

	// un tour con tag fuera del vocabulario no cambia la longitud ni rompe
	novel := corpus[0]
	novel.Tags = models.Tags{"food", "tag-que-no-existe"}
	vecs, err := e.Transform([]models.TourRecord{novel})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs[0]) != e.Dim() {
		t.Errorf("len=%d, esperaba %d", len(vecs[0]), e.Dim())
	}
}

func TestConstantColumnDoesNotProduceNaN(t *testing.T) {
	// todos los tours con el mismo precio: std=0 en esa columna
	corpus := sampleCorpus()
	for i := range corpus {
		corpus[i].Price = 400000
	}

	e := NewFeatureExtractor()
	vecs, err := e.FitTransform(corpus)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range vecs {
		for j, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				t.Fatalf("vector %d posición %d: %v", i, j, x)
			}
		}
	}
}

func TestExtractorFromCachedSpaceMatchesOriginal(t *testing.T) {
	corpus := sampleCorpus()

	e1 := NewFeatureExtractor()
	vecs1, err := e1.FitTransform(corpus)
	if err != nil {
		t.Fatal(err)
	}

	e2 := NewFeatureExtractorFromSpace(e1.Space())
	vecs2, err := e2.Transform(corpus)
	if err != nil {
		t.Fatal(err)
	}

	for i := range vecs1 {
		for j := range vecs1[i] {
			if math.Abs(vecs1[i][j]-vecs2[i][j]) > 1e-12 {
				t.Fatalf("vector %d difiere en la posición %d", i, j)
			}
		}
	}
}

func TestEmptyDescriptionYieldsZeroTextSegment(t *testing.T) {
	corpus := sampleCorpus()
	e := NewFeatureExtractor()
	if _, err := e.FitTransform(corpus); err != nil {
		t.Fatal(err)
	}

	blank := corpus[0]
	blank.Description = ""
	vecs, err := e.Transform([]models.TourRecord{blank})
	if err != nil {
		t.Fatal(err)
	}

	textLen := e.Space().Text.Dim()
	v := vecs[0]
	for _, x := range v[len(v)-textLen:] {
		if x != 0 {
			t.Fatalf("segmento de texto no nulo para descripción vacía: %v", x)
		}
	}
}
