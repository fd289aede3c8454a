package models

import (
	"encoding/json"
	"testing"
)

func TestTagsUnmarshalJSONArray(t *testing.T) {
	var tags Tags
	if err := json.Unmarshal([]byte(`["food","culture"]`), &tags); err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 || tags[0] != "food" {
		t.Fatalf("tags = %v", tags)
	}
}

func TestTagsUnmarshalDoubleSerialized(t *testing.T) {
	// datos legacy: el array viene serializado dentro de un string
	var tags Tags
	if err := json.Unmarshal([]byte(`"[\"food\",\"nature\"]"`), &tags); err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 || tags[1] != "nature" {
		t.Fatalf("tags = %v", tags)
	}
}

func TestTagsUnmarshalGarbageDegradesToEmpty(t *testing.T) {
	for _, raw := range []string{`42`, `"no es json"`, `{"k":1}`, `null`} {
		var tags Tags
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			t.Fatalf("%s: %v (la política es degradar, no fallar)", raw, err)
		}
		if len(tags) != 0 {
			t.Errorf("%s: tags = %v, esperaba vacío", raw, tags)
		}
	}
}

func TestTagsContainsIsCaseInsensitive(t *testing.T) {
	tags := Tags{"Food", "culture"}
	if !tags.Contains("food") || !tags.Contains("CULTURE") {
		t.Fatal("Contains debería ignorar mayúsculas")
	}
	if tags.Contains("nature") {
		t.Fatal("falso positivo")
	}
}

func TestAverageRating(t *testing.T) {
	withRatings := TourRecord{RatingTotal: 45, RatingCount: 10}
	if avg := withRatings.AverageRating(); avg != 4.5 {
		t.Errorf("avg = %v", avg)
	}

	unrated := TourRecord{}
	if avg := unrated.AverageRating(); avg != 0 {
		t.Errorf("sin reseñas: %v, esperaba 0", avg)
	}
}

func TestProvincesDeduplicatesAndPrefersEnglish(t *testing.T) {
	tour := TourRecord{Places: []Place{
		{Province: "Hà Nội", ProvinceEn: "Hanoi"},
		{Province: "Hà Nội", ProvinceEn: "Hanoi"},
		{Province: "Huế"},
	}}

	provinces := tour.Provinces()
	if len(provinces) != 2 {
		t.Fatalf("provincias = %v", provinces)
	}
	if provinces[0] != "Hanoi" || provinces[1] != "Huế" {
		t.Errorf("provincias = %v", provinces)
	}
}

func TestSummaryRoundsRating(t *testing.T) {
	tour := TourRecord{
		ID: 7, Name: "Test", RatingTotal: 10, RatingCount: 3,
		Places: []Place{{ProvinceEn: "Hue"}},
	}
	s := tour.Summary()
	if s.AvgRating != 3.33 {
		t.Errorf("AvgRating = %v, esperaba 3.33", s.AvgRating)
	}
	if s.NumPlaces != 1 {
		t.Errorf("NumPlaces = %d", s.NumPlaces)
	}
}
