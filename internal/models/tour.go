package models

import (
	"encoding/json"
	"math"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Transportes y puntos de encuentro válidos (el orden define el one-hot).
var (
	TransportationTypes = []string{"public", "private", "walk"}
	MeetingLocations    = []string{"mine", "yours", "first"}
)

// Tags es un set de strings con decodificación tolerante: los datos
// históricos a veces guardan el array como string JSON o basura, y en ese
// caso degradamos a lista vacía en vez de abortar el request.
type Tags []string

func (t *Tags) UnmarshalJSON(b []byte) error {
	var arr []string
	if err := json.Unmarshal(b, &arr); err == nil {
		*t = arr
		return nil
	}

	// puede venir doble-serializado: "[\"food\",\"culture\"]"
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if json.Unmarshal([]byte(s), &arr) == nil {
			*t = arr
			return nil
		}
	}

	*t = Tags{}
	return nil
}

func (t *Tags) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	switch bt {
	case bsontype.Array:
		var arr []string
		if err := bson.UnmarshalValue(bt, data, &arr); err != nil {
			*t = Tags{}
			return nil
		}
		*t = arr
	case bsontype.String:
		var s string
		if err := bson.UnmarshalValue(bt, data, &s); err != nil {
			*t = Tags{}
			return nil
		}
		var arr []string
		if err := json.Unmarshal([]byte(s), &arr); err != nil {
			*t = Tags{}
			return nil
		}
		*t = arr
	default:
		*t = Tags{}
	}
	return nil
}

func (t Tags) Contains(tag string) bool {
	for _, x := range t {
		if strings.EqualFold(x, tag) {
			return true
		}
	}
	return false
}

type Place struct {
	ID         int     `json:"id" bson:"id"`
	Name       string  `json:"name" bson:"name"`
	NameEn     string  `json:"name_en,omitempty" bson:"name_en,omitempty"`
	Province   string  `json:"province" bson:"province"`
	ProvinceEn string  `json:"province_en,omitempty" bson:"province_en,omitempty"`
	City       string  `json:"city,omitempty" bson:"city,omitempty"`
	CityEn     string  `json:"city_en,omitempty" bson:"city_en,omitempty"`
	Lat        float64 `json:"lat,omitempty" bson:"lat,omitempty"`
	Lon        float64 `json:"lon,omitempty" bson:"lon,omitempty"`
}

// ProvinceName prefiere el nombre en inglés si existe.
func (p Place) ProvinceName() string {
	if p.ProvinceEn != "" {
		return p.ProvinceEn
	}
	return p.Province
}

type TourRecord struct {
	ID              int     `json:"id" bson:"id"`
	Name            string  `json:"name" bson:"name"`
	Tags            Tags    `json:"tags" bson:"tags"`
	Transportation  string  `json:"transportation" bson:"transportation"`
	MeetingLocation string  `json:"meeting_location" bson:"meetingLocation"`
	Price           int     `json:"price" bson:"price"`
	Duration        float64 `json:"duration" bson:"duration"` // horas
	MinPeople       int     `json:"min_people" bson:"minPeople"`
	MaxPeople       int     `json:"max_people" bson:"maxPeople"`
	RatingTotal     float64 `json:"rating_total" bson:"ratingTotal"`
	RatingCount     int     `json:"rating_count" bson:"ratingCount"`
	Description     string  `json:"description" bson:"description"`
	Places          []Place `json:"places" bson:"places"`
	Thumbnail       string  `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
}

func (t *TourRecord) AverageRating() float64 {
	if t.RatingCount > 0 {
		return t.RatingTotal / float64(t.RatingCount)
	}
	return 0
}

// Provinces devuelve las provincias del tour (sin duplicados, en orden).
func (t *TourRecord) Provinces() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range t.Places {
		name := p.ProvinceName()
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// TourSummary es la vista compacta que devolvemos junto a cada score.
type TourSummary struct {
	ID             int      `json:"id" bson:"id"`
	Name           string   `json:"name" bson:"name"`
	Price          int      `json:"price" bson:"price"`
	Duration       float64  `json:"duration" bson:"duration"`
	AvgRating      float64  `json:"avg_rating" bson:"avgRating"`
	RatingCount    int      `json:"rating_count" bson:"ratingCount"`
	Tags           Tags     `json:"tags" bson:"tags"`
	Transportation string   `json:"transportation" bson:"transportation"`
	Provinces      []string `json:"provinces" bson:"provinces"`
	NumPlaces      int      `json:"num_places" bson:"numPlaces"`
	Thumbnail      string   `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
}

func (t *TourRecord) Summary() TourSummary {
	avg := t.AverageRating()
	return TourSummary{
		ID:             t.ID,
		Name:           t.Name,
		Price:          t.Price,
		Duration:       t.Duration,
		AvgRating:      round2(avg),
		RatingCount:    t.RatingCount,
		Tags:           t.Tags,
		Transportation: t.Transportation,
		Provinces:      t.Provinces(),
		NumPlaces:      len(t.Places),
		Thumbnail:      t.Thumbnail,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
