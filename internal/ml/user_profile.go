package ml

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/n0thing2c/VNGO/internal/models"
)

// Pesos base por tipo de interacción. Son constantes de diseño: cambiarlas
// cambia el ranking de todos los usuarios.
var interactionBaseWeights = map[string]float64{
	models.InteractionView:     1.0,
	models.InteractionClick:    1.5,
	models.InteractionBookmark: 3.0,
	models.InteractionShare:    2.5,
	models.InteractionBook:     5.0,
	models.InteractionComplete: 6.0,
	models.InteractionRate:     4.0,
}

// TimeDecayHalfLifeDays: el peso de una interacción se reduce a la mitad
// cada 30 días.
const TimeDecayHalfLifeDays = 30.0

const (
	maxPreferredTags      = 10
	maxPreferredProvinces = 5
)

// ProfileBuilder agrega el historial del usuario en un perfil de
// preferencias y lo proyecta al mismo espacio de features que los tours.
type ProfileBuilder struct {
	extractor *FeatureExtractor
}

func NewProfileBuilder(extractor *FeatureExtractor) *ProfileBuilder {
	return &ProfileBuilder{extractor: extractor}
}

// InteractionWeight calcula el peso de un evento:
// base(tipo) × decay temporal × bonus por vistas repetidas.
// Timestamp cero ⇒ sin decay (peso completo).
func InteractionWeight(ev models.InteractionEvent, now time.Time) float64 {
	base, ok := interactionBaseWeights[ev.Type]
	if !ok {
		base = 1.0
	}

	// las calificaciones escalan el peso según qué tan lejos están del
	// punto neutro 3
	if ev.Type == models.InteractionRate {
		rating := ev.Rating
		if rating == 0 {
			rating = 3
		}
		base *= rating / 3.0
	}

	if !ev.Timestamp.IsZero() {
		days := now.Sub(ev.Timestamp).Hours() / 24
		if days > 0 {
			base *= math.Pow(0.5, days/TimeDecayHalfLifeDays)
		}
	}

	// vistas repetidas del mismo tour: retornos decrecientes
	if ev.ViewCount > 1 {
		base *= 1 + math.Log(float64(ev.ViewCount))
	}

	return base
}

// BuildProfile arma el perfil a partir de los historiales de vistas,
// reservas, calificaciones y demás interacciones.
func (b *ProfileBuilder) BuildProfile(
	viewed, booked, rated, others []models.InteractionEvent,
) models.PreferenceProfile {

	now := time.Now()

	tagWeights := make(map[string]float64)
	provinceWeights := make(map[string]float64)
	transportWeights := make(map[string]float64)

	var totalPrice, priceWeight float64
	var totalDuration, durationWeight float64

	accumulate := func(ev models.InteractionEvent, weight float64) {
		if ev.Tour == nil {
			return
		}
		for _, tag := range ev.Tour.Tags {
			tagWeights[tag] += weight
		}
		for _, p := range ev.Tour.Places {
			if name := p.ProvinceName(); name != "" {
				provinceWeights[name] += weight
			}
		}
		if ev.Tour.Transportation != "" {
			transportWeights[ev.Tour.Transportation] += weight
		}
	}

	// vistas y reservas aportan además al promedio de precio/duración
	for _, list := range [][]models.InteractionEvent{viewed, booked} {
		for _, ev := range list {
			w := InteractionWeight(ev, now)
			accumulate(ev, w)

			if ev.Tour != nil && ev.Tour.Price > 0 {
				totalPrice += float64(ev.Tour.Price) * w
				priceWeight += w
			}
			if ev.Tour != nil && ev.Tour.Duration > 0 {
				totalDuration += ev.Tour.Duration * w
				durationWeight += w
			}
		}
	}

	for _, ev := range rated {
		accumulate(ev, InteractionWeight(ev, now))
	}
	for _, ev := range others {
		accumulate(ev, InteractionWeight(ev, now))
	}

	profile := models.PreferenceProfile{
		PreferredTags:           normalizeTags(tagWeights),
		PreferredProvinces:      normalizeProvinces(provinceWeights),
		PreferredTransportation: normalizeTransport(transportWeights),
		InteractionCount:        len(viewed) + len(booked) + len(rated) + len(others),
	}

	if len(profile.PreferredTags) > maxPreferredTags {
		profile.PreferredTags = profile.PreferredTags[:maxPreferredTags]
	}
	if len(profile.PreferredProvinces) > maxPreferredProvinces {
		profile.PreferredProvinces = profile.PreferredProvinces[:maxPreferredProvinces]
	}

	// banda de precio: ±30% del promedio ponderado
	if priceWeight > 0 {
		avg := int(totalPrice / priceWeight)
		profile.PriceRange = &models.Range{
			Min: int(float64(avg) * 0.7),
			Max: int(float64(avg) * 1.3),
		}
	}

	// banda de duración: ±2 horas del promedio ponderado
	if durationWeight > 0 {
		avg := int(totalDuration / durationWeight)
		min := avg - 2
		if min < 1 {
			min = 1
		}
		profile.DurationRange = &models.Range{Min: min, Max: avg + 2}
	}

	return profile
}

// BuildFeatureVector materializa el perfil como un "pseudo-tour" y lo pasa
// por el MISMO extractor fitted que los tours reales; así perfil y catálogo
// quedan comparables por coseno.
func (b *ProfileBuilder) BuildFeatureVector(
	profile models.PreferenceProfile,
	corpus []models.TourRecord,
) ([]float64, error) {

	if b.extractor == nil {
		b.extractor = NewFeatureExtractor()
	}
	if !b.extractor.IsFitted() {
		b.extractor.Fit(corpus)
	}

	// solo tags con peso significativo
	var topTags []string
	for _, tw := range profile.PreferredTags {
		if tw.Weight > 0.1 {
			topTags = append(topTags, tw.Tag)
		}
	}

	province := ""
	if len(profile.PreferredProvinces) > 0 {
		province = profile.PreferredProvinces[0].Province
	}

	transport := "public"
	if len(profile.PreferredTransportation) > 0 {
		transport = profile.PreferredTransportation[0].Type
	}

	price := 500000 // default si no hay historial de precios
	if profile.PriceRange != nil {
		price = (profile.PriceRange.Min + profile.PriceRange.Max) / 2
	}

	duration := 4.0
	if profile.DurationRange != nil {
		duration = float64(profile.DurationRange.Min+profile.DurationRange.Max) / 2
	}

	pseudo := models.TourRecord{
		ID:              -1,
		Tags:            topTags,
		Transportation:  transport,
		MeetingLocation: "yours", // elección neutra
		Price:           price,
		Duration:        duration,
		MinPeople:       1,
		MaxPeople:       10,
		Description:     strings.Join(topTags, " "),
	}
	if province != "" {
		pseudo.Places = []models.Place{{ProvinceEn: province}}
	}

	vecs, err := b.extractor.Transform([]models.TourRecord{pseudo})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func normalizeTags(weights map[string]float64) []models.TagWeight {
	total := sumWeights(weights)
	out := make([]models.TagWeight, 0, len(weights))
	for tag, w := range weights {
		out = append(out, models.TagWeight{Tag: tag, Weight: w / total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

func normalizeProvinces(weights map[string]float64) []models.ProvinceWeight {
	total := sumWeights(weights)
	out := make([]models.ProvinceWeight, 0, len(weights))
	for prov, w := range weights {
		out = append(out, models.ProvinceWeight{Province: prov, Weight: w / total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Province < out[j].Province
	})
	return out
}

func normalizeTransport(weights map[string]float64) []models.TransportWeight {
	total := sumWeights(weights)
	out := make([]models.TransportWeight, 0, len(weights))
	for t, w := range weights {
		out = append(out, models.TransportWeight{Type: t, Weight: w / total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Type < out[j].Type
	})
	return out
}

func sumWeights(weights map[string]float64) float64 {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return 1
	}
	return total
}
