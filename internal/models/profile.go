package models

type TagWeight struct {
	Tag    string  `json:"tag" bson:"tag"`
	Weight float64 `json:"weight" bson:"weight"`
}

type ProvinceWeight struct {
	Province string  `json:"province" bson:"province"`
	Weight   float64 `json:"weight" bson:"weight"`
}

type TransportWeight struct {
	Type   string  `json:"type" bson:"type"`
	Weight float64 `json:"weight" bson:"weight"`
}

type Range struct {
	Min int `json:"min" bson:"min"`
	Max int `json:"max" bson:"max"`
}

// PreferenceProfile se recalcula bajo demanda desde el historial; no es
// estado canónico.
type PreferenceProfile struct {
	PreferredTags           []TagWeight       `json:"preferred_tags" bson:"preferredTags"`
	PreferredProvinces      []ProvinceWeight  `json:"preferred_provinces" bson:"preferredProvinces"`
	PreferredTransportation []TransportWeight `json:"preferred_transportation" bson:"preferredTransportation"`
	PriceRange              *Range            `json:"price_range,omitempty" bson:"priceRange,omitempty"`
	DurationRange           *Range            `json:"duration_range,omitempty" bson:"durationRange,omitempty"`
	InteractionCount        int               `json:"interaction_count" bson:"interactionCount"`
}
