package models

// Hotel es una sugerencia de alojamiento de un proveedor externo.
type Hotel struct {
	ExternalID       string            `json:"external_id" bson:"externalId"`
	Name             string            `json:"name" bson:"name"`
	Address          string            `json:"address" bson:"address"`
	Latitude         float64           `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude        float64           `json:"longitude,omitempty" bson:"longitude,omitempty"`
	PricePerNight    int               `json:"price_per_night" bson:"pricePerNight"`
	Currency         string            `json:"currency" bson:"currency"`
	Rating           float64           `json:"rating" bson:"rating"` // escala 0-5
	ReviewCount      int               `json:"review_count" bson:"reviewCount"`
	ThumbnailURL     string            `json:"thumbnail_url,omitempty" bson:"thumbnailUrl,omitempty"`
	BookingURL       string            `json:"booking_url,omitempty" bson:"bookingUrl,omitempty"`
	BookingLinks     map[string]string `json:"booking_links,omitempty" bson:"bookingLinks,omitempty"`
	Source           string            `json:"source" bson:"source"`
	StarRating       float64           `json:"star_rating,omitempty" bson:"starRating,omitempty"`
	District         string            `json:"district,omitempty" bson:"district,omitempty"`
	DistanceToCenter float64           `json:"distance_to_center,omitempty" bson:"distanceToCenter,omitempty"`
	DistanceToTours  float64           `json:"distance_to_tours,omitempty" bson:"distanceToTours,omitempty"`
	MatchScore       float64           `json:"match_score" bson:"matchScore"`
}
