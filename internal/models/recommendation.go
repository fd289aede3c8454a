package models

import "time"

type RecItem struct {
	TourID int         `bson:"tourId" json:"tour_id"`
	Score  float64     `bson:"score"  json:"score"`
	Tour   TourSummary `bson:"tour"   json:"tour_summary"`
}

// Recommendation es el documento de historial que guardamos en Mongo.
type Recommendation struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    int       `bson:"userId"        json:"user_id"`
	Algo      string    `bson:"algo"          json:"algo"`
	Params    any       `bson:"params"        json:"params"`
	Items     []RecItem `bson:"items"         json:"items"`
	CreatedAt time.Time `bson:"createdAt"     json:"created_at"`
}

// ====== Explicación de similitud (para /tours/similarity-explain) ======

type SimilarityExplanation struct {
	SimilarityScore    float64  `json:"similarity_score"`
	CommonTags         []string `json:"common_tags"`
	CommonProvinces    []string `json:"common_provinces"`
	SameTransportation bool     `json:"same_transportation"`
	PriceDifference    int      `json:"price_difference"`
	DurationDifference float64  `json:"duration_difference"`
}
