package models

import "time"

// Tipos de interacción (log append-only, nunca se mutan los eventos).
const (
	InteractionView     = "view"
	InteractionClick    = "click"
	InteractionBookmark = "bookmark"
	InteractionShare    = "share"
	InteractionBook     = "book"
	InteractionComplete = "complete"
	InteractionRate     = "rate"
)

// InteractionEvent es un evento del historial del usuario, ya hidratado con
// los datos del tour para poder construir el perfil.
type InteractionEvent struct {
	UserID    int         `json:"user_id" bson:"userId"`
	TourID    int         `json:"tour_id" bson:"tourId"`
	Type      string      `json:"type" bson:"type"`
	Rating    float64     `json:"rating,omitempty" bson:"rating,omitempty"`
	Timestamp time.Time   `json:"timestamp,omitempty" bson:"timestamp,omitempty"`
	ViewCount int         `json:"view_count,omitempty" bson:"viewCount,omitempty"`
	Tour      *TourRecord `json:"tour,omitempty" bson:"tour,omitempty"`
}
