package repository

import (
	"context"
	"time"

	"github.com/n0thing2c/VNGO/internal/db"
	"github.com/n0thing2c/VNGO/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// límites de historial que levantamos para armar el perfil
const (
	maxViewedHistory = 100
	maxBookedHistory = 50
	maxRatedHistory  = 50
)

// InteractionRepository lee el historial de interacciones del usuario y lo
// hidrata con los datos del tour. Los eventos son append-only: acá solo se
// agrega (TrackView), nunca se reescribe historial.
type InteractionRepository struct {
	views    *mongo.Collection
	bookings *mongo.Collection
	ratings  *mongo.Collection
	tours    *mongo.Collection
}

func NewInteractionRepository() *InteractionRepository {
	mdb := db.DB()
	return &InteractionRepository{
		views:    mdb.Collection("tour_views"),
		bookings: mdb.Collection("past_tours"),
		ratings:  mdb.Collection("tour_ratings"),
		tours:    mdb.Collection("tours"),
	}
}

// helpers de casteo seguro (los datos históricos mezclan int32/int64/double)
func asInt(v any) int {
	switch x := v.(type) {
	case int32:
		return int(x)
	case int64:
		return int(x)
	case float64:
		return int(x)
	default:
		return 0
	}
}

func asFloat64(v any) float64 {
	switch x := v.(type) {
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float64:
		return x
	default:
		return 0
	}
}

func asTime(v any) time.Time {
	switch x := v.(type) {
	case time.Time:
		return x
	default:
		return time.Time{}
	}
}

// TrackView registra una vista: upsert de (user, tour) con contador
// incremental y última fecha de vista.
func (r *InteractionRepository) TrackView(ctx context.Context, userID, tourID int) error {
	_, err := r.views.UpdateOne(ctx,
		bson.M{"userId": userID, "tourId": tourID},
		bson.M{
			"$inc": bson.M{"viewCount": 1},
			"$set": bson.M{"lastViewedAt": time.Now()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// ViewedByUser: vistas más recientes primero, con el tour hidratado.
func (r *InteractionRepository) ViewedByUser(ctx context.Context, userID int) ([]models.InteractionEvent, error) {
	cur, err := r.views.Find(ctx,
		bson.M{"userId": userID},
		options.Find().
			SetSort(bson.D{{Key: "lastViewedAt", Value: -1}}).
			SetLimit(maxViewedHistory),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []models.InteractionEvent
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, err
		}
		events = append(events, models.InteractionEvent{
			UserID:    asInt(raw["userId"]),
			TourID:    asInt(raw["tourId"]),
			Type:      models.InteractionView,
			ViewCount: asInt(raw["viewCount"]),
			Timestamp: asTime(raw["lastViewedAt"]),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return r.hydrate(ctx, events)
}

// BookedByUser: tours completados (señal más fuerte que una vista).
func (r *InteractionRepository) BookedByUser(ctx context.Context, userID int) ([]models.InteractionEvent, error) {
	cur, err := r.bookings.Find(ctx,
		bson.M{"userId": userID},
		options.Find().
			SetSort(bson.D{{Key: "completedAt", Value: -1}}).
			SetLimit(maxBookedHistory),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []models.InteractionEvent
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, err
		}
		events = append(events, models.InteractionEvent{
			UserID:    asInt(raw["userId"]),
			TourID:    asInt(raw["tourId"]),
			Type:      models.InteractionBook,
			Timestamp: asTime(raw["completedAt"]),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return r.hydrate(ctx, events)
}

// RatedByUser: calificaciones del usuario.
func (r *InteractionRepository) RatedByUser(ctx context.Context, userID int) ([]models.InteractionEvent, error) {
	cur, err := r.ratings.Find(ctx,
		bson.M{"userId": userID},
		options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetLimit(maxRatedHistory),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []models.InteractionEvent
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, err
		}
		events = append(events, models.InteractionEvent{
			UserID:    asInt(raw["userId"]),
			TourID:    asInt(raw["tourId"]),
			Type:      models.InteractionRate,
			Rating:    asFloat64(raw["rating"]),
			Timestamp: asTime(raw["createdAt"]),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return r.hydrate(ctx, events)
}

// hydrate completa cada evento con su TourRecord en una sola query $in.
func (r *InteractionRepository) hydrate(ctx context.Context, events []models.InteractionEvent) ([]models.InteractionEvent, error) {
	if len(events) == 0 {
		return events, nil
	}

	ids := make([]int, 0, len(events))
	seen := make(map[int]bool)
	for _, ev := range events {
		if !seen[ev.TourID] {
			seen[ev.TourID] = true
			ids = append(ids, ev.TourID)
		}
	}

	cur, err := r.tours.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	byID := make(map[int]*models.TourRecord, len(ids))
	for cur.Next(ctx) {
		var t models.TourRecord
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		tour := t
		byID[t.ID] = &tour
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	for i := range events {
		events[i].Tour = byID[events[i].TourID]
	}
	return events, nil
}
