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

type TripPlanRepository struct {
	col *mongo.Collection
}

func NewTripPlanRepository() *TripPlanRepository {
	return &TripPlanRepository{col: db.DB().Collection("trip_plans")}
}

func (r *TripPlanRepository) Insert(ctx context.Context, doc *models.TripPlanDoc) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	_, err := r.col.InsertOne(ctx, doc)
	return err
}

// FindByUser: historial de planes del usuario, más recientes primero.
func (r *TripPlanRepository) FindByUser(ctx context.Context, userID int, limit int64) ([]models.TripPlanDoc, error) {
	if limit <= 0 {
		limit = 20
	}

	cur, err := r.col.Find(ctx,
		bson.M{"userId": userID},
		options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.TripPlanDoc
	for cur.Next(ctx) {
		var doc models.TripPlanDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, cur.Err()
}
