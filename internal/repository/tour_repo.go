// internal/repository/tour_repo.go
package repository

import (
	"context"

	"github.com/n0thing2c/VNGO/internal/db"
	"github.com/n0thing2c/VNGO/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// tope defensivo: nunca levantamos el catálogo entero sin límite
const maxCatalogFetch = 10000

type TourRepository struct {
	col *mongo.Collection
}

func NewTourRepository() *TourRepository {
	return &TourRepository{col: db.DB().Collection("tours")}
}

func (r *TourRepository) GetByID(ctx context.Context, tourID int) (*models.TourRecord, error) {
	var t models.TourRecord
	err := r.col.FindOne(ctx, bson.M{"id": tourID}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &t, err
}

// FetchByLocation trae los tours cuyos lugares matchean la provincia/ciudad
// (substring, case-insensitive) o una lista explícita de place ids.
func (r *TourRepository) FetchByLocation(
	ctx context.Context,
	province string,
	placeIDs []int,
) ([]models.TourRecord, error) {

	filter := bson.M{}

	if province != "" {
		regex := bson.M{"$regex": province, "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"places.province": regex},
			bson.M{"places.province_en": regex},
			bson.M{"places.city": regex},
			bson.M{"places.city_en": regex},
		}
	}

	if len(placeIDs) > 0 {
		filter["places.id"] = bson.M{"$in": placeIDs}
	}

	return r.find(ctx, filter)
}

// FetchAll trae el snapshot completo del catálogo (para fit del recommender).
func (r *TourRepository) FetchAll(ctx context.Context) ([]models.TourRecord, error) {
	return r.find(ctx, bson.M{})
}

func (r *TourRepository) find(ctx context.Context, filter bson.M) ([]models.TourRecord, error) {
	opts := options.Find().SetLimit(maxCatalogFetch)

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.TourRecord
	for cur.Next(ctx) {
		var t models.TourRecord
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, cur.Err()
}
