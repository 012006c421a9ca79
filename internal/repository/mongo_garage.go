package repository

import (
	"context"
	"errors"

	"roadside-assist-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoGarageRepository struct {
	col *mongo.Collection
}

func NewMongoGarageRepository(db *mongo.Database) *MongoGarageRepository {
	return &MongoGarageRepository{col: db.Collection("garages")}
}

func (m *MongoGarageRepository) Persistent() bool { return true }

// EnsureIndexes crea el índice 2dsphere que necesita $near.
func (m *MongoGarageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "location", Value: "2dsphere"}},
	})
	return err
}

// Get busca por _id string (seed) y, si no está, por ObjectID para talleres
// cargados por fuera del seed.
func (m *MongoGarageRepository) Get(ctx context.Context, id string) (*model.Garage, error) {
	var g model.Garage
	err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		oid, convErr := primitive.ObjectIDFromHex(id)
		if convErr != nil {
			return nil, ErrNotFound
		}
		err = m.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&g)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Nearby delega en $near: los resultados ya vienen ordenados por distancia.
func (m *MongoGarageRepository) Nearby(ctx context.Context, center model.Coordinate, radiusKm float64, limit int) ([]model.Garage, error) {
	filter := bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry":    model.NewGeoPoint(center),
				"$maxDistance": radiusKm * 1000,
			},
		},
	}

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []model.Garage{}
	for cur.Next(ctx) {
		var g model.Garage
		if err := cur.Decode(&g); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, cur.Err()
}

// ReplaceAll borra todos los talleres e inserta los nuevos (seed).
func (m *MongoGarageRepository) ReplaceAll(ctx context.Context, garages []model.Garage) error {
	if _, err := m.col.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if len(garages) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(garages))
	for _, g := range garages {
		docs = append(docs, g)
	}
	_, err := m.col.InsertMany(ctx, docs)
	return err
}
