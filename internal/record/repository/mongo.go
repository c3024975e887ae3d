package repository

import (
	"context"
	"fmt"

	"github.com/livaro/home/backend/api/internal/record"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on a MongoDB database. Identifiers are the
// ObjectIDs Mongo assigns on insert.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// EnsureIndexes creates a non-unique index on every field a kind can be
// filtered by. Creating an existing index is a no-op in Mongo.
func (m *MongoStore) EnsureIndexes(ctx context.Context, kinds []record.Kind) error {
	for _, k := range kinds {
		if len(k.Params) == 0 {
			continue
		}
		models := make([]mongo.IndexModel, 0, len(k.Params))
		for _, p := range k.Params {
			models = append(models, mongo.IndexModel{Keys: bson.D{{Key: p.Field, Value: 1}}})
		}
		if _, err := m.db.Collection(k.Collection()).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", k.Collection(), err)
		}
	}
	return nil
}

func (m *MongoStore) Insert(ctx context.Context, collection string, doc record.Document) (string, error) {
	res, err := m.db.Collection(collection).InsertOne(ctx, bson.M(doc))
	if err != nil {
		return "", err
	}
	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	case string:
		return id, nil
	default:
		return fmt.Sprint(id), nil
	}
}

func (m *MongoStore) Find(ctx context.Context, collection string, filter record.Filter, limit int64) ([]record.Document, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := m.db.Collection(collection).Find(ctx, filter.BSON(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []record.Document{}
	for cur.Next(ctx) {
		var d bson.M
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, exportID(record.Document(d)))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoStore) Ping(ctx context.Context) error {
	return m.db.Client().Ping(ctx, nil)
}

func (m *MongoStore) Collections(ctx context.Context) ([]string, error) {
	return m.db.ListCollectionNames(ctx, bson.D{})
}
