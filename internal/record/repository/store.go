package repository

import (
	"context"

	"github.com/livaro/home/backend/api/internal/record"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the document store consumed by the gateway.
type Store interface {
	// Insert adds doc as a new document and returns the store-assigned id.
	Insert(ctx context.Context, collection string, doc record.Document) (string, error)
	// Find returns at most limit documents matching filter in natural order.
	Find(ctx context.Context, collection string, filter record.Filter, limit int64) ([]record.Document, error)
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
	// Collections lists collection names.
	Collections(ctx context.Context) ([]string, error)
}

// exportID turns an ObjectID "_id" into its hex form so documents serialize
// the identifier as the same string Insert returned.
func exportID(doc record.Document) record.Document {
	if oid, ok := doc["_id"].(primitive.ObjectID); ok {
		doc["_id"] = oid.Hex()
	}
	return doc
}
