package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/livaro/home/backend/api/internal/record"
	"github.com/livaro/home/backend/api/internal/record/repository"
	"github.com/livaro/home/backend/api/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultLimit caps a query when the caller gives no limit.
const DefaultLimit = 50

var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrWriteFailure       = errors.New("write failed")
	ErrQueryFailure       = errors.New("query failed")
)

// Service is the persistence gateway shared by every record endpoint.
type Service interface {
	// Store writes rec into the kind's collection and returns the new id.
	Store(ctx context.Context, kind record.Kind, rec record.Record) (string, error)
	// Query returns up to limit stored documents of kind matching filter.
	Query(ctx context.Context, kind record.Kind, filter record.Filter, limit int64) ([]record.Document, error)
	Connected(ctx context.Context) bool
	Collections(ctx context.Context) ([]string, error)
}

// New returns a gateway over store. A nil store means no connection was
// established; every operation then fails with ErrStorageUnavailable.
func New(store repository.Store) Service {
	return &gateway{store: store, now: time.Now}
}

// NewMemoryService returns a gateway backed by a fresh in-memory store.
func NewMemoryService() Service {
	return New(repository.NewMemoryStore())
}

type gateway struct {
	store repository.Store
	now   func() time.Time
}

func (g *gateway) Store(ctx context.Context, kind record.Kind, rec record.Record) (string, error) {
	coll := kind.Collection()
	if g.store == nil {
		metrics.GatewayErrors.WithLabelValues(coll, "store").Inc()
		return "", ErrStorageUnavailable
	}
	record.Normalize(rec)
	doc, err := toDocument(rec)
	if err != nil {
		metrics.GatewayErrors.WithLabelValues(coll, "store").Inc()
		return "", fmt.Errorf("%w: encode %s: %w", ErrWriteFailure, kind.Name, err)
	}
	doc["created_at"] = primitive.NewDateTimeFromTime(g.now())
	id, err := g.store.Insert(ctx, coll, doc)
	if err != nil {
		metrics.GatewayErrors.WithLabelValues(coll, "store").Inc()
		return "", fmt.Errorf("%w: insert into %s: %w", ErrWriteFailure, coll, err)
	}
	metrics.RecordsStored.WithLabelValues(coll).Inc()
	return id, nil
}

func (g *gateway) Query(ctx context.Context, kind record.Kind, filter record.Filter, limit int64) ([]record.Document, error) {
	coll := kind.Collection()
	if g.store == nil {
		metrics.GatewayErrors.WithLabelValues(coll, "query").Inc()
		return nil, ErrStorageUnavailable
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	docs, err := g.store.Find(ctx, coll, filter, limit)
	if err != nil {
		metrics.GatewayErrors.WithLabelValues(coll, "query").Inc()
		return nil, fmt.Errorf("%w: find in %s: %w", ErrQueryFailure, coll, err)
	}
	metrics.RecordQueries.WithLabelValues(coll).Inc()
	if docs == nil {
		docs = []record.Document{}
	}
	return docs, nil
}

func (g *gateway) Connected(ctx context.Context) bool {
	return g.store != nil && g.store.Ping(ctx) == nil
}

func (g *gateway) Collections(ctx context.Context) ([]string, error) {
	if g.store == nil {
		return nil, ErrStorageUnavailable
	}
	return g.store.Collections(ctx)
}

// toDocument serializes a record through its bson tags.
func toDocument(rec record.Record) (record.Document, error) {
	raw, err := bson.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return record.Document(m), nil
}
