// Package mongostore implements the document store on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brizzai/auth-profile/internal/logger"
	"github.com/brizzai/auth-profile/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

var ErrFailedToConnect = errors.New("failed to connect to mongo")

const idField = "_id"

// Store implements store.DocumentStore with one Mongo collection per store collection.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials Mongo, retrying up to cfg.RetryAttempts times until a ping succeeds.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	attempts := max(cfg.RetryAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(cfg.ConnectionURL).
				SetConnectTimeout(cfg.ConnectTimeout).
				SetMaxPoolSize(cfg.MaxPoolSize).
				SetMinPoolSize(cfg.MinPoolSize).
				SetMaxConnIdleTime(cfg.MaxConnIdleTime),
		)
		if err == nil {
			if err = client.Ping(ctx, nil); err == nil {
				return &Store{client: client, db: client.Database(cfg.Database)}, nil
			}
			_ = client.Disconnect(ctx)
		}
		lastErr = err
		logger.Warn("Mongo connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrFailedToConnect, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}
	return nil, fmt.Errorf("%w: %w", ErrFailedToConnect, lastErr)
}

func (s *Store) Create(ctx context.Context, collection string, fields store.Fields) (string, error) {
	doc, err := toBSON(fields)
	if err != nil {
		return "", err
	}
	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	return idString(res.InsertedID), nil
}

func (s *Store) List(ctx context.Context, collection string) ([]store.Document, error) {
	cur, err := s.db.Collection(collection).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}

	docs := make([]store.Document, 0, len(raw))
	for _, m := range raw {
		doc, err := fromBSON(m)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func toBSON(fields store.Fields) (bson.M, error) {
	norm, err := store.Normalize(fields)
	if err != nil {
		return nil, err
	}
	if _, ok := norm[idField]; ok {
		return nil, fmt.Errorf("%w: field %q is reserved", store.ErrUnsupportedValue, idField)
	}
	return bson.M(norm), nil
}

func fromBSON(m bson.M) (store.Document, error) {
	doc := store.Document{ID: idString(m[idField]), Fields: make(store.Fields, len(m))}
	for k, v := range m {
		if k == idField {
			continue
		}
		fv, err := fromBSONValue(v)
		if err != nil {
			return store.Document{}, fmt.Errorf("document %s field %q: %w", doc.ID, k, err)
		}
		doc.Fields[k] = fv
	}
	return doc, nil
}

func fromBSONValue(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool, int64, float64:
		return x, nil
	case int32:
		return int64(x), nil
	case bson.DateTime:
		return x.Time().UTC(), nil
	case time.Time:
		return x.UTC(), nil
	case bson.ObjectID:
		return x.Hex(), nil
	default:
		return nil, fmt.Errorf("%w: %T", store.ErrUnsupportedValue, v)
	}
}

func idString(id any) string {
	switch x := id.(type) {
	case bson.ObjectID:
		return x.Hex()
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
