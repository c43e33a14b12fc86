package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures the mongo backend.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps one document per scope, keyed by the storage key.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoDoc struct {
	Key      string `bson:"_id"`
	Snapshot `bson:",inline"`
}

// NewMongoStore connects to mongo and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "dashboard"
	}
	if cfg.Collection == "" {
		cfg.Collection = "layouts"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *MongoStore) Load(ctx context.Context, scope string) (*Snapshot, error) {
	raw, err := s.coll.FindOne(ctx, bson.M{"_id": Key(scope)}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	var doc mongoDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, nil
	}
	if doc.Visible == nil && doc.Layouts == nil {
		return nil, nil
	}
	snap := doc.Snapshot
	return &snap, nil
}

func (s *MongoStore) Save(ctx context.Context, scope string, snap *Snapshot) error {
	doc := mongoDoc{Key: Key(scope)}
	if snap != nil {
		doc.Snapshot = *snap
	}
	if doc.SavedAt.IsZero() {
		doc.SavedAt = time.Now().UTC()
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.Key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo replace: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, scope string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": Key(scope)}); err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
