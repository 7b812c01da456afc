package archive

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/crawlytics/dashgeom/pkg/cache"
)

// Default database and collection names.
const (
	DefaultDatabase   = "dashgeom"
	DefaultCollection = "layouts"
)

// Config configures the Mongo archive.
type Config struct {
	// URI is the MongoDB connection string.
	URI string

	// Database name. Defaults to DefaultDatabase.
	Database string

	// Collection name. Defaults to DefaultCollection.
	Collection string
}

// MongoArchive stores entries in a MongoDB collection, indexed by snapshot
// hash so per-snapshot listings stay cheap as the archive grows.
type MongoArchive struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoArchive connects to MongoDB and prepares the layouts collection.
func NewMongoArchive(ctx context.Context, cfg Config) (*MongoArchive, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo archive: URI is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo archive: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo archive: ping: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "snapshot_hash", Value: 1},
			{Key: "computed_at", Value: -1},
		},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo archive: create index: %w", err)
	}

	return &MongoArchive{client: client, coll: coll}, nil
}

// Save stores an entry.
func (a *MongoArchive) Save(ctx context.Context, e Entry) error {
	if _, err := a.coll.InsertOne(ctx, e); err != nil {
		return wrapMongoErr(fmt.Sprintf("save %s", e.ID), err)
	}
	return nil
}

// Get retrieves an entry by computation id.
func (a *MongoArchive) Get(ctx context.Context, id string) (Entry, error) {
	var e Entry
	err := a.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, wrapMongoErr(fmt.Sprintf("get %s", id), err)
	}
	return e, nil
}

// BySnapshot lists entries for a snapshot hash, newest first.
func (a *MongoArchive) BySnapshot(ctx context.Context, snapshotHash string, limit int64) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "computed_at", Value: -1}}).
		SetLimit(limit)
	cur, err := a.coll.Find(ctx, bson.M{"snapshot_hash": snapshotHash}, opts)
	if err != nil {
		return nil, wrapMongoErr(fmt.Sprintf("list %s", snapshotHash), err)
	}
	defer cur.Close(ctx)

	var entries []Entry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, wrapMongoErr("decode listing", err)
	}
	return entries, nil
}

// wrapMongoErr marks transport-level failures retryable so surfaces can wrap
// archive calls in cache.RetryWithBackoff.
func wrapMongoErr(op string, err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return cache.Retryable(fmt.Errorf("mongo archive: %s: %w: %v", op, cache.ErrNetwork, err))
	}
	return fmt.Errorf("mongo archive: %s: %w", op, err)
}

// Close disconnects from MongoDB.
func (a *MongoArchive) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}

var _ Archive = (*MongoArchive)(nil)
