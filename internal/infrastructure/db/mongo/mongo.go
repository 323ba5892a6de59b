package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

const (
	accountsCollection   = "accounts"
	apiKeysCollection    = "api_keys"
	identitiesCollection = "external_identities"
	recordsCollection    = "billing_records"
	usageCollection      = "usage_stats"
	countersCollection   = "counters"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// EnsureIndexes creates the unique indexes that make the store the
// uniqueness authority. Index names are matched by duplicateKeyError.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	unique := func(name string) *options.IndexOptions {
		return options.Index().SetName(name).SetUnique(true)
	}

	specs := map[string][]mongo.IndexModel{
		accountsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique(idxAccountEmail)},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique(idxAccountUsername)},
		},
		apiKeysCollection: {
			{Keys: bson.D{{Key: "key_hash", Value: 1}}, Options: unique(idxKeyHash)},
			{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("account_keys")},
		},
		identitiesCollection: {
			{Keys: bson.D{{Key: "provider", Value: 1}, {Key: "provider_user_id", Value: 1}}, Options: unique(idxProviderUser)},
			{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "provider", Value: 1}}, Options: unique(idxAccountProvider)},
		},
		recordsCollection: {
			{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("account_records")},
		},
		usageCollection: {
			{Keys: bson.D{{Key: "account_id", Value: 1}}, Options: unique("uniq_usage_account")},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// nextID returns the next value of a named integer sequence.
func nextID(ctx context.Context, db *mongo.Database, sequence string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := db.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": sequence},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", sequence, err)
	}
	return counter.Seq, nil
}
