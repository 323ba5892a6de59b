package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lumen-ai/api-platform/internal/core/domain"
)

type APIKeyRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewAPIKeyRepository(db *mongo.Database) *APIKeyRepository {
	return &APIKeyRepository{db: db, coll: db.Collection(apiKeysCollection)}
}

type apiKeyDocument struct {
	ID         int64      `bson:"_id"`
	AccountID  int64      `bson:"account_id"`
	Name       string     `bson:"name"`
	KeyHash    string     `bson:"key_hash"`
	KeyPrefix  string     `bson:"key_prefix"`
	Status     string     `bson:"status"`
	CreatedAt  time.Time  `bson:"created_at"`
	LastUsedAt *time.Time `bson:"last_used_at,omitempty"`
}

func (d *apiKeyDocument) toDomain() *domain.APIKey {
	k := &domain.APIKey{
		ID:        d.ID,
		AccountID: d.AccountID,
		Name:      d.Name,
		KeyHash:   d.KeyHash,
		KeyPrefix: d.KeyPrefix,
		Status:    domain.APIKeyStatus(d.Status),
		CreatedAt: d.CreatedAt.UTC(),
	}
	if d.LastUsedAt != nil {
		t := d.LastUsedAt.UTC()
		k.LastUsedAt = &t
	}
	return k
}

func (r *APIKeyRepository) Create(ctx context.Context, key *domain.APIKey) (*domain.APIKey, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextID(ctx, r.db, apiKeysCollection)
	if err != nil {
		return nil, err
	}

	doc := apiKeyDocument{
		ID:        id,
		AccountID: key.AccountID,
		Name:      key.Name,
		KeyHash:   key.KeyHash,
		KeyPrefix: key.KeyPrefix,
		Status:    string(key.Status),
		CreatedAt: key.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if conflict := duplicateKeyError(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("insert api key: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *APIKeyRepository) FindByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc apiKeyDocument
	if err := r.coll.FindOne(ctx, bson.M{"key_hash": keyHash}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAPIKeyNotFound
		}
		return nil, fmt.Errorf("find api key: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *APIKeyRepository) ListByAccount(ctx context.Context, accountID int64) ([]*domain.APIKey, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{"account_id": accountID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer cur.Close(ctx)

	var docs []apiKeyDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode api keys: %w", err)
	}

	out := make([]*domain.APIKey, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *APIKeyRepository) SetStatus(ctx context.Context, accountID, id int64, status domain.APIKeyStatus) (*domain.APIKey, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc apiKeyDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "account_id": accountID},
		bson.M{"$set": bson.M{"status": string(status)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAPIKeyNotFound
		}
		return nil, fmt.Errorf("update api key status: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *APIKeyRepository) Delete(ctx context.Context, accountID, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "account_id": accountID})
	if err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAPIKeyNotFound
	}
	return nil
}

func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id int64, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_used_at": at.UTC()}}); err != nil {
		return fmt.Errorf("touch api key: %w", err)
	}
	return nil
}
