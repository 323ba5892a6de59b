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

type IdentityRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *IdentityRepository {
	return &IdentityRepository{db: db, coll: db.Collection(identitiesCollection)}
}

type identityDocument struct {
	ID             int64     `bson:"_id"`
	AccountID      int64     `bson:"account_id"`
	Provider       string    `bson:"provider"`
	ProviderUserID string    `bson:"provider_user_id"`
	AccessToken    string    `bson:"access_token"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func (d *identityDocument) toDomain() *domain.ExternalIdentity {
	return &domain.ExternalIdentity{
		ID:             d.ID,
		AccountID:      d.AccountID,
		Provider:       domain.Provider(d.Provider),
		ProviderUserID: d.ProviderUserID,
		AccessToken:    d.AccessToken,
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
}

func (r *IdentityRepository) Create(ctx context.Context, identity *domain.ExternalIdentity) (*domain.ExternalIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextID(ctx, r.db, identitiesCollection)
	if err != nil {
		return nil, err
	}

	doc := identityDocument{
		ID:             id,
		AccountID:      identity.AccountID,
		Provider:       string(identity.Provider),
		ProviderUserID: identity.ProviderUserID,
		AccessToken:    identity.AccessToken,
		CreatedAt:      identity.CreatedAt,
		UpdatedAt:      identity.UpdatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if conflict := duplicateKeyError(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("insert identity: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *IdentityRepository) FindByProviderUser(ctx context.Context, provider domain.Provider, providerUserID string) (*domain.ExternalIdentity, error) {
	return r.findOne(ctx, bson.M{"provider": string(provider), "provider_user_id": providerUserID})
}

func (r *IdentityRepository) FindByAccountAndProvider(ctx context.Context, accountID int64, provider domain.Provider) (*domain.ExternalIdentity, error) {
	return r.findOne(ctx, bson.M{"account_id": accountID, "provider": string(provider)})
}

func (r *IdentityRepository) ListByAccount(ctx context.Context, accountID int64) ([]*domain.ExternalIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{"account_id": accountID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer cur.Close(ctx)

	var docs []identityDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode identities: %w", err)
	}

	out := make([]*domain.ExternalIdentity, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *IdentityRepository) UpdateAccessToken(ctx context.Context, id int64, accessToken string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"access_token": accessToken, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("update identity token: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrIdentityNotFound
	}
	return nil
}

func (r *IdentityRepository) DeleteByAccountAndProvider(ctx context.Context, accountID int64, provider domain.Provider) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"account_id": accountID, "provider": string(provider)})
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrBindingNotFound
	}
	return nil
}

func (r *IdentityRepository) findOne(ctx context.Context, filter bson.M) (*domain.ExternalIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc identityDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return doc.toDomain(), nil
}
