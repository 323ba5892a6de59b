package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lumen-ai/api-platform/internal/core/domain"
)

type AccountRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{db: db, coll: db.Collection(accountsCollection)}
}

// accountDocument is the stored shape. Documents written before token
// versioning have no token_version field and decode as 0.
type accountDocument struct {
	ID           int64                `bson:"_id"`
	Email        string               `bson:"email"`
	Username     string               `bson:"username"`
	PasswordHash string               `bson:"password_hash"`
	Balance      primitive.Decimal128 `bson:"balance"`
	TokenVersion int64                `bson:"token_version"`
	AvatarURL    string               `bson:"avatar_url,omitempty"`
	CreatedAt    time.Time            `bson:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at"`
}

func (d *accountDocument) toDomain() *domain.Account {
	return &domain.Account{
		ID:           d.ID,
		Email:        d.Email,
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		Balance:      fromDecimal128(d.Balance),
		TokenVersion: d.TokenVersion,
		AvatarURL:    d.AvatarURL,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextID(ctx, r.db, accountsCollection)
	if err != nil {
		return nil, err
	}

	balance, err := toDecimal128(account.Balance)
	if err != nil {
		return nil, err
	}

	doc := accountDocument{
		ID:           id,
		Email:        account.Email,
		Username:     account.Username,
		PasswordHash: account.PasswordHash,
		Balance:      balance,
		TokenVersion: account.TokenVersion,
		AvatarURL:    account.AvatarURL,
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if conflict := duplicateKeyError(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email})
}

func (r *AccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": username})
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, id int64, username, email string) (*domain.Account, error) {
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"username": username, "email": email, "updated_at": time.Now().UTC()},
	})
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"password_hash": passwordHash, "updated_at": time.Now().UTC()},
		"$inc": bson.M{"token_version": int64(1)},
	})
	return err
}

func (r *AccountRepository) IncrementTokenVersion(ctx context.Context, id int64) (int64, error) {
	account, err := r.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"token_version": int64(1)},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return 0, err
	}
	return account.TokenVersion, nil
}

func (r *AccountRepository) SetAvatarIfEmpty(ctx context.Context, id int64, avatarURL string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"avatar_url": bson.M{"$exists": false}},
			bson.M{"avatar_url": ""},
		},
	}
	if _, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"avatar_url": avatarURL}}); err != nil {
		return fmt.Errorf("set avatar: %w", err)
	}
	return nil
}

func (r *AccountRepository) AddBalance(ctx context.Context, id int64, amount decimal.Decimal) (*domain.Account, error) {
	inc, err := toDecimal128(amount)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"balance": inc},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count accounts: %w", err)
	}
	return n > 0, nil
}

func (r *AccountRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		if conflict := duplicateKeyError(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return doc.toDomain(), nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encode decimal %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}
