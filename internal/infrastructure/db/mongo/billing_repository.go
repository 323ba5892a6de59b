package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lumen-ai/api-platform/internal/core/domain"
)

const maxRecords = 200

type BillingRepository struct {
	db      *mongo.Database
	records *mongo.Collection
	usage   *mongo.Collection
}

func NewBillingRepository(db *mongo.Database) *BillingRepository {
	return &BillingRepository{
		db:      db,
		records: db.Collection(recordsCollection),
		usage:   db.Collection(usageCollection),
	}
}

type recordDocument struct {
	ID           int64                `bson:"_id"`
	AccountID    int64                `bson:"account_id"`
	Type         string               `bson:"type"`
	Amount       primitive.Decimal128 `bson:"amount"`
	BalanceAfter primitive.Decimal128 `bson:"balance_after"`
	Description  string               `bson:"description"`
	CreatedAt    time.Time            `bson:"created_at"`
}

type usageDocument struct {
	AccountID        int64     `bson:"account_id"`
	TotalTokens      int64     `bson:"total_tokens"`
	PromptTokens     int64     `bson:"prompt_tokens"`
	CompletionTokens int64     `bson:"completion_tokens"`
	RequestCount     int64     `bson:"request_count"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

func (r *BillingRepository) AppendRecord(ctx context.Context, record *domain.BillingRecord) (*domain.BillingRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextID(ctx, r.db, recordsCollection)
	if err != nil {
		return nil, err
	}
	amount, err := toDecimal128(record.Amount)
	if err != nil {
		return nil, err
	}
	after, err := toDecimal128(record.BalanceAfter)
	if err != nil {
		return nil, err
	}

	doc := recordDocument{
		ID:           id,
		AccountID:    record.AccountID,
		Type:         string(record.Type),
		Amount:       amount,
		BalanceAfter: after,
		Description:  record.Description,
		CreatedAt:    record.CreatedAt,
	}
	if _, err := r.records.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert billing record: %w", err)
	}

	out := *record
	out.ID = id
	return &out, nil
}

func (r *BillingRepository) ListRecords(ctx context.Context, accountID int64) ([]*domain.BillingRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.records.Find(ctx, bson.M{"account_id": accountID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).SetLimit(maxRecords))
	if err != nil {
		return nil, fmt.Errorf("list billing records: %w", err)
	}
	defer cur.Close(ctx)

	var docs []recordDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode billing records: %w", err)
	}

	out := make([]*domain.BillingRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.BillingRecord{
			ID:           d.ID,
			AccountID:    d.AccountID,
			Type:         domain.RecordType(d.Type),
			Amount:       fromDecimal128(d.Amount),
			BalanceAfter: fromDecimal128(d.BalanceAfter),
			Description:  d.Description,
			CreatedAt:    d.CreatedAt.UTC(),
		})
	}
	return out, nil
}

func (r *BillingRepository) AddUsage(ctx context.Context, accountID, promptTokens, completionTokens int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.usage.UpdateOne(ctx,
		bson.M{"account_id": accountID},
		bson.M{
			"$inc": bson.M{
				"prompt_tokens":     promptTokens,
				"completion_tokens": completionTokens,
				"total_tokens":      promptTokens + completionTokens,
				"request_count":     int64(1),
			},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("add usage: %w", err)
	}
	return nil
}

func (r *BillingRepository) GetUsage(ctx context.Context, accountID int64) (*domain.UsageStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc usageDocument
	if err := r.usage.FindOne(ctx, bson.M{"account_id": accountID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &domain.UsageStats{AccountID: accountID}, nil
		}
		return nil, fmt.Errorf("find usage: %w", err)
	}
	return &domain.UsageStats{
		AccountID:        doc.AccountID,
		TotalTokens:      doc.TotalTokens,
		PromptTokens:     doc.PromptTokens,
		CompletionTokens: doc.CompletionTokens,
		RequestCount:     doc.RequestCount,
		UpdatedAt:        doc.UpdatedAt.UTC(),
	}, nil
}
