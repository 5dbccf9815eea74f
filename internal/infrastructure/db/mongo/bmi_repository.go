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

	"github.com/smartcare/smartcare-api/internal/core/domain"
)

const collectionBmis = "bmis"

type BmiRepository struct {
	col *mongo.Collection
}

func NewBmiRepository(db *mongo.Database) *BmiRepository {
	return &BmiRepository{col: db.Collection(collectionBmis)}
}

type mongoBmi struct {
	UserID    primitive.ObjectID `bson:"user_id"`
	Height    float64            `bson:"height"`
	Weight    float64            `bson:"weight"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// Upsert overwrites height and weight for the record's owner. The previous
// document, when present, supplies the original CreatedAt.
func (r *BmiRepository) Upsert(ctx context.Context, rec *domain.BmiRecord) (bool, error) {
	uid, err := objectID("userId", rec.UserID)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"height":     rec.Height,
			"weight":     rec.Weight,
			"updated_at": rec.UpdatedAt,
		},
		"$setOnInsert": bson.M{"created_at": rec.CreatedAt},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.Before)

	var prev mongoBmi
	err = r.col.FindOneAndUpdate(ctx, bson.M{"user_id": uid}, update, opts).Decode(&prev)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return true, nil
	case err != nil:
		return false, fmt.Errorf("upsert bmi: %w", err)
	}

	rec.CreatedAt = prev.CreatedAt.UTC()
	return false, nil
}

func (r *BmiRepository) FindByUser(ctx context.Context, userID string) (*domain.BmiRecord, error) {
	uid, err := objectID("userId", userID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoBmi
	if err := r.col.FindOne(ctx, bson.M{"user_id": uid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBmiNotFound
		}
		return nil, fmt.Errorf("find bmi: %w", err)
	}

	return &domain.BmiRecord{
		UserID:    doc.UserID.Hex(),
		Height:    doc.Height,
		Weight:    doc.Weight,
		CreatedAt: doc.CreatedAt.UTC(),
		UpdatedAt: doc.UpdatedAt.UTC(),
	}, nil
}

// EnsureIndexes enforces one BMI record per user.
func (r *BmiRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
