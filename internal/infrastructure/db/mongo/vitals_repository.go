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

const collectionHealthData = "health_data"

// VitalsRepository implements ports.VitalsRepository using MongoDB.
type VitalsRepository struct {
	col *mongo.Collection
}

func NewVitalsRepository(db *mongo.Database) *VitalsRepository {
	return &VitalsRepository{col: db.Collection(collectionHealthData)}
}

type mongoSnapshot struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	User        primitive.ObjectID `bson:"user"`
	RunID       string             `bson:"run_id"`
	HeartRate   int                `bson:"heart_rate"`
	SpO2        int                `bson:"spo2"`
	Temperature float64            `bson:"temperature"`
	Stream      []domain.Sample    `bson:"stream"`
	RecordedAt  time.Time          `bson:"recorded_at"`
}

// Replace swaps the user's snapshot for s in one replace-with-upsert and sets
// s.ID to the stored document's id. Combined with the unique index on user
// this keeps a single live snapshot per user.
func (r *VitalsRepository) Replace(ctx context.Context, s *domain.VitalsSnapshot) error {
	uid, err := objectID("userId", s.UserID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoSnapshot{
		User:        uid,
		RunID:       s.RunID,
		HeartRate:   s.HeartRate,
		SpO2:        s.SpO2,
		Temperature: s.Temperature,
		Stream:      s.Stream,
		RecordedAt:  s.RecordedAt,
	}

	opts := options.FindOneAndReplace().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.M{"_id": 1})

	var stored struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := r.col.FindOneAndReplace(ctx, bson.M{"user": uid}, doc, opts).Decode(&stored); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	s.ID = stored.ID.Hex()
	return nil
}

// FindLatest retrieves the user's live snapshot.
func (r *VitalsRepository) FindLatest(ctx context.Context, userID string) (*domain.VitalsSnapshot, error) {
	uid, err := objectID("userId", userID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "recorded_at", Value: -1}})

	var doc mongoSnapshot
	if err := r.col.FindOne(ctx, bson.M{"user": uid}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrVitalsNotFound
		}
		return nil, fmt.Errorf("find snapshot: %w", err)
	}

	stream := doc.Stream
	for i := range stream {
		stream[i].Timestamp = stream[i].Timestamp.UTC()
	}

	return &domain.VitalsSnapshot{
		ID:          doc.ID.Hex(),
		UserID:      doc.User.Hex(),
		RunID:       doc.RunID,
		HeartRate:   doc.HeartRate,
		SpO2:        doc.SpO2,
		Temperature: doc.Temperature,
		Stream:      stream,
		RecordedAt:  doc.RecordedAt.UTC(),
	}, nil
}

// EnsureIndexes creates the unique owner index on the health_data collection.
func (r *VitalsRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
