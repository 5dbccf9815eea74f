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

const usersCollection = "users"

// UserRepository implements ports.UserRepository on the users collection.
type UserRepository struct {
	coll         *mongo.Collection
	transactions bool
}

// NewUserRepository returns a repository over db. When transactions is false
// ApproveLink falls back to sequential writes, for standalone servers that
// cannot run multi-document transactions.
func NewUserRepository(db *mongo.Database, transactions bool) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection), transactions: transactions}
}

type mongoUser struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty"`
	Name             string               `bson:"name"`
	Email            string               `bson:"email"`
	PasswordHash     string               `bson:"password_hash"`
	Role             string               `bson:"role"`
	Caregivers       []primitive.ObjectID `bson:"caregivers"`
	Patients         []primitive.ObjectID `bson:"patients"`
	PendingApprovals []primitive.ObjectID `bson:"pending_approvals"`
	CreatedAt        time.Time            `bson:"created_at"`
	UpdatedAt        time.Time            `bson:"updated_at"`
}

func (mu *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:               mu.ID.Hex(),
		Name:             mu.Name,
		Email:            mu.Email,
		PasswordHash:     mu.PasswordHash,
		Role:             domain.Role(mu.Role),
		Caregivers:       hexes(mu.Caregivers),
		Patients:         hexes(mu.Patients),
		PendingApprovals: hexes(mu.PendingApprovals),
		CreatedAt:        mu.CreatedAt.UTC(),
		UpdatedAt:        mu.UpdatedAt.UTC(),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoUser{
		Name:             user.Name,
		Email:            user.Email,
		PasswordHash:     user.PasswordHash,
		Role:             string(user.Role),
		Caregivers:       []primitive.ObjectID{},
		Patients:         []primitive.ObjectID{},
		PendingApprovals: []primitive.ObjectID{},
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := objectID("userId", id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": domain.NormalizeEmail(email)})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) FindSummaries(ctx context.Context, ids []string) ([]domain.UserSummary, error) {
	if len(ids) == 0 {
		return []domain.UserSummary{}, nil
	}
	oids, err := objectIDs("userId", ids)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"name": 1, "email": 1})
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}

	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	byID := make(map[string]domain.UserSummary, len(docs))
	for _, d := range docs {
		byID[d.ID.Hex()] = domain.UserSummary{ID: d.ID.Hex(), Name: d.Name, Email: d.Email}
	}

	out := make([]domain.UserSummary, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// AddPendingApproval pushes patientID onto the target's pending list in a
// single conditional update, so two concurrent identical requests cannot both
// succeed.
func (r *UserRepository) AddPendingApproval(ctx context.Context, targetID, patientID string) error {
	tid, err := objectID("targetId", targetID)
	if err != nil {
		return err
	}
	pid, err := objectID("patientId", patientID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":               tid,
		"pending_approvals": bson.M{"$ne": pid},
		"patients":          bson.M{"$ne": pid},
	}
	update := bson.M{
		"$push": bson.M{"pending_approvals": pid},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("add pending approval: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": tid})
	if err != nil {
		return fmt.Errorf("add pending approval: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return domain.ErrDuplicateRequest
}

// ApproveLink writes both sides of the link inside one transaction.
func (r *UserRepository) ApproveLink(ctx context.Context, approverID, patientID string) error {
	aid, err := objectID("approverId", approverID)
	if err != nil {
		return err
	}
	pid, err := objectID("patientId", patientID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if !r.transactions {
		return r.applyLink(ctx, aid, pid)
	}

	session, err := r.coll.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, r.applyLink(sc, aid, pid)
	})
	return err
}

// applyLink updates the patient first and the approver second. Both updates
// use $addToSet, so replaying after a partial failure converges.
func (r *UserRepository) applyLink(ctx context.Context, aid, pid primitive.ObjectID) error {
	now := time.Now().UTC()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": pid}, bson.M{
		"$addToSet": bson.M{"caregivers": aid},
		"$set":      bson.M{"updated_at": now},
	})
	if err != nil {
		return fmt.Errorf("link patient: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}

	res, err = r.coll.UpdateOne(ctx, bson.M{"_id": aid}, bson.M{
		"$addToSet": bson.M{"patients": pid},
		"$pull":     bson.M{"pending_approvals": pid},
		"$set":      bson.M{"updated_at": now},
	})
	if err != nil {
		return fmt.Errorf("link approver: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})
	return err
}
