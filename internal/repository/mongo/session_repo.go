package mongo

import (
	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollectionName = "sessions"

// mongoSessionRepository implements repository.SessionRepository
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new private session repository backed by MongoDB.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// Create inserts a new session. The unique partial indexes reject a second
// slot-holding session for the same trainer or member slot.
func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.PrivateSession) (primitive.ObjectID, error) {
	if session.TrainerID == primitive.NilObjectID || session.MemberID == primitive.NilObjectID || session.Time == "" {
		return primitive.NilObjectID, errors.New("session requires trainerId, memberId and time")
	}

	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	if session.Status == "" {
		session.Status = domain.SessionConfirmed
	}
	session.HoldsSlot = session.Active()

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted session ID")
	}
	return insertedID, nil
}

// GetByID retrieves a session by its ID.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PrivateSession, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindActiveByTrainerSlot returns the non-cancelled session holding a trainer's slot.
func (r *mongoSessionRepository) FindActiveByTrainerSlot(ctx context.Context, trainerID primitive.ObjectID, date time.Time, slot string) (*domain.PrivateSession, error) {
	return r.findOne(ctx, bson.M{
		"trainerId": trainerID,
		"date":      domain.DateOnly(date),
		"time":      slot,
		"status":    bson.M{"$ne": domain.SessionCancelled},
	})
}

// FindActiveByMemberSlot returns the non-cancelled session holding a member's slot.
func (r *mongoSessionRepository) FindActiveByMemberSlot(ctx context.Context, memberID primitive.ObjectID, date time.Time, slot string) (*domain.PrivateSession, error) {
	return r.findOne(ctx, bson.M{
		"memberId": memberID,
		"date":     domain.DateOnly(date),
		"time":     slot,
		"status":   bson.M{"$ne": domain.SessionCancelled},
	})
}

func (r *mongoSessionRepository) findOne(ctx context.Context, filter bson.M) (*domain.PrivateSession, error) {
	var session domain.PrivateSession
	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// List retrieves sessions matching the filter, ordered by date then time.
func (r *mongoSessionRepository) List(ctx context.Context, f repository.SessionFilter) ([]domain.PrivateSession, error) {
	filter := bson.M{}
	if f.TrainerID != nil {
		filter["trainerId"] = *f.TrainerID
	}
	if f.MemberID != nil {
		filter["memberId"] = *f.MemberID
	}
	if dateRange := dateRangeFilter(f.From, f.To); dateRange != nil {
		filter["date"] = dateRange
	}
	if f.ActiveOnly {
		filter["status"] = bson.M{"$ne": domain.SessionCancelled}
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := []domain.PrivateSession{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// TransitionStatus moves a session between statuses only if it is still in `from`.
func (r *mongoSessionRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to domain.SessionStatus) error {
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{
		"$set": bson.M{
			"status":    to,
			"holdsSlot": to != domain.SessionCancelled,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrConditionFailed
	}
	return nil
}

// dateRangeFilter builds a {$gte,$lte} document for optional bounds.
func dateRangeFilter(from, to *time.Time) bson.M {
	if from == nil && to == nil {
		return nil
	}
	rng := bson.M{}
	if from != nil {
		rng["$gte"] = domain.DateOnly(*from)
	}
	if to != nil {
		rng["$lte"] = domain.DateOnly(*to)
	}
	return rng
}

// EnsureSessionIndexes creates the slot uniqueness indexes plus lookup indexes.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) error {
	holdsSlot := bson.M{"holdsSlot": true}
	indexes := []mongo.IndexModel{
		{
			// One slot-holding session per trainer slot
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(holdsSlot).SetName("uniq_trainer_slot"),
		},
		{
			// One slot-holding session per member slot
			Keys:    bson.D{{Key: "memberId", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(holdsSlot).SetName("uniq_member_slot"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create indexes for %s: %w", collection.Name(), err)
	}
	return nil
}
