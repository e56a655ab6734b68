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

const classCollectionName = "classes"

// mongoClassRepository implements repository.ClassRepository
type mongoClassRepository struct {
	collection *mongo.Collection
}

// NewMongoClassRepository creates a new group class repository.
func NewMongoClassRepository(db *mongo.Database) repository.ClassRepository {
	return &mongoClassRepository{
		collection: db.Collection(classCollectionName),
	}
}

// Create inserts a new class with an empty roster.
func (r *mongoClassRepository) Create(ctx context.Context, class *domain.GroupClass) (primitive.ObjectID, error) {
	if class.TrainerID == primitive.NilObjectID || class.ClassType == "" || class.Capacity <= 0 {
		return primitive.NilObjectID, errors.New("class requires trainerId, classType and a positive capacity")
	}
	class.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now
	class.Date = domain.DateOnly(class.Date)
	if class.Participants == nil {
		class.Participants = []domain.Participant{}
	}

	result, err := r.collection.InsertOne(ctx, class)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted class ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single class.
func (r *mongoClassRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.GroupClass, error) {
	var class domain.GroupClass
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&class)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &class, nil
}

// List retrieves classes matching the filter ordered chronologically.
func (r *mongoClassRepository) List(ctx context.Context, f repository.ClassFilter) ([]domain.GroupClass, error) {
	filter := bson.M{}
	if f.TrainerID != nil {
		filter["trainerId"] = *f.TrainerID
	}
	if dateRange := dateRangeFilter(f.From, f.To); dateRange != nil {
		filter["date"] = dateRange
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	classes := []domain.GroupClass{}
	if err = cursor.All(ctx, &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

// Enroll re-activates a cancelled roster entry or appends a new one. Both
// paths are single conditional updates guarded by enrolledCount < capacity.
func (r *mongoClassRepository) Enroll(ctx context.Context, classID primitive.ObjectID, p domain.Participant) error {
	hasRoom := bson.M{"$expr": bson.M{"$lt": bson.A{"$enrolledCount", "$capacity"}}}
	now := time.Now().UTC()
	p.Status = domain.ParticipantEnrolled
	if p.EnrolledAt.IsZero() {
		p.EnrolledAt = now
	}

	// 1. Previously cancelled participant
	reactivate := bson.M{
		"_id": classID,
		"participants": bson.M{"$elemMatch": bson.M{
			"memberId": p.MemberID,
			"status":   domain.ParticipantCancelled,
		}},
	}
	for k, v := range hasRoom {
		reactivate[k] = v
	}
	result, err := r.collection.UpdateOne(ctx, reactivate, bson.M{
		"$set": bson.M{
			"participants.$.status":     domain.ParticipantEnrolled,
			"participants.$.enrolledAt": p.EnrolledAt,
			"updatedAt":                 now,
		},
		"$inc": bson.M{"enrolledCount": 1},
	})
	if err != nil {
		return fmt.Errorf("re-enroll participant: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	// 2. New participant
	add := bson.M{
		"_id":                   classID,
		"participants.memberId": bson.M{"$ne": p.MemberID},
	}
	for k, v := range hasRoom {
		add[k] = v
	}
	result, err = r.collection.UpdateOne(ctx, add, bson.M{
		"$push": bson.M{"participants": p},
		"$inc":  bson.M{"enrolledCount": 1},
		"$set":  bson.M{"updatedAt": now},
	})
	if err != nil {
		return fmt.Errorf("enroll participant: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrConditionFailed
	}
	return nil
}

// SetParticipantStatus changes a roster entry from one status to another and
// keeps enrolledCount in step with it. A transition that takes a place back
// only matches while enrolledCount < capacity.
func (r *mongoClassRepository) SetParticipantStatus(ctx context.Context, classID, memberID primitive.ObjectID, from, to domain.ParticipantStatus) error {
	filter := bson.M{
		"_id": classID,
		"participants": bson.M{"$elemMatch": bson.M{
			"memberId": memberID,
			"status":   from,
		}},
	}
	update := bson.M{
		"$set": bson.M{
			"participants.$.status": to,
			"updatedAt":             time.Now().UTC(),
		},
	}
	if delta := rosterDelta(from, to); delta != 0 {
		update["$inc"] = bson.M{"enrolledCount": delta}
		if delta > 0 {
			// Re-occupying a place needs the same room check as Enroll
			filter["$expr"] = bson.M{"$lt": bson.A{"$enrolledCount", "$capacity"}}
		}
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update participant status: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrConditionFailed
	}
	return nil
}

// rosterDelta is the change in occupied places when a participant changes status.
func rosterDelta(from, to domain.ParticipantStatus) int {
	occupies := func(s domain.ParticipantStatus) int {
		if s == domain.ParticipantCancelled {
			return 0
		}
		return 1
	}
	return occupies(to) - occupies(from)
}

// EnsureClassIndexes creates necessary indexes. Call during startup.
func EnsureClassIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "participants.memberId", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create indexes for %s: %w", collection.Name(), err)
	}
	return nil
}
