// internal/repository/mongo/plan_request_repo.go
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

const planRequestCollectionName = "plan_requests"

// mongoPlanRequestRepository implements repository.PlanRequestRepository
type mongoPlanRequestRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRequestRepository creates a new PlanRequest repository.
func NewMongoPlanRequestRepository(db *mongo.Database) repository.PlanRequestRepository {
	return &mongoPlanRequestRepository{
		collection: db.Collection(planRequestCollectionName),
	}
}

// Create inserts a new plan request.
func (r *mongoPlanRequestRepository) Create(ctx context.Context, req *domain.PlanRequest) (primitive.ObjectID, error) {
	if req.MemberID == primitive.NilObjectID || req.TrainerID == primitive.NilObjectID || req.PlanType == "" {
		return primitive.NilObjectID, errors.New("plan request requires memberId, trainerId, and planType")
	}
	req.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	if req.Status == "" {
		req.Status = domain.RequestPending
	}

	result, err := r.collection.InsertOne(ctx, req)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan request ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single plan request by its ID.
func (r *mongoPlanRequestRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanRequest, error) {
	var req domain.PlanRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// List retrieves plan requests matching the filter, newest first.
func (r *mongoPlanRequestRepository) List(ctx context.Context, f repository.PlanRequestFilter) ([]domain.PlanRequest, error) {
	filter := bson.M{}
	if f.MemberID != nil {
		filter["memberId"] = *f.MemberID
	}
	if f.TrainerID != nil {
		filter["trainerId"] = *f.TrainerID
	}
	if len(f.Statuses) > 0 {
		filter["status"] = bson.M{"$in": f.Statuses}
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	requests := []domain.PlanRequest{}
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// Update writes the mutable fields of a plan request.
// Member, trainer, type and message are fixed at creation.
func (r *mongoPlanRequestRepository) Update(ctx context.Context, req *domain.PlanRequest) error {
	if req.ID == primitive.NilObjectID {
		return errors.New("plan request ID is required for update")
	}

	req.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"status":    req.Status,
		"response":  req.Response,
		"updatedAt": req.UpdatedAt,
	}
	if req.ResponseDate != nil {
		set["responseDate"] = req.ResponseDate
	}
	if req.AttachmentKey != "" {
		set["attachmentKey"] = req.AttachmentKey
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": req.ID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update plan request: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePlanRequestIndexes creates necessary indexes. Call during startup.
func EnsurePlanRequestIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "memberId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create indexes for %s: %w", collection.Name(), err)
	}
	return nil
}
