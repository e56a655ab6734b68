package mongo

import (
	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/repository" // Import the repository interfaces package
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
// It expects a connected *mongo.Database instance.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Member != nil && user.Member.Subscriptions == nil {
		user.Member.Subscriptions = []domain.Subscription{} // Store an array, never null
	}

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByEmail retrieves a user by their email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByID retrieves a user by their MongoDB ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByIDAndRole retrieves a user by ID only if they hold the given role.
func (r *mongoUserRepository) GetByIDAndRole(ctx context.Context, id primitive.ObjectID, role domain.Role) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id, "role": role})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// List retrieves users sorted by name, optionally filtered by role.
func (r *mongoUserRepository) List(ctx context.Context, role domain.Role) ([]domain.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []domain.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CountByRole aggregates the number of users per role.
func (r *mongoUserRepository) CountByRole(ctx context.Context) (map[domain.Role]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$role"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Role  domain.Role `bson:"_id"`
		Count int64       `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := map[domain.Role]int64{
		domain.RoleAdmin:   0,
		domain.RoleTrainer: 0,
		domain.RoleMember:  0,
	}
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}

// CountMembersWithCurrentSubscription counts members holding an active subscription that ends after now.
func (r *mongoUserRepository) CountMembersWithCurrentSubscription(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"role": domain.RoleMember,
		"member.subscriptions": bson.M{"$elemMatch": bson.M{
			"status":  domain.SubscriptionActive,
			"endDate": bson.M{"$gt": now},
		}},
	}
	return r.collection.CountDocuments(ctx, filter)
}

// UpdateName changes the display name of a user.
func (r *mongoUserRepository) UpdateName(ctx context.Context, id primitive.ObjectID, name string) error {
	return r.updateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"name": name, "updatedAt": time.Now().UTC()},
	}, repository.ErrNotFound)
}

// UpdatePasswordHash stores a new bcrypt hash for the user.
func (r *mongoUserRepository) UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	return r.updateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"passwordHash": hash, "updatedAt": time.Now().UTC()},
	}, repository.ErrNotFound)
}

// Delete removes a user document.
func (r *mongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddPTSessions increments (or, with a negative delta, decrements) a member's PT balance.
func (r *mongoUserRepository) AddPTSessions(ctx context.Context, memberID primitive.ObjectID, delta int) error {
	filter := bson.M{"_id": memberID, "role": domain.RoleMember}
	update := bson.M{
		"$inc": bson.M{"member.ptSessions": delta},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.updateOne(ctx, filter, update, repository.ErrNotFound)
}

// DebitPTSession removes one credit only while the balance is positive,
// so concurrent debits can never drive it below zero.
func (r *mongoUserRepository) DebitPTSession(ctx context.Context, memberID primitive.ObjectID) error {
	filter := bson.M{
		"_id":               memberID,
		"role":              domain.RoleMember,
		"member.ptSessions": bson.M{"$gt": 0},
	}
	update := bson.M{
		"$inc": bson.M{"member.ptSessions": -1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.updateOne(ctx, filter, update, repository.ErrConditionFailed)
}

// ReplaceSubscriptions writes a new subscription history guarded by the version field.
func (r *mongoUserRepository) ReplaceSubscriptions(ctx context.Context, memberID primitive.ObjectID, expectedVersion int64, subs []domain.Subscription) error {
	filter := bson.M{
		"_id":     memberID,
		"role":    domain.RoleMember,
		"version": expectedVersion,
	}
	// Documents written before the version field existed have no version at all.
	if expectedVersion == 0 {
		filter["version"] = bson.M{"$in": bson.A{0, nil}}
	}
	update := bson.M{
		"$set": bson.M{
			"member.subscriptions": subs,
			"updatedAt":            time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	return r.updateOne(ctx, filter, update, repository.ErrVersionConflict)
}

// updateOne runs an update and translates "nothing matched" into notMatched.
func (r *mongoUserRepository) updateOne(ctx context.Context, filter, update bson.M, notMatched error) error {
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return notMatched
	}
	return nil
}

// EnsureUserIndexes creates necessary indexes for the users collection.
// Call this once during application startup.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index(),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create indexes for %s: %w", collection.Name(), err)
	}
	return nil
}
