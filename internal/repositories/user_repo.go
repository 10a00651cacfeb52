package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atlas-travel/atlas-auth/internal/database"
	"github.com/atlas-travel/atlas-auth/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{collection: db.Database.Collection("users")}
}

// EnsureIndexes creates the uniqueness indexes the auth flows rely on.
// google_id is sparse so password-only accounts don't collide on the
// missing field.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_username"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		{
			Keys:    bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_users_google_id"),
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to ensure user indexes: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user); err != nil {
		return nil, database.MapMongoError(err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&user); err != nil {
		return nil, database.MapMongoError(err)
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"username": strings.TrimSpace(username)}).Decode(&user); err != nil {
		return nil, database.MapMongoError(err)
	}
	return &user, nil
}

// GetByEmailOrUsername resolves a login identifier that may be either field.
func (r *UserRepository) GetByEmailOrUsername(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)

	filter := bson.M{"$or": bson.A{
		bson.M{"email": strings.ToLower(identifier)},
		bson.M{"username": identifier},
	}}

	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, database.MapMongoError(err)
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = primitive.NewObjectID()
	user.Email = normalizeEmail(user.Email)
	user.Username = strings.TrimSpace(user.Username)

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		switch database.DuplicateKeyField(err) {
		case "username":
			return nil, models.ErrDuplicateUsername
		case "email":
			return nil, models.ErrDuplicateEmail
		}
		return nil, database.MapMongoError(err)
	}
	return user, nil
}

// SetResetToken stores a reset token and its expiry on the user document.
// A newer token overwrites any outstanding one.
func (r *UserRepository) SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expires time.Time) error {
	update := bson.M{"$set": bson.M{
		"reset_password_token":   token,
		"reset_password_expires": expires,
		"updated_at":             time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return database.MapMongoError(err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ResetPasswordByToken atomically consumes an unexpired reset token: the
// password hash is replaced and the token fields removed in one update, so
// a token can never be redeemed twice.
func (r *UserRepository) ResetPasswordByToken(ctx context.Context, token, passwordHash string) (*models.User, error) {
	filter := bson.M{
		"reset_password_token":   token,
		"reset_password_expires": bson.M{"$gt": time.Now().UTC()},
	}
	update := bson.M{
		"$set": bson.M{
			"password_hash": passwordHash,
			"updated_at":    time.Now().UTC(),
		},
		"$unset": bson.M{
			"reset_password_token":   "",
			"reset_password_expires": "",
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrInvalidResetToken
		}
		return nil, database.MapMongoError(err)
	}
	return &user, nil
}

// CleanupExpiredResetTokens removes stale token fields so expired tokens
// don't linger in user documents. Returns the number of users touched.
func (r *UserRepository) CleanupExpiredResetTokens(ctx context.Context) (int64, error) {
	filter := bson.M{
		"reset_password_expires": bson.M{"$lte": time.Now().UTC()},
	}
	update := bson.M{"$unset": bson.M{
		"reset_password_token":   "",
		"reset_password_expires": "",
	}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, database.MapMongoError(err)
	}
	return result.ModifiedCount, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
