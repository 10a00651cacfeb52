package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/atlas-travel/atlas-auth/internal/database"
	"github.com/atlas-travel/atlas-auth/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OAuthState is a one-time CSRF token for the Google sign-in round trip.
type OAuthState struct {
	State     string    `bson:"state"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

type OAuthStateRepository struct {
	collection *mongo.Collection
}

func NewOAuthStateRepository(db *database.DB) *OAuthStateRepository {
	return &OAuthStateRepository{collection: db.Database.Collection("oauth_states")}
}

// EnsureIndexes creates the lookup index and a TTL index so abandoned
// states expire server-side without a cleanup job.
func (r *OAuthStateRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "state", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_oauth_state"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_oauth_state"),
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to ensure oauth state indexes: %w", err)
	}
	return nil
}

func (r *OAuthStateRepository) Save(ctx context.Context, state string, expiresAt time.Time) error {
	doc := OAuthState{
		State:     state,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return database.MapMongoError(err)
	}
	return nil
}

// Consume validates and deletes a state in one operation so each state is
// redeemable exactly once. Returns ErrUnauthorized for unknown or expired
// states.
func (r *OAuthStateRepository) Consume(ctx context.Context, state string) error {
	filter := bson.M{
		"state":      state,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}

	err := r.collection.FindOneAndDelete(ctx, filter).Err()
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.ErrUnauthorized
		}
		return database.MapMongoError(err)
	}
	return nil
}
