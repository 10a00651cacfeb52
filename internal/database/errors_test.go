package database

import (
	"errors"
	"testing"

	"github.com/atlas-travel/atlas-auth/internal/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func duplicateKeyError(message string) error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{
			{Code: 11000, Message: message},
		},
	}
}

func TestMapMongoError(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.NoError(t, MapMongoError(nil))
	})

	t.Run("no documents maps to not found", func(t *testing.T) {
		assert.ErrorIs(t, MapMongoError(mongo.ErrNoDocuments), models.ErrNotFound)
	})

	t.Run("duplicate key maps to conflict", func(t *testing.T) {
		err := duplicateKeyError("E11000 duplicate key error collection: atlas.users index: email_1")
		assert.ErrorIs(t, MapMongoError(err), models.ErrConflict)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		err := errors.New("connection reset")
		assert.Equal(t, err, MapMongoError(err))
	})
}

func TestDuplicateKeyField(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantKey string
	}{
		{
			name:    "username index",
			err:     duplicateKeyError("E11000 duplicate key error collection: atlas.users index: username_1 dup key"),
			wantKey: "username",
		},
		{
			name:    "email index",
			err:     duplicateKeyError("E11000 duplicate key error collection: atlas.users index: email_1 dup key"),
			wantKey: "email",
		},
		{
			name:    "google id index",
			err:     duplicateKeyError("E11000 duplicate key error collection: atlas.users index: google_id_1 dup key"),
			wantKey: "google_id",
		},
		{
			name:    "unknown index",
			err:     duplicateKeyError("E11000 duplicate key error collection: atlas.users index: legacy_1"),
			wantKey: "",
		},
		{
			name:    "not a duplicate key error",
			err:     errors.New("connection reset"),
			wantKey: "",
		},
		{
			name:    "nil error",
			err:     nil,
			wantKey: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKey, DuplicateKeyField(tt.err))
		})
	}
}
