package database

import (
	"errors"
	"strings"

	"github.com/atlas-travel/atlas-auth/internal/models"
	"go.mongodb.org/mongo-driver/mongo"
)

func MapMongoError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ErrNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return models.ErrConflict
	}

	return err
}

// DuplicateKeyField extracts the index field behind an E11000 duplicate key
// error so handlers can tag the conflicting form field. Returns "" when the
// error is not a duplicate key error or the field cannot be determined.
func DuplicateKeyField(err error) string {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return ""
	}

	msg := duplicateKeyMessage(err)
	for _, field := range []string{"username", "email", "google_id"} {
		if strings.Contains(msg, field) {
			return field
		}
	}
	return ""
}

func duplicateKeyMessage(err error) string {
	var we mongo.WriteException
	if errors.As(err, &we) {
		var sb strings.Builder
		for _, e := range we.WriteErrors {
			sb.WriteString(e.Message)
		}
		return sb.String()
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return ce.Message
	}

	return err.Error()
}
