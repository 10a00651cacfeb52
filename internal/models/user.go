package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a single account document in the users collection.
//
// PasswordHash is absent for accounts created through Google sign-in, and
// GoogleID is absent for accounts created through direct registration.
// ResetPasswordToken and ResetPasswordExpires are set together by a
// forgot-password request and cleared together when the token is consumed.
type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username             string             `bson:"username" json:"username"`
	Email                string             `bson:"email" json:"email"`
	Name                 string             `bson:"name,omitempty" json:"name,omitempty"`
	PasswordHash         string             `bson:"password_hash,omitempty" json:"-"`
	GoogleID             string             `bson:"google_id,omitempty" json:"-"`
	ResetPasswordToken   string             `bson:"reset_password_token,omitempty" json:"-"`
	ResetPasswordExpires *time.Time         `bson:"reset_password_expires,omitempty" json:"-"`
	CreatedAt            time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time          `bson:"updated_at" json:"updated_at"`
}

// HasPassword reports whether the account can sign in with credentials.
// Accounts created by Google sign-in have no stored hash.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// Identity is the authenticated subset of a user returned by sign-in,
// registration and session reads. It never carries the password hash.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
}

// Identity converts the user document to its response form.
func (u *User) Identity() *Identity {
	return &Identity{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Email:    u.Email,
		Name:     u.Name,
	}
}
