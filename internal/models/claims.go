package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the payload of the signed session cookie. The subject
// claim carries the user's document ID.
type SessionClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}
