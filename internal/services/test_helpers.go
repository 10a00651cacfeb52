package services

import (
	"context"
	"time"

	"github.com/atlas-travel/atlas-auth/internal/models"
	pkgauth "github.com/atlas-travel/atlas-auth/pkg/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc              func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc           func(ctx context.Context, email string) (*models.User, error)
	GetByUsernameFunc        func(ctx context.Context, username string) (*models.User, error)
	GetByEmailOrUsernameFunc func(ctx context.Context, identifier string) (*models.User, error)
	CreateFunc               func(ctx context.Context, user *models.User) (*models.User, error)
	SetResetTokenFunc        func(ctx context.Context, id primitive.ObjectID, token string, expires time.Time) error
	ResetPasswordByTokenFunc func(ctx context.Context, token, passwordHash string) (*models.User, error)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmailOrUsername(ctx context.Context, identifier string) (*models.User, error) {
	if m.GetByEmailOrUsernameFunc != nil {
		return m.GetByEmailOrUsernameFunc(ctx, identifier)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expires time.Time) error {
	if m.SetResetTokenFunc != nil {
		return m.SetResetTokenFunc(ctx, id, token, expires)
	}
	return nil
}

func (m *MockUserRepository) ResetPasswordByToken(ctx context.Context, token, passwordHash string) (*models.User, error) {
	if m.ResetPasswordByTokenFunc != nil {
		return m.ResetPasswordByTokenFunc(ctx, token, passwordHash)
	}
	return nil, models.ErrInvalidResetToken
}

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	SendPasswordResetEmailFunc func(ctx context.Context, email, token string, expiresAt time.Time) error
}

func (m *MockEmailService) SendPasswordResetEmail(ctx context.Context, email, token string, expiresAt time.Time) error {
	if m.SendPasswordResetEmailFunc != nil {
		return m.SendPasswordResetEmailFunc(ctx, email, token, expiresAt)
	}
	return nil
}

// NewTestUser creates a password-backed test user
func NewTestUser(username, email, name string) *models.User {
	now := time.Now()
	return &models.User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		Email:     email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestUserWithPassword creates a user whose password is the given plaintext
func NewTestUserWithPassword(username, email, name, password string) *models.User {
	user := NewTestUser(username, email, name)
	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	user.PasswordHash = hash
	return user
}

// NewTestGoogleUser creates an OAuth-only user (no password hash)
func NewTestGoogleUser(username, email, name, googleID string) *models.User {
	user := NewTestUser(username, email, name)
	user.GoogleID = googleID
	return user
}
