package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/classdesk/classdesk-api/internal/models"
)

type mockAuthRepo struct {
	usersByEmail map[string]models.User
	usersByID    map[string]models.User
	tokens       map[string]models.RefreshToken
	createdUser  *models.User
	revokedIDs   []string
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	m.createdUser = user
	return nil
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := m.usersByEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.usersByID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.tokens == nil {
		m.tokens = make(map[string]models.RefreshToken)
	}
	m.tokens[token.Token] = *token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	t, ok := m.tokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &t, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	m.revokedIDs = append(m.revokedIDs, id)
	for value, t := range m.tokens {
		if t.ID == id {
			t.Revoked = true
			m.tokens[value] = t
		}
	}
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "classdesk-api",
	}
}

func TestRegisterIssuesSession(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "new@example.com",
		Password: "secret123",
		FullName: "New Teacher",
		Role:     "TEACHER",
	})
	require.NoError(t, err)

	require.NotNil(t, repo.createdUser)
	assert.NotEqual(t, "secret123", repo.createdUser.PasswordHash, "password must be hashed")
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, models.RoleTeacher, resp.User.Role)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, repo.createdUser.ID, claims.UserID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := &mockAuthRepo{usersByEmail: map[string]models.User{
		"taken@example.com": {ID: "u1", Email: "taken@example.com"},
	}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "taken@example.com",
		Password: "secret123",
		FullName: "Dup",
		Role:     "STUDENT",
	})
	require.Error(t, err)
	assert.Nil(t, repo.createdUser)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockAuthRepo{usersByEmail: map[string]models.User{
		"user@example.com": {ID: "u1", Email: "user@example.com", PasswordHash: string(hash), Active: true},
	}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "wrong"})
	require.Error(t, err)
}

func TestRefreshTokenIsSingleUse(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{ID: "u1", Email: "user@example.com", PasswordHash: string(hash), Active: true}
	repo := &mockAuthRepo{
		usersByEmail: map[string]models.User{user.Email: user},
		usersByID:    map[string]models.User{user.ID: user},
	}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	session, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: session.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, session.RefreshToken, refreshed.RefreshToken)

	// The used token was revoked, so replaying it must fail.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: session.RefreshToken})
	require.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	repo := &mockAuthRepo{}
	issuer := NewAuthService(repo, nil, nil, testAuthConfig())
	other := NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "different", AccessTokenExpiry: time.Hour})

	session, err := issuer.Register(context.Background(), models.RegisterRequest{
		Email:    "new@example.com",
		Password: "secret123",
		FullName: "User",
		Role:     "STUDENT",
	})
	require.NoError(t, err)

	_, err = other.ValidateToken(session.AccessToken)
	require.Error(t, err)
}
