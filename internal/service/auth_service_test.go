package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-enroll-api/internal/models"
	appErrors "github.com/noah-isme/campus-enroll-api/pkg/errors"
)

type mockUserRepo struct {
	users map[string]models.User
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func newAuthFixture(t *testing.T, expiration time.Duration) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &mockUserRepo{users: map[string]models.User{
		"ana@example.edu": {
			ID:           "user-1",
			UserNumber:   "S-1001",
			Name:         "Ana",
			Email:        "ana@example.edu",
			PasswordHash: string(hash),
			Role:         models.RoleStudent,
		},
	}}
	return NewAuthService(repo, nil, nil, AuthConfig{
		Secret:     "test-secret",
		Expiration: expiration,
		Issuer:     "campus-enroll-api",
	})
}

func TestLoginIssuesToken(t *testing.T) {
	svc := newAuthFixture(t, time.Hour)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ana@example.edu",
		Password: "s3cret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "user-1", resp.UserID)
	assert.Equal(t, models.RoleStudent, resp.Role)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "ana@example.edu", claims.Email)
	assert.Equal(t, "S-1001", claims.UserNumber)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthFixture(t, time.Hour)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ana@example.edu",
		Password: "wrong",
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newAuthFixture(t, time.Hour)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ghost@example.edu",
		Password: "s3cret",
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginValidatesPayload(t *testing.T) {
	svc := newAuthFixture(t, time.Hour)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: ""})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := newAuthFixture(t, -time.Minute)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ana@example.edu",
		Password: "s3cret",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthFixture(t, time.Hour)

	_, err := svc.ValidateToken("not.a.token")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
