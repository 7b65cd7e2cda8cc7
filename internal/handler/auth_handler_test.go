package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/canteen-central/canteen-api/internal/models"
	"github.com/canteen-central/canteen-api/internal/service"
)

type authRepoMock struct {
	user   *models.User
	tokens map[string]*models.RefreshToken
}

func newAuthRepoMock(user *models.User) *authRepoMock {
	return &authRepoMock{user: user, tokens: map[string]*models.RefreshToken{}}
}

func (m *authRepoMock) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.user == nil || m.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *authRepoMock) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *authRepoMock) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (m *authRepoMock) RevokeUserRefreshTokens(ctx context.Context, userID string, ts time.Time) error {
	for _, token := range m.tokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

func (m *authRepoMock) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *authRepoMock) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	stored, ok := m.tokens[token]
	if !ok || stored.Revoked {
		return nil, sql.ErrNoRows
	}
	return stored, nil
}

func (m *authRepoMock) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.tokens {
		if token.ID == id {
			token.Revoked = true
		}
	}
	return nil
}

func (m *authRepoMock) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return nil
}

func testAuthHandler(t *testing.T) (*AuthHandler, *authRepoMock) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	schoolID := int64(7)
	repo := newAuthRepoMock(&models.User{
		ID:           "manager-1",
		Email:        "manager@school.test",
		PasswordHash: string(hash),
		FullName:     "Canteen Manager",
		Role:         models.RoleCanteenManager,
		SchoolID:     &schoolID,
		Active:       true,
	})
	svc := service.NewAuthService(repo, nil, nil, service.AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "canteen-central",
	})
	return NewAuthHandler(svc), repo
}

func TestAuthHandlerLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := testAuthHandler(t)

	payload, _ := json.Marshal(models.LoginRequest{Email: "manager@school.test", Password: "s3cret-pass"})
	c, w := newGinContext(http.MethodPost, "/auth/login", payload)

	h.Login(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"access_token"`)
	require.Contains(t, w.Body.String(), `"refresh_token"`)
}

func TestAuthHandlerLoginWrongPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := testAuthHandler(t)

	payload, _ := json.Marshal(models.LoginRequest{Email: "manager@school.test", Password: "wrong"})
	c, w := newGinContext(http.MethodPost, "/auth/login", payload)

	h.Login(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerLoginMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := testAuthHandler(t)

	c, w := newGinContext(http.MethodPost, "/auth/login", []byte("{not-json"))

	h.Login(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerRefreshRotatesToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, repo := testAuthHandler(t)

	loginPayload, _ := json.Marshal(models.LoginRequest{Email: "manager@school.test", Password: "s3cret-pass"})
	c, w := newGinContext(http.MethodPost, "/auth/login", loginPayload)
	h.Login(c)
	require.Equal(t, http.StatusOK, w.Code)

	var login struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	refreshPayload, _ := json.Marshal(models.RefreshTokenRequest{RefreshToken: login.Data.RefreshToken})
	c, w = newGinContext(http.MethodPost, "/auth/refresh", refreshPayload)
	h.Refresh(c)
	require.Equal(t, http.StatusOK, w.Code)

	stored, ok := repo.tokens[login.Data.RefreshToken]
	require.True(t, ok)
	require.True(t, stored.Revoked)
}
