package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JasonDebnath001/QuickTix-server/internal/shared/clock"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/config"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/constants"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/middleware"
	"github.com/JasonDebnath001/QuickTix-server/internal/users"
	"github.com/JasonDebnath001/QuickTix-server/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu    sync.Mutex
	users map[string]*users.User
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]*users.User{}}
}

func (r *memRepo) CreateUser(_ context.Context, user *users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrUserAlreadyExists
		}
	}
	user.ID = uuid.New()
	cp := *user
	r.users[user.ID.String()] = &cp
	return nil
}

func (r *memRepo) GetUserByEmail(_ context.Context, email string) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memRepo) GetUserByID(_ context.Context, id string) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memRepo) UpdateUserPassword(_ context.Context, userID string, hashedPassword string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.Password = hashedPassword
	return nil
}

func (r *memRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetUserByEmail(ctx, email)
	return err == nil, nil
}

var testJWT = config.JWTConfig{
	Secret:           "test-secret",
	JWTExpiresIn:     15 * time.Minute,
	RefreshExpiresIn: 24 * time.Hour,
}

func newTestService(clk clock.Clock) (Service, *memRepo) {
	repo := newMemRepo()
	return NewService(repo, testJWT, clk, logger.Discard()), repo
}

func register(t *testing.T, svc Service, email string) *AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), &RegisterRequest{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     email,
		Password:  "secret123",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	svc, repo := newTestService(nil)

	resp := register(t, svc, " Grace@Example.com ")
	assert.Equal(t, "grace@example.com", resp.User.Email)
	assert.Equal(t, constants.RoleUser, resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)

	stored, err := repo.GetUserByEmail(context.Background(), "grace@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.Password)

	login, err := svc.Login(context.Background(), &LoginRequest{Email: "GRACE@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := newTestService(nil)
	register(t, svc, "dup@example.com")

	_, err := svc.Register(context.Background(), &RegisterRequest{
		FirstName: "Dup", LastName: "User", Email: "dup@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newTestService(nil)
	register(t, svc, "user@example.com")

	tests := []struct {
		name  string
		email string
		pass  string
	}{
		{"wrong password", "user@example.com", "nope12345"},
		{"unknown email", "ghost@example.com", "secret123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), &LoginRequest{Email: tt.email, Password: tt.pass})
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestRefreshToken(t *testing.T) {
	svc, _ := newTestService(nil)
	resp := register(t, svc, "refresh@example.com")

	pair, err := svc.RefreshToken(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	_, err = svc.RefreshToken(context.Background(), resp.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.RefreshToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	svc, _ := newTestService(clock.NewFixed(time.Now().Add(-2 * time.Hour)))
	resp := register(t, svc, "old@example.com")

	_, err := svc.ValidateToken(resp.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)

	claims, err := svc.ValidateToken(resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(nil)
	resp := register(t, svc, "pw@example.com")

	err := svc.ChangePassword(context.Background(), resp.User.ID, &ChangePasswordRequest{
		CurrentPassword: "wrong-one", NewPassword: "newsecret",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(context.Background(), resp.User.ID, &ChangePasswordRequest{
		CurrentPassword: "secret123", NewPassword: "newsecret",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &LoginRequest{Email: "pw@example.com", Password: "newsecret"})
	assert.NoError(t, err)
}

func TestAccessTokenAcceptedByMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(nil)
	resp := register(t, svc, "mw@example.com")

	r := gin.New()
	r.GET("/me", middleware.JWTAuth(testJWT), func(c *gin.Context) {
		id, _ := middleware.UserID(c)
		c.String(http.StatusOK, id)
	})

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"access token", resp.AccessToken, http.StatusOK},
		{"refresh token", resp.RefreshToken, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, resp.User.ID, w.Body.String())
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: uniqueViolation}
	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", dup)))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(ErrUserNotFound))
}

func TestRegisterEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(nil)
	ctrl := NewController(svc)
	r := gin.New()
	SetupAuthRoutes(r.Group("/api/v1"), ctrl, testJWT)

	body := `{"first_name":"Alan","last_name":"Turing","email":"alan@example.com","password":"secret123"}`
	tests := []struct {
		name string
		body string
		want int
	}{
		{"created", body, http.StatusCreated},
		{"duplicate", body, http.StatusConflict},
		{"invalid email", `{"first_name":"Al","last_name":"Tu","email":"x","password":"secret123"}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}
