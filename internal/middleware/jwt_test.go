package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ColegioIDS/ids-attendance-api/internal/models"
	"github.com/ColegioIDS/ids-attendance-api/internal/service"
)

type stubUserRepo struct {
	user *models.User
	role *models.Role
}

func (s *stubUserRepo) FindByEmail(context.Context, string) (*models.User, error) {
	return s.user, nil
}

func (s *stubUserRepo) FindDefaultRole(context.Context, string) (*models.Role, error) {
	return s.role, nil
}

func (s *stubUserRepo) UpdateLastLogin(context.Context, string, time.Time) error {
	return nil
}

func newProtectedRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &stubUserRepo{
		user: &models.User{ID: "user-1", Email: "t@school.edu", PasswordHash: string(hash), IsActive: true},
		role: &models.Role{ID: "role-1", Name: "Teacher", IsActive: true},
	}
	authSvc := service.NewAuthService(repo, nil, nil, service.AuthConfig{Secret: "test-secret", Expiration: time.Hour})

	res, err := authSvc.Login(context.Background(), models.LoginRequest{Email: "t@school.edu", Password: "secret"})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/protected", JWT(authSvc), func(c *gin.Context) {
		value, _ := c.Get(ContextUserKey)
		claims := value.(*models.JWTClaims)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID})
	})
	return r, res.AccessToken
}

func TestJWTAcceptsBearerToken(t *testing.T) {
	r, token := newProtectedRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	r, _ := newProtectedRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	r, token := newProtectedRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsTamperedToken(t *testing.T) {
	r, token := newProtectedRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token+"x")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
