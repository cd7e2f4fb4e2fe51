package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ColegioIDS/ids-attendance-api/internal/models"
	appErrors "github.com/ColegioIDS/ids-attendance-api/pkg/errors"
)

type fakeAuthRepo struct {
	user        *models.User
	userErr     error
	role        *models.Role
	roleErr     error
	lastLoginID string
}

func (f *fakeAuthRepo) FindByEmail(context.Context, string) (*models.User, error) {
	return f.user, f.userErr
}

func (f *fakeAuthRepo) FindDefaultRole(context.Context, string) (*models.Role, error) {
	return f.role, f.roleErr
}

func (f *fakeAuthRepo) UpdateLastLogin(_ context.Context, id string, _ time.Time) error {
	f.lastLoginID = id
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeAuthRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &fakeAuthRepo{
		user: &models.User{ID: "user-1", Email: "t@school.edu", FullName: "Maria Perez", PasswordHash: string(hash), IsActive: true},
		role: &models.Role{ID: "role-1", Name: "Teacher", AttendanceScope: models.ScopeOwn, IsActive: true},
	}
	svc := NewAuthService(repo, nil, nil, AuthConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "attendance-test"})
	return svc, repo
}

func TestLoginSuccess(t *testing.T) {
	svc, repo := newAuthFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "t@school.edu", Password: "correct-horse"})
	require.NoError(t, err)

	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, "user-1", res.User.ID)
	assert.Equal(t, "role-1", res.User.RoleID)
	assert.Equal(t, "user-1", repo.lastLoginID)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "role-1", claims.RoleID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "t@school.edu", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, repo := newAuthFixture(t)
	repo.user = nil
	repo.userErr = sql.ErrNoRows

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@school.edu", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, repo := newAuthFixture(t)
	repo.user.IsActive = false

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "t@school.edu", Password: "correct-horse"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestLoginWithoutRole(t *testing.T) {
	svc, repo := newAuthFixture(t)
	repo.role = nil
	repo.roleErr = sql.ErrNoRows

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "t@school.edu", Password: "correct-horse"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsOtherSecret(t *testing.T) {
	svc, repo := newAuthFixture(t)
	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "t@school.edu", Password: "correct-horse"})
	require.NoError(t, err)

	other := NewAuthService(repo, nil, nil, AuthConfig{Secret: "different", Expiration: time.Hour})
	_, err = other.ValidateToken(res.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
