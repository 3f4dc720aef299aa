package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/inelac/inventory-backend/internal/user/jwt"
	"github.com/inelac/inventory-backend/internal/user/repository"
	"github.com/inelac/inventory-backend/pkg/actor"
	"github.com/inelac/inventory-backend/pkg/config"
	"github.com/inelac/inventory-backend/pkg/database"
	"github.com/inelac/inventory-backend/pkg/errors"
	"github.com/inelac/inventory-backend/pkg/logger"
	"github.com/inelac/inventory-backend/pkg/testutil"
)

func newTestUserService(t *testing.T) (*UserService, *testutil.MockDB) {
	t.Helper()

	mockDB := testutil.NewMockDB(t)
	t.Cleanup(func() { mockDB.Close() })

	log := logger.New("user-test", "development")
	db := database.NewWithDB(mockDB.DB, log)

	jwtManager := jwt.NewManager(&config.JWTConfig{
		Secret:       "test-secret",
		AccessExpiry: time.Hour,
		Issuer:       "inelac",
	})

	return NewUserService(repository.NewUserRepository(db), jwtManager, log), mockDB
}

func expectUserByUsername(m *testutil.MockDB, u *repository.User) {
	m.Mock.ExpectQuery("FROM users WHERE username").
		WillReturnRows(testutil.MockRows(
			"id", "username", "name", "email", "role", "password_hash",
			"is_active", "created_at", "updated_at",
		).AddRow(
			u.ID, u.Username, u.Name, u.Email, u.Role, u.PasswordHash,
			u.IsActive, u.CreatedAt, u.UpdatedAt,
		))
}

func TestLogin(t *testing.T) {
	svc, mockDB := newTestUserService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("warehouse1"), bcrypt.MinCost)
	require.NoError(t, err)

	user := testutil.User()
	user.Role = actor.RoleSupervisor
	user.PasswordHash = string(hash)

	expectUserByUsername(mockDB, user)

	resp, err := svc.Login(context.Background(), &LoginRequest{
		Username: user.Username,
		Password: "warehouse1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, user.ID, resp.User.ID)

	mockDB.ExpectationsWereMet(t)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, mockDB := newTestUserService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("warehouse1"), bcrypt.MinCost)
	require.NoError(t, err)

	user := testutil.User()
	user.PasswordHash = string(hash)

	expectUserByUsername(mockDB, user)

	_, err = svc.Login(context.Background(), &LoginRequest{
		Username: user.Username,
		Password: "wrong",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))
}

func TestLoginUnknownUser(t *testing.T) {
	svc, mockDB := newTestUserService(t)

	mockDB.Mock.ExpectQuery("FROM users WHERE username").
		WillReturnRows(testutil.MockRows(
			"id", "username", "name", "email", "role", "password_hash",
			"is_active", "created_at", "updated_at",
		))

	_, err := svc.Login(context.Background(), &LoginRequest{
		Username: "ghost",
		Password: "whatever",
	})
	require.Error(t, err)
	// Unknown accounts look identical to a wrong password
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, mockDB := newTestUserService(t)

	user := testutil.User()
	user.IsActive = false

	expectUserByUsername(mockDB, user)

	_, err := svc.Login(context.Background(), &LoginRequest{
		Username: user.Username,
		Password: "whatever",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestLoginTokenRoundTrip(t *testing.T) {
	svc, mockDB := newTestUserService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("warehouse1"), bcrypt.MinCost)
	require.NoError(t, err)

	user := testutil.User()
	user.Role = actor.RoleAdministrator
	user.PasswordHash = string(hash)

	expectUserByUsername(mockDB, user)

	resp, err := svc.Login(context.Background(), &LoginRequest{
		Username: user.Username,
		Password: "warehouse1",
	})
	require.NoError(t, err)

	a, err := svc.jwtManager.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, a.ID)
	assert.Equal(t, user.Username, a.Username)
	assert.True(t, a.IsAdministrator())
}
