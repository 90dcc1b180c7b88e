package auth

import (
	"fmt"
	"testing"

	"github.com/enlapet/backend/internal/logger"
	"github.com/enlapet/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger.InitializeForTests()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	return NewService(db, []byte("test-secret"))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Register(RegisterRequest{
		Email:    "alice@example.com",
		Name:     "alice",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice@example.com", resp.User.Email)

	login, err := svc.Login(LoginRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegisterDuplicateEmailCaseInsensitive(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(RegisterRequest{Email: "alice@example.com", Name: "alice", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Register(RegisterRequest{Email: "ALICE@example.com", Name: "alice2", Password: "password123"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(RegisterRequest{Email: "alice@example.com", Name: "alice", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Login(LoginRequest{Email: "alice@example.com", Password: "not-the-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login(LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Register(RegisterRequest{Email: "alice@example.com", Name: "alice", Password: "password123"})
	require.NoError(t, err)

	user, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Register(RegisterRequest{Email: "alice@example.com", Name: "alice", Password: "password123"})
	require.NoError(t, err)

	other := NewService(svc.db, []byte("different-secret"))
	_, err = other.ValidateToken(resp.Token)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}
