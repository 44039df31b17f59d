package auth

import (
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/newslens/newslens/model"
	"github.com/newslens/newslens/utils"
	"github.com/newslens/newslens/utils/dotenv"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

func TestRegisterUser(t *testing.T) {
	db, _ := utils.CreateTempDB(t)

	ok, msg, err := RegisterUser(db, "alice", "alice@example.com", "pw")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "User registered successfully", msg)

	var user model.User
	require.NoError(t, db.Where("username = ?", "alice").First(&user).Error)
	assert.Equal(t, "en", user.Language)
	assert.False(t, user.IsAdmin)
}

func TestRegisterUserDuplicateUsername(t *testing.T) {
	db, _ := utils.CreateTempDB(t)

	ok, _, err := RegisterUser(db, "alice", "alice@example.com", "pw")
	require.NoError(t, err)
	require.True(t, ok)

	ok, msg, err := RegisterUser(db, "alice", "other@example.com", "pw")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "User already exists", msg)
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	db, _ := utils.CreateTempDB(t)

	ok, _, err := RegisterUser(db, "alice", "alice@example.com", "pw")
	require.NoError(t, err)
	require.True(t, ok)

	ok, msg, err := RegisterUser(db, "bob", "alice@example.com", "pw")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Email already in use", msg)
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505"}
	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(fmt.Errorf("create user: %w", dup)))
	// Other storage failures must not be classified as duplicates.
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(nil))
}

func TestLoginUserByUsernameOrEmail(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	ok, _, err := RegisterUser(db, "alice", "alice@example.com", "secret")
	require.NoError(t, err)
	require.True(t, ok)

	ok, user := LoginUser(db, "alice", "secret")
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)

	ok, user = LoginUser(db, "alice@example.com", "secret")
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)

	ok, user = LoginUser(db, "alice", "wrong")
	assert.False(t, ok)
	assert.Nil(t, user)

	ok, user = LoginUser(db, "nobody", "secret")
	assert.False(t, ok)
	assert.Nil(t, user)
}

func createAdminUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	user := &model.User{
		Id:       uuid.New().String(),
		Username: "admin",
		Email:    "admin@example.com",
		Password: "pw",
		Language: "en",
		IsAdmin:  true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestAdminSessionLifecycle(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	user := createAdminUser(t, db)

	token, err := CreateAdminSession(db, user.Id)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateAdminSession(db, token)
	require.NoError(t, err)
	assert.Equal(t, user.Id, claims.UserID)
	assert.Equal(t, "admin", claims.Username)

	require.NoError(t, RevokeAdminSession(db, token))
	_, err = ValidateAdminSession(db, token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	// Revoking again is a no-op.
	require.NoError(t, RevokeAdminSession(db, token))
}

func TestValidateAdminSessionUnknownToken(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	_, err := ValidateAdminSession(db, "no-such-token")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestValidateAdminSessionExpired(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	user := createAdminUser(t, db)

	token := utils.RandomToken(sessionTokenBytes)
	require.NoError(t, db.Create(&model.AdminSession{
		Token:     token,
		UserID:    user.Id,
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}).Error)

	_, err := ValidateAdminSession(db, token)
	assert.ErrorIs(t, err, ErrExpiredSession)
}

func TestValidateAdminSessionRevokedAdmin(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	user := createAdminUser(t, db)

	token, err := CreateAdminSession(db, user.Id)
	require.NoError(t, err)

	// Stripping the admin bit invalidates live sessions.
	require.NoError(t, db.Model(user).Update("is_admin", false).Error)
	_, err = ValidateAdminSession(db, token)
	assert.ErrorIs(t, err, ErrNotAdmin)
}
