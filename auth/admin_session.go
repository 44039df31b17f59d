package auth

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/newslens/newslens/model"
	"github.com/newslens/newslens/utils"
)

const (
	// SessionTTL bounds admin session lifetime.
	SessionTTL = 120 * time.Minute

	sessionTokenBytes = 48
)

// Claims identify the admin a validated session belongs to.
type Claims struct {
	UserID   string
	Username string
}

// Session validation failures, mapped to 401/403 by the API layer.
var (
	ErrInvalidSession = errors.New("invalid admin session")
	ErrExpiredSession = errors.New("admin session expired")
	ErrNotAdmin       = errors.New("admin privileges revoked")
)

// CreateAdminSession mints a session token for the user and stores it.
func CreateAdminSession(db *gorm.DB, userId string) (string, error) {
	token := utils.RandomToken(sessionTokenBytes)
	session := model.AdminSession{
		Token:     token,
		UserID:    userId,
		ExpiresAt: time.Now().UTC().Add(SessionTTL),
	}
	if err := db.Create(&session).Error; err != nil {
		return "", err
	}
	return token, nil
}

// ValidateAdminSession resolves a bearer token to admin claims. The owning
// user must still be an admin at validation time, a revoked admin can't ride
// an old session.
func ValidateAdminSession(db *gorm.DB, token string) (*Claims, error) {
	var session model.AdminSession
	queryResult := db.Where("token = ?", token).First(&session)
	if queryResult.Error != nil && !errors.Is(queryResult.Error, gorm.ErrRecordNotFound) {
		return nil, queryResult.Error
	}
	if queryResult.RowsAffected == 0 {
		return nil, ErrInvalidSession
	}
	if !session.ExpiresAt.After(time.Now().UTC()) {
		return nil, ErrExpiredSession
	}

	var user model.User
	queryResult = db.Where("id = ?", session.UserID).First(&user)
	if queryResult.Error != nil && !errors.Is(queryResult.Error, gorm.ErrRecordNotFound) {
		return nil, queryResult.Error
	}
	if queryResult.RowsAffected == 0 || !user.IsAdmin {
		return nil, ErrNotAdmin
	}
	return &Claims{UserID: user.Id, Username: user.Username}, nil
}

// RevokeAdminSession deletes the session. Revoking an unknown token is a
// no-op.
func RevokeAdminSession(db *gorm.DB, token string) error {
	return db.Where("token = ?", token).Delete(&model.AdminSession{}).Error
}
