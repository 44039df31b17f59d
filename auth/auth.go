// Package auth implements registration, login and admin sessions. Credential
// hardening (hashing, rotation, rate limiting) is explicitly out of scope for
// this service; passwords are compared as stored.
package auth

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"gorm.io/gorm"

	"github.com/newslens/newslens/model"
)

const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a Postgres unique index violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// RegisterUser creates a new account. Conflicts are detected at the query
// level and reported as an (ok, message) pair; the unique index catches
// races between the check and the insert. Any other storage failure is
// returned as an error.
func RegisterUser(db *gorm.DB, username string, email string, password string) (bool, string, error) {
	var existing model.User
	if db.Where("username = ?", username).First(&existing).RowsAffected != 0 {
		return false, "User already exists", nil
	}
	if db.Where("email = ?", email).First(&existing).RowsAffected != 0 {
		return false, "Email already in use", nil
	}

	err := db.Create(&model.User{
		Id:       uuid.New().String(),
		Username: username,
		Email:    email,
		Password: password,
		Language: "en",
	}).Error
	if err != nil {
		if isUniqueViolation(err) {
			return false, "User already exists", nil
		}
		return false, "", err
	}
	return true, "User registered successfully", nil
}

// LoginUser checks credentials against either username or email. Returns the
// matched user on success.
func LoginUser(db *gorm.DB, identifier string, password string) (bool, *model.User) {
	var user model.User
	queryResult := db.Where("username = ? OR email = ?", identifier, identifier).First(&user)
	if queryResult.Error != nil && !errors.Is(queryResult.Error, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if queryResult.RowsAffected == 0 || user.Password != password {
		return false, nil
	}
	return true, &user
}
