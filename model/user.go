package model

import "time"

/*

User is a registered account

Id: primary key
Username: unique login name
Email: unique email address
Password: stored as provided. Credential hardening is explicitly out of
		scope for this service
Language: preferred language for news queries, defaults to "en"
Interests: comma separated interest list, defaults to "Technology"
IsAdmin: grants access to the admin endpoints

*/

type User struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Username  string `gorm:"uniqueIndex"`
	Email     string `gorm:"uniqueIndex"`
	Password  string
	Language  string `gorm:"default:en"`
	Interests string `gorm:"default:Technology"`
	IsAdmin   bool
}
