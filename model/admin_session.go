package model

import "time"

/*

AdminSession is a bearer session for the admin endpoints

Token: primary key, opaque random string handed to the client
UserID: owning user, must still be an admin when the session is used
ExpiresAt: sessions past this instant are rejected
CreatedAt: time when session is created

*/

type AdminSession struct {
	Token     string `gorm:"primaryKey"`
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
