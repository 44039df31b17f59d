package model

import (
	"time"
)

/*

Topic is a coarse subject bucket articles are tagged with

Id: primary key
CreatedAt: time when entity is created

Name: display name, globally unique, for example "Finance"
Description: templated description, "News about <name>"
Articles: articles tagged with this topic, "many-to-many" relation

*/

type Topic struct {
	Id          string `gorm:"primaryKey"`
	CreatedAt   time.Time
	Name        string `gorm:"uniqueIndex"`
	Description string
	Articles    []*Article `json:"articles" gorm:"many2many:article_topics;"`
}
