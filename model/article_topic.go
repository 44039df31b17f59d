package model

import (
	"time"
)

/*

ArticleTopic is a "many-to-many" relation tagging an article with a topic

ArticleID: article id
TopicID: topic id
CreatedAt: time when relation is created

*/

type ArticleTopic struct {
	ArticleID string `gorm:"primaryKey"`
	TopicID   string `gorm:"primaryKey"`
	CreatedAt time.Time
}
