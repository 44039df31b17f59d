package model

import (
	"time"
)

// Sentiment labels produced by the classifier.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

/*

Sentiment is the sentiment annotation of one article

Id: primary key
CreatedAt: time when entity is created

ArticleID: article this annotation belongs to. At most one Sentiment row
		exists per article. The guarantee is logical (existence check before
		insert), not a storage constraint
Title: article title at the time of classification
Score: classifier confidence score
Label: one of positive/neutral/negative

*/

type Sentiment struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	ArticleID string
	Title     string
	Score     float64
	Label     string
}
