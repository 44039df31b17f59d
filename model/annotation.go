package model

import (
	"time"

	"gorm.io/datatypes"
)

/*

Annotation holds the NER and keyword output for one article

Id: primary key
CreatedAt: time when entity is created

ArticleID: article this annotation belongs to, at most one row per article
Entities: named entities as returned by the extractor, stored verbatim
Keywords: extracted keyphrases, stored verbatim

Both payloads are opaque model output, we only persist and serve them.

*/

type Annotation struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	ArticleID string
	Entities  datatypes.JSON
	Keywords  datatypes.JSON
}
