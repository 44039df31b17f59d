package model

import (
	"time"
)

// How Article.PublishedAt was obtained during ingestion. Rows whose source
// timestamp could not be parsed still get a publish time (ingestion time) so
// that time-windowed queries never exclude them, but the marker keeps the two
// cases distinguishable.
const (
	PublishedAtParsed    = "parsed"
	PublishedAtDefaulted = "defaulted"
)

/*

Article is a single news document keyed by its URL

Id: primary key
CreatedAt: time when entity is created

Title: article title in plain text
Body: full article text, nullable until hydrated from the origin page
Description: short summary provided by the source
PublishedAt: publish timestamp. Ingestion always sets it (falling back to
		ingestion time), so "has a publish date" filters downstream never drop rows
PublishedAtSource: "parsed" or "defaulted", see constants above
Source: source name or domain, for example "bbc.com"
Url: canonical article URL, globally unique, used as the dedup key
Location: free text location or country name, geocoded later
Lat/Lon: geocoordinates, either both set or both null. Backfilled by an
		offline pass, never partially written
ImageUrl: cover image url if the source provides one

Topics: topics this article is tagged with, "many-to-many" relation
Sentiment: sentiment annotation, at most one per article
Annotation: entity/keyword annotation, at most one per article

*/

type Article struct {
	Id                string `gorm:"primaryKey"`
	CreatedAt         time.Time
	Title             string
	Body              *string
	Description       string
	PublishedAt       *time.Time
	PublishedAtSource string
	Source            string
	Url               string `gorm:"uniqueIndex"`
	Location          string
	Lat               *float64
	Lon               *float64
	ImageUrl          string
	Topics            []*Topic    `json:"topics" gorm:"many2many:article_topics;"`
	Sentiment         *Sentiment  `gorm:"constraint:OnDelete:CASCADE;"`
	Annotation        *Annotation `gorm:"constraint:OnDelete:CASCADE;"`
}
