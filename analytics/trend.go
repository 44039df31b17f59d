// Package analytics aggregates stored annotations into the trend figures the
// dashboard renders: per-day topic volume with mean sentiment, the overall
// sentiment label distribution, and per-topic mean sentiment.
package analytics

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
	"gorm.io/gorm"
)

// TrendPoint is the volume and mean sentiment of one topic on one day.
type TrendPoint struct {
	Date         string  `json:"date"`
	Topic        string  `json:"topic"`
	TopicCount   int     `json:"topic_count"`
	AvgSentiment float64 `json:"avg_sentiment"`
}

// TopicSentiment is the mean sentiment over all articles of one topic.
type TopicSentiment struct {
	Topic        string  `json:"topic"`
	AvgSentiment float64 `json:"avg_sentiment"`
	N            int     `json:"n"`
}

// TrendReport is the full payload of the trend endpoints.
type TrendReport struct {
	Points                []TrendPoint     `json:"points"`
	SentimentDistribution map[string]int64 `json:"sentiment_distribution"`
	TopicSentiment        []TopicSentiment `json:"topic_sentiment"`
}

type trendRow struct {
	Date  time.Time
	Topic string
	Score float64
}

// Trend computes the trend report. Points cover articles published in the
// trailing window of the given number of days; the sentiment distribution and
// per-topic means cover all stored rows. Only articles with a topic link and
// a sentiment row contribute to points and topic means, matching the joins
// the dashboard expects.
func Trend(db *gorm.DB, days int) (TrendReport, error) {
	report := TrendReport{SentimentDistribution: map[string]int64{}}
	since := time.Now().UTC().AddDate(0, 0, -days)

	var rows []trendRow
	err := db.Table("articles").
		Select("articles.published_at AS date, topics.name AS topic, sentiments.score AS score").
		Joins("JOIN article_topics ON article_topics.article_id = articles.id").
		Joins("JOIN topics ON topics.id = article_topics.topic_id").
		Joins("JOIN sentiments ON sentiments.article_id = articles.id").
		Where("articles.published_at IS NOT NULL").
		Where("articles.published_at >= ?", since).
		Scan(&rows).Error
	if err != nil {
		return report, err
	}

	// Per-topic means are not windowed, they summarize the whole store.
	var topicRows []trendRow
	err = db.Table("articles").
		Select("topics.name AS topic, sentiments.score AS score").
		Joins("JOIN article_topics ON article_topics.article_id = articles.id").
		Joins("JOIN topics ON topics.id = article_topics.topic_id").
		Joins("JOIN sentiments ON sentiments.article_id = articles.id").
		Scan(&topicRows).Error
	if err != nil {
		return report, err
	}

	report.Points = aggregatePoints(rows)
	report.TopicSentiment = aggregateTopicSentiment(topicRows)

	var labels []struct {
		Label string
		Count int64
	}
	err = db.Table("sentiments").
		Select("label, count(id) AS count").
		Group("label").
		Scan(&labels).Error
	if err != nil {
		return report, err
	}
	for _, l := range labels {
		report.SentimentDistribution[l.Label] = l.Count
	}
	return report, nil
}

func aggregatePoints(rows []trendRow) []TrendPoint {
	grouped := map[[2]string][]float64{}
	for _, row := range rows {
		key := [2]string{row.Date.Format("2006-01-02"), row.Topic}
		grouped[key] = append(grouped[key], row.Score)
	}

	points := []TrendPoint{}
	for key, scores := range grouped {
		points = append(points, TrendPoint{
			Date:         key[0],
			Topic:        key[1],
			TopicCount:   len(scores),
			AvgSentiment: stat.Mean(scores, nil),
		})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Date != points[j].Date {
			return points[i].Date < points[j].Date
		}
		return points[i].Topic < points[j].Topic
	})
	return points
}

func aggregateTopicSentiment(rows []trendRow) []TopicSentiment {
	grouped := map[string][]float64{}
	for _, row := range rows {
		grouped[row.Topic] = append(grouped[row.Topic], row.Score)
	}

	topics := []TopicSentiment{}
	for topic, scores := range grouped {
		topics = append(topics, TopicSentiment{
			Topic:        topic,
			AvgSentiment: stat.Mean(scores, nil),
			N:            len(scores),
		})
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Topic < topics[j].Topic })
	return topics
}
