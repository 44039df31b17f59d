package analytics

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/newslens/newslens/model"
	"github.com/newslens/newslens/utils"
	"github.com/newslens/newslens/utils/dotenv"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

func seedScoredArticle(t *testing.T, db *gorm.DB, topic *model.Topic, publishedAt time.Time, label string, score float64) {
	t.Helper()
	article := &model.Article{
		Id:                uuid.New().String(),
		Title:             "t",
		Url:               "http://x/" + uuid.New().String(),
		PublishedAt:       &publishedAt,
		PublishedAtSource: model.PublishedAtParsed,
	}
	require.NoError(t, db.Create(article).Error)
	require.NoError(t, db.Create(&model.ArticleTopic{ArticleID: article.Id, TopicID: topic.Id}).Error)
	require.NoError(t, db.Create(&model.Sentiment{
		Id:        uuid.New().String(),
		ArticleID: article.Id,
		Title:     article.Title,
		Score:     score,
		Label:     label,
	}).Error)
}

func seedTopic(t *testing.T, db *gorm.DB, name string) *model.Topic {
	t.Helper()
	topic := &model.Topic{Id: uuid.New().String(), Name: name}
	require.NoError(t, db.Create(topic).Error)
	return topic
}

func TestTrendAggregatesPerDayAndTopic(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	ai := seedTopic(t, db, "AI")
	finance := seedTopic(t, db, "Finance")

	day := time.Now().UTC().AddDate(0, 0, -1)
	seedScoredArticle(t, db, ai, day, model.SentimentPositive, 0.8)
	seedScoredArticle(t, db, ai, day, model.SentimentNegative, 0.2)
	seedScoredArticle(t, db, finance, day, model.SentimentNeutral, 0.5)

	report, err := Trend(db, 7)
	require.NoError(t, err)

	require.Len(t, report.Points, 2)
	wantDate := day.Format("2006-01-02")
	assert.Equal(t, wantDate, report.Points[0].Date)
	assert.Equal(t, "AI", report.Points[0].Topic)
	assert.Equal(t, 2, report.Points[0].TopicCount)
	assert.InDelta(t, 0.5, report.Points[0].AvgSentiment, 1e-9)
	assert.Equal(t, "Finance", report.Points[1].Topic)
	assert.Equal(t, 1, report.Points[1].TopicCount)

	require.Len(t, report.TopicSentiment, 2)
	assert.Equal(t, "AI", report.TopicSentiment[0].Topic)
	assert.Equal(t, 2, report.TopicSentiment[0].N)
	assert.InDelta(t, 0.5, report.TopicSentiment[0].AvgSentiment, 1e-9)

	assert.Equal(t, int64(1), report.SentimentDistribution[model.SentimentPositive])
	assert.Equal(t, int64(1), report.SentimentDistribution[model.SentimentNegative])
	assert.Equal(t, int64(1), report.SentimentDistribution[model.SentimentNeutral])
}

func TestTrendWindowsPointsOnly(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	ai := seedTopic(t, db, "AI")

	seedScoredArticle(t, db, ai, time.Now().UTC().AddDate(0, 0, -1), model.SentimentPositive, 0.9)
	seedScoredArticle(t, db, ai, time.Now().UTC().AddDate(0, 0, -30), model.SentimentNegative, 0.1)

	report, err := Trend(db, 7)
	require.NoError(t, err)
	require.Len(t, report.Points, 1)
	assert.Equal(t, 1, report.Points[0].TopicCount)
	assert.InDelta(t, 0.9, report.Points[0].AvgSentiment, 1e-9)

	// Distribution and per-topic means cover the whole store, not just the
	// trailing window.
	assert.Equal(t, int64(1), report.SentimentDistribution[model.SentimentPositive])
	assert.Equal(t, int64(1), report.SentimentDistribution[model.SentimentNegative])
	require.Len(t, report.TopicSentiment, 1)
	assert.Equal(t, 2, report.TopicSentiment[0].N)
	assert.InDelta(t, 0.5, report.TopicSentiment[0].AvgSentiment, 1e-9)
}

func TestTrendIgnoresArticlesWithoutLinks(t *testing.T) {
	db, _ := utils.CreateTempDB(t)

	now := time.Now().UTC()
	article := &model.Article{
		Id:                uuid.New().String(),
		Title:             "unlinked",
		Url:               "http://x/" + uuid.New().String(),
		PublishedAt:       &now,
		PublishedAtSource: model.PublishedAtParsed,
	}
	require.NoError(t, db.Create(article).Error)

	report, err := Trend(db, 7)
	require.NoError(t, err)
	assert.Empty(t, report.Points)
	assert.Empty(t, report.TopicSentiment)
}
