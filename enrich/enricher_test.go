package enrich

import (
	"context"
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

func createTestArticle(t *testing.T, db *gorm.DB, description string) *model.Article {
	t.Helper()
	now := time.Now().UTC()
	article := &model.Article{
		Id:                uuid.New().String(),
		Title:             "test title",
		Description:       description,
		PublishedAt:       &now,
		PublishedAtSource: model.PublishedAtParsed,
		Url:               "http://x/" + uuid.New().String(),
	}
	require.NoError(t, db.Create(article).Error)
	return article
}

func TestEnrichArticleCreatesSentimentOnce(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	enricher := NewEnricher(db, FakeModelClient{}, FakeModelClient{}, FakeModelClient{})

	article := createTestArticle(t, db, "great growth in the AI sector")

	_, err := enricher.EnrichArticle(context.Background(), article)
	require.NoError(t, err)

	// Enriching the same article again must not create a second row.
	_, err = enricher.EnrichArticle(context.Background(), article)
	require.NoError(t, err)

	var sentiments []model.Sentiment
	require.NoError(t, db.Where("article_id = ?", article.Id).Find(&sentiments).Error)
	require.Len(t, sentiments, 1)
	assert.Equal(t, "positive", sentiments[0].Label)
}

func TestEnrichArticleTagsTopics(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	enricher := NewEnricher(db, FakeModelClient{}, FakeModelClient{}, FakeModelClient{})

	article := createTestArticle(t, db, "AI reshapes the economy")

	_, err := enricher.EnrichArticle(context.Background(), article)
	require.NoError(t, err)
	_, err = enricher.EnrichArticle(context.Background(), article)
	require.NoError(t, err)

	var links []model.ArticleTopic
	require.NoError(t, db.Where("article_id = ?", article.Id).Find(&links).Error)
	// AI and Finance, linked exactly once each.
	assert.Len(t, links, 2)

	var topics []model.Topic
	require.NoError(t, db.Find(&topics).Error)
	names := []string{}
	for _, topic := range topics {
		names = append(names, topic.Name)
	}
	assert.Contains(t, names, "AI")
	assert.Contains(t, names, "Finance")
}

func TestEnrichArticleFallbackTopic(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	enricher := NewEnricher(db, FakeModelClient{}, FakeModelClient{}, FakeModelClient{})

	article := createTestArticle(t, db, "weather report for tuesday")

	_, err := enricher.EnrichArticle(context.Background(), article)
	require.NoError(t, err)

	var topic model.Topic
	require.NotZero(t, db.Where("name = ?", FallbackTopic).First(&topic).RowsAffected)
	var link model.ArticleTopic
	require.NotZero(t, db.Where("article_id = ? AND topic_id = ?", article.Id, topic.Id).First(&link).RowsAffected)
}

func TestEnrichArticleCreatesAnnotationOnce(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	enricher := NewEnricher(db, FakeModelClient{}, FakeModelClient{}, FakeModelClient{})

	article := createTestArticle(t, db, "Reuters reports sustained semiconductor growth")

	_, err := enricher.EnrichArticle(context.Background(), article)
	require.NoError(t, err)
	_, err = enricher.EnrichArticle(context.Background(), article)
	require.NoError(t, err)

	var annotations []model.Annotation
	require.NoError(t, db.Where("article_id = ?", article.Id).Find(&annotations).Error)
	require.Len(t, annotations, 1)
	assert.NotEmpty(t, annotations[0].Entities)
	assert.NotEmpty(t, annotations[0].Keywords)
}

func TestEnrichArticleFallsBackToTitle(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	enricher := NewEnricher(db, FakeModelClient{}, FakeModelClient{}, FakeModelClient{})

	article := createTestArticle(t, db, "")
	article.Title = "market crisis deepens"
	require.NoError(t, db.Save(article).Error)

	sentiment, err := enricher.EnrichArticle(context.Background(), article)
	require.NoError(t, err)
	assert.Equal(t, "negative", sentiment.Label)
}
