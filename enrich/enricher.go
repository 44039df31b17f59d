package enrich

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/newslens/newslens/model"
)

// Enricher runs the per-article annotation pass: sentiment classification,
// topic tagging and entity/keyword annotation. Every write is guarded by an
// existence check so re-running the pass on the same article is a no-op.
// Model calls themselves are not deduplicated: identical text sent twice is
// scored twice.
type Enricher struct {
	db         *gorm.DB
	classifier SentimentClassifier
	entities   EntityExtractor
	keywords   KeywordExtractor
}

func NewEnricher(db *gorm.DB, classifier SentimentClassifier, entities EntityExtractor, keywords KeywordExtractor) *Enricher {
	return &Enricher{db: db, classifier: classifier, entities: entities, keywords: keywords}
}

// EnrichArticle annotates one stored article. The classification text is the
// description, falling back to the title.
func (e *Enricher) EnrichArticle(ctx context.Context, article *model.Article) (SentimentResult, error) {
	text := article.Description
	if text == "" {
		text = article.Title
	}

	sentiment, err := e.classifier.Classify(ctx, text)
	if err != nil {
		return sentiment, err
	}
	if err := e.upsertSentiment(article, sentiment); err != nil {
		return sentiment, err
	}

	if err := e.upsertTopicLinks(article, MatchTopics(text)); err != nil {
		return sentiment, err
	}

	if e.entities != nil && e.keywords != nil {
		if err := e.upsertAnnotation(ctx, article, text); err != nil {
			return sentiment, err
		}
	}
	return sentiment, nil
}

// upsertSentiment inserts the sentiment row unless the article already has
// one.
func (e *Enricher) upsertSentiment(article *model.Article, result SentimentResult) error {
	var existing model.Sentiment
	queryResult := e.db.Where("article_id = ?", article.Id).First(&existing)
	if queryResult.Error != nil && !errors.Is(queryResult.Error, gorm.ErrRecordNotFound) {
		return queryResult.Error
	}
	if queryResult.RowsAffected != 0 {
		return nil
	}
	label := result.Label
	if label == "" {
		label = model.SentimentNeutral
	}
	return e.db.Create(&model.Sentiment{
		Id:        uuid.New().String(),
		ArticleID: article.Id,
		Title:     article.Title,
		Score:     result.Score,
		Label:     label,
	}).Error
}

// UpsertTopicByName finds or creates a topic with the given name.
func UpsertTopicByName(db *gorm.DB, name string) (*model.Topic, error) {
	var topic model.Topic
	queryResult := db.Where("name = ?", name).First(&topic)
	if queryResult.Error != nil && !errors.Is(queryResult.Error, gorm.ErrRecordNotFound) {
		return nil, queryResult.Error
	}
	if queryResult.RowsAffected == 0 {
		topic = model.Topic{
			Id:          uuid.New().String(),
			Name:        name,
			Description: "News about " + name,
		}
		if err := db.Create(&topic).Error; err != nil {
			return nil, err
		}
	}
	return &topic, nil
}

// LinkArticleTopic creates the article/topic link if the pair doesn't exist
// yet. Returns whether a new link was made.
func LinkArticleTopic(db *gorm.DB, articleId string, topicId string) (bool, error) {
	var link model.ArticleTopic
	queryResult := db.Where("article_id = ? AND topic_id = ?", articleId, topicId).First(&link)
	if queryResult.Error != nil && !errors.Is(queryResult.Error, gorm.ErrRecordNotFound) {
		return false, queryResult.Error
	}
	if queryResult.RowsAffected != 0 {
		return false, nil
	}
	err := db.Create(&model.ArticleTopic{ArticleID: articleId, TopicID: topicId}).Error
	return err == nil, err
}

func (e *Enricher) upsertTopicLinks(article *model.Article, topicNames []string) error {
	for _, name := range topicNames {
		topic, err := UpsertTopicByName(e.db, name)
		if err != nil {
			return err
		}
		if _, err := LinkArticleTopic(e.db, article.Id, topic.Id); err != nil {
			return err
		}
	}
	return nil
}

// upsertAnnotation stores the entity and keyword payloads once per article.
func (e *Enricher) upsertAnnotation(ctx context.Context, article *model.Article, text string) error {
	var existing model.Annotation
	queryResult := e.db.Where("article_id = ?", article.Id).First(&existing)
	if queryResult.Error != nil && !errors.Is(queryResult.Error, gorm.ErrRecordNotFound) {
		return queryResult.Error
	}
	if queryResult.RowsAffected != 0 {
		return nil
	}

	entities, err := e.entities.ExtractEntities(ctx, text)
	if err != nil {
		return err
	}
	keywords, err := e.keywords.ExtractKeywords(ctx, text, 5)
	if err != nil {
		return err
	}
	entitiesJson, err := json.Marshal(entities)
	if err != nil {
		return err
	}
	keywordsJson, err := json.Marshal(keywords)
	if err != nil {
		return err
	}
	return e.db.Create(&model.Annotation{
		Id:        uuid.New().String(),
		ArticleID: article.Id,
		Entities:  entitiesJson,
		Keywords:  keywordsJson,
	}).Error
}
