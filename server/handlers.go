package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"

	"github.com/newslens/newslens/analytics"
	"github.com/newslens/newslens/auth"
	"github.com/newslens/newslens/enrich"
	"github.com/newslens/newslens/ingest"
	"github.com/newslens/newslens/model"
	"github.com/newslens/newslens/utils"
	Logger "github.com/newslens/newslens/utils/log"
)

// Server wires the HTTP routes to the store, the news source and the
// enrichment services. Every request handler opens its own unit of work
// against the injected DB handle; there is no cross-request coordination.
type Server struct {
	db           *gorm.DB
	source       ingest.DocumentSource
	enricher     *enrich.Enricher
	classifier   enrich.SentimentClassifier
	entities     enrich.EntityExtractor
	keywords     enrich.KeywordExtractor
	topicModeler enrich.TopicModeler
	cleaner      enrich.QueryCleaner
	status       *utils.RedisStatusStore
}

func NewServer(
	db *gorm.DB,
	source ingest.DocumentSource,
	classifier enrich.SentimentClassifier,
	entities enrich.EntityExtractor,
	keywords enrich.KeywordExtractor,
	topicModeler enrich.TopicModeler,
	cleaner enrich.QueryCleaner,
) *Server {
	return &Server{
		db:           db,
		source:       source,
		enricher:     enrich.NewEnricher(db, classifier, entities, keywords),
		classifier:   classifier,
		entities:     entities,
		keywords:     keywords,
		topicModeler: topicModeler,
		cleaner:      cleaner,
	}
}

// WithStatusStore surfaces ingestion run bookkeeping on the admin endpoints.
func (s *Server) WithStatusStore(status *utils.RedisStatusStore) *Server {
	s.status = status
	return s
}

// RegisterRoutes mounts all routes on the router.
func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	router.GET("/news", s.getNews)
	router.GET("/news/keywords", s.getNewsKeywords)

	router.POST("/register", s.register)
	router.POST("/login", s.login)
	router.GET("/user/profile/:username", s.getProfile)
	router.PUT("/user/profile/:username", s.updateProfile)

	router.POST("/analyze", s.analyze)
	router.POST("/analyze_sentiment", s.analyzeSentiment)
	router.POST("/extract_entities", s.extractEntities)
	router.POST("/extract_keywords", s.extractKeywords)
	router.POST("/topics", s.extractTopics)
	router.POST("/add_topics", s.addTopics)

	router.GET("/analytics/trend", s.analyticsTrend)

	s.registerAdminRoutes(router)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// NewsResult is one enriched article in the /news response.
type NewsResult struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	ImageUrl    string                 `json:"image_url"`
	ArticleId   string                 `json:"article_id"`
	Sentiment   enrich.SentimentResult `json:"sentiment"`
}

// getNews runs one synchronous fetch-upsert-enrich cycle for the query and
// returns the enriched batch. The query is preprocessed first and the cleaned
// form is what reaches the source. An upstream failure degrades to an empty
// result list.
func (s *Server) getNews(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "query is required"})
		return
	}
	language := c.DefaultQuery("language", "en")
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "5"))
	if err != nil || pageSize <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "bad page_size"})
		return
	}

	cleaned, err := s.cleaner.CleanQuery(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	searchQuery := cleaned.Cleaned
	if searchQuery == "" {
		// Sources reject empty queries; fall back to what the user typed.
		searchQuery = query
	}

	opts := ingest.FetchOptions{
		Query:         searchQuery,
		Language:      language,
		MaxRecords:    pageSize,
		TimespanHours: 24,
	}
	raws, err := s.source.FetchDocuments(c.Request.Context(), opts)
	if err != nil {
		var srcErr *ingest.SourceError
		if !errors.As(err, &srcErr) {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		Logger.Log.Errorf("fetch failed, serving empty result: %s", err)
		raws = nil
	}

	docs := ingest.Normalize(raws)
	inserted, err := ingest.UpsertDocuments(s.db, docs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if s.status != nil {
		status := utils.IngestRunStatus{LastRunAt: nowUTC(), Inserted: inserted}
		if err := s.status.SetIngestRunStatus(s.source.Name(), query, status); err != nil {
			Logger.Log.Errorf("fail to record ingest run status: %s", err)
		}
	}

	results := []NewsResult{}
	for _, doc := range docs {
		var article model.Article
		if s.db.Where("url = ?", doc.Url).First(&article).RowsAffected == 0 {
			continue
		}
		sentiment, err := s.enricher.EnrichArticle(c.Request.Context(), &article)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		var result NewsResult
		copier.Copy(&result, &article)
		result.ArticleId = article.Id
		result.Sentiment = sentiment
		results = append(results, result)
	}

	c.JSON(http.StatusOK, gin.H{
		"original_query": query,
		"cleaned_query":  cleaned.Cleaned,
		"suggestion":     cleaned.Suggestion,
		"inserted":       inserted,
		"results":        results,
	})
}

// getNewsKeywords extracts keywords for the most recently published articles.
func (s *Server) getNewsKeywords(c *gin.Context) {
	topN, err := strconv.Atoi(c.DefaultQuery("top_n", "5"))
	if err != nil || topN <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "bad top_n"})
		return
	}

	var articles []model.Article
	if err := s.db.Order("published_at DESC").Limit(20).Find(&articles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	results := []gin.H{}
	for _, article := range articles {
		text := article.Title + " " + article.Description
		keywords, err := s.keywords.ExtractKeywords(c.Request.Context(), text, topN)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		results = append(results, gin.H{
			"title":       article.Title,
			"description": article.Description,
			"keywords":    keywords,
		})
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	ok, message, err := auth.RegisterUser(s.db, req.Username, req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok, "message": message})
}

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	ok, user := auth.LoginUser(s.db, req.Identifier, req.Password)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Incorrect username/email or password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"username":  user.Username,
		"email":     user.Email,
		"language":  user.Language,
		"interests": user.Interests,
	})
}

func (s *Server) getProfile(c *gin.Context) {
	var user model.User
	if s.db.Where("username = ?", c.Param("username")).First(&user).RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"username":  user.Username,
		"email":     user.Email,
		"language":  user.Language,
		"interests": user.Interests,
	})
}

type profileUpdateRequest struct {
	Email     string `json:"email" binding:"required"`
	Language  string `json:"language" binding:"required"`
	Interests string `json:"interests" binding:"required"`
}

func (s *Server) updateProfile(c *gin.Context) {
	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var user model.User
	if s.db.Where("username = ?", c.Param("username")).First(&user).RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	var emailOwner model.User
	if s.db.Where("email = ?", req.Email).First(&emailOwner).RowsAffected != 0 && emailOwner.Id != user.Id {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email already in use by another user"})
		return
	}

	err := s.db.Model(&user).Updates(map[string]interface{}{
		"email":     req.Email,
		"language":  req.Language,
		"interests": req.Interests,
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated"})
}

type analyzeRequest struct {
	Text string `json:"text" binding:"required"`
}

// analyze runs sentiment and entity extraction over one text.
func (s *Server) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	sentiment, err := s.classifier.Classify(c.Request.Context(), req.Text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	entities, err := s.entities.ExtractEntities(c.Request.Context(), req.Text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sentiment": sentiment, "entities": entities})
}

type textsRequest struct {
	Texts []string `json:"texts" binding:"required"`
}

func (s *Server) analyzeSentiment(c *gin.Context) {
	var req textsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	sentiments := []enrich.SentimentResult{}
	for _, text := range req.Texts {
		sentiment, err := s.classifier.Classify(c.Request.Context(), text)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		sentiments = append(sentiments, sentiment)
	}
	c.JSON(http.StatusOK, gin.H{"sentiments": sentiments})
}

func (s *Server) extractEntities(c *gin.Context) {
	var req textsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	entities := [][]enrich.Entity{}
	for _, text := range req.Texts {
		result, err := s.entities.ExtractEntities(c.Request.Context(), text)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		entities = append(entities, result)
	}
	c.JSON(http.StatusOK, gin.H{"entities": entities})
}

func (s *Server) extractKeywords(c *gin.Context) {
	var req textsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	keywords := [][]string{}
	for _, text := range req.Texts {
		result, err := s.keywords.ExtractKeywords(c.Request.Context(), text, 5)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		keywords = append(keywords, result)
	}
	c.JSON(http.StatusOK, gin.H{"keywords": keywords})
}

type topicsRequest struct {
	Articles  []string `json:"articles" binding:"required"`
	NumTopics int      `json:"num_topics"`
}

func (s *Server) extractTopics(c *gin.Context) {
	var req topicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if req.NumTopics <= 0 {
		req.NumTopics = 5
	}
	result, err := s.topicModeler.ExtractTopics(c.Request.Context(), req.Articles, req.NumTopics)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

type addTopicsRequest struct {
	TopicNames []string `json:"topic_names" binding:"required"`
	ArticleId  string   `json:"article_id" binding:"required"`
}

// addTopics tags an existing article with the given topics, creating any
// topic that doesn't exist yet. Both creation and linking are idempotent.
func (s *Server) addTopics(c *gin.Context) {
	var req addTopicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var article model.Article
	if s.db.Where("id = ?", req.ArticleId).First(&article).RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Article not found"})
		return
	}

	addedTopics := []string{}
	addedMappings := []gin.H{}
	processed := []string{}
	for _, name := range req.TopicNames {
		if utils.ContainsString(processed, name) {
			continue
		}
		processed = append(processed, name)
		var existing model.Topic
		isNew := s.db.Where("name = ?", name).First(&existing).RowsAffected == 0
		topic, err := enrich.UpsertTopicByName(s.db, name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		if isNew {
			addedTopics = append(addedTopics, topic.Name)
		}
		linked, err := enrich.LinkArticleTopic(s.db, article.Id, topic.Id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		if linked {
			addedMappings = append(addedMappings, gin.H{"topic": name, "article_id": article.Id})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"added_topics":   addedTopics,
		"added_mappings": addedMappings,
		"article_id":     article.Id,
	})
}

func (s *Server) analyticsTrend(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "bad days"})
		return
	}
	report, err := analytics.Trend(s.db, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
