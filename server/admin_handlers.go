package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"

	"github.com/newslens/newslens/analytics"
	"github.com/newslens/newslens/auth"
	"github.com/newslens/newslens/model"
	"github.com/newslens/newslens/server/middlewares"
)

func (s *Server) registerAdminRoutes(router *gin.Engine) {
	admin := router.Group("/admin")
	admin.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "scope": "admin"})
	})
	admin.POST("/login", s.adminLogin)

	protected := admin.Group("", middlewares.AdminSession(s.db))
	protected.POST("/logout", s.adminLogout)
	protected.GET("/me", s.adminMe)
	protected.GET("/users", s.adminListUsers)
	protected.GET("/stats/trend", s.adminTrend)
	protected.GET("/stats/ingest", s.adminIngestStatus)
}

func (s *Server) adminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	ok, user := auth.LoginUser(s.db, req.Identifier, req.Password)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}
	if !user.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "Admin privileges required"})
		return
	}
	token, err := auth.CreateAdminSession(s.db, user.Id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"username": user.Username,
		"email":    user.Email,
		"is_admin": true,
	})
}

func (s *Server) adminLogout(c *gin.Context) {
	token := c.GetString(middlewares.TokenKey)
	if err := auth.RevokeAdminSession(s.db, token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) adminMe(c *gin.Context) {
	claims := middlewares.GetClaims(c)
	c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID, "username": claims.Username})
}

// AdminUserView is the per-user row of the admin user listing.
type AdminUserView struct {
	Id        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) adminListUsers(c *gin.Context) {
	var users []model.User
	if err := s.db.Order("created_at DESC").Limit(200).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	views := []AdminUserView{}
	for _, user := range users {
		var view AdminUserView
		copier.Copy(&view, &user)
		view.CreatedAt = user.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		views = append(views, view)
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) adminTrend(c *gin.Context) {
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

// adminIngestStatus reads the recorded status of the last ingestion run for a
// (source, query) pair from Redis.
func (s *Server) adminIngestStatus(c *gin.Context) {
	if s.status == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "status store not configured"})
		return
	}
	source := c.Query("source")
	query := c.Query("query")
	if source == "" || query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "source and query are required"})
		return
	}
	status, found, err := s.status.GetIngestRunStatus(source, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": "no recorded run"})
		return
	}
	c.JSON(http.StatusOK, status)
}
