// Package http is the REST and websocket transport.
package http

import (
	"net/http"

	"careerpath-service/internal/app"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterConfig carries everything the router needs.
type RouterConfig struct {
	Quizzes        *app.QuizService
	Teams          *app.TeamService
	JWTSecret      []byte
	AllowedOrigins []string
	DefaultTopN    int
	Log            zerolog.Logger
}

// NewRouter builds the gin engine with all routes under /api/v1.
func NewRouter(cfg RouterConfig) *gin.Engine {
	setupValidator()

	router := gin.New()
	router.Use(gin.Recovery(), requestIDMiddleware(), accessLog(cfg.Log))

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Request-ID")
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	quizzes := NewQuizHandler(cfg.Quizzes, cfg.DefaultTopN, cfg.Log)
	teams := NewTeamHandler(cfg.Teams, cfg.Log)
	ws := NewWSHandler(cfg.Teams, cfg.AllowedOrigins, cfg.Log)

	api := router.Group("/api/v1")
	api.GET("/quiz-types", quizzes.ListQuizTypes)
	api.GET("/quizzes/:id", quizzes.GetQuiz)
	api.POST("/quizzes/:id/score", quizzes.Score)

	authed := api.Group("", requireUser(cfg.JWTSecret))
	authed.POST("/quizzes/:id/submit", quizzes.Submit)
	authed.POST("/quizzes/:id/answers", quizzes.RecordAnswer)
	authed.POST("/quizzes/:id/attempt/submit", quizzes.SubmitAttempt)
	authed.GET("/results", quizzes.History)

	authed.POST("/teams", teams.Create)
	authed.GET("/teams", teams.List)
	authed.GET("/teams/:id", teams.Get)
	authed.GET("/teams/:id/members", teams.Members)
	authed.DELETE("/teams/:id/members/:userId", teams.RemoveMember)
	authed.PUT("/teams/:id/status", teams.SetStatus)
	authed.POST("/teams/:id/join-requests", teams.RequestToJoin)
	authed.GET("/teams/:id/join-requests", teams.JoinRequests)
	authed.GET("/teams/:id/events", ws.ServeTeamEvents)
	authed.POST("/join-requests/:requestId/accept", teams.Accept)
	authed.POST("/join-requests/:requestId/reject", teams.Reject)
	authed.POST("/join-requests/:requestId/cancel", teams.Cancel)

	return router
}
