// Package handlers wires the HTTP surface: routes, request validation and
// JSON rendering.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lumina-health-api/community"
	"lumina-health-api/repository"
)

type Deps struct {
	Store          repository.Store
	Community      *community.Service
	Log            *zap.Logger
	DatabaseURLSet bool
	RequestTimeout time.Duration
}

func NewRouter(d Deps) *gin.Engine {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	r := gin.New()
	r.Use(
		recovery(log),
		requestID(),
		requestLogger(log),
		cors.New(cors.Config{
			AllowOriginFunc:  func(string) bool { return true },
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
			ExposeHeaders:    []string{requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		requestTimeout(timeout),
	)

	r.GET("/", root)
	r.GET("/healthz", healthz)
	r.GET("/test", (&dbHealth{store: d.Store, databaseURLSet: d.DatabaseURLSet}).report)

	api := r.Group("/api")
	api.GET("/hello", hello)
	api.POST("/analyze-mood", analyzeMood)
	api.POST("/diagnose-image", diagnoseImage)
	api.POST("/chat", chat)
	api.POST("/nutrition", nutrition)
	api.GET("/youtube-recs", youtubeRecs)

	ch := &communityHandler{svc: d.Community, log: log}
	api.GET("/community/posts", ch.list)
	api.POST("/community/posts", ch.create)
	api.GET("/community/posts/search", ch.search)

	return r
}
