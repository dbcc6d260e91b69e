package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/draftshare/internal/middleware"
)

type RouterDeps struct {
	Documents  *DocumentHandler
	Shares     *ShareHandler
	Pages      *PageHandler
	Properties *PropertiesHandler
	JWTSecret  []byte
	// IssueInterval throttles link issuance per user and document; zero
	// disables it.
	IssueInterval time.Duration
}

// RegisterRoutes mounts the management API under /api/v1 and the share
// pages under /pds. The draft share middleware must already be installed
// on the engine.
func RegisterRoutes(root *gin.RouterGroup, deps RouterDeps) {
	root.GET("/pds/*path", deps.Pages.Serve)
	root.HEAD("/pds/*path", deps.Pages.Serve)

	api := root.Group("/api/v1")
	api.GET("/properties", deps.Properties.Get)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	authGroup.POST("/documents", deps.Documents.Create)
	authGroup.GET("/documents/:id", deps.Documents.Get)
	authGroup.PUT("/documents/:id", deps.Documents.Update)
	authGroup.POST("/documents/:id/publish", deps.Documents.Publish)
	authGroup.POST("/documents/:id/unpublish", deps.Documents.Unpublish)

	authGroup.POST("/documents/:id/share", middleware.RateLimit(deps.IssueInterval), deps.Shares.Issue)
	authGroup.GET("/documents/:id/share", deps.Shares.Get)
	authGroup.DELETE("/documents/:id/share", deps.Shares.Disable)
}
