package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// setupRoutes registers all endpoints with the router.
//
//	GET  /health                              - liveness probe
//	GET  /api/v1/pixels                       - full grid hydration
//	GET  /api/v1/pixels/ws                    - placement event feed
//	POST /api/v1/pixels                       - place a pixel (auth)
//	GET  /api/v1/coding-time                  - reconciled budget status (auth)
//	GET  /api/v1/projects                     - list projects
//	POST /api/v1/projects                     - create a project (auth)
//	GET  /api/v1/projects/:id                 - get one project
//	DELETE /api/v1/projects/:id               - delete own project (auth)
//	GET  /api/v1/projects/:id/contributions   - list contributions
//	POST /api/v1/projects/:id/contributions   - fill an outline cell (auth)
func (s *HTTPServer) setupRoutes(router *gin.Engine) {

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	v1.GET("/pixels", s.handleGrid())
	v1.GET("/pixels/ws", s.handlePixelFeed())
	v1.GET("/projects", s.handleListProjects())
	v1.GET("/projects/:id", s.handleGetProject())
	v1.GET("/projects/:id/contributions", s.handleListContributions())

	authed := v1.Group("")
	authed.Use(s.authRequired())

	authed.POST("/pixels", s.handlePlacePixel())
	authed.GET("/coding-time", s.handleCodingTime())
	authed.POST("/projects", s.handleCreateProject())
	authed.DELETE("/projects/:id", s.handleDeleteProject())
	authed.POST("/projects/:id/contributions", s.handleContribute())
}
