package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/pixelboard/internal/common"
)

// Coordinates bind through pointers: zero is a valid cell, so absence
// must be distinguishable from (0,0).
type placePixelRequest struct {
	X     *int   `json:"x" binding:"required"`
	Y     *int   `json:"y" binding:"required"`
	Color string `json:"color" binding:"required"`
}

type createProjectRequest struct {
	Name    string `json:"name" binding:"required"`
	Outline string `json:"outline" binding:"required"`
}

type contributeRequest struct {
	X     *int   `json:"x" binding:"required"`
	Y     *int   `json:"y" binding:"required"`
	Color string `json:"color" binding:"required"`
}

// writeError maps the service error taxonomy onto HTTP statuses. The
// insufficient-budget rejection shares the 400 status with validation
// errors but is distinguishable by its body.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrInsufficientBudget):
		c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient coding time budget"})
	case errors.Is(err, common.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "pixel already placed"})
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, common.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, common.ErrUpstreamUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "coding time provider unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (s *HTTPServer) handleGrid() gin.HandlerFunc {
	return func(c *gin.Context) {
		grid, err := s.placements.Grid(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, grid)
	}
}

func (s *HTTPServer) handlePlacePixel() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req placePixelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		placement, err := s.placements.Place(c.Request.Context(), c.GetString(userIDKey), *req.X, *req.Y, req.Color)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "placement": placement})
	}
}

func (s *HTTPServer) handleCodingTime() gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, status, err := s.placements.CodingTime(c.Request.Context(), c.GetString(userIDKey))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"total_seconds":        stats.TotalSeconds,
			"human_readable_total": stats.HumanReadableTotal,
			"available_seconds":    status.AvailableSeconds,
			"spent_seconds":        status.SpentSeconds,
		})
	}
}

func (s *HTTPServer) handleListProjects() gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := s.projects.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func (s *HTTPServer) handleCreateProject() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		project, err := s.projects.Create(c.Request.Context(), req.Name, req.Outline, c.GetString(userIDKey))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, project)
	}
}

func (s *HTTPServer) handleGetProject() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := projectID(c)
		if !ok {
			return
		}
		project, err := s.projects.Get(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, project)
	}
}

func (s *HTTPServer) handleDeleteProject() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := projectID(c)
		if !ok {
			return
		}
		if err := s.projects.Delete(c.Request.Context(), id, c.GetString(userIDKey)); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (s *HTTPServer) handleContribute() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := projectID(c)
		if !ok {
			return
		}
		var req contributeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		contribution, err := s.projects.Contribute(c.Request.Context(), id, *req.X, *req.Y, req.Color, c.GetString(userIDKey))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, contribution)
	}
}

func (s *HTTPServer) handleListContributions() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := projectID(c)
		if !ok {
			return
		}
		list, err := s.projects.Contributions(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func projectID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return 0, false
	}
	return id, true
}
