package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/pixelboard/internal/common"
	"github.com/dmitrijs2005/pixelboard/internal/server/auth"
)

const userIDKey = "userID"

// authRequired extracts the bearer token, verifies it, and stores the
// user id in the request context. Requests without a valid token never
// reach the handler.
func (s *HTTPServer) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {

		header := c.GetHeader(common.AuthorizationHeaderName)
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}
