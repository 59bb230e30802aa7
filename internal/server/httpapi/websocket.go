package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handlePixelFeed streams committed placements to the client as JSON
// messages. The subscription drops events rather than block the hub, so
// viewers that fall behind should re-hydrate from GET /api/v1/pixels.
func (s *HTTPServer) handlePixelFeed() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			s.logger.Error(c.Request.Context(), "websocket upgrade failed", "error", err.Error())
			return
		}
		defer ws.Close()

		ch := s.hub.Subscribe()
		defer s.hub.Unsubscribe(ch)

		s.logger.Info(c.Request.Context(), "feed client connected")

		// Drain reads so close frames are processed; the feed is
		// one-directional.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := ws.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case <-c.Request.Context().Done():
				return
			case event, ok := <-ch:
				if !ok {
					return
				}
				if err := ws.WriteJSON(event); err != nil {
					s.logger.Info(c.Request.Context(), "feed client disconnected", "error", err.Error())
					return
				}
			}
		}
	}
}
