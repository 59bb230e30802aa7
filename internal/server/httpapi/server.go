// Package httpapi exposes the pixel canvas over HTTP: grid hydration,
// placement admission, coding-time status, project planning, and a
// websocket feed of committed placements.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/pixelboard/internal/logging"
	"github.com/dmitrijs2005/pixelboard/internal/server/hackatime"
	"github.com/dmitrijs2005/pixelboard/internal/server/models"
	"github.com/dmitrijs2005/pixelboard/internal/server/notifier"
	"github.com/dmitrijs2005/pixelboard/internal/server/services"
)

// PlacementAPI is the slice of the placement service the transport uses.
type PlacementAPI interface {
	Place(ctx context.Context, userID string, x, y int, color string) (*models.Placement, error)
	Grid(ctx context.Context) ([]*models.Placement, error)
	CodingTime(ctx context.Context, userID string) (*hackatime.Stats, *services.BudgetStatus, error)
}

// ProjectAPI is the slice of the project service the transport uses.
type ProjectAPI interface {
	Create(ctx context.Context, name, outline, createdBy string) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)
	Get(ctx context.Context, id int64) (*models.Project, error)
	Delete(ctx context.Context, id int64, userID string) error
	Contribute(ctx context.Context, projectID int64, x, y int, color, userID string) (*models.Contribution, error)
	Contributions(ctx context.Context, projectID int64) ([]*models.Contribution, error)
}

type HTTPServer struct {
	address    string
	placements PlacementAPI
	projects   ProjectAPI
	hub        *notifier.Hub
	logger     logging.Logger
	jwtSecret  []byte
}

func NewHTTPServer(a string, l logging.Logger, ps PlacementAPI, js ProjectAPI, hub *notifier.Hub, secretKey string) (*HTTPServer, error) {
	return &HTTPServer{
		address:    a,
		logger:     l.With("module", "http_server"),
		placements: ps,
		projects:   js,
		hub:        hub,
		jwtSecret:  []byte(secretKey),
	}, nil
}

func (s *HTTPServer) Run(ctx context.Context) error {

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s.setupRoutes(router)

	srv := &http.Server{
		Addr:    s.address,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
