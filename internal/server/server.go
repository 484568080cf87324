package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/plateful/platesearch/internal/engine"
	"github.com/plateful/platesearch/internal/models"
)

// Server exposes the ranking engine over HTTP. All JSON marshaling and
// status-code mapping lives here; the engine stays transport-agnostic.
type Server struct {
	engine *engine.Engine
	http   *http.Server
}

func New(addr string, eng *engine.Engine) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		engine: eng,
		http: &http.Server{
			Addr:    addr,
			Handler: router,
		},
	}
	s.setupRoutes(router)
	return s
}

func (s *Server) setupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/search", s.handleSearch)
		api.POST("/feedback", s.handleFeedback)
	}
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func (s *Server) handleSearch(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	response, err := s.engine.Search(c.Request.Context(), &req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (s *Server) handleFeedback(c *gin.Context) {
	var event models.FeedbackEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	if err := s.engine.SubmitFeedback(c.Request.Context(), event); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, models.FeedbackResponse{Status: "accepted"})
}

// writeError maps engine errors onto HTTP statuses. Only invalid requests
// surface as client errors; everything else the engine could not degrade
// around is a 500.
func (s *Server) writeError(c *gin.Context, err error) {
	var invalid *engine.InvalidRequestError
	if errors.As(err, &invalid) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": invalid.Error(),
			"field": invalid.Field,
		})
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
		return
	}
	log.Printf("search request failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// Run starts the listener and blocks until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("http server listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
