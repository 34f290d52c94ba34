// Package httpapi exposes ingestion and question answering over a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/custodia-labs/jdrag/internal/core/ports/driving"
	"github.com/custodia-labs/jdrag/internal/logger"
)

// DefaultMaxUploadBytes caps the size of an uploaded file.
const DefaultMaxUploadBytes int64 = 10 << 20

// ErrMissingService is returned when a required service is not provided.
var ErrMissingService = errors.New("httpapi: ingest, query and document services are required")

// Services groups the driving ports the API is served from.
type Services struct {
	Ingest   driving.IngestService
	Query    driving.QueryService
	Document driving.DocumentService
}

// Server holds the state for the REST API server.
type Server struct {
	services       Services
	router         *gin.Engine
	log            *zap.Logger
	maxUploadBytes int64
}

// Option configures a Server.
type Option func(*Server)

// WithMaxUploadBytes overrides DefaultMaxUploadBytes.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// NewServer creates a Server with its routes registered.
func NewServer(services Services, log *zap.Logger, opts ...Option) (*Server, error) {
	if services.Ingest == nil || services.Query == nil || services.Document == nil {
		return nil, ErrMissingService
	}

	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		services:       services,
		router:         r,
		log:            logger.OrNop(log),
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	r.MaxMultipartMemory = s.maxUploadBytes
	r.Use(s.requestLogger())

	s.setupRoutes()
	return s, nil
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	s.log.Info("http server listening", zap.String("addr", addr))
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.healthCheck)

	api := s.router.Group("/api")
	api.POST("/upload", s.handleUpload)
	api.POST("/chat", s.handleChat)
	api.GET("/documents", s.handleListDocuments)
	api.GET("/documents/:id", s.handleGetDocument)
	api.DELETE("/documents/:id", s.handleDeleteDocument)
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
