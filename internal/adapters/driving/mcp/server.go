package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/custodia-labs/jdrag/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

// instructions tells the client how the tools fit together.
const instructions = `jdrag answers questions about job descriptions.
Call list_job_descriptions to find a document ID, then ask_job_description
with that ID. Answers use only the chosen document; when nothing relevant is
stored the answer is "No context found in JD."`

const shutdownTimeout = 5 * time.Second

// Server exposes the query and document services over MCP.
type Server struct {
	ports  *Ports
	server *mcp.Server
	log    *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for transport events.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) {
		s.log = logger.OrNop(log)
	}
}

// NewServer creates a server and registers its tools and resources.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "jdrag", Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.log.Debug("mcp server on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session over transport. Used to embed the server
// in-process.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, transport, nil)
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("mcp http shutdown", zap.Error(err))
		}
	}()

	s.log.Info("mcp server listening", zap.String("addr", addr))
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
