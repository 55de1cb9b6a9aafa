package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/minirag/internal/logger"
)

// Version is the default MCP server version.
const Version = "0.1.0"

const (
	defaultReadHeaderTimeout = 10 * time.Second
	defaultShutdownTimeout   = 5 * time.Second
)

// Server exposes one document collection over MCP. Every session, stdio or
// HTTP, reads and writes the same collection.
type Server struct {
	ports        *Ports
	server       *mcp.Server
	instructions string
	opts         options
}

type options struct {
	version         string
	shutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*options)

// WithVersion sets the version reported in the initialize handshake.
func WithVersion(v string) Option {
	return func(o *options) {
		if v != "" {
			o.version = v
		}
	}
}

// WithShutdownTimeout bounds how long Serve waits for in-flight HTTP
// requests once its context is cancelled.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

// NewServer creates an MCP server over the given ports. The evaluate tool
// is registered only when an evaluation service is present.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	o := options{version: Version, shutdownTimeout: defaultShutdownTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		ports:        ports,
		instructions: instructionsFor(ports),
		opts:         o,
	}
	s.server = mcp.NewServer(
		&mcp.Implementation{Name: "minirag", Version: o.version},
		&mcp.ServerOptions{Instructions: s.instructions},
	)

	s.registerTools()
	s.registerResources()

	return s, nil
}

// instructionsFor describes the collection and the tools a client can call.
func instructionsFor(ports *Ports) string {
	var b strings.Builder
	b.WriteString("minirag holds a collection of chunked text documents. ")
	b.WriteString("Call process_document to add text, search to rank chunks by query term coverage, ")
	b.WriteString("and list_documents, stats or the minirag://documents resource to inspect the collection.")
	if ports.Evaluation != nil {
		b.WriteString(" evaluate scores a query's results against expected document ids or source paths.")
	}
	return b.String()
}

// Run serves a single client over stdio.
// It blocks until the context is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP listens on addr and serves until the context is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts HTTP connections on ln until the context is cancelled, then
// drains in-flight requests within the shutdown timeout. It closes ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	logger.Info("mcp: serving http on %s", ln.Addr())
	errc := make(chan error, 1)
	go func() {
		errc <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("mcp: http shutdown: %v", err)
		return fmt.Errorf("shutting down http: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}
	logger.Debug("mcp: http server stopped")
	return nil
}
