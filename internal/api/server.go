// Package api serves rates, slippage math and contract data over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alchemix-labs/yieldkit/internal/core/domain"
)

// RateReader is the rate service as seen by the handlers.
type RateReader interface {
	Providers() []string
	Aggregate(ctx context.Context) (*domain.RateSnapshot, error)
	Rate(ctx context.Context, name string) (domain.RateQuote, error)
	FlushCache(ctx context.Context) error
}

// ConverterSource opens a converter for a static token on a chain. The
// returned func releases the connection.
type ConverterSource interface {
	Converter(ctx context.Context, chainID uint64, address common.Address) (domain.TokenConverter, func(), error)
}

// Options configures a Server.
type Options struct {
	Rates          RateReader
	Converters     ConverterSource // nil disables /convert
	LlamaUpstream  string
	AdminJWTSecret string
	StreamInterval time.Duration
	Logger         *zap.Logger
}

// Server owns the gin engine and its route table.
type Server struct {
	engine         *gin.Engine
	routes         []Route
	rates          RateReader
	converters     ConverterSource
	proxy          *httputil.ReverseProxy
	adminSecret    string
	streamInterval time.Duration
	logger         *zap.Logger
}

func NewServer(opts Options) (*Server, error) {
	if opts.Rates == nil {
		return nil, errors.New("rate reader is required")
	}
	upstream, err := url.Parse(opts.LlamaUpstream)
	if err != nil || upstream.Scheme == "" || upstream.Host == "" {
		return nil, fmt.Errorf("invalid pools upstream %q", opts.LlamaUpstream)
	}

	s := &Server{
		rates:          opts.Rates,
		converters:     opts.Converters,
		adminSecret:    opts.AdminJWTSecret,
		streamInterval: opts.StreamInterval,
		logger:         opts.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.streamInterval <= 0 {
		s.streamInterval = 30 * time.Second
	}
	s.proxy = newLlamaProxy(upstream, s.logger)

	s.engine = gin.New()
	s.engine.Use(requestID(), requestLogger(s.logger))
	s.engine.NoRoute(func(c *gin.Context) {
		render(c, Route{}, http.StatusNotFound, fmt.Errorf("no route for %s %s", c.Request.Method, c.Request.URL.Path))
	})

	s.routes = s.routeTable()
	for _, r := range s.routes {
		s.mount(r)
	}
	return s, nil
}

// Handler exposes the engine for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return <-errCh
}
