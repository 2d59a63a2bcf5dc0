package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sort"
	"time"

	"github.com/JustJay7/fir-manager/internal/api"
	"github.com/JustJay7/fir-manager/internal/config"
	"github.com/JustJay7/fir-manager/pkg/logger"
	"github.com/gin-gonic/gin"
)

const (
	shutdownTimeout = 30 * time.Second

	// evidence uploads above this spill to temp files
	multipartMemory = 8 << 20
)

type Server struct {
	addr    string
	logger  *logger.Logger
	router  *gin.Engine
	closers map[string]io.Closer
}

// New builds the router. closers are closed in name order once the HTTP
// server has drained.
func New(cfg *config.Config, deps api.Deps, closers map[string]io.Closer, logger *logger.Logger) *Server {
	mode := gin.ReleaseMode
	if cfg.LogLevel == "debug" {
		mode = gin.DebugMode
	}
	gin.SetMode(mode)

	router := gin.New()
	router.MaxMultipartMemory = multipartMemory
	router.Use(gin.Recovery(), requestLogger(logger), cors())

	api.SetupRoutes(router, deps)

	return &Server{
		addr:    net.JoinHostPort(cfg.Host, cfg.Port),
		logger:  logger,
		router:  router,
		closers: closers,
	}
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled or the listener fails, then drains
// in-flight requests and releases the collaborators.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.router,
		// report downloads render a PDF before the first byte
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  time.Minute,
	}

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- srv.ListenAndServe()
	}()
	s.logger.Info("Server started", "address", s.addr)

	var err error
	select {
	case err = <-listenErr:
		s.logger.Error("Server stopped unexpectedly", "error", err)
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err = srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server forced to shutdown", "error", err)
		}
	}

	s.closeAll()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("Server exited gracefully")
	return nil
}

func (s *Server) closeAll() {
	names := make([]string, 0, len(s.closers))
	for name := range s.closers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.closers[name].Close(); err != nil {
			s.logger.Error("Failed to close collaborator", "name", name, "error", err)
		}
	}
}
