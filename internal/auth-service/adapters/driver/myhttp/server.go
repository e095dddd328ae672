package myhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"ride-dispatch/internal/auth-service/adapters/driven/db"
	"ride-dispatch/internal/auth-service/adapters/driver/myhttp/handle"
	"ride-dispatch/internal/auth-service/adapters/driver/myhttp/middleware"
	"ride-dispatch/internal/auth-service/core/service"
	"ride-dispatch/internal/config"
	"ride-dispatch/internal/mylogger"
)

const WaitTime = 10

type Server struct {
	mux   *http.ServeMux
	cfg   *config.Config
	srv   *http.Server
	mylog mylogger.Logger
	db    *db.DB
	ctx   context.Context
	mu    sync.Mutex
}

func NewServer(ctx context.Context, mylog mylogger.Logger, cfg *config.Config) *Server {
	return &Server{
		ctx:   ctx,
		cfg:   cfg,
		mylog: mylog,
		mux:   http.NewServeMux(),
	}
}

func (s *Server) Run() error {
	mylog := s.mylog.Action("server_started")

	db, err := db.New(s.ctx, s.cfg.DB, mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	mylog.Info("Successful database connection")

	s.Configure()

	s.mu.Lock()
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%v", s.cfg.Srv.AuthServicePort),
		Handler: s.mux,
	}
	s.mu.Unlock()

	mylog = mylog.WithGroup("details").With("port", s.cfg.Srv.AuthServicePort)

	mylog.Info("server is running")
	return s.startHTTPServer()
}

func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mylog.Info("Shutting down HTTP server...")

	if s.srv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, WaitTime*time.Second)
		defer cancel()

		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.mylog.Error("Failed to shut down HTTP server gracefully", err)
			return fmt.Errorf("http server shutdown: %w", err)
		}
	}

	if s.db != nil {
		s.db.Close()
		s.mylog.Info("Database closed")
	}

	s.mylog.Info("HTTP server shut down gracefully")
	return nil
}

func (s *Server) startHTTPServer() error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		} else {
			errCh <- nil
		}
	}()

	select {
	case <-s.ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) Configure() {
	authRepo := db.NewAuthRepo(s.db)
	authService := service.NewAuthService(s.cfg, authRepo, s.mylog)
	authHandler := handle.NewAuthHandler(authService, s.mylog)

	authMiddleware := middleware.NewAuthMiddleware(s.cfg.App.JwtSecret)

	s.mux.Handle("POST /auth/register", authHandler.Register())
	s.mux.Handle("POST /auth/login", authHandler.Login())
	s.mux.Handle("GET /auth/profile", authMiddleware.Wrap(authHandler.Profile()))
}
