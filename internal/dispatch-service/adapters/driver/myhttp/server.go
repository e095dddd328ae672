package myhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"ride-dispatch/internal/config"
	"ride-dispatch/internal/dispatch-service/adapters/driven/bm"
	"ride-dispatch/internal/dispatch-service/adapters/driven/db"
	"ride-dispatch/internal/dispatch-service/adapters/driven/notification"
	"ride-dispatch/internal/dispatch-service/adapters/driver/myhttp/handle"
	"ride-dispatch/internal/dispatch-service/adapters/driver/myhttp/middleware"
	"ride-dispatch/internal/dispatch-service/adapters/driver/myhttp/ws"
	"ride-dispatch/internal/dispatch-service/core/services"
	"ride-dispatch/internal/mylogger"
)

var ErrServerClosed = errors.New("Server closed")

const WaitTime = 10

type Server struct {
	mux    *http.ServeMux
	cfg    *config.Config
	srv    *http.Server
	mylog  mylogger.Logger
	db     *db.DB
	mb     *bm.RabbitMQ
	ctx    context.Context
	appCtx context.Context
	mu     sync.Mutex
	wg     sync.WaitGroup
}

func NewServer(ctx, appCtx context.Context, mylog mylogger.Logger, cfg *config.Config) *Server {
	return &Server{
		ctx:    ctx,
		appCtx: appCtx,
		cfg:    cfg,
		mylog:  mylog,
		mux:    http.NewServeMux(),
	}
}

// Run initializes routes and starts listening. It returns when the server stops.
func (s *Server) Run() error {
	mylog := s.mylog.Action("server_started")

	db, err := db.New(s.ctx, s.cfg.DB, mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	mylog.Info("Successful database connection")

	mb, err := bm.New(s.appCtx, *s.cfg.RabbitMq, s.mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	s.mb = mb
	mylog.Info("Successful message broker connection")

	if err := s.Configure(); err != nil {
		return err
	}

	s.mu.Lock()
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%v", s.cfg.Srv.DispatchServicePort),
		Handler: s.mux,
	}
	s.mu.Unlock()

	mylog = mylog.WithGroup("details").With("port", s.cfg.Srv.DispatchServicePort)

	mylog.Info("server is running")
	return s.startHTTPServer()
}

// Stop provides a programmatic shutdown. Accepts a context for timeout control.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mylog.Info("Shutting down HTTP server...")

	s.wg.Wait()

	if s.srv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, WaitTime*time.Second)
		defer cancel()

		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.mylog.Error("Failed to shut down HTTP server gracefully", err)
			return fmt.Errorf("http server shutdown: %w", err)
		}
	}

	if s.mb != nil {
		if err := s.mb.Close(); err != nil {
			s.mylog.Error("Failed to close message broker", err)
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

// Configure wires repositories, services and handlers and registers routes.
func (s *Server) Configure() error {
	// Repositories
	userRepo := db.NewUserRepo(s.db)
	searchRequestRepo := db.NewSearchRequestRepo(s.db)
	bookingRepo := db.NewBookingRepo(s.db)
	walletRepo := db.NewWalletRepo(s.db)

	// Services
	searchRequestService := services.NewSearchRequestService(s.mylog, userRepo, searchRequestRepo, s.mb)
	bookingService := services.NewBookingService(s.mylog, userRepo, searchRequestRepo, bookingRepo)
	bookingCancelService := services.NewBookingCancelService(s.mylog, userRepo, searchRequestRepo, bookingRepo, s.mb)
	walletService := services.NewWalletService(s.mylog, userRepo, walletRepo)

	// Handlers
	searchRequestHandler := handle.NewSearchRequestHandler(searchRequestService, s.mylog)
	bookingHandler := handle.NewBookingHandler(bookingService, bookingCancelService, s.mylog)
	walletHandler := handle.NewWalletHandler(walletService, s.mylog)

	authMiddleware := middleware.NewAuthMiddleware(s.cfg.App.JwtSecret)

	// Websocket fan-out fed by the message bus.
	dispatcher := ws.NewDispatcher(s.mylog)
	bridge := notification.New(s.appCtx, &s.wg, s.mylog, dispatcher, s.mb)
	if err := bridge.Run(); err != nil {
		return fmt.Errorf("failed to start notification bridge: %w", err)
	}

	s.mux.Handle("POST /search-requests", authMiddleware.WrapRole("Customer", searchRequestHandler.Create()))
	s.mux.Handle("GET /search-requests/active", authMiddleware.WrapRole("Customer", searchRequestHandler.Active()))
	s.mux.Handle("POST /search-requests/{request_id}/complete", authMiddleware.WrapRole("Customer", searchRequestHandler.Complete()))
	s.mux.Handle("POST /search-requests/{request_id}/cancel", authMiddleware.WrapRole("Customer", searchRequestHandler.Cancel()))
	s.mux.Handle("POST /search-requests/driver-miss", authMiddleware.WrapRole("Customer", searchRequestHandler.DriverMiss()))
	s.mux.Handle("POST /search-requests/reassign", authMiddleware.Wrap(searchRequestHandler.Reassign()))
	s.mux.Handle("POST /search-requests/{request_id}/send/{driver_id}", authMiddleware.Wrap(searchRequestHandler.SendToDriver()))

	s.mux.Handle("POST /bookings", authMiddleware.WrapRole("Driver", bookingHandler.Create()))
	s.mux.Handle("GET /bookings/{booking_id}", authMiddleware.Wrap(bookingHandler.GetByID()))
	s.mux.Handle("POST /bookings/{booking_id}/status/{status}", authMiddleware.WrapRole("Driver", bookingHandler.ChangeStatus()))
	s.mux.Handle("POST /bookings/check-in-note", authMiddleware.WrapRole("Driver", bookingHandler.AddCheckInNote()))
	s.mux.Handle("POST /bookings/check-out-note", authMiddleware.WrapRole("Driver", bookingHandler.AddCheckOutNote()))
	s.mux.Handle("POST /bookings/customer-cancel", authMiddleware.WrapRole("Customer", bookingHandler.CustomerCancel()))
	s.mux.Handle("POST /bookings/driver-cancel", authMiddleware.WrapRole("Driver", bookingHandler.DriverCancel()))
	s.mux.Handle("GET /bookings/{booking_id}/cancel", authMiddleware.Wrap(bookingHandler.GetCancel()))

	s.mux.Handle("POST /wallet/top-up", authMiddleware.Wrap(walletHandler.TopUp()))
	s.mux.Handle("GET /wallet", authMiddleware.Wrap(walletHandler.Get()))

	// websocket route
	s.mux.Handle("GET /ws/users", authMiddleware.Wrap(dispatcher.WsHandler()))

	return nil
}
