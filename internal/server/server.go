package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/arniesaha/portfolio-tracker/internal/database"
	"github.com/arniesaha/portfolio-tracker/internal/modules/holdings"
	"github.com/arniesaha/portfolio-tracker/internal/modules/importer"
	"github.com/arniesaha/portfolio-tracker/internal/modules/portfolio"
	"github.com/arniesaha/portfolio-tracker/internal/modules/prices"
	"github.com/arniesaha/portfolio-tracker/internal/modules/transactions"
)

// Config holds server configuration
type Config struct {
	Port    int
	Log     zerolog.Logger
	DB      *database.DB
	DevMode bool

	Holdings     *holdings.Handlers
	Transactions *transactions.Handlers
	Importer     *importer.Handlers
	Portfolio    *portfolio.Handlers
	Prices       *prices.Handlers
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	db     *database.DB
	port   int
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		db:     cfg.DB,
		port:   cfg.Port,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes(cfg)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(cfg Config) {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.handleSystemStatus)
		})

		r.Route("/holdings", func(r chi.Router) {
			r.Get("/", cfg.Holdings.HandleList)
			r.Post("/", cfg.Holdings.HandleCreate)
			r.Get("/{id}", cfg.Holdings.HandleGet)
			r.Put("/{id}", cfg.Holdings.HandleUpdate)
			r.Delete("/{id}", cfg.Holdings.HandleDelete)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", cfg.Transactions.HandleList)
			r.Post("/", cfg.Transactions.HandleCreate)
			r.Get("/holding/{id}", cfg.Transactions.HandleListByHolding)
			r.Get("/verify/{symbol}", cfg.Transactions.HandleVerify)
			r.Delete("/{id}", cfg.Transactions.HandleDelete)
		})

		r.Route("/import", func(r chi.Router) {
			r.Post("/", cfg.Importer.HandleImport)
			r.Post("/preview", cfg.Importer.HandlePreview)
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/summary", cfg.Portfolio.HandleSummary)
			r.Get("/allocation", cfg.Portfolio.HandleAllocation)
			r.Get("/history", cfg.Portfolio.HandleHistory)
			r.Post("/snapshot", cfg.Portfolio.HandleSnapshot)
		})

		r.Route("/prices", func(r chi.Router) {
			r.Get("/", cfg.Prices.HandleList)
			r.Post("/refresh", cfg.Prices.HandleRefresh)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
