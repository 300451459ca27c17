// Package api - Thin HTTP layer over the quote engine
// The API is ONLY responsible for input ingestion, engine
// orchestration, and output serialization. It NEVER performs pricing
// logic.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"glassquote/core/catalog"
	"glassquote/core/configstore"
	"glassquote/internal/logging"
)

// CatalogLoader supplies reference-price snapshots. Implemented by the
// storage adapter; the loaded catalog is immutable for the duration of
// one calculation.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) (*catalog.Catalog, error)
}

// Server is the API server
type Server struct {
	router  chi.Router
	loader  CatalogLoader
	configs *configstore.Manager
	minArea decimal.Decimal
	version string
}

// NewServer creates an API server over a catalog loader and a formula
// config manager. minimumBillableSqFt is passed through to the engine.
func NewServer(loader CatalogLoader, configs *configstore.Manager, minimumBillableSqFt decimal.Decimal, version string) *Server {
	s := &Server{
		loader:  loader,
		configs: configs,
		minArea: minimumBillableSqFt,
		version: version,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/quote", s.handleQuote)
		r.Get("/formula", s.handleGetFormula)
		r.Put("/formula", s.handleUpdateFormula)
		r.Post("/formula/validate", s.handleValidateExpression)
		r.Get("/formula/audit", s.handleAudit)
	})
	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	logging.Info("api listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, s)
}

// requestLogger logs one line per request through the global logger
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logging.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Duration("duration", time.Since(start)))
	})
}
