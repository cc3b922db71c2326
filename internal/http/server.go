// Package http serves the MapleBudget pages.
//
// Every page is rendered on the server from data fetched from the remote
// budgeting API with the token of the visitor's session. The analytics
// pipeline runs once per request over a cached snapshot. Mutations
// invalidate that snapshot, emit a domain event and redirect; HTMX requests
// get an HX-Redirect instead.
package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"maplebudget/internal/analytics"
	"maplebudget/internal/api"
	"maplebudget/internal/backend"
	"maplebudget/internal/cache"
	"maplebudget/internal/export/sheets"
	"maplebudget/internal/log"
	"maplebudget/internal/middleware/ratelimit"
	"maplebudget/internal/middleware/security"
	"maplebudget/internal/middleware/trace"
	"maplebudget/internal/session"
	"maplebudget/internal/storage"
	appweb "maplebudget/web"
)

// SheetsExporter copies exported rows to a spreadsheet.
type SheetsExporter interface {
	Export(ctx context.Context, rows []analytics.ExportRow) (*sheets.Result, error)
}

// Config holds the server settings that do not come from a dependency.
type Config struct {
	Addr               string
	Location           *time.Location
	RequestTimeout     time.Duration
	RateLimitPerMinute int
	// Now is the clock used for default periods and the demo seed.
	Now func() time.Time
}

// Deps are the collaborators of a Server. Sheets may be nil.
type Deps struct {
	API       *api.Client
	Sessions  *session.Manager
	Store     storage.Store
	Events    backend.EventSink
	Snapshots cache.Cache[*api.Snapshot]
	Sheets    SheetsExporter
	Logger    *log.Logger
}

type Server struct {
	http.Server
	templates *template.Template

	api       *api.Client
	sessions  *session.Manager
	store     storage.Store
	events    backend.EventSink
	snapshots cache.Cache[*api.Snapshot]
	sheets    SheetsExporter

	loc            *time.Location
	now            func() time.Time
	requestTimeout time.Duration

	ips     *security.IPResolver
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
	logger  *log.Logger

	started     time.Time
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
	mutations   atomic.Int64
}

// NewServer parses the embedded templates and builds the router.
func NewServer(cfg Config, deps Deps) (*Server, error) {
	if deps.API == nil || deps.Sessions == nil || deps.Store == nil {
		return nil, errors.New("http server needs an API client, a session manager and a store")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if deps.Snapshots == nil {
		deps.Snapshots = cache.Noop[*api.Snapshot]{}
	}
	if deps.Events == nil {
		deps.Events = backend.NewDirectSink(deps.Store, logger)
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	limits := ratelimit.DefaultConfig()
	if cfg.RateLimitPerMinute > 0 {
		limits.RequestsPerMinute = cfg.RateLimitPerMinute
	}

	s := &Server{
		templates:      tmpl,
		api:            deps.API,
		sessions:       deps.Sessions,
		store:          deps.Store,
		events:         deps.Events,
		snapshots:      deps.Snapshots,
		sheets:         deps.Sheets,
		loc:            cfg.Location,
		now:            cfg.Now,
		requestTimeout: cfg.RequestTimeout,
		ips:            security.NewIPResolver(),
		limiter:        ratelimit.NewLimiter(limits),
		logger:         logger.WithComponent(log.ComponentHTTP),
		started:        time.Now(),
	}
	s.tracer = trace.NewMiddleware(logger, s.ips.ClientIP)

	s.Server = http.Server{
		Addr:    cfg.Addr,
		Handler: s.routes(),
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.tracer.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.limiter.Middleware(s.ips.ClientIP, s.handleRateLimited))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.With(security.StaticAssetMiddleware(86400)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(appweb.Static()))))

	r.Group(func(r chi.Router) {
		r.Use(s.sessions.Middleware)
		r.Use(security.SameOrigin)
		r.Use(s.withRequestTimeout)

		r.Get("/", s.handleHome)
		r.Post("/demo", s.handleSeedDemo)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", s.handleDashboard)
			r.Get("/export.csv", s.handleDashboardCSV)
			r.Get("/summary.txt", s.handleDashboardSummary)
			r.Post("/export/sheets", s.handleDashboardSheets)
		})

		r.Post("/categories", s.handleCreateCategory)

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Get("/export.csv", s.handleTransactionsCSV)
			r.Post("/{id}", s.handleUpdateTransaction)
			r.Post("/{id}/delete", s.handleDeleteTransaction)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Get("/", s.handleGoals)
			r.Post("/", s.handleCreateGoal)
			r.Post("/{id}", s.handleUpdateGoal)
			r.Post("/{id}/deposit", s.handleDepositGoal)
			r.Post("/{id}/delete", s.handleDeleteGoal)
		})

		r.Get("/login", s.handleLoginPage)
		r.Post("/login", s.handleLogin)
		r.Get("/register", s.handleRegisterPage)
		r.Post("/register", s.handleRegister)
		r.Post("/logout", s.handleLogout)
	})

	r.NotFound(s.handleNotFound)
	return r
}

// withRequestTimeout bounds the API calls a page makes.
func (s *Server) withRequestTimeout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	s.logger.InfoContext(ctx, "HTTP server shutting down", log.FieldOperation, log.OpShutdown)
	return s.Server.Shutdown(ctx)
}
