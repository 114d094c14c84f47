package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"expensek/internal/core"
	"expensek/internal/dashboard"
	applog "expensek/internal/log"
	"expensek/internal/middleware/ratelimit"
	"expensek/internal/middleware/security"
	"expensek/internal/middleware/trace"
	"expensek/internal/sheets"
	appweb "expensek/web"
)

// dashboardTimeout bounds the storage reads behind one dashboard request.
const dashboardTimeout = 7 * time.Second

// DashboardBuilder produces the dashboard view.
type DashboardBuilder interface {
	Build(ctx context.Context) (dashboard.View, error)
}

// Recorder persists a transaction submitted through the form.
type Recorder interface {
	Record(ctx context.Context, t core.Transaction) (core.Transaction, error)
}

// Deps are the collaborators behind the routes. Recorder and Ready may be
// nil: the form endpoint then answers 503 and readiness only checks the
// templates.
type Deps struct {
	Dashboard          DashboardBuilder
	Categories         sheets.CategoryReader
	Recorder           Recorder
	Ready              func(ctx context.Context) error
	Formatter          dashboard.Formatter
	Logger             *applog.Logger
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	templates *template.Template
	deps      Deps
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware
	started   time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	if deps.Formatter == nil {
		deps.Formatter = core.DefaultCurrencyFormatter()
	}
	if deps.Logger == nil {
		deps.Logger = applog.New(applog.DefaultConfig())
	}
	deps.Logger = deps.Logger.WithComponent(applog.ComponentHTTP)

	detector := security.NewDetector()
	s := &Server{
		deps:     deps,
		detector: detector,
		tracer:   trace.NewMiddleware(detector.ExtractClientIP),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
		started:  time.Now(),
	}

	t, err := template.New("").Funcs(templateFuncs(deps.Formatter)).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		deps.Logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		deps.Logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/dashboard", s.handleDashboardAPI)
	mux.HandleFunc("/api/categories", s.handleCategories)
	mux.HandleFunc("/transactions", s.handleCreateTransaction)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(detector.ExtractClientIP, ratelimit.PostOnly)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig(), detector).Middleware(handler)
	handler = s.tracer.Middleware(handler)
	handler = applog.Middleware(deps.Logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the limiter cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func templateFuncs(f dashboard.Formatter) template.FuncMap {
	return template.FuncMap{
		"money": f.Format,
		"date": func(t time.Time) string {
			return t.Format("2006-01-02")
		},
		"category": func(c *core.Category) string {
			if c == nil {
				return "Uncategorized"
			}
			return c.Label()
		},
		"isIncome": func(t core.Transaction) bool {
			return dashboard.IsIncome(t)
		},
		"isExpense": func(t core.Transaction) bool {
			return dashboard.IsExpense(t)
		},
	}
}
