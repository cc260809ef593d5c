package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"zaman/internal/assistant"
	"zaman/internal/budget"
	"zaman/internal/catalog"
	"zaman/internal/core"
	"zaman/internal/invest"
	"zaman/internal/llm"
	"zaman/internal/log"
	"zaman/internal/middleware/ratelimit"
	"zaman/internal/middleware/security"
	"zaman/internal/middleware/trace"
	"zaman/internal/services"
	"zaman/internal/telemetry"
)

// Assistant answers chat conversations.
type Assistant interface {
	Chat(ctx context.Context, history []llm.Message) (assistant.Reply, error)
}

// Catalog lists and filters bank products.
type Catalog interface {
	Products(ctx context.Context) ([]core.Product, error)
	Match(ctx context.Context, f catalog.Filter) ([]core.Product, error)
}

// Profile holds the per-user state.
type Profile interface {
	SalaryPlan(ctx context.Context) (budget.SalaryPlan, bool, error)
	SaveSalaryPlan(ctx context.Context, plan budget.SalaryPlan) (budget.SalaryAllocation, error)
	Goal(ctx context.Context) (core.AppliedGoal, bool, error)
	ApplyGoal(ctx context.Context, g core.AppliedGoal) error
	Settings(ctx context.Context) (services.Settings, error)
	UpdateSettings(ctx context.Context, patch services.Settings) (services.Settings, error)
}

// Telemetry records and lists usage events.
type Telemetry interface {
	Track(ctx context.Context, event string, payload any) (core.TelemetryEvent, error)
	Once(ctx context.Context, seen telemetry.KeySet, dedupeKey, event string, payload any) (bool, error)
	List(ctx context.Context) ([]core.TelemetryEvent, error)
}

// Simulator projects investment returns.
type Simulator interface {
	Simulate(amount int64, instrument invest.Instrument) (invest.InvestResult, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services behind the API. Assistant and Ready may be nil.
type Deps struct {
	Assistant Assistant
	Catalog   Catalog
	Profile   Profile
	Telemetry Telemetry
	Simulator Simulator
	Ready     Pinger
	// Seen dedupes telemetry events posted with a dedupe key.
	Seen telemetry.KeySet
}

// Options tune the middleware stack.
type Options struct {
	RateLimitPerMinute int
	// Sentry wraps handlers with error reporting. Only enable it after
	// sentry.Init succeeded.
	Sentry bool
	Logger *log.Logger
	// Now overrides the clock for goal planning.
	Now func() time.Time
}

type Server struct {
	http.Server
	deps   Deps
	logger *log.Logger
	now    func() time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, deps Deps, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if deps.Seen == nil {
		deps.Seen = telemetry.NewSeenKeys()
	}
	if deps.Simulator == nil {
		deps.Simulator = invest.NewSimulator(nil)
	}

	detector := security.NewDetector(logger)
	s := &Server{
		deps:             deps,
		logger:           logger.WithComponent(log.ComponentHTTP),
		now:              opts.Now,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP, logger),
		appMetrics:       newAppMetrics(),
	}

	r := chi.NewRouter()
	r.Use(s.traceMiddleware.Middleware)
	r.Use(middleware.Recoverer)
	if opts.Sentry {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(detector.Middleware)
	r.Use(s.rateLimiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, detector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("resource not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		MethodNotAllowedError("").Write(w)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)

		r.Post("/goals/extract", s.handleExtractGoal)
		r.Post("/goals/plan", s.handlePlanGoal)

		r.Post("/salary/allocate", s.handleAllocateSalary)
		r.Post("/salary/plan/calculate", s.handleCalculateSalaryPlan)

		r.Route("/profile", func(r chi.Router) {
			r.Get("/salary-plan", s.handleGetSalaryPlan)
			r.Put("/salary-plan", s.handlePutSalaryPlan)
			r.Get("/goal", s.handleGetGoal)
			r.Put("/goal", s.handlePutGoal)
			r.Get("/settings", s.handleGetSettings)
			r.Put("/settings", s.handlePutSettings)
		})

		r.Post("/invest/simulate", s.handleSimulateInvestment)
		r.Get("/invest/instruments", s.handleListInstruments)

		r.Post("/spending/import", s.handleImportStatement)
		r.Post("/spending/analyze", s.handleAnalyzeSpending)

		r.Get("/products", s.handleListProducts)

		r.Post("/telemetry", s.handleTrackEvent)
		r.Get("/telemetry", s.handleListEvents)
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Chat completions can take a while.
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Shutdown stops the limiter cleanup and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
