package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fortis/internal/cache"
	flog "fortis/internal/log"
	"fortis/internal/middleware/ratelimit"
	"fortis/internal/middleware/security"
	"fortis/internal/middleware/trace"
	"fortis/internal/services"
)

const cacheSweepInterval = 10 * time.Minute

// Services are the ledger operations exposed over HTTP. Reports may be nil.
type Services struct {
	Budgets      *services.BudgetService
	Alerts       *services.AlertService
	Deposits     *services.DepositService
	Transactions *services.TransactionService
	Archive      *services.ArchiveService
	Reports      *services.ReportService
}

// Options tune the server. The zero value is usable.
type Options struct {
	Logger             *flog.Logger
	RateLimitPerMinute int
	// Caches are swept for expired entries alongside the rate limiter's.
	Caches []cache.Cleaner
	// TrustedProxies are CIDRs whose X-Forwarded-For is believed.
	TrustedProxies []string
}

type Server struct {
	http.Server
	svc     Services
	tracer  *trace.Middleware
	limiter *ratelimit.Limiter
	janitor *cache.Janitor

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, svc Services, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = flog.New(flog.DefaultConfig()).WithComponent("http")
	}

	limitCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limitCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}

	resolver := security.NewIPResolver()
	for _, cidr := range opts.TrustedProxies {
		if err := resolver.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", "cidr", cidr, "error", err)
		}
	}

	s := &Server{
		svc:     svc,
		tracer:  trace.NewMiddleware(),
		limiter: ratelimit.NewLimiter(limitCfg),
	}
	s.janitor = cache.NewJanitor(append([]cache.Cleaner{s.limiter.Cache()}, opts.Caches...)...)

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(resolver.ExtractClientIP)(handler)
	handler = flog.AccessLog(handler)
	handler = flog.RequestIDMiddleware(trace.FromRequest)(handler)
	handler = flog.Middleware(logger)(handler)
	handler = s.tracer.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.janitor.Start(cacheSweepInterval)
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /users/{user}/budgets", s.handleListBudgets)
	mux.HandleFunc("PUT /users/{user}/budgets", s.handleReplaceBudgets)
	mux.HandleFunc("POST /users/{user}/budgets", s.handleAddBudget)
	mux.HandleFunc("PUT /users/{user}/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /users/{user}/budgets/{id}", s.handleDeleteBudget)
	mux.HandleFunc("POST /users/{user}/budgets/reset", s.handleResetBudgets)

	mux.HandleFunc("GET /users/{user}/alerts", s.handleAlerts)
	mux.HandleFunc("POST /users/{user}/alerts/seen", s.handleMarkSeen)
	mux.HandleFunc("POST /users/{user}/alerts/dismiss-all", s.handleDismissAll)
	mux.HandleFunc("POST /users/{user}/alerts/{id}/dismiss", s.handleDismissAlert)
	mux.HandleFunc("DELETE /users/{user}/alerts/dismissed", s.handleClearDismissed)
	mux.HandleFunc("GET /users/{user}/alert-settings", s.handleGetSettings)
	mux.HandleFunc("PUT /users/{user}/alert-settings", s.handleUpdateSettings)

	mux.HandleFunc("GET /users/{user}/vaults", s.handleListVaults)
	mux.HandleFunc("POST /users/{user}/vaults", s.handleSaveVault)
	mux.HandleFunc("POST /users/{user}/deposits", s.handleDeposit)
	mux.HandleFunc("GET /users/{user}/deposits/autofill", s.handleAutoFill)

	mux.HandleFunc("GET /users/{user}/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /users/{user}/transactions", s.handleAddTransaction)
	mux.HandleFunc("GET /users/{user}/transactions/archive-eligible", s.handleArchiveEligible)
	mux.HandleFunc("POST /users/{user}/transactions/archive-eligible", s.handleArchiveAllEligible)
	mux.HandleFunc("POST /users/{user}/transactions/archive", s.handleArchive)
	mux.HandleFunc("POST /users/{user}/transactions/restore", s.handleRestore)
	mux.HandleFunc("DELETE /users/{user}/transactions/archived", s.handlePurgeArchived)

	if s.svc.Reports != nil {
		mux.HandleFunc("GET /users/{user}/reports/weekly", s.handleWeeklyReport)
	}
}

// Shutdown stops the cache sweeper and then drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.janitor.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

type healthJSON struct {
	Status              string `json:"status"`
	TotalRequests       int64  `json:"total_requests"`
	ServerErrors        int64  `json:"server_errors"`
	AverageResponseTime int64  `json:"average_response_us"`
	TrackedClients      int    `json:"tracked_clients"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	m := s.tracer.GetMetrics()
	NewJSONResponse().Body(healthJSON{
		Status:              "ok",
		TotalRequests:       m.TotalRequests,
		ServerErrors:        m.ServerErrors,
		AverageResponseTime: m.AverageResponseTime,
		TrackedClients:      s.limiter.ActiveClients(),
	}).Write(w)
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
