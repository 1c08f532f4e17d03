// internal/api/server.go
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"survey-analyst/internal/common/config"
	"survey-analyst/internal/common/logger"
	"survey-analyst/internal/common/metrics"
	"survey-analyst/internal/models"
	"survey-analyst/pkg/registry"
)

// Team is the part of *team.Team the API serves.
type Team interface {
	Name() string
	Description() string
	Members() []registry.Member
	Run(ctx context.Context, req models.RunRequest) (*models.RunResponse, error)
	ResolveIntent(ctx context.Context, question string) (*models.IntentResult, error)
	History(ctx context.Context, sessionID string) ([]models.Turn, error)
}

// ProcessStarter starts the survey analysis BPMN process.
type ProcessStarter interface {
	StartProcess(ctx context.Context, processID string, vars interface{}) (int64, error)
}

// Check is one readiness probe, e.g. a database ping.
type Check func(ctx context.Context) error

type Options struct {
	Team      Team
	Checks    map[string]Check
	Workflow  ProcessStarter
	ProcessID string
	// Gatherer backs /metrics; the default registry when nil.
	Gatherer prometheus.Gatherer
	Logger   logger.Logger
}

type API struct {
	team      Team
	checks    map[string]Check
	workflow  ProcessStarter
	processID string
	gatherer  prometheus.Gatherer
	logger    logger.Logger
}

func New(opts Options) *API {
	a := &API{
		team:      opts.Team,
		checks:    opts.Checks,
		workflow:  opts.Workflow,
		processID: opts.ProcessID,
		gatherer:  opts.Gatherer,
		logger:    logger.Component(opts.Logger, "api"),
	}
	if a.gatherer == nil {
		a.gatherer = prometheus.DefaultGatherer
	}
	if a.processID == "" {
		a.processID = "survey-analysis"
	}
	return a
}

// Handler returns the routed HTTP handler.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.health)
	mux.HandleFunc("GET /ready", a.ready)
	mux.Handle("GET /metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /v1/team", a.describeTeam)
	mux.HandleFunc("POST /v1/teams/run", a.runTeam)
	mux.HandleFunc("POST /v1/intent/resolve", a.resolveIntent)
	mux.HandleFunc("POST /v1/intent/validate", a.validateIntent)
	mux.HandleFunc("GET /v1/sessions/{id}/history", a.sessionHistory)
	mux.HandleFunc("POST /v1/workflows/run", a.startWorkflow)

	return a.instrument(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (a *API) instrument(next *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		metrics.APIRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		metrics.APIRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		a.logger.Debug("request served", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"durationMs": elapsed.Milliseconds(),
		})
	})
}

// Server is the HTTP listener with the configured timeouts.
type Server struct {
	http            *http.Server
	shutdownTimeout time.Duration
}

func NewServer(cfg config.ServerConfig, handler http.Handler) *Server {
	return &Server{
		http: &http.Server{
			Addr:         cfg.Address,
			Handler:      handler,
			ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
			WriteTimeout: config.GetDuration(cfg.WriteTimeout),
		},
		shutdownTimeout: config.GetDuration(cfg.ShutdownTimeout),
	}
}

// ListenAndServe blocks until the server stops. A graceful shutdown is not
// reported as an error.
func (s *Server) ListenAndServe() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}
	return s.http.Shutdown(ctx)
}
