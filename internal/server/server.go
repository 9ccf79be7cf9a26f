// Package server provides the HTTP API for the interview coach.
package server

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/logger"
	"github.com/jonathan/interview-coach/internal/rendering"
	"github.com/jonathan/interview-coach/internal/server/middleware"
	"github.com/jonathan/interview-coach/internal/server/ratelimit"
	"github.com/jonathan/interview-coach/internal/types"
)

const shutdownTimeout = 30 * time.Second

// Interviewer runs interview turns. *interview.Orchestrator implements it.
type Interviewer interface {
	Continue(ctx context.Context, sessionID, resumeKey, jobKey string, transcript types.Transcript) iter.Seq2[string, error]
	IngestAndStart(ctx context.Context, sessionID, resumeURL, jobURL string) iter.Seq2[string, error]
}

// ReportGenerator builds end-of-session reports. *report.Synthesizer implements it.
type ReportGenerator interface {
	Generate(ctx context.Context, transcript types.Transcript) (*types.InterviewReport, error)
}

// Config holds server configuration
type Config struct {
	Port           int
	AllowedOrigins []string
	// WriteTimeout of zero leaves streamed responses unbounded.
	WriteTimeout time.Duration
}

// Deps are the collaborators behind the routes.
type Deps struct {
	Interviewer Interviewer
	Reports     ReportGenerator
	Renderer    *rendering.Renderer
	// Limiter is optional; without it requests are not rate limited.
	Limiter *ratelimit.Limiter
	Logger  *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	cfg         Config
	interviewer Interviewer
	reports     ReportGenerator
	renderer    *rendering.Renderer
	limiter     *ratelimit.Limiter
	logger      *zap.Logger
	now         func() time.Time
	handler     http.Handler
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Interviewer == nil {
		return nil, errors.New("server: interviewer is required")
	}
	if deps.Reports == nil {
		return nil, errors.New("server: report generator is required")
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if deps.Renderer == nil {
		deps.Renderer = rendering.NewRenderer()
	}

	s := &Server{
		cfg:         cfg,
		interviewer: deps.Interviewer,
		reports:     deps.Reports,
		renderer:    deps.Renderer,
		limiter:     deps.Limiter,
		logger:      logger.OrNop(deps.Logger),
		now:         time.Now,
	}
	s.handler = s.routes()
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(s.cfg.AllowedOrigins))
	if s.limiter != nil {
		r.Use(ratelimit.Middleware(s.limiter, s.logger))
	}
	r.Use(middleware.Session)

	r.Get("/health", s.handleHealth)
	r.Route("/chat", func(r chi.Router) {
		r.Post("/complete", s.handleComplete)
		r.Post("/interview-data", s.handleInterviewData)
		r.Post("/report", s.handleReport)
		r.Get("/ws", s.handleWebSocket)
	})
	r.Post("/pdf/download-report", s.handleDownloadReport)
	return r
}

// Handler returns the routed handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.cfg.Port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", ln.Addr().String()))
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.stopLimiter()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	err := httpServer.Shutdown(shutdownCtx)
	s.stopLimiter()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) stopLimiter() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	log := s.logger.With(zap.String("request_id", chimw.GetReqID(r.Context())))
	if id, err := middleware.GetSessionID(r); err == nil {
		log = log.With(zap.String(logger.FieldSessionID, id))
	}
	return log
}

// originPatterns converts allowed origins to the host patterns the websocket
// handshake checks.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, origin := range origins {
		if origin == "*" {
			return []string{"*"}
		}
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, origin)
	}
	return patterns
}
