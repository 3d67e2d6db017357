package trialserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/checkoutkit/pkg/clientip"
	"github.com/dmitrymomot/checkoutkit/pkg/email"
	"github.com/dmitrymomot/checkoutkit/pkg/handler"
	"github.com/dmitrymomot/checkoutkit/pkg/jwt"
	"github.com/dmitrymomot/checkoutkit/pkg/logger"
	"github.com/dmitrymomot/checkoutkit/pkg/ratelimiter"
	"github.com/dmitrymomot/checkoutkit/pkg/validator"
)

// Server issues trial tokens and runs token-gated analyses.
type Server struct {
	tokens   *jwt.Service
	sender   email.Sender
	analyzer Analyzer
	limiter  *ratelimiter.Bucket
	ips      *clientip.Resolver
	logger   *slog.Logger

	welcomeTimeout time.Duration
	wg             sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithSender sets where welcome emails go.
func WithSender(s email.Sender) Option {
	return func(srv *Server) {
		srv.sender = s
	}
}

// WithAnalyzer enables POST /api/analyze. Without it the route answers 503.
func WithAnalyzer(a Analyzer) Option {
	return func(srv *Server) {
		srv.analyzer = a
	}
}

// WithRateLimit throttles trial issuance per client IP.
func WithRateLimit(b *ratelimiter.Bucket, ips *clientip.Resolver) Option {
	return func(srv *Server) {
		srv.limiter = b
		if ips != nil {
			srv.ips = ips
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(srv *Server) {
		if l != nil {
			srv.logger = l
		}
	}
}

// WithWelcomeTimeout bounds how long a welcome email may take.
func WithWelcomeTimeout(d time.Duration) Option {
	return func(srv *Server) {
		if d > 0 {
			srv.welcomeTimeout = d
		}
	}
}

// New creates a Server that signs trial tokens with tokens.
func New(tokens *jwt.Service, opts ...Option) *Server {
	s := &Server{
		tokens:         tokens,
		ips:            clientip.New(),
		logger:         logger.Discard(),
		welcomeTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("trialserver"))
	return s
}

type subscribeRequest struct {
	Email string `json:"email"`
}

type subscribeResponse struct {
	Token string `json:"token"`
}

type analyzeRequest struct {
	URL           string `json:"url"`
	EmployeeCount *int   `json:"employee_count"`
	Email         string `json:"email"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Routes registers the /api endpoints on r.
func (s *Server) Routes(r chi.Router) {
	body := handler.WithBinders(handler.BindJSON())
	errs := handler.WithErrorHandler(s.renderError)

	r.Get("/api/health", handler.Wrap(s.health, errs))

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(ratelimiter.Middleware(s.limiter, s.ips.FromRequest, s.logger))
		}
		r.Post("/api/subscribe", handler.Wrap(s.subscribe, body, errs))
	})

	r.Group(func(r chi.Router) {
		r.Use(jwt.Middleware(s.tokens))
		r.Post("/api/analyze", handler.Wrap(s.analyze, body, errs))
	})
}

// Router returns a standalone router serving Routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}

// Wait blocks until pending welcome emails are sent or given up.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) health(context.Context, struct{}) handler.Response {
	return handler.JSON(map[string]string{"status": "ok"})
}

func (s *Server) subscribe(ctx context.Context, req subscribeRequest) handler.Response {
	addr := strings.TrimSpace(req.Email)
	if addr == "" {
		return fail(http.StatusBadRequest, MsgEmailRequired)
	}
	if err := validator.Apply(validator.ValidEmail("email", addr)); err != nil {
		return fail(http.StatusBadRequest, MsgInvalidEmail)
	}

	token, claims, err := s.tokens.IssueTrial(addr)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to issue trial token", logger.Error(err))
		return fail(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}

	s.logger.InfoContext(ctx, "trial issued", slog.Time("expires_at", claims.Expiry()))
	s.sendWelcome(ctx, addr, claims.Expiry())

	return handler.JSON(subscribeResponse{Token: token})
}

func (s *Server) sendWelcome(ctx context.Context, addr string, expires time.Time) {
	if s.sender == nil {
		return
	}
	msg, err := email.TrialWelcome(addr, expires)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to render welcome email", logger.Error(err))
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.welcomeTimeout)
		defer cancel()
		if err := s.sender.Send(sendCtx, msg); err != nil {
			s.logger.WarnContext(sendCtx, "welcome email not sent", logger.Error(err))
		}
	}()
}

func (s *Server) analyze(ctx context.Context, req analyzeRequest) handler.Response {
	if s.analyzer == nil {
		return fail(http.StatusServiceUnavailable, MsgAnalyzerUnavailable)
	}
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return fail(http.StatusBadRequest, MsgURLRequired)
	}

	job := Analysis{URL: url, EmployeeCount: req.EmployeeCount, Email: req.Email}
	if claims, ok := jwt.Claims(ctx); ok {
		job.Email = claims.Email
	}

	start := time.Now()
	report, err := s.analyzer.Analyze(ctx, job)
	if err != nil {
		s.logger.ErrorContext(ctx, "analysis failed", logger.Error(err), logger.Duration(time.Since(start)))
		if errors.Is(err, ErrAnalyzerUnavailable) {
			return fail(http.StatusServiceUnavailable, MsgAnalyzerUnavailable)
		}
		return fail(http.StatusInternalServerError, MsgAnalysisFailed)
	}

	s.logger.InfoContext(ctx, "analysis completed", logger.Duration(time.Since(start)))
	return handler.JSON(report)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	resp := fail(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	switch {
	case errors.Is(err, handler.ErrInvalidJSON):
		resp = fail(http.StatusBadRequest, MsgInvalidBody)
	case errors.Is(err, handler.ErrUnsupportedMediaType):
		resp = fail(http.StatusUnsupportedMediaType, http.StatusText(http.StatusUnsupportedMediaType))
	default:
		s.logger.ErrorContext(r.Context(), "trial request failed", logger.Error(err))
	}
	_ = resp.Render(w, r)
}

func fail(status int, msg string) handler.JSONResponse {
	return handler.JSONStatus(status, errorBody{Error: msg})
}
