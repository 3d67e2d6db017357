package storefront

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/handler"
	"github.com/dmitrymomot/checkoutkit/pkg/httpserver"
	"github.com/dmitrymomot/checkoutkit/pkg/logger"
)

// Server exposes the analysis and checkout flows over HTTP.
type Server struct {
	analysis  *AnalysisFlow
	checkout  *CheckoutFlow
	catalog   any
	cfg       Config
	logger    *slog.Logger
	readiness []httpserver.HealthCheck
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the HTTP logger.
func WithServerLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithReadiness adds dependency probes served at /ready.
func WithReadiness(checks ...httpserver.HealthCheck) ServerOption {
	return func(s *Server) {
		s.readiness = append(s.readiness, checks...)
	}
}

// WithCatalogListing serves v at GET /checkout/catalog.
func WithCatalogListing(v any) ServerOption {
	return func(s *Server) {
		s.catalog = v
	}
}

// NewServer creates the HTTP surface.
func NewServer(analysis *AnalysisFlow, checkoutFlow *CheckoutFlow, cfg Config, opts ...ServerOption) *Server {
	s := &Server{analysis: analysis, checkout: checkoutFlow, cfg: cfg, logger: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type emailRequest struct {
	Email string `json:"email"`
}

type startRequest struct {
	Kind   string          `path:"kind"`
	Cart   []checkout.Item `json:"cart"`
	PlanID string          `json:"plan_id"`
}

type attemptRequest struct {
	Attempt string `path:"attempt"`
}

type approveRequest struct {
	Attempt  string `path:"attempt"`
	IntentID string `json:"intentID"`
	OrderID  string `json:"orderID"`
	PayerID  string `json:"payerID"`
}

type errorReport struct {
	Attempt string `path:"attempt"`
	Message string `json:"message"`
}

type intentResponse struct {
	ID string `json:"id"`
	CheckoutView
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Get("/health", httpserver.LivenessHandler())
	r.Get("/ready", httpserver.ReadinessHandler(s.logger, s.readiness...))

	errs := handler.WithErrorHandler(s.renderError)
	body := handler.WithBinders(handler.BindJSON(), handler.BindPath(chi.URLParam))
	path := handler.WithBinders(handler.BindPath(chi.URLParam))

	r.Group(func(r chi.Router) {
		r.Use(VisitorMiddleware(s.cfg.VisitorCookie, s.cfg.SecureCookie))

		r.Get("/analysis", handler.Wrap(s.analysisView, errs))
		r.Post("/analysis", handler.Wrap(s.submitAnalysis, body, errs))
		r.Post("/analysis/email", handler.Wrap(s.provideEmail, body, errs))

		r.Get("/checkout/catalog", handler.Wrap(s.catalogListing, errs))
		r.Post("/checkout/{kind}", handler.Wrap(s.startCheckout, body, errs))
		r.Get("/checkout/{attempt}", handler.Wrap(s.checkoutView, path, errs))
		r.Delete("/checkout/{attempt}", handler.Wrap(s.cancelCheckout, path, errs))
		r.Post("/checkout/{attempt}/intent", handler.Wrap(s.createIntent, path, errs))
		r.Post("/checkout/{attempt}/approve", handler.Wrap(s.approve, body, errs))
		r.Post("/checkout/{attempt}/error", handler.Wrap(s.reportError, body, errs))
		r.Post("/checkout/{attempt}/restart", handler.Wrap(s.restart, path, errs))
	})

	return r
}

func (s *Server) analysisView(ctx context.Context, _ struct{}) handler.Response {
	return handler.JSON(s.analysis.View(VisitorFrom(ctx)))
}

func (s *Server) submitAnalysis(ctx context.Context, req AnalysisRequest) handler.Response {
	view, err := s.analysis.Submit(ctx, VisitorFrom(ctx), req)
	if err != nil {
		return s.errorResponse(ctx, err)
	}
	return handler.JSON(view)
}

func (s *Server) provideEmail(ctx context.Context, req emailRequest) handler.Response {
	view, err := s.analysis.ProvideEmail(ctx, VisitorFrom(ctx), req.Email)
	if err != nil {
		return s.errorResponse(ctx, err)
	}
	return handler.JSON(view)
}

func (s *Server) catalogListing(_ context.Context, _ struct{}) handler.Response {
	if s.catalog == nil {
		return handler.Error(handler.ErrNotFound)
	}
	return handler.JSON(s.catalog)
}

func (s *Server) startCheckout(ctx context.Context, req startRequest) handler.Response {
	kind, err := checkout.ParseKind(req.Kind)
	if err != nil {
		return s.errorResponse(ctx, errors.Join(ErrUnsupportedKind, err))
	}

	var creq checkout.Request = checkout.Cart{Items: req.Cart}
	if kind == checkout.KindSubscription {
		creq = checkout.Plan{ID: req.PlanID}
	}

	view, err := s.checkout.Start(ctx, VisitorFrom(ctx), creq)
	if err != nil {
		return s.errorResponse(ctx, err)
	}
	return handler.JSONStatus(http.StatusCreated, view)
}

func (s *Server) checkoutView(ctx context.Context, req attemptRequest) handler.Response {
	view, err := s.checkout.View(VisitorFrom(ctx), req.Attempt)
	if err != nil {
		return s.errorResponse(ctx, err)
	}
	return handler.JSON(view)
}

func (s *Server) cancelCheckout(ctx context.Context, req attemptRequest) handler.Response {
	if err := s.checkout.Cancel(ctx, VisitorFrom(ctx), req.Attempt); err != nil {
		return s.errorResponse(ctx, err)
	}
	return handler.NoContent()
}

func (s *Server) createIntent(ctx context.Context, req attemptRequest) handler.Response {
	view, err := s.checkout.CreateIntent(ctx, VisitorFrom(ctx), req.Attempt)
	if err != nil {
		return s.errorResponse(ctx, err)
	}
	resp := intentResponse{CheckoutView: view}
	if view.Intent != nil && view.State == checkout.StateAwaitingApproval {
		resp.ID = view.Intent.ID
		return handler.JSON(resp)
	}
	return handler.JSONStatus(http.StatusUnprocessableEntity, resp)
}

func (s *Server) approve(ctx context.Context, req approveRequest) handler.Response {
	intentID := req.IntentID
	if intentID == "" {
		intentID = req.OrderID
	}
	view, err := s.checkout.Approve(ctx, VisitorFrom(ctx), req.Attempt, checkout.Approval{
		IntentID: intentID,
		PayerID:  req.PayerID,
	})
	if err != nil {
		return s.errorResponse(ctx, err)
	}
	return handler.JSON(view)
}

func (s *Server) reportError(ctx context.Context, req errorReport) handler.Response {
	view, err := s.checkout.ReportError(ctx, VisitorFrom(ctx), req.Attempt, req.Message)
	if err != nil {
		return s.errorResponse(ctx, err)
	}
	return handler.JSON(view)
}

func (s *Server) restart(ctx context.Context, req attemptRequest) handler.Response {
	view, err := s.checkout.Restart(ctx, VisitorFrom(ctx), req.Attempt)
	if err != nil {
		return s.errorResponse(ctx, err)
	}
	return handler.JSON(view)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	_ = s.errorResponse(r.Context(), err).Render(w, r)
}

func (s *Server) errorResponse(ctx context.Context, err error) handler.Response {
	status, code, msg := http.StatusInternalServerError, "internal_error", http.StatusText(http.StatusInternalServerError)

	switch {
	case errors.Is(err, ErrInvalidInput):
		status, code, msg = http.StatusUnprocessableEntity, "invalid_input", MsgInvalidURL
	case errors.Is(err, ErrUnsupportedKind):
		status, code, msg = http.StatusBadRequest, "unsupported_kind", "This checkout option is not available."
	case errors.Is(err, ErrAttemptNotFound):
		status, code, msg = http.StatusNotFound, "attempt_not_found", "Checkout attempt not found."
	case errors.Is(err, ErrAttemptReleased):
		status, code, msg = http.StatusGone, "attempt_released", "This checkout button is no longer active. Please start again."
	case errors.Is(err, ErrAttemptInProgress), errors.Is(err, ErrAnalysisBusy):
		status, code, msg = http.StatusConflict, "in_progress", "Please wait for the current request to finish."
	case errors.Is(err, ErrNoPendingAnalysis):
		status, code, msg = http.StatusConflict, "no_pending_analysis", "There is no analysis waiting for an email."
	case errors.Is(err, checkout.ErrOutOfOrder):
		status, code, msg = http.StatusConflict, "out_of_order", checkout.MsgProviderError
	case errors.Is(err, ErrMissingVisitor):
		status, code, msg = http.StatusBadRequest, "missing_visitor", http.StatusText(http.StatusBadRequest)
	default:
		resp := handler.Error(err)
		var he handler.HTTPError
		if !errors.As(err, &he) && !errors.Is(err, handler.ErrInvalidJSON) && !errors.Is(err, handler.ErrUnsupportedMediaType) {
			s.logger.ErrorContext(ctx, "storefront request failed", logger.Error(err))
		}
		return resp
	}

	return handler.JSONStatus(status, handler.ErrorBody{Code: code, Message: msg})
}
