package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/checkoutkit/pkg/cache"
	"github.com/dmitrymomot/checkoutkit/pkg/logger"
	"github.com/dmitrymomot/checkoutkit/pkg/outcome"
	"github.com/dmitrymomot/checkoutkit/pkg/transport"
	"github.com/dmitrymomot/checkoutkit/pkg/trial"
	"github.com/dmitrymomot/checkoutkit/pkg/validator"
)

// TrialGate is the part of trial.Gate the analysis flow needs.
type TrialGate interface {
	EnsureAccess(ctx context.Context, visitor string) (trial.Access, error)
	RedeemTrial(ctx context.Context, visitor, email string) (trial.Session, error)
	Forget(ctx context.Context, visitor string) error
}

// AnalysisRequest is what the visitor submits. EmployeeCount is optional.
type AnalysisRequest struct {
	URL           string `json:"url"`
	EmployeeCount *int   `json:"employee_count,omitempty"`
}

type analyzePayload struct {
	URL           string `json:"url"`
	EmployeeCount *int   `json:"employee_count,omitempty"`
	Email         string `json:"email,omitempty"`
}

type analyzeError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// AnalysisView is what the UI observes. Result and an error Message are
// never both set.
type AnalysisView struct {
	Loading    bool             `json:"loading"`
	NeedsEmail bool             `json:"needs_email"`
	Result     json.RawMessage  `json:"result,omitempty"`
	Message    *outcome.Message `json:"message,omitempty"`
}

type analysisState struct {
	mu      sync.Mutex
	pending *AnalysisRequest
	loading bool
	result  json.RawMessage
	message *outcome.Message
}

func (s *analysisState) view() AnalysisView {
	return AnalysisView{
		Loading:    s.loading,
		NeedsEmail: s.pending != nil,
		Result:     s.result,
		Message:    s.message,
	}
}

func (s *analysisState) succeed(result json.RawMessage) {
	s.result = result
	s.message = nil
}

// reset clears the previous attempt's outcome.
func (s *analysisState) reset() {
	s.result = nil
	s.message = nil
}

func (s *analysisState) fail(msg string) {
	s.result = nil
	s.message = outcome.Error(msg)
}

// AnalysisFlow runs the protected website analysis behind the trial gate.
// Each visitor has at most one analysis in flight.
type AnalysisFlow struct {
	gate    TrialGate
	client  *transport.Client
	path    string
	timeout time.Duration
	logger  *slog.Logger
	states  *cache.LRUCache[string, *analysisState]
	mu      sync.Mutex
}

// NewAnalysisFlow creates the flow. client talks to the analysis backend.
func NewAnalysisFlow(gate TrialGate, client *transport.Client, cfg Config, log *slog.Logger) *AnalysisFlow {
	if log == nil {
		log = logger.Discard()
	}
	path := cfg.AnalyzePath
	if path == "" {
		path = "/api/analyze"
	}
	capacity := cfg.MaxVisitors
	if capacity <= 0 {
		capacity = 10000
	}
	return &AnalysisFlow{
		gate:    gate,
		client:  client,
		path:    path,
		timeout: cfg.AnalysisTimeout,
		logger:  log.With(logger.Component("analysis")),
		states:  cache.NewLRUCache[string, *analysisState](capacity),
	}
}

func (f *AnalysisFlow) state(visitor string) *analysisState {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.states.Get(visitor); ok {
		return s
	}
	s := &analysisState{}
	f.states.Put(visitor, s)
	return s
}

// View returns the visitor's current analysis state.
func (f *AnalysisFlow) View(visitor string) AnalysisView {
	s := f.state(visitor)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// Submit validates req and runs the analysis. When the visitor has no trial
// token, the request is parked and the view asks for an email; ProvideEmail
// resumes it. An empty URL fails with ErrInvalidInput and changes nothing.
func (f *AnalysisFlow) Submit(ctx context.Context, visitor string, req AnalysisRequest) (AnalysisView, error) {
	if visitor == "" {
		return AnalysisView{}, ErrMissingVisitor
	}
	req.URL = strings.TrimSpace(req.URL)
	if err := validator.Apply(validator.RequiredString("url", req.URL)); err != nil {
		return AnalysisView{}, errors.Join(ErrInvalidInput, err)
	}

	s := f.state(visitor)
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return AnalysisView{}, ErrAnalysisBusy
	}
	s.reset()

	access, err := f.gate.EnsureAccess(ctx, visitor)
	if err != nil {
		f.logger.ErrorContext(ctx, "trial session lookup failed", logger.VisitorID(visitor), logger.Error(err))
		s.fail(MsgSessionProblem)
		defer s.mu.Unlock()
		return s.view(), nil
	}
	if access.NeedsEmail {
		s.pending = &req
		defer s.mu.Unlock()
		return s.view(), nil
	}

	s.pending = nil
	s.loading = true
	s.mu.Unlock()

	return f.analyze(ctx, visitor, s, req, access.Session), nil
}

// ProvideEmail redeems a trial for the parked request and, on success,
// runs it with the new token. Failures keep the request parked.
func (f *AnalysisFlow) ProvideEmail(ctx context.Context, visitor, email string) (AnalysisView, error) {
	if visitor == "" {
		return AnalysisView{}, ErrMissingVisitor
	}

	s := f.state(visitor)
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return AnalysisView{}, ErrAnalysisBusy
	}
	if s.pending == nil {
		s.mu.Unlock()
		return AnalysisView{}, ErrNoPendingAnalysis
	}
	req := *s.pending
	s.loading = true
	s.mu.Unlock()

	session, err := f.gate.RedeemTrial(ctx, visitor, email)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.loading = false
		s.fail(trialFailureMessage(err))
		return s.view(), nil
	}

	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()

	return f.analyze(ctx, visitor, s, req, session), nil
}

// analyze runs the protected call. s.loading must already be set.
func (f *AnalysisFlow) analyze(ctx context.Context, visitor string, s *analysisState, req AnalysisRequest, session trial.Session) AnalysisView {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	resp, err := f.client.PostJSON(ctx, f.path, analyzePayload{
		URL:           req.URL,
		EmployeeCount: req.EmployeeCount,
		Email:         session.Email,
	}, transport.WithBearer(session.Token))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	switch {
	case err != nil:
		f.logger.WarnContext(ctx, "analysis request failed", logger.VisitorID(visitor), logger.Error(err))
		s.fail(MsgNetworkError)
	case resp.OK():
		if !json.Valid(resp.Body) {
			s.fail(MsgAnalysisFailed)
			break
		}
		s.succeed(json.RawMessage(resp.Body))
	default:
		var body analyzeError
		_ = resp.Decode(&body)
		msg := body.Message
		if msg == "" {
			msg = body.Error
		}
		if msg == "" {
			msg = MsgAnalysisFailed
		}
		if resp.StatusCode == http.StatusUnauthorized {
			// The stored token was refused; ask for an email next time.
			if err := f.gate.Forget(ctx, visitor); err != nil {
				f.logger.WarnContext(ctx, "failed to drop refused trial session", logger.VisitorID(visitor), logger.Error(err))
			}
		}
		f.logger.InfoContext(ctx, "analysis rejected", logger.VisitorID(visitor), logger.StatusCode(resp.StatusCode))
		s.fail(msg)
	}
	return s.view()
}

func trialFailureMessage(err error) string {
	var rej *trial.ServerRejectedError
	switch {
	case errors.Is(err, trial.ErrInvalidEmail):
		return MsgInvalidEmail
	case errors.As(err, &rej) && rej.Message != "":
		return rej.Message
	case errors.Is(err, trial.ErrNetwork):
		return MsgNetworkError
	default:
		return MsgTrialFailed
	}
}
