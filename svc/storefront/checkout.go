package storefront

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/checkoutkit/pkg/cache"
	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/logger"
	"github.com/dmitrymomot/checkoutkit/pkg/outcome"
	"github.com/dmitrymomot/checkoutkit/pkg/sanitizer"
	"github.com/dmitrymomot/checkoutkit/pkg/widget"
)

// CheckoutView is what the UI observes for one checkout attempt.
type CheckoutView struct {
	AttemptID string             `json:"attempt_id"`
	Kind      checkout.Kind      `json:"kind"`
	State     checkout.State     `json:"state"`
	Intent    *checkout.Intent   `json:"intent,omitempty"`
	Message   *outcome.Message   `json:"message,omitempty"`
	Warning   *outcome.Message   `json:"warning,omitempty"`
	Script    widget.Script      `json:"script"`
	Style     widget.ButtonStyle `json:"style"`
}

type attempt struct {
	visitor string
	ctrl    *checkout.Controller
	script  widget.Script
	style   widget.ButtonStyle
	release func()
	mounted bool
}

func (a *attempt) view() CheckoutView {
	return CheckoutView{
		AttemptID: a.ctrl.ID(),
		Kind:      a.ctrl.Kind(),
		State:     a.ctrl.State(),
		Intent:    a.ctrl.Intent(),
		Message:   a.ctrl.Outcome(),
		Warning:   a.ctrl.Warning(),
		Script:    a.script,
		Style:     a.style,
	}
}

// CheckoutOption configures a CheckoutFlow.
type CheckoutOption func(*CheckoutFlow)

// WithModels registers the commercial models offered, one per kind.
func WithModels(models ...checkout.Model) CheckoutOption {
	return func(f *CheckoutFlow) {
		for _, m := range models {
			f.models[m.Kind()] = m
		}
	}
}

// WithCatalog restricts checkouts to known products and plans.
func WithCatalog(cat checkout.Catalog) CheckoutOption {
	return func(f *CheckoutFlow) {
		f.catalog = cat
	}
}

// WithDefaultPlan sets the plan used when a subscription request names none.
func WithDefaultPlan(id string) CheckoutOption {
	return func(f *CheckoutFlow) {
		f.defaultPlan = id
	}
}

// WithMaxAttempts bounds how many attempts the flow keeps (default 1024,
// the registry's default capacity). The least recently used attempt is
// released when the bound is reached.
func WithMaxAttempts(n int) CheckoutOption {
	return func(f *CheckoutFlow) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// WithCheckoutLogger sets the flow logger.
func WithCheckoutLogger(l *slog.Logger) CheckoutOption {
	return func(f *CheckoutFlow) {
		if l != nil {
			f.logger = l
		}
	}
}

// CheckoutFlow owns the checkout attempts of all visitors. A visitor has
// one current attempt; a new one may start only after the previous one
// finished or was cancelled.
type CheckoutFlow struct {
	registry    *widget.Registry
	widgetCfg   widget.Config
	models      map[checkout.Kind]checkout.Model
	catalog     checkout.Catalog
	defaultPlan string
	logger      *slog.Logger
	maxAttempts int

	// attempts is only mutated with mu held, so its evict callback runs
	// under mu too.
	mu        sync.Mutex
	attempts  *cache.LRUCache[string, *attempt]
	byVisitor map[string]string
}

// NewCheckoutFlow creates a flow rendering buttons through registry.
func NewCheckoutFlow(registry *widget.Registry, widgetCfg widget.Config, opts ...CheckoutOption) *CheckoutFlow {
	f := &CheckoutFlow{
		registry:  registry,
		widgetCfg: widgetCfg,
		models:      make(map[checkout.Kind]checkout.Model),
		logger:      logger.Discard(),
		maxAttempts: 1024,
		byVisitor:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With(logger.Component("checkout_flow"))
	f.attempts = cache.NewLRUCache[string, *attempt](f.maxAttempts)
	f.attempts.SetEvictCallback(f.forgetLocked)
	return f
}

// Start begins a checkout attempt for req and mounts its button. A mount
// failure is not returned: the attempt is Failed and its view says why.
func (f *CheckoutFlow) Start(ctx context.Context, visitor string, req checkout.Request) (CheckoutView, error) {
	if visitor == "" {
		return CheckoutView{}, ErrMissingVisitor
	}
	if plan, ok := req.(checkout.Plan); ok && strings.TrimSpace(plan.ID) == "" && f.defaultPlan != "" {
		req = checkout.Plan{ID: f.defaultPlan}
	}
	model, ok := f.models[req.Kind()]
	if !ok {
		return CheckoutView{}, ErrUnsupportedKind
	}

	f.mu.Lock()
	if prevID, ok := f.byVisitor[visitor]; ok {
		if prev, ok := f.attempts.Get(prevID); ok && !prev.ctrl.State().Terminal() && !f.staleLocked(prev) {
			f.mu.Unlock()
			return CheckoutView{}, ErrAttemptInProgress
		}
		f.attempts.Remove(prevID)
	}

	id := uuid.NewString()
	log := f.logger.With(logger.VisitorID(visitor))
	ctrl := checkout.NewController(model,
		checkout.WithID(id),
		checkout.WithCatalog(f.catalog),
		checkout.WithLogger(log),
	)
	btn := widget.NewButton(f.registry, f.widgetCfg, ctrl, req, widget.WithLogger(log))
	a := &attempt{visitor: visitor, ctrl: ctrl, style: widget.DefaultStyle(model.Kind()), release: func() {}}
	if script, err := f.widgetCfg.ScriptFor(model.Kind()); err == nil {
		a.script = script
	}
	f.attempts.Put(id, a)
	f.byVisitor[visitor] = id
	f.mu.Unlock()

	release, err := btn.Mount(ctx, id)
	if err != nil {
		f.logger.WarnContext(ctx, "checkout button could not be mounted", logger.AttemptID(id), logger.Error(err))
	}

	f.mu.Lock()
	if cur, ok := f.attempts.Get(id); ok && cur == a {
		a.release = release
		a.mounted = err == nil
		release = nil
	}
	f.mu.Unlock()
	if release != nil {
		// Cancelled while mounting.
		release()
	}
	return a.view(), nil
}

// View returns the visitor's attempt.
func (f *CheckoutFlow) View(visitor, attemptID string) (CheckoutView, error) {
	a, err := f.lookup(visitor, attemptID)
	if err != nil {
		return CheckoutView{}, err
	}
	return a.view(), nil
}

// CreateIntent is the widget's create callback. It returns the provider
// intent id inside the view.
func (f *CheckoutFlow) CreateIntent(ctx context.Context, visitor, attemptID string) (CheckoutView, error) {
	a, hooks, err := f.hooks(visitor, attemptID)
	if err != nil {
		return CheckoutView{}, err
	}
	if _, err := hooks.CreateIntent(ctx); errors.Is(err, checkout.ErrOutOfOrder) {
		return a.view(), err
	}
	return a.view(), nil
}

// Approve is the widget's approve callback.
func (f *CheckoutFlow) Approve(ctx context.Context, visitor, attemptID string, approval checkout.Approval) (CheckoutView, error) {
	a, hooks, err := f.hooks(visitor, attemptID)
	if err != nil {
		return CheckoutView{}, err
	}
	if err := hooks.Approve(ctx, approval); errors.Is(err, checkout.ErrOutOfOrder) {
		return a.view(), err
	}
	return a.view(), nil
}

// ReportError is the widget's error callback. The reported text is only logged.
func (f *CheckoutFlow) ReportError(ctx context.Context, visitor, attemptID, reason string) (CheckoutView, error) {
	a, hooks, err := f.hooks(visitor, attemptID)
	if err != nil {
		return CheckoutView{}, err
	}
	reason = sanitizer.LogSafe(reason, 200)
	if reason == "" {
		reason = "unspecified widget error"
	}
	hooks.Error(ctx, errors.New(reason))
	return a.view(), nil
}

// Restart returns a declined attempt to Idle so the widget can offer
// another payment instrument.
func (f *CheckoutFlow) Restart(ctx context.Context, visitor, attemptID string) (CheckoutView, error) {
	a, err := f.lookup(visitor, attemptID)
	if err != nil {
		return CheckoutView{}, err
	}
	if err := a.ctrl.Restart(ctx); err != nil {
		return a.view(), err
	}
	return a.view(), nil
}

// Cancel tears the attempt down and releases its button.
func (f *CheckoutFlow) Cancel(_ context.Context, visitor, attemptID string) error {
	if _, err := f.lookup(visitor, attemptID); err != nil {
		return err
	}
	f.mu.Lock()
	f.attempts.Remove(attemptID)
	f.mu.Unlock()
	return nil
}

// Close releases every attempt after their background follow-ups finish.
func (f *CheckoutFlow) Close() error {
	f.Wait()
	f.mu.Lock()
	f.attempts.Clear()
	f.mu.Unlock()
	return nil
}

// Wait blocks until the background follow-ups of every attempt finish.
func (f *CheckoutFlow) Wait() {
	f.mu.Lock()
	ctrls := make([]*checkout.Controller, 0, f.attempts.Len())
	for _, id := range f.attempts.Keys() {
		if a, ok := f.attempts.Get(id); ok {
			ctrls = append(ctrls, a.ctrl)
		}
	}
	f.mu.Unlock()
	for _, c := range ctrls {
		c.Wait()
	}
}

// Len returns the number of attempts the flow holds.
func (f *CheckoutFlow) Len() int {
	return f.attempts.Len()
}

func (f *CheckoutFlow) lookup(visitor, attemptID string) (*attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts.Get(attemptID)
	if !ok || a.visitor != visitor {
		return nil, ErrAttemptNotFound
	}
	return a, nil
}

// hooks returns the rendered callbacks of the attempt. An attempt whose
// rendering the registry no longer holds is dropped so the visitor can
// start over.
func (f *CheckoutFlow) hooks(visitor, attemptID string) (*attempt, widget.Hooks, error) {
	a, err := f.lookup(visitor, attemptID)
	if err != nil {
		return nil, widget.Hooks{}, err
	}
	hooks, err := f.registry.Hooks(attemptID)
	if err != nil {
		f.mu.Lock()
		if cur, ok := f.attempts.Get(attemptID); ok && cur == a && a.mounted {
			f.attempts.Remove(attemptID)
		}
		f.mu.Unlock()
		return a, widget.Hooks{}, errors.Join(ErrAttemptReleased, err)
	}
	return a, hooks, nil
}

// staleLocked reports whether a's button was mounted but the registry has
// since evicted it. Caller holds f.mu.
func (f *CheckoutFlow) staleLocked(a *attempt) bool {
	if !a.mounted {
		return false
	}
	_, err := f.registry.Hooks(a.ctrl.ID())
	return err != nil
}

// forgetLocked is the attempts evict callback: it releases the button and
// unbinds the visitor. Caller holds f.mu.
func (f *CheckoutFlow) forgetLocked(id string, a *attempt) {
	a.release()
	if f.byVisitor[a.visitor] == id {
		delete(f.byVisitor, a.visitor)
	}
	f.logger.Debug("checkout attempt released", logger.AttemptID(id), logger.VisitorID(a.visitor))
}
