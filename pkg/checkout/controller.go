package checkout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/checkoutkit/pkg/logger"
	"github.com/dmitrymomot/checkoutkit/pkg/notify"
	"github.com/dmitrymomot/checkoutkit/pkg/outcome"
	"github.com/dmitrymomot/checkoutkit/pkg/statemachine"
)

// Controller drives one checkout attempt through its lifecycle.
//
// The checkout widget calls Create, Approve and OnProviderError at times it
// controls. Each call is accepted only in the states the transition table
// allows; anything else returns ErrOutOfOrder and leaves the state as is.
// Network calls run outside the machine lock, so a provider error can fail
// the attempt while a create or capture is in flight.
type Controller struct {
	id              string
	model           Model
	catalog         Catalog
	logger          *slog.Logger
	followUpTimeout time.Duration
	fsm             *machine

	mu      sync.RWMutex
	intent  *Intent
	message *outcome.Message
	warning *outcome.Message
	err     error

	followUps sync.WaitGroup
}

// NewController creates a controller in StateIdle.
func NewController(model Model, opts ...Option) *Controller {
	c := &Controller{
		id:              uuid.NewString(),
		model:           model,
		logger:          logger.Discard(),
		followUpTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(
		logger.Component("checkout"),
		logger.AttemptID(c.id),
		logger.IntentKind(string(model.Kind())),
	)
	c.fsm = newMachine(c.logger)
	return c
}

// ID returns the attempt id.
func (c *Controller) ID() string { return c.id }

// Kind returns the commercial model of the attempt.
func (c *Controller) Kind() Kind { return c.model.Kind() }

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.fsm.Current() }

// Intent returns a copy of the current intent, or nil when none exists.
func (c *Controller) Intent() *Intent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.intent == nil {
		return nil
	}
	cp := *c.intent
	return &cp
}

// Outcome returns the primary message, or nil while the attempt is undecided.
func (c *Controller) Outcome() *outcome.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.message
}

// Warning returns the secondary message set when a post-success follow-up failed.
func (c *Controller) Warning() *outcome.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.warning
}

// Err returns the error that failed the attempt, if any.
func (c *Controller) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Wait blocks until background follow-ups have finished.
func (c *Controller) Wait() {
	c.followUps.Wait()
}

// Create validates req, creates the provider intent and returns its id for
// the widget. Invalid input fails before any network call and leaves the
// controller Idle; other failures move it to Failed.
func (c *Controller) Create(ctx context.Context, req Request) (string, error) {
	if !c.fsm.CanFire(ctx, EventCreate, nil) {
		return "", c.outOfOrder(ctx, EventCreate)
	}

	c.setMessages(nil, nil, nil)

	if req == nil || req.Kind() != c.model.Kind() {
		err := errors.Join(ErrInvalidInput, errors.New("request does not match the checkout kind"))
		c.setMessages(outcome.Error(withCause(MsgCreateFailed, Cause(err))), nil, err)
		return "", err
	}
	if err := req.Validate(c.catalog); err != nil {
		c.logger.InfoContext(ctx, "checkout request rejected", logger.Error(err))
		c.setMessages(outcome.Error(withCause(MsgCreateFailed, Cause(err))), nil, err)
		return "", err
	}

	if err := c.fsm.Fire(ctx, EventCreate, nil); err != nil {
		return "", c.outOfOrder(ctx, EventCreate)
	}

	id, err := c.model.Create(ctx, req)
	if err != nil {
		c.fail(ctx, MsgCreateFailed, err)
		return "", err
	}

	if err := c.fsm.Fire(ctx, EventCreated, nil); err != nil {
		c.logger.WarnContext(ctx, "intent created after attempt was interrupted", logger.IntentID(id))
		return "", ErrInterrupted
	}

	c.mu.Lock()
	c.intent = &Intent{ID: id, Kind: c.model.Kind(), Status: IntentCreated}
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "intent created", logger.IntentID(id))
	return id, nil
}

// Approve finishes an intent the payer approved in the widget. For orders it
// captures the payment; for subscriptions approval is itself the success.
// A declined instrument moves the attempt to Declined and returns nil.
func (c *Controller) Approve(ctx context.Context, a Approval) error {
	next := EventApproved
	if c.model.Captures() {
		next = EventApprove
	}
	if !c.fsm.CanFire(ctx, next, nil) {
		return c.outOfOrder(ctx, EventApprove)
	}

	intent := c.Intent()
	expected := ""
	if intent != nil {
		expected = intent.ID
	}
	if err := a.validate(expected); err != nil {
		c.logger.WarnContext(ctx, "approval payload rejected", logger.Error(err))
		c.setMessages(outcome.Error(withCause(c.approveFailedMsg(), Cause(err))), nil, err)
		return err
	}

	if c.model.Captures() {
		if err := c.fsm.Fire(ctx, EventApprove, nil); err != nil {
			return c.outOfOrder(ctx, EventApprove)
		}
		c.setIntentStatus(IntentApproved, "")
	}

	done, err := c.model.Complete(ctx, a.IntentID, a)
	if err != nil {
		c.fail(ctx, c.approveFailedMsg(), err)
		return err
	}

	if done.Declined {
		if err := c.fsm.Fire(ctx, EventDeclined, nil); err != nil {
			return ErrInterrupted
		}
		c.setIntentStatus(IntentDeclined, "")
		c.logger.InfoContext(ctx, "payment instrument declined", logger.IntentID(a.IntentID))
		return nil
	}

	event := EventApproved
	if c.model.Captures() {
		event = EventCaptured
	}
	if err := c.fsm.Fire(ctx, event, nil); err != nil {
		if c.State() == StateSucceeded {
			// A concurrent approval of the same intent won.
			return c.outOfOrder(ctx, EventApprove)
		}
		c.logger.WarnContext(ctx, "completion arrived after attempt was interrupted", logger.IntentID(a.IntentID))
		return ErrInterrupted
	}

	c.setIntentStatus(IntentCaptured, done.TransactionID)
	c.setMessages(outcome.Success(c.successMsg()+done.TransactionID), nil, nil)
	c.logger.InfoContext(ctx, "checkout succeeded",
		logger.IntentID(a.IntentID),
		slog.String("transaction_id", done.TransactionID),
	)

	if done.FollowUp != nil {
		c.runFollowUp(ctx, done.FollowUp)
	}
	return nil
}

// Restart returns a Declined attempt to Idle and discards its intent, so a
// new Create can start from a clean slate.
func (c *Controller) Restart(ctx context.Context) error {
	if err := c.fsm.Fire(ctx, EventRestart, nil); err != nil {
		return c.outOfOrder(ctx, EventRestart)
	}
	c.mu.Lock()
	c.intent = nil
	c.message = nil
	c.warning = nil
	c.err = nil
	c.mu.Unlock()
	return nil
}

// OnProviderError records a failure reported by the widget itself. It moves
// any non-terminal state to Failed; in a terminal state it is logged and ignored.
func (c *Controller) OnProviderError(ctx context.Context, cause error) {
	if err := c.fsm.Fire(ctx, EventProviderError, nil); err != nil {
		c.logger.WarnContext(ctx, "provider error after attempt finished",
			slog.String("state", string(c.State())),
			logger.Error(cause),
		)
		return
	}

	err := ErrProviderError
	if cause != nil {
		err = errors.Join(ErrProviderError, cause)
	}
	c.logger.ErrorContext(ctx, "checkout provider error", logger.Error(err))

	c.mu.Lock()
	if c.intent != nil {
		c.intent.Status = IntentFailed
	}
	c.message = outcome.Error(MsgProviderError)
	c.err = err
	c.mu.Unlock()
}

func (c *Controller) fail(ctx context.Context, prefix string, err error) {
	if fireErr := c.fsm.Fire(ctx, EventFail, nil); fireErr != nil {
		// a provider error already failed the attempt
		return
	}
	c.logger.WarnContext(ctx, "checkout failed", logger.Error(err))

	c.mu.Lock()
	if c.intent != nil {
		c.intent.Status = IntentFailed
	}
	c.message = outcome.Error(withCause(prefix, Cause(err)))
	c.err = err
	c.mu.Unlock()
}

func (c *Controller) runFollowUp(ctx context.Context, fn func(context.Context) error) {
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.followUpTimeout)
	c.followUps.Add(1)
	go func() {
		defer c.followUps.Done()
		defer cancel()
		err := fn(fctx)
		if err == nil {
			return
		}
		warning := MsgNotifyFailed
		if notify.IsCircuitOpen(err) {
			c.logger.WarnContext(fctx, "post-success notification deferred", logger.Error(err))
			warning = MsgNotifyDeferred
		} else {
			c.logger.ErrorContext(fctx, "post-success notification failed", logger.Error(err))
		}
		c.mu.Lock()
		c.warning = outcome.Warning(warning)
		c.mu.Unlock()
	}()
}

func (c *Controller) outOfOrder(ctx context.Context, event Event) error {
	state := c.State()
	c.logger.WarnContext(ctx, "checkout call out of order",
		slog.String("state", string(state)),
		slog.String("event", string(event)),
	)
	return errors.Join(ErrOutOfOrder, statemachine.NewTransitionError(string(state), string(event), false))
}

func (c *Controller) setMessages(msg, warning *outcome.Message, err error) {
	c.mu.Lock()
	c.message = msg
	c.warning = warning
	c.err = err
	c.mu.Unlock()
}

func (c *Controller) setIntentStatus(status IntentStatus, txID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.intent == nil {
		return
	}
	c.intent.Status = status
	if txID != "" {
		c.intent.TransactionID = txID
	}
}

func (c *Controller) approveFailedMsg() string {
	if c.model.Kind() == KindSubscription {
		return MsgSubscriptionFailed
	}
	return MsgCaptureFailed
}

func (c *Controller) successMsg() string {
	if c.model.Kind() == KindSubscription {
		return MsgSubscriptionActive
	}
	return MsgOrderSucceeded
}
