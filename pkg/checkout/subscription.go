package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymomot/checkoutkit/pkg/notify"
	"github.com/dmitrymomot/checkoutkit/pkg/paypal"
	"github.com/dmitrymomot/checkoutkit/pkg/transport"
)

// SubscriptionCreator creates a provider-side subscription. *paypal.Client satisfies it.
type SubscriptionCreator interface {
	CreateSubscription(ctx context.Context, planID string) (*paypal.Subscription, error)
}

// Notifier delivers the post-approval notification. *notify.Notifier satisfies it.
type Notifier interface {
	Send(ctx context.Context, path string, data any, opts ...notify.Option) error
}

// SubscriptionModel creates plan-based subscriptions. Approval is the terminal
// success signal; the backend is then told about it on a best-effort basis.
type SubscriptionModel struct {
	creator    SubscriptionCreator
	notifier   Notifier
	notifyPath string
}

// SubscriptionOption configures a SubscriptionModel.
type SubscriptionOption func(*SubscriptionModel)

// WithNotifier enables the subscription-success notification.
func WithNotifier(n Notifier) SubscriptionOption {
	return func(m *SubscriptionModel) {
		m.notifier = n
	}
}

// WithNotifyPath overrides the notification endpoint
// (default "/api/paypal/subscription-success").
func WithNotifyPath(path string) SubscriptionOption {
	return func(m *SubscriptionModel) {
		if path != "" {
			m.notifyPath = path
		}
	}
}

func NewSubscriptionModel(creator SubscriptionCreator, opts ...SubscriptionOption) *SubscriptionModel {
	m := &SubscriptionModel{creator: creator, notifyPath: "/api/paypal/subscription-success"}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *SubscriptionModel) Kind() Kind     { return KindSubscription }
func (m *SubscriptionModel) Captures() bool { return false }

// Create creates the subscription for the plan and returns its id.
func (m *SubscriptionModel) Create(ctx context.Context, req Request) (string, error) {
	plan, ok := req.(Plan)
	if !ok {
		return "", fmt.Errorf("%w: subscription checkout needs a plan, got %s", ErrInvalidInput, req.Kind())
	}

	sub, err := m.creator.CreateSubscription(ctx, plan.ID)
	if err != nil {
		return "", subscriptionError(err)
	}
	return sub.ID, nil
}

// Complete accepts the approval as success and schedules the notification.
func (m *SubscriptionModel) Complete(_ context.Context, intentID string, a Approval) (Completion, error) {
	c := Completion{TransactionID: intentID}
	if m.notifier != nil {
		notice := paypal.SubscriptionNotice{SubscriptionID: intentID, PayerID: a.PayerID}
		c.FollowUp = func(ctx context.Context) error {
			return m.notifier.Send(ctx, m.notifyPath, notice)
		}
	}
	return c, nil
}

func subscriptionError(err error) error {
	var apiErr *paypal.APIError
	switch {
	case errors.As(err, &apiErr):
		rej := &RejectionError{DebugID: apiErr.DebugID, Message: apiErr.Message}
		if len(apiErr.Details) > 0 {
			d := apiErr.Details[0]
			rej.Issue = d.Issue
			rej.Description = d.Description
			rej.DebugID = debugID(apiErr.DebugID, d)
			rej.Message = rej.Issue + " " + rej.Description
		}
		if rej.Message == "" {
			rej.Message = apiErr.Name
		}
		rej.Message = withDebugID(rej.Message, rej.DebugID)
		return rej
	case errors.Is(err, paypal.ErrUnexpectedResponse):
		return &MalformedError{Reason: err.Error()}
	case errors.Is(err, paypal.ErrMissingPlan):
		return errors.Join(ErrInvalidInput, err)
	case transport.IsNetwork(err):
		return errors.Join(ErrNetwork, err)
	default:
		return errors.Join(ErrProviderError, err)
	}
}
