package checkout

import (
	"context"
	"errors"

	"github.com/dmitrymomot/checkoutkit/pkg/sanitizer"
	"github.com/dmitrymomot/checkoutkit/pkg/transport"
)

// maxCauseLen bounds raw response bodies quoted in outcome messages.
const maxCauseLen = 300

// Model is the commercial-model half of the lifecycle: how an intent is
// created and what finishing an approved intent means. The Controller owns
// the state machine and calls into a Model at the suspension points.
type Model interface {
	Kind() Kind
	// Captures reports whether approval is followed by a capture call.
	Captures() bool
	// Create creates the provider-side intent and returns its id.
	Create(ctx context.Context, req Request) (string, error)
	// Complete finishes an approved intent.
	Complete(ctx context.Context, intentID string, a Approval) (Completion, error)
}

// Completion is the result of Model.Complete.
type Completion struct {
	// TransactionID identifies the capture, authorization or subscription.
	TransactionID string
	// Declined is set when the payer's instrument was refused and the attempt may restart.
	Declined bool
	// FollowUp, if set, runs after success without blocking it. Its failure
	// becomes a secondary warning.
	FollowUp func(ctx context.Context) error
}

func networkError(err error) error {
	if transport.IsNetwork(err) {
		return errors.Join(ErrNetwork, err)
	}
	return err
}

func rawBody(body []byte) string {
	return sanitizer.LogSafe(string(body), maxCauseLen)
}
