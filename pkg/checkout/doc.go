// Package checkout implements the payment lifecycle controller.
//
// A Controller moves one attempt through
//
//	Idle -> Creating -> AwaitingApproval -> Capturing -> Succeeded | Declined | Failed
//
// on behalf of an external checkout widget that calls Create, Approve and
// OnProviderError. Declined is recoverable through Restart, which returns the
// attempt to Idle with its intent cleared. Succeeded and Failed are terminal.
// A provider error fails the attempt from any non-terminal state.
//
// The commercial model is pluggable. OrderModel creates an order through the
// backend and captures it after approval, classifying the capture answer as
// declined, rejected, malformed or successful. SubscriptionModel creates a
// plan-based subscription; approval is itself the success, followed by a
// best-effort backend notification whose failure only sets a Warning.
//
// Every failure is turned into a single outcome.Message:
//
//	ctrl := checkout.NewController(checkout.NewOrderModel(client))
//	id, err := ctrl.Create(ctx, checkout.Cart{Items: items})
//	// ... the payer approves in the widget ...
//	err = ctrl.Approve(ctx, checkout.Approval{IntentID: id, PayerID: payer})
//	msg := ctrl.Outcome()
//
// Errors match the taxonomy sentinels: ErrInvalidInput,
// ErrInvalidApprovalPayload, ErrNetwork, ErrServerRejected,
// ErrMalformedResponse and ErrProviderError.
package checkout
