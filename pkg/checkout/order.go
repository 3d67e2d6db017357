package checkout

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dmitrymomot/checkoutkit/pkg/paypal"
	"github.com/dmitrymomot/checkoutkit/pkg/transport"
)

// OrderModel creates and captures one-time orders through the checkout backend.
type OrderModel struct {
	client     *transport.Client
	ordersPath string
}

// OrderOption configures an OrderModel.
type OrderOption func(*OrderModel)

// WithOrdersPath overrides the orders endpoint (default "/api/orders").
// Captures go to "<path>/{id}/capture".
func WithOrdersPath(path string) OrderOption {
	return func(m *OrderModel) {
		if path != "" {
			m.ordersPath = path
		}
	}
}

func NewOrderModel(client *transport.Client, opts ...OrderOption) *OrderModel {
	m := &OrderModel{client: client, ordersPath: "/api/orders"}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *OrderModel) Kind() Kind     { return KindOrder }
func (m *OrderModel) Captures() bool { return true }

// Create posts the cart and returns the order id.
func (m *OrderModel) Create(ctx context.Context, req Request) (string, error) {
	cart, ok := req.(Cart)
	if !ok {
		return "", fmt.Errorf("%w: order checkout needs a cart, got %s", ErrInvalidInput, req.Kind())
	}

	resp, err := m.client.PostJSON(ctx, m.ordersPath, cart.wire())
	if err != nil {
		return "", networkError(err)
	}

	var body paypal.OrderResponse
	decodeErr := resp.Decode(&body)

	if decodeErr == nil && resp.OK() && body.ID != "" {
		return body.ID, nil
	}
	if decodeErr == nil {
		if d, ok := body.FirstDetail(); ok {
			return "", &RejectionError{
				Issue:       d.Issue,
				Description: d.Description,
				DebugID:     debugID(body.DebugID, d),
				Message:     withDebugID(d.Issue+" "+d.Description, debugID(body.DebugID, d)),
			}
		}
	}
	if !resp.OK() {
		return "", &RejectionError{Message: backendError(body, resp.Body, decodeErr, "Failed to create order")}
	}
	return "", &MalformedError{Reason: "order id missing", Body: rawBody(resp.Body)}
}

// Complete captures the approved order and classifies the answer. The order
// of checks is significant: a decline wins over any other detail, a detail
// wins over the HTTP status, and a success status still needs a capture or
// authorization record.
func (m *OrderModel) Complete(ctx context.Context, intentID string, a Approval) (Completion, error) {
	path := fmt.Sprintf("%s/%s/capture", m.ordersPath, url.PathEscape(intentID))
	resp, err := m.client.PostJSON(ctx, path, paypal.CaptureRequest{PayerID: a.PayerID})
	if err != nil {
		return Completion{}, networkError(err)
	}

	var body paypal.OrderResponse
	decodeErr := resp.Decode(&body)

	if decodeErr == nil {
		if body.Declined() {
			return Completion{Declined: true}, nil
		}
		if d, ok := body.FirstDetail(); ok {
			return Completion{}, &RejectionError{
				Issue:       d.Issue,
				Description: d.Description,
				DebugID:     debugID(body.DebugID, d),
				Message:     withDebugID(d.Description, debugID(body.DebugID, d)),
			}
		}
	}
	if !resp.OK() {
		return Completion{}, &RejectionError{Message: backendError(body, resp.Body, decodeErr, "Failed to capture payment")}
	}
	if decodeErr != nil || len(body.PurchaseUnits) == 0 {
		return Completion{}, &MalformedError{Reason: "purchase units missing", Body: rawBody(resp.Body)}
	}

	tx, ok := body.Transaction()
	if !ok {
		return Completion{}, &MalformedError{Reason: "capture or authorization record missing", Body: rawBody(resp.Body)}
	}
	return Completion{TransactionID: tx.ID}, nil
}

// debugID prefers the top-level debug_id and falls back to the one PayPal
// nests inside the detail.
func debugID(top string, d paypal.ErrorDetail) string {
	if top != "" {
		return top
	}
	return d.DebugID
}

func withDebugID(text, debugID string) string {
	if debugID == "" {
		return text
	}
	return fmt.Sprintf("%s (%s)", text, debugID)
}

// backendError picks the cause for a non-2xx answer without PayPal details:
// the backend's "error" field, then "message", then the raw body, then fallback.
func backendError(body paypal.OrderResponse, raw []byte, decodeErr error, fallback string) string {
	if decodeErr == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	if s := rawBody(raw); s != "" {
		return s
	}
	return fallback
}
