package storefront_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/notify"
	"github.com/dmitrymomot/checkoutkit/pkg/paypal"
	"github.com/dmitrymomot/checkoutkit/pkg/transport"
	"github.com/dmitrymomot/checkoutkit/pkg/trial"
	"github.com/dmitrymomot/checkoutkit/pkg/widget"
	"github.com/dmitrymomot/checkoutkit/svc/storefront"
)

type reply struct {
	status int
	body   string
}

type request struct {
	path    string
	auth    string
	payload map[string]any
}

// backend fakes the application backend and the trial server.
type backend struct {
	mu       sync.Mutex
	replies  map[string]reply
	requests []request
}

func newBackend(t *testing.T) (*backend, *transport.Client) {
	t.Helper()

	b := &backend{replies: map[string]reply{
		"subscribe": {http.StatusOK, `{"token":"J1"}`},
		"analyze":   {http.StatusOK, `{"industry":"retail","keywords":["shoes"]}`},
		"create":    {http.StatusOK, `{"id":"O1"}`},
		"capture":   {http.StatusOK, `{"purchase_units":[{"payments":{"captures":[{"id":"T1"}]}}]}`},
		"notify":    {http.StatusOK, `{}`},
	}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/subscribe", b.handle("subscribe"))
	mux.HandleFunc("POST /api/analyze", b.handle("analyze"))
	mux.HandleFunc("POST /api/orders", b.handle("create"))
	mux.HandleFunc("POST /api/orders/{id}/capture", b.handle("capture"))
	mux.HandleFunc("POST /api/paypal/subscription-success", b.handle("notify"))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := transport.New(srv.URL, transport.WithTimeout(2*time.Second))
	require.NoError(t, err)
	return b, client
}

func (b *backend) handle(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)

		b.mu.Lock()
		b.requests = append(b.requests, request{path: r.URL.Path, auth: r.Header.Get("Authorization"), payload: payload})
		rep := b.replies[name]
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rep.status)
		_, _ = w.Write([]byte(rep.body))
	}
}

func (b *backend) reply(name string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replies[name] = reply{status, body}
}

func (b *backend) calls(path string) []request {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []request
	for _, r := range b.requests {
		if r.path == path {
			out = append(out, r)
		}
	}
	return out
}

type stubCreator struct{}

func (stubCreator) CreateSubscription(_ context.Context, planID string) (*paypal.Subscription, error) {
	return &paypal.Subscription{ID: "I-SUB1", Status: "APPROVAL_PENDING", PlanID: planID}, nil
}

func widgetConfig() widget.Config {
	return widget.Config{ClientID: "client-123", Currency: "USD", BuyerCountry: "US", Components: []string{"buttons"}}
}

type stack struct {
	backend  *backend
	analysis *storefront.AnalysisFlow
	checkout *storefront.CheckoutFlow
	registry *widget.Registry
}

func newStack(t *testing.T) *stack {
	t.Helper()

	b, client := newBackend(t)
	gate := trial.NewGate(client)
	registry := widget.NewRegistry()
	notifier := notify.New(client, notify.WithNoRetry())

	flow := storefront.NewCheckoutFlow(registry, widgetConfig(),
		storefront.WithModels(
			checkout.NewOrderModel(client),
			checkout.NewSubscriptionModel(stubCreator{}, checkout.WithNotifier(notifier)),
		),
		storefront.WithDefaultPlan("P-DEFAULT"),
	)
	t.Cleanup(func() { _ = flow.Close() })

	return &stack{
		backend:  b,
		analysis: storefront.NewAnalysisFlow(gate, client, storefront.Config{}, nil),
		checkout: flow,
		registry: registry,
	}
}
