package checkout_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/checkoutkit/pkg/notify"
	"github.com/dmitrymomot/checkoutkit/pkg/paypal"
	"github.com/dmitrymomot/checkoutkit/pkg/transport"
)

// fakeBackend serves the order endpoints with canned answers.
type fakeBackend struct {
	mu            sync.Mutex
	createStatus  int
	createBody    string
	captureStatus int
	captureBody   string
	calls         []string
	payloads      []map[string]any
}

func newFakeBackend(t *testing.T) (*fakeBackend, *transport.Client) {
	t.Helper()

	b := &fakeBackend{createStatus: http.StatusOK, captureStatus: http.StatusOK}
	server := httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(server.Close)

	client, err := transport.New(server.URL)
	require.NoError(t, err)
	return b, client
}

func (b *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	_ = json.NewDecoder(r.Body).Decode(&payload)

	b.mu.Lock()
	b.calls = append(b.calls, r.URL.Path)
	b.payloads = append(b.payloads, payload)
	status, body := b.createStatus, b.createBody
	if strings.HasSuffix(r.URL.Path, "/capture") {
		status, body = b.captureStatus, b.captureBody
	}
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (b *fakeBackend) set(createStatus int, createBody string, captureStatus int, captureBody string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.createStatus, b.createBody = createStatus, createBody
	b.captureStatus, b.captureBody = captureStatus, captureBody
}

func (b *fakeBackend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *fakeBackend) Payload(i int) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.payloads[i]
}

type mockCreator struct {
	mock.Mock
}

func (m *mockCreator) CreateSubscription(ctx context.Context, planID string) (*paypal.Subscription, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paypal.Subscription), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, path string, data any, opts ...notify.Option) error {
	args := m.Called(ctx, path, data)
	return args.Error(0)
}

type staticCatalog struct {
	products map[string]bool
	plans    map[string]bool
}

func (c staticCatalog) HasProduct(id string) bool { return c.products[id] }
func (c staticCatalog) HasPlan(id string) bool    { return c.plans[id] }
