package storefront_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/checkoutkit/pkg/catalog"
	"github.com/dmitrymomot/checkoutkit/svc/storefront"
)

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newBrowser(t *testing.T, s *stack) *browser {
	t.Helper()

	cat := catalog.Default()
	srv := storefront.NewServer(s.analysis, s.checkout, storefront.Config{},
		storefront.WithCatalogListing(map[string]any{"currency": cat.Currency(), "products": cat.Products(), "plans": cat.Plans()}),
	)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, base: ts.URL, client: &http.Client{Jar: jar}}
}

func (b *browser) do(method, path string, body any) (int, map[string]any) {
	b.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(b.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, b.base+path, reader)
	require.NoError(b.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestServer_AnalysisRoutes(t *testing.T) {
	t.Parallel()

	s := newStack(t)
	b := newBrowser(t, s)

	status, body := b.do(http.MethodPost, "/analysis", map[string]any{"url": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, storefront.MsgInvalidURL, body["message"])

	status, body = b.do(http.MethodPost, "/analysis", map[string]any{"url": "https://a.com", "employee_count": 5})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["needs_email"])

	status, body = b.do(http.MethodPost, "/analysis/email", map[string]any{"email": "a@b.com"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["needs_email"])
	assert.NotNil(t, body["result"])
	assert.Nil(t, body["message"])

	status, body = b.do(http.MethodGet, "/analysis", nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotNil(t, body["result"])

	status, _ = b.do(http.MethodPost, "/analysis/email", map[string]any{"email": "a@b.com"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = b.do(http.MethodPost, "/analysis", map[string]any{"unknown": 1})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_CheckoutRoutes(t *testing.T) {
	t.Parallel()

	s := newStack(t)
	b := newBrowser(t, s)

	status, body := b.do(http.MethodGet, "/checkout/catalog", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "USD", body["currency"])

	status, _ = b.do(http.MethodPost, "/checkout/barter", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = b.do(http.MethodPost, "/checkout/order", map[string]any{
		"cart": []map[string]any{{"id": "premium_subscription", "quantity": 1, "price": "20.00"}},
	})
	require.Equal(t, http.StatusCreated, status)
	attempt, _ := body["attempt_id"].(string)
	require.NotEmpty(t, attempt)
	assert.Equal(t, "idle", body["state"])

	status, _ = b.do(http.MethodPost, "/checkout/order", map[string]any{"cart": []map[string]any{}})
	assert.Equal(t, http.StatusConflict, status)

	status, body = b.do(http.MethodPost, "/checkout/"+attempt+"/intent", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "O1", body["id"])

	status, body = b.do(http.MethodPost, "/checkout/"+attempt+"/approve", map[string]any{"orderID": "O1", "payerID": "P1"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "succeeded", body["state"])
	msg, _ := body["message"].(map[string]any)
	assert.Contains(t, msg["text"], "T1")

	status, _ = b.do(http.MethodPost, "/checkout/"+attempt+"/restart", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = b.do(http.MethodDelete, "/checkout/"+attempt, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = b.do(http.MethodGet, "/checkout/"+attempt, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_InvalidPriceFailsCreate(t *testing.T) {
	t.Parallel()

	s := newStack(t)
	b := newBrowser(t, s)

	status, body := b.do(http.MethodPost, "/checkout/order", map[string]any{
		"cart": []map[string]any{{"id": "premium_subscription", "quantity": 1, "price": "-1"}},
	})
	require.Equal(t, http.StatusCreated, status)
	attempt := body["attempt_id"].(string)

	status, body = b.do(http.MethodPost, "/checkout/"+attempt+"/intent", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "idle", body["state"])
	assert.Empty(t, s.backend.calls("/api/orders"))
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	s := newStack(t)
	b := newBrowser(t, s)

	req, err := http.NewRequest(http.MethodGet, b.base+"/health", nil)
	require.NoError(t, err)
	resp, err := b.client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
