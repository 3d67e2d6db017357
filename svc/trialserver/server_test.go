package trialserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/checkoutkit/pkg/clientip"
	"github.com/dmitrymomot/checkoutkit/pkg/email"
	"github.com/dmitrymomot/checkoutkit/pkg/jwt"
	"github.com/dmitrymomot/checkoutkit/pkg/ratelimiter"
	"github.com/dmitrymomot/checkoutkit/pkg/transport"
	"github.com/dmitrymomot/checkoutkit/svc/trialserver"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, msg email.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func newTokens(t *testing.T) *jwt.Service {
	t.Helper()
	s, err := jwt.New("test-secret", jwt.WithTrialTTL(time.Hour))
	require.NoError(t, err)
	return s
}

func post(t *testing.T, h http.Handler, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	r.Header.Set("Content-Type", "application/json")
	r.RemoteAddr = "192.0.2.1:1234"
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.MatchedBy(func(m email.Message) bool {
		return m.To == "a@b.com" && m.Tag == email.TagTrialWelcome
	})).Return(nil).Once()

	tokens := newTokens(t)
	srv := trialserver.New(tokens, trialserver.WithSender(sender))
	h := srv.Router()

	w, body := post(t, h, "/api/subscribe", "", map[string]string{"email": "  a@b.com "})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	var claims jwt.TrialClaims
	require.NoError(t, tokens.Parse(token, &claims))
	assert.Equal(t, "a@b.com", claims.Email)

	srv.Wait()
	sender.AssertExpectations(t)
}

func TestSubscribe_WelcomeFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(email.ErrFailedToSendEmail).Once()

	srv := trialserver.New(newTokens(t), trialserver.WithSender(sender))
	w, body := post(t, srv.Router(), "/api/subscribe", "", map[string]string{"email": "a@b.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, body["token"])

	srv.Wait()
	sender.AssertExpectations(t)
}

func TestSubscribe_Rejections(t *testing.T) {
	t.Parallel()

	h := trialserver.New(newTokens(t)).Router()

	w, body := post(t, h, "/api/subscribe", "", map[string]string{"email": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, trialserver.MsgEmailRequired, body["error"])

	w, body = post(t, h, "/api/subscribe", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, trialserver.MsgInvalidEmail, body["error"])

	w, body = post(t, h, "/api/subscribe", "", map[string]string{"mail": "a@b.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, trialserver.MsgInvalidBody, body["error"])
}

func TestSubscribe_RateLimited(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	t.Cleanup(store.Close)
	bucket, err := ratelimiter.NewBucket(store, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Hour})
	require.NoError(t, err)

	h := trialserver.New(newTokens(t), trialserver.WithRateLimit(bucket, clientip.New(clientip.WithHeaders()))).Router()

	w, _ := post(t, h, "/api/subscribe", "", map[string]string{"email": "a@b.com"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, body := post(t, h, "/api/subscribe", "", map[string]string{"email": "a@b.com"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, ratelimiter.MsgTooManyRequests, body["error"])
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	tokens := newTokens(t)
	token, _, err := tokens.IssueTrial("owner@b.com")
	require.NoError(t, err)

	var got trialserver.Analysis
	analyzer := trialserver.AnalyzerFunc(func(_ context.Context, job trialserver.Analysis) (json.RawMessage, error) {
		got = job
		return json.RawMessage(`{"industry":"retail"}`), nil
	})
	h := trialserver.New(tokens, trialserver.WithAnalyzer(analyzer)).Router()

	w, body := post(t, h, "/api/analyze", token, map[string]any{"url": "https://a.com", "employee_count": 12, "email": "spoof@b.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "retail", body["industry"])
	assert.Equal(t, "https://a.com", got.URL)
	assert.Equal(t, "owner@b.com", got.Email)
	require.NotNil(t, got.EmployeeCount)
	assert.Equal(t, 12, *got.EmployeeCount)

	w, body = post(t, h, "/api/analyze", token, map[string]any{"url": " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, trialserver.MsgURLRequired, body["error"])
}

func TestAnalyze_Failures(t *testing.T) {
	t.Parallel()

	tokens := newTokens(t)
	token, _, err := tokens.IssueTrial("a@b.com")
	require.NoError(t, err)

	t.Run("no analyzer", func(t *testing.T) {
		t.Parallel()
		w, body := post(t, trialserver.New(tokens).Router(), "/api/analyze", token, map[string]any{"url": "https://a.com"})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, trialserver.MsgAnalyzerUnavailable, body["error"])
	})

	t.Run("analyzer error", func(t *testing.T) {
		t.Parallel()
		analyzer := trialserver.AnalyzerFunc(func(context.Context, trialserver.Analysis) (json.RawMessage, error) {
			return nil, errors.New("boom")
		})
		w, body := post(t, trialserver.New(tokens, trialserver.WithAnalyzer(analyzer)).Router(), "/api/analyze", token, map[string]any{"url": "https://a.com"})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, trialserver.MsgAnalysisFailed, body["error"])
	})

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()
		w, body := post(t, trialserver.New(tokens).Router(), "/api/analyze", "", map[string]any{"url": "https://a.com"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, jwt.MsgTokenMissing, body["message"])
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		old, err := jwt.New("test-secret", jwt.WithTrialTTL(time.Hour), jwt.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }))
		require.NoError(t, err)
		expired, _, err := old.IssueTrial("a@b.com")
		require.NoError(t, err)

		w, body := post(t, trialserver.New(tokens).Router(), "/api/analyze", expired, map[string]any{"url": "https://a.com"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, jwt.MsgTokenExpired, body["message"])
	})
}

func TestHealth(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	trialserver.New(newTokens(t)).Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRemoteAnalyzer(t *testing.T) {
	t.Parallel()

	var received trialserver.Analysis
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/analyze":
			_ = json.NewDecoder(r.Body).Decode(&received)
			_, _ = w.Write([]byte(`{"score": 7}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	t.Cleanup(upstream.Close)

	client, err := transport.New(upstream.URL, transport.WithTimeout(time.Second))
	require.NoError(t, err)

	report, err := trialserver.NewRemoteAnalyzer(client, "").Analyze(context.Background(), trialserver.Analysis{URL: "https://a.com", Email: "a@b.com"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 7}`, string(report))
	assert.Equal(t, "a@b.com", received.Email)

	_, err = trialserver.NewRemoteAnalyzer(client, "/broken").Analyze(context.Background(), trialserver.Analysis{URL: "https://a.com"})
	assert.ErrorIs(t, err, trialserver.ErrAnalyzerRejected)

	dead, err := transport.New("http://127.0.0.1:1", transport.WithTimeout(200*time.Millisecond))
	require.NoError(t, err)
	_, err = trialserver.NewRemoteAnalyzer(dead, "").Analyze(context.Background(), trialserver.Analysis{URL: "https://a.com"})
	assert.ErrorIs(t, err, trialserver.ErrAnalyzerUnavailable)
}
