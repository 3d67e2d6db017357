package checkout_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/notify"
	"github.com/dmitrymomot/checkoutkit/pkg/outcome"
	"github.com/dmitrymomot/checkoutkit/pkg/paypal"
	"github.com/dmitrymomot/checkoutkit/pkg/transport"
)

var premiumCart = checkout.Cart{Items: []checkout.Item{{ID: "premium_subscription", Quantity: 1, Price: "20.00"}}}

func TestController_OrderSucceeds(t *testing.T) {
	t.Parallel()

	backend, client := newFakeBackend(t)
	backend.set(http.StatusOK, `{"id":"O1"}`,
		http.StatusOK, `{"purchase_units":[{"payments":{"captures":[{"id":"T1"}]}}]}`)

	ctrl := checkout.NewController(checkout.NewOrderModel(client))
	ctx := context.Background()

	id, err := ctrl.Create(ctx, premiumCart)
	require.NoError(t, err)
	assert.Equal(t, "O1", id)
	assert.Equal(t, checkout.StateAwaitingApproval, ctrl.State())
	assert.Equal(t, checkout.IntentCreated, ctrl.Intent().Status)
	assert.Nil(t, ctrl.Outcome())

	require.NoError(t, ctrl.Approve(ctx, checkout.Approval{IntentID: "O1", PayerID: "P1"}))
	assert.Equal(t, checkout.StateSucceeded, ctrl.State())

	msg := ctrl.Outcome()
	require.NotNil(t, msg)
	assert.Equal(t, outcome.KindSuccess, msg.Kind)
	assert.Contains(t, msg.Text, "T1")

	intent := ctrl.Intent()
	assert.Equal(t, checkout.IntentCaptured, intent.Status)
	assert.Equal(t, "T1", intent.TransactionID)

	assert.Equal(t, []string{"/api/orders", "/api/orders/O1/capture"}, backend.Calls())
	assert.Equal(t, "P1", backend.Payload(1)["payerID"])

	cart := backend.Payload(0)["cart"].([]any)[0].(map[string]any)
	assert.Equal(t, "20.00", cart["price"])
	assert.Equal(t, "1", cart["quantity"])
}

func TestController_CreateRejected(t *testing.T) {
	t.Parallel()

	backend, client := newFakeBackend(t)
	backend.set(http.StatusUnprocessableEntity, `{"details":[{"issue":"X","description":"bad thing"}],"debug_id":"D1"}`, 0, "")

	ctrl := checkout.NewController(checkout.NewOrderModel(client))

	_, err := ctrl.Create(context.Background(), premiumCart)
	require.ErrorIs(t, err, checkout.ErrServerRejected)

	var rej *checkout.RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "X", rej.Issue)
	assert.Equal(t, "D1", rej.DebugID)

	assert.Equal(t, checkout.StateFailed, ctrl.State())
	msg := ctrl.Outcome()
	require.NotNil(t, msg)
	assert.True(t, msg.IsError())
	assert.Contains(t, msg.Text, checkout.MsgCreateFailed)
	assert.Contains(t, msg.Text, "bad thing")
	assert.Contains(t, msg.Text, "D1")
	assert.ErrorIs(t, ctrl.Err(), checkout.ErrServerRejected)
}

func TestController_CreateRejectedNestedDebugID(t *testing.T) {
	t.Parallel()

	backend, client := newFakeBackend(t)
	backend.set(http.StatusUnprocessableEntity, `{"details":[{"issue":"X","description":"bad thing","debug_id":"D1"}]}`, 0, "")

	ctrl := checkout.NewController(checkout.NewOrderModel(client))

	_, err := ctrl.Create(context.Background(), premiumCart)
	require.ErrorIs(t, err, checkout.ErrServerRejected)

	var rej *checkout.RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "D1", rej.DebugID)

	assert.Equal(t, checkout.StateFailed, ctrl.State())
	msg := ctrl.Outcome()
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, checkout.MsgCreateFailed)
	assert.Contains(t, msg.Text, "bad thing")
	assert.Contains(t, msg.Text, "D1")
}

func TestController_CaptureRejectedNestedDebugID(t *testing.T) {
	t.Parallel()

	backend, client := newFakeBackend(t)
	backend.set(http.StatusOK, `{"id":"O1"}`,
		http.StatusUnprocessableEntity, `{"details":[{"issue":"ORDER_NOT_APPROVED","description":"bad","debug_id":"D9"}]}`)

	ctrl := checkout.NewController(checkout.NewOrderModel(client))
	ctx := context.Background()

	_, err := ctrl.Create(ctx, premiumCart)
	require.NoError(t, err)

	err = ctrl.Approve(ctx, checkout.Approval{IntentID: "O1", PayerID: "P1"})
	require.ErrorIs(t, err, checkout.ErrServerRejected)

	assert.Equal(t, checkout.StateFailed, ctrl.State())
	msg := ctrl.Outcome()
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, checkout.MsgCaptureFailed)
	assert.Contains(t, msg.Text, "bad (D9)")
}

func TestController_InvalidPriceMakesNoCall(t *testing.T) {
	t.Parallel()

	prices := []string{"0", "0.00", "-5", "abc", "", "NaN", "1e2"}
	for _, price := range prices {
		t.Run(price, func(t *testing.T) {
			t.Parallel()

			backend, client := newFakeBackend(t)
			ctrl := checkout.NewController(checkout.NewOrderModel(client))

			_, err := ctrl.Create(context.Background(), checkout.Cart{Items: []checkout.Item{{ID: "p", Quantity: 1, Price: price}}})
			require.ErrorIs(t, err, checkout.ErrInvalidInput)
			assert.Empty(t, backend.Calls())
			assert.Equal(t, checkout.StateIdle, ctrl.State())
			assert.True(t, ctrl.Outcome().IsError())
		})
	}
}

func TestController_UnknownProduct(t *testing.T) {
	t.Parallel()

	backend, client := newFakeBackend(t)
	ctrl := checkout.NewController(checkout.NewOrderModel(client),
		checkout.WithCatalog(staticCatalog{products: map[string]bool{"premium_subscription": true}}),
	)

	_, err := ctrl.Create(context.Background(), checkout.Cart{Items: []checkout.Item{{ID: "other", Quantity: 1, Price: "5.00"}}})
	require.ErrorIs(t, err, checkout.ErrInvalidInput)
	assert.Contains(t, err.Error(), "unknown product")
	assert.Empty(t, backend.Calls())

	backend.set(http.StatusOK, `{"id":"O2"}`, 0, "")
	id, err := ctrl.Create(context.Background(), premiumCart)
	require.NoError(t, err)
	assert.Equal(t, "O2", id)
	assert.Nil(t, ctrl.Outcome(), "a new attempt clears the previous message")
}

func TestController_WrongRequestKind(t *testing.T) {
	t.Parallel()

	backend, client := newFakeBackend(t)
	ctrl := checkout.NewController(checkout.NewOrderModel(client))

	_, err := ctrl.Create(context.Background(), checkout.Plan{ID: "P-1"})
	require.ErrorIs(t, err, checkout.ErrInvalidInput)
	assert.Equal(t, checkout.StateIdle, ctrl.State())
	assert.Empty(t, backend.Calls())
}

func TestController_DeclineAndRestart(t *testing.T) {
	t.Parallel()

	backend, client := newFakeBackend(t)
	backend.set(http.StatusOK, `{"id":"O1"}`,
		http.StatusUnprocessableEntity, `{"details":[{"issue":"INSTRUMENT_DECLINED","description":"declined"}],"debug_id":"D5"}`)

	ctrl := checkout.NewController(checkout.NewOrderModel(client))
	ctx := context.Background()

	_, err := ctrl.Create(ctx, premiumCart)
	require.NoError(t, err)

	require.NoError(t, ctrl.Approve(ctx, checkout.Approval{IntentID: "O1", PayerID: "P1"}))
	assert.Equal(t, checkout.StateDeclined, ctrl.State())
	assert.Nil(t, ctrl.Outcome(), "decline is not surfaced as an error message")
	assert.NoError(t, ctrl.Err())
	assert.Equal(t, checkout.IntentDeclined, ctrl.Intent().Status)

	require.NoError(t, ctrl.Restart(ctx))
	assert.Equal(t, checkout.StateIdle, ctrl.State())
	assert.Nil(t, ctrl.Intent())

	backend.set(http.StatusOK, `{"id":"O2"}`,
		http.StatusOK, `{"purchase_units":[{"payments":{"authorizations":[{"id":"A2"}]}}]}`)

	id, err := ctrl.Create(ctx, checkout.Cart{Items: []checkout.Item{{ID: "premium_subscription", Quantity: 2, Price: "15.50"}}})
	require.NoError(t, err)
	assert.Equal(t, "O2", id)
	assert.Equal(t, checkout.IntentCreated, ctrl.Intent().Status)

	require.NoError(t, ctrl.Approve(ctx, checkout.Approval{IntentID: "O2", PayerID: "P1"}))
	assert.Equal(t, checkout.StateSucceeded, ctrl.State())
	assert.Contains(t, ctrl.Outcome().Text, "A2")
}

func TestController_CaptureFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  error
		contains []string
	}{
		{
			name:     "structured detail",
			status:   http.StatusUnprocessableEntity,
			body:     `{"details":[{"issue":"ORDER_NOT_APPROVED","description":"payer has not approved"}],"debug_id":"D7"}`,
			wantErr:  checkout.ErrServerRejected,
			contains: []string{"payer has not approved (D7)"},
		},
		{
			name:     "backend error field",
			status:   http.StatusInternalServerError,
			body:     `{"error":"Failed to capture order."}`,
			wantErr:  checkout.ErrServerRejected,
			contains: []string{"Failed to capture order."},
		},
		{
			name:     "no purchase units",
			status:   http.StatusOK,
			body:     `{"id":"O1","status":"COMPLETED"}`,
			wantErr:  checkout.ErrMalformedResponse,
			contains: []string{`"status":"COMPLETED"`},
		},
		{
			name:     "no capture or authorization",
			status:   http.StatusOK,
			body:     `{"purchase_units":[{"payments":{}}]}`,
			wantErr:  checkout.ErrMalformedResponse,
			contains: []string{"purchase_units"},
		},
		{
			name:     "not json",
			status:   http.StatusOK,
			body:     `<html>oops</html>`,
			wantErr:  checkout.ErrMalformedResponse,
			contains: []string{"<html>oops</html>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backend, client := newFakeBackend(t)
			backend.set(http.StatusOK, `{"id":"O1"}`, tt.status, tt.body)

			ctrl := checkout.NewController(checkout.NewOrderModel(client))
			ctx := context.Background()
			_, err := ctrl.Create(ctx, premiumCart)
			require.NoError(t, err)

			err = ctrl.Approve(ctx, checkout.Approval{IntentID: "O1", PayerID: "P1"})
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, checkout.StateFailed, ctrl.State())
			assert.Equal(t, checkout.IntentFailed, ctrl.Intent().Status)

			msg := ctrl.Outcome()
			require.NotNil(t, msg)
			assert.True(t, msg.IsError())
			assert.Contains(t, msg.Text, checkout.MsgCaptureFailed)
			for _, s := range tt.contains {
				assert.Contains(t, msg.Text, s)
			}
		})
	}
}

func TestController_InvalidApproval(t *testing.T) {
	t.Parallel()

	backend, client := newFakeBackend(t)
	backend.set(http.StatusOK, `{"id":"O1"}`, http.StatusOK, `{"purchase_units":[{"payments":{"captures":[{"id":"T1"}]}}]}`)

	ctrl := checkout.NewController(checkout.NewOrderModel(client))
	ctx := context.Background()
	_, err := ctrl.Create(ctx, premiumCart)
	require.NoError(t, err)

	for _, a := range []checkout.Approval{
		{IntentID: "O1"},
		{PayerID: "P1"},
		{IntentID: "O9", PayerID: "P1"},
	} {
		err := ctrl.Approve(ctx, a)
		require.ErrorIs(t, err, checkout.ErrInvalidApprovalPayload)
		assert.Equal(t, checkout.StateAwaitingApproval, ctrl.State())
	}
	assert.Len(t, backend.Calls(), 1, "no capture call for invalid payloads")
	assert.True(t, ctrl.Outcome().IsError())

	require.NoError(t, ctrl.Approve(ctx, checkout.Approval{IntentID: "O1", PayerID: "P1"}))
	assert.Equal(t, checkout.StateSucceeded, ctrl.State())
}

func TestController_OutOfOrder(t *testing.T) {
	t.Parallel()

	backend, client := newFakeBackend(t)
	ctrl := checkout.NewController(checkout.NewOrderModel(client))
	ctx := context.Background()

	err := ctrl.Approve(ctx, checkout.Approval{IntentID: "O1", PayerID: "P1"})
	require.ErrorIs(t, err, checkout.ErrOutOfOrder)
	require.ErrorIs(t, err, checkout.ErrProviderError)
	assert.Equal(t, checkout.StateIdle, ctrl.State())

	require.ErrorIs(t, ctrl.Restart(ctx), checkout.ErrOutOfOrder)

	backend.set(http.StatusOK, `{"id":"O1"}`, 0, "")
	_, err = ctrl.Create(ctx, premiumCart)
	require.NoError(t, err)

	_, err = ctrl.Create(ctx, premiumCart)
	require.ErrorIs(t, err, checkout.ErrOutOfOrder)
	assert.Equal(t, checkout.StateAwaitingApproval, ctrl.State())
	assert.Len(t, backend.Calls(), 1)
}

func TestController_ProviderError(t *testing.T) {
	t.Parallel()

	t.Run("from awaiting approval", func(t *testing.T) {
		t.Parallel()

		backend, client := newFakeBackend(t)
		backend.set(http.StatusOK, `{"id":"O1"}`, 0, "")
		ctrl := checkout.NewController(checkout.NewOrderModel(client))

		_, err := ctrl.Create(context.Background(), premiumCart)
		require.NoError(t, err)

		ctrl.OnProviderError(context.Background(), errors.New("popup closed"))
		assert.Equal(t, checkout.StateFailed, ctrl.State())
		assert.Equal(t, checkout.MsgProviderError, ctrl.Outcome().Text)
		assert.ErrorIs(t, ctrl.Err(), checkout.ErrProviderError)

		err = ctrl.Approve(context.Background(), checkout.Approval{IntentID: "O1", PayerID: "P1"})
		require.ErrorIs(t, err, checkout.ErrOutOfOrder)
	})

	t.Run("from idle and declined", func(t *testing.T) {
		t.Parallel()

		_, client := newFakeBackend(t)
		ctrl := checkout.NewController(checkout.NewOrderModel(client))
		ctrl.OnProviderError(context.Background(), errors.New("script failed to load"))
		assert.Equal(t, checkout.StateFailed, ctrl.State())
	})

	t.Run("ignored after success", func(t *testing.T) {
		t.Parallel()

		backend, client := newFakeBackend(t)
		backend.set(http.StatusOK, `{"id":"O1"}`, http.StatusOK, `{"purchase_units":[{"payments":{"captures":[{"id":"T1"}]}}]}`)
		ctrl := checkout.NewController(checkout.NewOrderModel(client))
		ctx := context.Background()

		_, err := ctrl.Create(ctx, premiumCart)
		require.NoError(t, err)
		require.NoError(t, ctrl.Approve(ctx, checkout.Approval{IntentID: "O1", PayerID: "P1"}))

		ctrl.OnProviderError(ctx, errors.New("late"))
		assert.Equal(t, checkout.StateSucceeded, ctrl.State())
		assert.Equal(t, outcome.KindSuccess, ctrl.Outcome().Kind)
	})
}

func TestController_NetworkFailure(t *testing.T) {
	t.Parallel()

	_, client := newFakeBackend(t)
	ctrl := checkout.NewController(checkout.NewOrderModel(client, checkout.WithOrdersPath("http://127.0.0.1:1/api/orders")))

	_, err := ctrl.Create(context.Background(), premiumCart)
	require.ErrorIs(t, err, checkout.ErrNetwork)
	assert.Equal(t, checkout.StateFailed, ctrl.State())
	assert.Contains(t, ctrl.Outcome().Text, "could not be reached")
}

func TestController_Subscription(t *testing.T) {
	t.Parallel()

	t.Run("success with notification", func(t *testing.T) {
		t.Parallel()

		creator := &mockCreator{}
		creator.On("CreateSubscription", mock.Anything, "P-1").Return(&paypal.Subscription{ID: "S1"}, nil)
		notifier := &mockNotifier{}
		notifier.On("Send", mock.Anything, "/api/paypal/subscription-success",
			paypal.SubscriptionNotice{SubscriptionID: "S1", PayerID: "PY1"}).Return(nil)

		ctrl := checkout.NewController(
			checkout.NewSubscriptionModel(creator, checkout.WithNotifier(notifier)),
			checkout.WithCatalog(staticCatalog{plans: map[string]bool{"P-1": true}}),
		)
		ctx := context.Background()

		id, err := ctrl.Create(ctx, checkout.Plan{ID: "P-1"})
		require.NoError(t, err)
		assert.Equal(t, "S1", id)

		require.NoError(t, ctrl.Approve(ctx, checkout.Approval{IntentID: "S1", PayerID: "PY1"}))
		assert.Equal(t, checkout.StateSucceeded, ctrl.State())
		assert.Contains(t, ctrl.Outcome().Text, "S1")

		ctrl.Wait()
		assert.Nil(t, ctrl.Warning())
		creator.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("notification failure degrades to warning", func(t *testing.T) {
		t.Parallel()

		creator := &mockCreator{}
		creator.On("CreateSubscription", mock.Anything, "P-1").Return(&paypal.Subscription{ID: "S1"}, nil)
		notifier := &mockNotifier{}
		notifier.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("backend down"))

		ctrl := checkout.NewController(checkout.NewSubscriptionModel(creator, checkout.WithNotifier(notifier)))
		ctx := context.Background()

		_, err := ctrl.Create(ctx, checkout.Plan{ID: "P-1"})
		require.NoError(t, err)
		require.NoError(t, ctrl.Approve(ctx, checkout.Approval{IntentID: "S1", PayerID: "PY1"}))

		ctrl.Wait()
		assert.Equal(t, checkout.StateSucceeded, ctrl.State())
		assert.Equal(t, outcome.KindSuccess, ctrl.Outcome().Kind)

		warning := ctrl.Warning()
		require.NotNil(t, warning)
		assert.Equal(t, outcome.KindWarning, warning.Kind)
		assert.Equal(t, checkout.MsgNotifyFailed, warning.Text)
	})

	t.Run("open breaker degrades to a deferred warning", func(t *testing.T) {
		t.Parallel()

		creator := &mockCreator{}
		creator.On("CreateSubscription", mock.Anything, "P-1").Return(&paypal.Subscription{ID: "S1"}, nil)
		notifier := &mockNotifier{}
		notifier.On("Send", mock.Anything, mock.Anything, mock.Anything).
			Return(&notify.CircuitOpenError{RetryAfter: time.Minute})

		ctrl := checkout.NewController(checkout.NewSubscriptionModel(creator, checkout.WithNotifier(notifier)))
		ctx := context.Background()

		_, err := ctrl.Create(ctx, checkout.Plan{ID: "P-1"})
		require.NoError(t, err)
		require.NoError(t, ctrl.Approve(ctx, checkout.Approval{IntentID: "S1", PayerID: "PY1"}))

		ctrl.Wait()
		assert.Equal(t, checkout.StateSucceeded, ctrl.State())
		warning := ctrl.Warning()
		require.NotNil(t, warning)
		assert.Equal(t, outcome.KindWarning, warning.Kind)
		assert.Equal(t, checkout.MsgNotifyDeferred, warning.Text)
	})

	t.Run("unknown plan", func(t *testing.T) {
		t.Parallel()

		creator := &mockCreator{}
		ctrl := checkout.NewController(checkout.NewSubscriptionModel(creator),
			checkout.WithCatalog(staticCatalog{plans: map[string]bool{"P-1": true}}),
		)

		_, err := ctrl.Create(context.Background(), checkout.Plan{ID: "P-404"})
		require.ErrorIs(t, err, checkout.ErrInvalidInput)
		creator.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything)
	})

	t.Run("provider rejection", func(t *testing.T) {
		t.Parallel()

		creator := &mockCreator{}
		creator.On("CreateSubscription", mock.Anything, "P-1").Return(nil, &paypal.APIError{
			StatusCode: 422,
			DebugID:    "D4",
			Details:    []paypal.ErrorDetail{{Issue: "PLAN_INACTIVE", Description: "plan is not active"}},
		})

		ctrl := checkout.NewController(checkout.NewSubscriptionModel(creator))
		_, err := ctrl.Create(context.Background(), checkout.Plan{ID: "P-1"})
		require.ErrorIs(t, err, checkout.ErrServerRejected)
		assert.Equal(t, checkout.StateFailed, ctrl.State())
		assert.Contains(t, ctrl.Outcome().Text, "PLAN_INACTIVE plan is not active (D4)")
	})

	t.Run("approval without payer", func(t *testing.T) {
		t.Parallel()

		creator := &mockCreator{}
		creator.On("CreateSubscription", mock.Anything, "P-1").Return(&paypal.Subscription{ID: "S1"}, nil)

		ctrl := checkout.NewController(checkout.NewSubscriptionModel(creator))
		_, err := ctrl.Create(context.Background(), checkout.Plan{ID: "P-1"})
		require.NoError(t, err)

		err = ctrl.Approve(context.Background(), checkout.Approval{IntentID: "S1"})
		require.ErrorIs(t, err, checkout.ErrInvalidApprovalPayload)
		assert.Equal(t, checkout.StateAwaitingApproval, ctrl.State())
		assert.Contains(t, ctrl.Outcome().Text, checkout.MsgSubscriptionFailed)
	})
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	k, err := checkout.ParseKind(" Order ")
	require.NoError(t, err)
	assert.Equal(t, checkout.KindOrder, k)

	k, err = checkout.ParseKind("subscription")
	require.NoError(t, err)
	assert.Equal(t, checkout.KindSubscription, k)

	_, err = checkout.ParseKind("gift")
	require.ErrorIs(t, err, checkout.ErrInvalidInput)
}

func TestState_Terminal(t *testing.T) {
	t.Parallel()

	assert.True(t, checkout.StateSucceeded.Terminal())
	assert.True(t, checkout.StateFailed.Terminal())
	assert.False(t, checkout.StateDeclined.Terminal())
	assert.False(t, checkout.StateIdle.Terminal())
}

func TestController_ProviderErrorDuringCreate(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		_, _ = w.Write([]byte(`{"id":"O1"}`))
	}))
	t.Cleanup(server.Close)

	client, err := transport.New(server.URL)
	require.NoError(t, err)
	ctrl := checkout.NewController(checkout.NewOrderModel(client))

	errCh := make(chan error, 1)
	go func() {
		_, err := ctrl.Create(context.Background(), premiumCart)
		errCh <- err
	}()

	<-entered
	assert.Equal(t, checkout.StateCreating, ctrl.State())
	ctrl.OnProviderError(context.Background(), errors.New("widget torn down"))
	close(release)

	require.ErrorIs(t, <-errCh, checkout.ErrInterrupted)
	assert.Equal(t, checkout.StateFailed, ctrl.State())
	assert.Equal(t, checkout.MsgProviderError, ctrl.Outcome().Text)
	assert.Nil(t, ctrl.Intent())
}

// gatedModel holds Complete until release is closed.
type gatedModel struct {
	checkout.Model
	entered chan struct{}
	release chan struct{}
}

func (m *gatedModel) Complete(ctx context.Context, intentID string, a checkout.Approval) (checkout.Completion, error) {
	m.entered <- struct{}{}
	<-m.release
	return m.Model.Complete(ctx, intentID, a)
}

func TestController_SubscriptionRacingApprove(t *testing.T) {
	t.Parallel()

	creator := &mockCreator{}
	creator.On("CreateSubscription", mock.Anything, "P-1").Return(&paypal.Subscription{ID: "S1"}, nil)
	model := &gatedModel{
		Model:   checkout.NewSubscriptionModel(creator),
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	ctrl := checkout.NewController(model)
	ctx := context.Background()

	_, err := ctrl.Create(ctx, checkout.Plan{ID: "P-1"})
	require.NoError(t, err)

	errCh := make(chan error, 2)
	for range 2 {
		go func() {
			errCh <- ctrl.Approve(ctx, checkout.Approval{IntentID: "S1", PayerID: "PY1"})
		}()
	}
	<-model.entered
	<-model.entered
	close(model.release)

	errs := []error{<-errCh, <-errCh}
	var succeeded, outOfOrder int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, checkout.ErrOutOfOrder):
			outOfOrder++
		}
		assert.NotErrorIs(t, err, checkout.ErrInterrupted)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, outOfOrder)
	assert.Equal(t, checkout.StateSucceeded, ctrl.State())
	assert.Contains(t, ctrl.Outcome().Text, "S1")
}
