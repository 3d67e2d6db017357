package widget_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/widget"
)

type stubModel struct {
	kind checkout.Kind
}

func (m stubModel) Kind() checkout.Kind { return m.kind }
func (m stubModel) Captures() bool      { return m.kind == checkout.KindOrder }

func (m stubModel) Create(context.Context, checkout.Request) (string, error) {
	return "INTENT-1", nil
}

func (m stubModel) Complete(_ context.Context, id string, _ checkout.Approval) (checkout.Completion, error) {
	return checkout.Completion{TransactionID: "TX-" + id}, nil
}

type failingDriver struct {
	loadErr   error
	renderErr error
}

func (d failingDriver) Load(context.Context, widget.Script) error { return d.loadErr }

func (d failingDriver) Render(context.Context, string, widget.ButtonStyle, widget.Hooks) (widget.Rendering, error) {
	return nil, d.renderErr
}

func testConfig() widget.Config {
	return widget.Config{
		ClientID:      "client-123",
		SDKURL:        "https://www.paypal.com/sdk/js",
		BuyerCountry:  "US",
		Currency:      "USD",
		Components:    []string{"buttons"},
		EnableFunding: []string{"venmo", "paylater", "card"},
	}
}

func TestConfig_ScriptFor(t *testing.T) {
	t.Parallel()

	t.Run("order", func(t *testing.T) {
		t.Parallel()
		s, err := testConfig().ScriptFor(checkout.KindOrder)
		require.NoError(t, err)
		assert.Equal(t, widget.ScriptID, s.ID)

		u, err := url.Parse(s.URL)
		require.NoError(t, err)
		q := u.Query()
		assert.Equal(t, "client-123", q.Get("client-id"))
		assert.Equal(t, "US", q.Get("buyer-country"))
		assert.Equal(t, "USD", q.Get("currency"))
		assert.Equal(t, "buttons", q.Get("components"))
		assert.Equal(t, "venmo,paylater,card", q.Get("enable-funding"))
		assert.Empty(t, q.Get("intent"))
		assert.Empty(t, q.Get("vault"))
	})

	t.Run("subscription", func(t *testing.T) {
		t.Parallel()
		s, err := testConfig().ScriptFor(checkout.KindSubscription)
		require.NoError(t, err)

		u, err := url.Parse(s.URL)
		require.NoError(t, err)
		assert.Equal(t, "subscription", u.Query().Get("intent"))
		assert.Equal(t, "true", u.Query().Get("vault"))
	})

	t.Run("missing client id", func(t *testing.T) {
		t.Parallel()
		_, err := widget.Config{}.ScriptFor(checkout.KindOrder)
		assert.ErrorIs(t, err, widget.ErrMissingClientID)
	})
}

func TestDefaultStyle(t *testing.T) {
	t.Parallel()

	sub := widget.DefaultStyle(checkout.KindSubscription)
	assert.Equal(t, widget.ButtonStyle{Shape: "rect", Layout: "vertical", Color: "gold", Label: "subscribe"}, sub)
	assert.Equal(t, "paypal", widget.DefaultStyle(checkout.KindOrder).Label)
}

func TestButton_MountDispatchesToController(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := widget.NewRegistry()
	ctrl := checkout.NewController(stubModel{kind: checkout.KindOrder})
	btn := widget.NewButton(reg, testConfig(), ctrl, checkout.Cart{Items: []checkout.Item{{ID: "p", Quantity: 1, Price: "20.00"}}})

	release, err := btn.Mount(ctx, "attempt-1")
	require.NoError(t, err)
	t.Cleanup(release)

	script, ok := reg.Script(widget.ScriptID)
	require.True(t, ok)
	assert.Contains(t, script.URL, "client-id=client-123")

	hooks, err := reg.Hooks("attempt-1")
	require.NoError(t, err)

	id, err := hooks.CreateIntent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INTENT-1", id)
	assert.Equal(t, checkout.StateAwaitingApproval, ctrl.State())

	require.NoError(t, hooks.Approve(ctx, checkout.Approval{IntentID: id, PayerID: "PAYER"}))
	assert.Equal(t, checkout.StateSucceeded, ctrl.State())
	assert.Contains(t, ctrl.Outcome().Text, "TX-INTENT-1")
}

func TestButton_ReleaseClearsMount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := widget.NewRegistry()
	ctrl := checkout.NewController(stubModel{kind: checkout.KindSubscription})
	btn := widget.NewButton(reg, testConfig(), ctrl, checkout.Plan{ID: "P-1"})

	release, err := btn.Mount(ctx, "attempt-2")
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())

	style, ok := reg.Style("attempt-2")
	require.True(t, ok)
	assert.Equal(t, "subscribe", style.Label)

	release()
	release()

	_, err = reg.Hooks("attempt-2")
	assert.ErrorIs(t, err, widget.ErrNotMounted)
	assert.Zero(t, reg.Len())
}

func TestButton_MountFailuresFailTheAttempt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		driver  widget.Driver
		config  widget.Config
		wantErr error
	}{
		{
			name:    "script load",
			driver:  failingDriver{loadErr: errors.New("blocked by extension")},
			config:  testConfig(),
			wantErr: widget.ErrScriptLoad,
		},
		{
			name:    "render",
			driver:  failingDriver{renderErr: errors.New("container missing")},
			config:  testConfig(),
			wantErr: widget.ErrRender,
		},
		{
			name:    "missing client id",
			driver:  widget.NewRegistry(),
			config:  widget.Config{},
			wantErr: widget.ErrMissingClientID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := checkout.NewController(stubModel{kind: checkout.KindOrder})
			btn := widget.NewButton(tt.driver, tt.config, ctrl, checkout.Cart{})

			release, err := btn.Mount(context.Background(), "attempt")
			require.NotNil(t, release)
			release()

			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, checkout.StateFailed, ctrl.State())
			assert.ErrorIs(t, ctrl.Err(), checkout.ErrProviderError)
			assert.True(t, ctrl.Outcome().IsError())
		})
	}
}

func TestButton_EmptyMount(t *testing.T) {
	t.Parallel()

	ctrl := checkout.NewController(stubModel{kind: checkout.KindOrder})
	btn := widget.NewButton(widget.NewRegistry(), testConfig(), ctrl, checkout.Cart{})

	_, err := btn.Mount(context.Background(), "")
	assert.ErrorIs(t, err, widget.ErrEmptyMount)
	assert.Equal(t, checkout.StateIdle, ctrl.State())
}

func TestButton_ErrorHookFailsAttempt(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctrl := checkout.NewController(stubModel{kind: checkout.KindOrder})
	btn := widget.NewButton(widget.NewRegistry(), testConfig(), ctrl, checkout.Cart{})

	btn.Hooks().Error(ctx, errors.New("popup closed unexpectedly"))
	assert.Equal(t, checkout.StateFailed, ctrl.State())
}
