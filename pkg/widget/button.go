package widget

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/logger"
)

// Button binds one checkout attempt to the provider widget. The same code
// path serves orders and subscriptions; the controller's model decides
// what create and approve mean.
type Button struct {
	driver     Driver
	config     Config
	controller *checkout.Controller
	request    checkout.Request
	style      ButtonStyle
	logger     *slog.Logger
}

// NewButton creates a button that creates intents from req.
func NewButton(driver Driver, cfg Config, ctrl *checkout.Controller, req checkout.Request, opts ...ButtonOption) *Button {
	b := &Button{
		driver:     driver,
		config:     cfg,
		controller: ctrl,
		request:    req,
		style:      DefaultStyle(ctrl.Kind()),
		logger:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With(logger.Component("widget"), logger.AttemptID(ctrl.ID()))
	return b
}

// Hooks returns the callbacks delegating to the controller.
func (b *Button) Hooks() Hooks {
	return Hooks{
		CreateIntent: func(ctx context.Context) (string, error) {
			return b.controller.Create(ctx, b.request)
		},
		Approve: func(ctx context.Context, a checkout.Approval) error {
			return b.controller.Approve(ctx, a)
		},
		Error: func(ctx context.Context, err error) {
			b.controller.OnProviderError(ctx, err)
		},
	}
}

// Mount loads the SDK script and renders the button at mount. The returned
// release function tears the rendering down and is safe to call on every
// exit path, including after Mount failed. A load or render failure is
// also reported to the controller as a provider error.
func (b *Button) Mount(ctx context.Context, mount string) (func(), error) {
	noop := func() {}
	if mount == "" {
		return noop, ErrEmptyMount
	}

	script, err := b.config.ScriptFor(b.controller.Kind())
	if err != nil {
		err = errors.Join(ErrScriptLoad, err)
		b.controller.OnProviderError(ctx, err)
		return noop, err
	}

	if err := b.driver.Load(ctx, script); err != nil {
		err = errors.Join(ErrScriptLoad, err)
		b.logger.ErrorContext(ctx, "checkout script failed to load", logger.Error(err))
		b.controller.OnProviderError(ctx, err)
		return noop, err
	}

	rendering, err := b.driver.Render(ctx, mount, b.style, b.Hooks())
	if err != nil {
		err = errors.Join(ErrRender, err)
		b.logger.ErrorContext(ctx, "checkout button failed to render", logger.Error(err))
		b.controller.OnProviderError(ctx, err)
		return noop, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := rendering.Close(); err != nil {
				b.logger.Warn("checkout button teardown failed", logger.Error(err))
			}
		})
	}, nil
}
