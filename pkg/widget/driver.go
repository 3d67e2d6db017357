package widget

import (
	"context"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
)

// Hooks are the callbacks a rendered button invokes. They are the same for
// orders and subscriptions.
type Hooks struct {
	// CreateIntent runs when the payer clicks the button. It returns the
	// order or subscription id.
	CreateIntent func(ctx context.Context) (string, error)
	// Approve runs after the payer approved the intent with the provider.
	Approve func(ctx context.Context, a checkout.Approval) error
	// Error reports a failure inside the widget itself.
	Error func(ctx context.Context, err error)
}

// Driver hosts the provider widget: it loads the SDK script and renders
// buttons into mount points.
type Driver interface {
	Load(ctx context.Context, script Script) error
	Render(ctx context.Context, mount string, style ButtonStyle, hooks Hooks) (Rendering, error)
}

// Rendering is a rendered button. Close unregisters its hooks and clears
// the mount point. Close must be safe to call more than once.
type Rendering interface {
	Close() error
}
