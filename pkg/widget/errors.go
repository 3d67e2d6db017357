package widget

import "errors"

var (
	ErrMissingClientID = errors.New("widget: paypal client id is not configured")
	ErrScriptLoad      = errors.New("widget: failed to load checkout script")
	ErrRender          = errors.New("widget: failed to render checkout button")
	ErrEmptyMount      = errors.New("widget: mount point is empty")
	ErrNotMounted      = errors.New("widget: nothing is rendered at mount point")
)
