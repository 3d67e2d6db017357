package storefront

import "errors"

var (
	ErrInvalidInput      = errors.New("storefront: invalid input")
	ErrMissingVisitor    = errors.New("storefront: visitor id is required")
	ErrAnalysisBusy      = errors.New("storefront: an analysis is already running")
	ErrNoPendingAnalysis = errors.New("storefront: no analysis is waiting for an email")
	ErrUnsupportedKind   = errors.New("storefront: checkout kind is not available")
	ErrAttemptInProgress = errors.New("storefront: a checkout attempt is already in progress")
	ErrAttemptNotFound   = errors.New("storefront: checkout attempt not found")
	ErrAttemptReleased   = errors.New("storefront: checkout button is no longer mounted")
)
