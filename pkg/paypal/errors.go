package paypal

import "errors"

var (
	// ErrMissingCredentials is returned when the client id or secret is empty.
	ErrMissingCredentials = errors.New("paypal: client id and secret are required")

	// ErrMissingPlan is returned when a subscription is requested without a plan id.
	ErrMissingPlan = errors.New("paypal: plan id is required")

	// ErrAPI is matched by every *APIError.
	ErrAPI = errors.New("paypal: api request rejected")

	// ErrUnexpectedResponse is returned when a 2xx answer lacks the fields the client needs.
	ErrUnexpectedResponse = errors.New("paypal: unexpected response")
)
