// Package transport is the JSON-over-HTTP client the checkout and trial flows
// use to reach the application backend.
//
// Every call carries Content-Type: application/json and is bounded by a
// per-call timeout (15s unless configured). A call that cannot complete
// returns an error matching ErrNetwork; a call that completes with any status
// returns a *Response, leaving classification of 4xx/5xx bodies to the caller.
//
//	client, err := transport.New("https://shop.example.com", transport.WithTimeout(5*time.Second))
//	resp, err := client.PostJSON(ctx, "/api/orders", payload)
//	if transport.IsNetwork(err) {
//	    // retry or surface a network message
//	}
//	if !resp.OK() {
//	    // inspect resp.Body
//	}
package transport
