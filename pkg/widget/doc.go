// Package widget adapts the PayPal JS SDK button to a checkout.Controller.
//
// A Button builds the SDK script registration from Config, asks a Driver
// to load it and render the button, and wires the uniform Hooks (create,
// approve, error) to the controller. Orders and subscriptions share the
// code path; only the script parameters and the button label differ.
//
// Mount returns a release function that must run on every exit path:
//
//	release, err := btn.Mount(ctx, attemptID)
//	defer release()
//
// Registry is an in-process Driver. It keeps rendered hooks by mount
// point in an LRU cache so an HTTP handler can forward the browser
// widget's callbacks. Evicted or replaced renderings are released.
package widget
