// Package paypal holds the PayPal wire format shared by the checkout flows
// and a small REST client for creating subscriptions.
//
// The order types mirror what the checkout backend relays from PayPal: a
// created order carries an id, a captured order carries purchase units with
// capture or authorization records, and a rejected call carries a details
// array plus a debug id. OrderResponse exposes helpers for the decisions the
// checkout controller makes on top of that shape.
//
// Client authenticates with golang.org/x/oauth2/clientcredentials; tokens are
// cached and refreshed by the oauth2 transport.
//
//	pp, err := paypal.New(paypal.Config{ClientID: id, ClientSecret: secret})
//	sub, err := pp.CreateSubscription(ctx, "P-123")
package paypal
