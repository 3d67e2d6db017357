package widget

import (
	"net/url"
	"strings"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
)

// ScriptID is the element id the SDK script is registered under.
// Mounting again replaces the existing registration.
const ScriptID = "paypal-sdk"

// Config holds the query parameters of the PayPal JS SDK script.
type Config struct {
	ClientID      string   `env:"PAYPAL_CLIENT_ID"`
	SDKURL        string   `env:"PAYPAL_SDK_URL" envDefault:"https://www.paypal.com/sdk/js"`
	BuyerCountry  string   `env:"PAYPAL_BUYER_COUNTRY" envDefault:"US"`
	Currency      string   `env:"PAYPAL_CURRENCY" envDefault:"USD"`
	Components    []string `env:"PAYPAL_COMPONENTS" envDefault:"buttons" envSeparator:","`
	EnableFunding []string `env:"PAYPAL_ENABLE_FUNDING" envDefault:"venmo,paylater,card" envSeparator:","`
}

// Script is a script registration handed to a Driver.
type Script struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ScriptFor builds the SDK script registration for the given checkout kind.
// Subscriptions add vault=true and intent=subscription.
func (c Config) ScriptFor(kind checkout.Kind) (Script, error) {
	if strings.TrimSpace(c.ClientID) == "" {
		return Script{}, ErrMissingClientID
	}

	base := c.SDKURL
	if base == "" {
		base = "https://www.paypal.com/sdk/js"
	}

	q := url.Values{}
	q.Set("client-id", c.ClientID)
	if c.BuyerCountry != "" {
		q.Set("buyer-country", c.BuyerCountry)
	}
	if c.Currency != "" {
		q.Set("currency", c.Currency)
	}
	components := c.Components
	if len(components) == 0 {
		components = []string{"buttons"}
	}
	q.Set("components", strings.Join(components, ","))
	if len(c.EnableFunding) > 0 {
		q.Set("enable-funding", strings.Join(c.EnableFunding, ","))
	}
	if kind == checkout.KindSubscription {
		q.Set("vault", "true")
		q.Set("intent", "subscription")
	}

	return Script{ID: ScriptID, URL: base + "?" + q.Encode()}, nil
}

// ButtonStyle is the look of the rendered button.
type ButtonStyle struct {
	Shape  string `json:"shape"`
	Layout string `json:"layout"`
	Color  string `json:"color"`
	Label  string `json:"label"`
}

// DefaultStyle returns a gold vertical button labelled for the checkout kind.
func DefaultStyle(kind checkout.Kind) ButtonStyle {
	label := "paypal"
	if kind == checkout.KindSubscription {
		label = "subscribe"
	}
	return ButtonStyle{
		Shape:  "rect",
		Layout: "vertical",
		Color:  "gold",
		Label:  label,
	}
}
