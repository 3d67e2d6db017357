// Package catalog lists the products and subscription plans the storefront
// is allowed to sell. Checkout requests naming anything else are rejected
// before reaching the payment provider.
//
// The catalog is a YAML file; a built-in one is embedded for local runs.
//
//	currency: USD
//	products:
//	  - id: premium_subscription
//	    price: "20.00"
//	plans:
//	  - id: P-2N006366A368920S8NBE64JY
package catalog
