// Package storefront composes the trial gate, the protected website
// analysis and the PayPal checkout into the flows a browser drives.
//
// AnalysisFlow validates the URL, checks the visitor's trial access and
// either runs the analysis or parks it until the visitor gives an email.
// Its view holds a result or an error message, never both.
//
// CheckoutFlow creates one checkout.Controller per attempt and mounts a
// widget.Button for it on an in-process widget.Registry. The browser's
// PayPal button forwards its create, approve and error callbacks to the
// attempt routes, which dispatch them to the registered hooks.
//
// Server exposes both flows:
//
//	GET    /analysis
//	POST   /analysis                      {"url", "employee_count"}
//	POST   /analysis/email                {"email"}
//	GET    /checkout/catalog
//	POST   /checkout/{kind}               {"cart": [...]} or {"plan_id"}
//	GET    /checkout/{attempt}
//	DELETE /checkout/{attempt}
//	POST   /checkout/{attempt}/intent
//	POST   /checkout/{attempt}/approve    {"intentID", "payerID"}
//	POST   /checkout/{attempt}/error      {"message"}
//	POST   /checkout/{attempt}/restart
//
// Visitors are identified by a cookie set by VisitorMiddleware.
package storefront
