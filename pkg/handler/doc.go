// Package handler wraps typed request handlers for net/http routers.
//
//	type approveRequest struct {
//		Attempt string `path:"attempt"`
//		PayerID string `json:"payerID"`
//	}
//
//	r.Post("/checkout/{attempt}/approve", handler.Wrap(approve,
//		handler.WithBinders(handler.BindJSON(), handler.BindPath(chi.URLParam)),
//	))
//
// Binding failures and nil responses go to the error handler, which renders
// a JSON ErrorBody by default.
package handler
