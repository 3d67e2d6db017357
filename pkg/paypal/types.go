package paypal

import (
	"fmt"
	"strings"
)

// IssueInstrumentDeclined is the detail issue PayPal reports when the payer's
// funding source was refused and another one may be tried.
const IssueInstrumentDeclined = "INSTRUMENT_DECLINED"

// CartItem is one line of a create-order request.
// Quantity and Price travel as strings, the way the checkout backend expects them.
type CartItem struct {
	ID       string `json:"id"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
}

// CreateOrderRequest is the body of POST /api/orders.
type CreateOrderRequest struct {
	Cart []CartItem `json:"cart"`
}

// CaptureRequest is the body of POST /api/orders/{id}/capture.
type CaptureRequest struct {
	PayerID string `json:"payerID"`
}

// SubscriptionNotice is the body of POST /api/paypal/subscription-success.
type SubscriptionNotice struct {
	SubscriptionID string `json:"subscriptionID"`
	PayerID        string `json:"payerID"`
}

// ErrorDetail is one entry of PayPal's structured error "details" array.
type ErrorDetail struct {
	Issue       string `json:"issue"`
	Description string `json:"description"`
	Field       string `json:"field,omitempty"`
	DebugID     string `json:"debug_id,omitempty"`
}

// Amount is a currency value as PayPal encodes it.
type Amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

// Transaction is a capture or authorization record.
type Transaction struct {
	ID     string  `json:"id"`
	Status string  `json:"status,omitempty"`
	Amount *Amount `json:"amount,omitempty"`
}

// Payments groups the money movements of a purchase unit.
type Payments struct {
	Captures       []Transaction `json:"captures,omitempty"`
	Authorizations []Transaction `json:"authorizations,omitempty"`
}

// PurchaseUnit is one unit of an order.
type PurchaseUnit struct {
	ReferenceID string    `json:"reference_id,omitempty"`
	Payments    *Payments `json:"payments,omitempty"`
}

// OrderResponse is the union of every shape the order endpoints return:
// a created order ({id}), a captured order ({purchase_units}), a PayPal error
// ({details, debug_id}), or a backend error ({error}).
type OrderResponse struct {
	ID            string         `json:"id,omitempty"`
	Status        string         `json:"status,omitempty"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units,omitempty"`
	Details       []ErrorDetail  `json:"details,omitempty"`
	DebugID       string         `json:"debug_id,omitempty"`
	Name          string         `json:"name,omitempty"`
	Message       string         `json:"message,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// FirstDetail returns details[0], if any.
func (r *OrderResponse) FirstDetail() (ErrorDetail, bool) {
	if len(r.Details) == 0 {
		return ErrorDetail{}, false
	}
	return r.Details[0], true
}

// Declined reports whether the first detail is INSTRUMENT_DECLINED.
func (r *OrderResponse) Declined() bool {
	d, ok := r.FirstDetail()
	return ok && d.Issue == IssueInstrumentDeclined
}

// Transaction returns the first capture of the first purchase unit, falling
// back to its first authorization.
func (r *OrderResponse) Transaction() (Transaction, bool) {
	if len(r.PurchaseUnits) == 0 || r.PurchaseUnits[0].Payments == nil {
		return Transaction{}, false
	}
	p := r.PurchaseUnits[0].Payments
	if len(p.Captures) > 0 && p.Captures[0].ID != "" {
		return p.Captures[0], true
	}
	if len(p.Authorizations) > 0 && p.Authorizations[0].ID != "" {
		return p.Authorizations[0], true
	}
	return Transaction{}, false
}

// Link is a HATEOAS link from the REST API.
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method,omitempty"`
}

// Subscription is the REST representation of a created subscription.
type Subscription struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	PlanID string `json:"plan_id"`
	Links  []Link `json:"links,omitempty"`
}

// ApproveURL returns the payer approval link, if present.
func (s *Subscription) ApproveURL() string {
	for _, l := range s.Links {
		if l.Rel == "approve" {
			return l.Href
		}
	}
	return ""
}

// APIError is a non-2xx answer from the PayPal REST API.
type APIError struct {
	StatusCode int
	Name       string
	Message    string
	DebugID    string
	Details    []ErrorDetail
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "paypal api error: status %d", e.StatusCode)
	if e.Name != "" {
		b.WriteString(": " + e.Name)
	}
	if len(e.Details) > 0 {
		b.WriteString(": " + e.Details[0].Description)
	} else if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.DebugID != "" {
		b.WriteString(" (" + e.DebugID + ")")
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	return ErrAPI
}
