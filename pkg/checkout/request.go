package checkout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrymomot/checkoutkit/pkg/paypal"
	"github.com/dmitrymomot/checkoutkit/pkg/validator"
)

// Kind is the commercial model of an intent.
type Kind string

const (
	KindOrder        Kind = "order"
	KindSubscription Kind = "subscription"
)

// ParseKind accepts "order" and "subscription".
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindOrder, KindSubscription:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown checkout kind %q", ErrInvalidInput, s)
	}
}

// Catalog tells which product and plan ids may be sold. *catalog.Catalog satisfies it.
type Catalog interface {
	HasProduct(id string) bool
	HasPlan(id string) bool
}

// Request is what a checkout attempt is created from: a Cart or a Plan.
type Request interface {
	Kind() Kind
	// Validate checks the request locally. A nil catalog skips the known-id check.
	Validate(cat Catalog) error
}

// Item is one cart line. Price is a decimal string such as "20.00".
type Item struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// Cart is a one-time order request.
type Cart struct {
	Items []Item `json:"cart"`
}

func (c Cart) Kind() Kind { return KindOrder }

func (c Cart) Validate(cat Catalog) error {
	rules := []validator.Rule{validator.RequiredSlice("cart", c.Items)}
	for i, it := range c.Items {
		rules = append(rules,
			validator.RequiredString(fmt.Sprintf("cart[%d].id", i), it.ID),
			validator.PositiveInt(fmt.Sprintf("cart[%d].quantity", i), it.Quantity),
			validator.PositiveDecimal(fmt.Sprintf("cart[%d].price", i), it.Price),
		)
	}
	if err := validator.Apply(rules...); err != nil {
		return errors.Join(ErrInvalidInput, err)
	}

	if cat != nil {
		for _, it := range c.Items {
			if !cat.HasProduct(it.ID) {
				return fmt.Errorf("%w: unknown product %q", ErrInvalidInput, it.ID)
			}
		}
	}
	return nil
}

func (c Cart) wire() paypal.CreateOrderRequest {
	items := make([]paypal.CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, paypal.CartItem{
			ID:       it.ID,
			Quantity: strconv.Itoa(it.Quantity),
			Price:    strings.TrimSpace(it.Price),
		})
	}
	return paypal.CreateOrderRequest{Cart: items}
}

// Plan is a recurring subscription request.
type Plan struct {
	ID string `json:"plan_id"`
}

func (p Plan) Kind() Kind { return KindSubscription }

func (p Plan) Validate(cat Catalog) error {
	if err := validator.Apply(validator.RequiredString("plan_id", p.ID)); err != nil {
		return errors.Join(ErrInvalidInput, err)
	}
	if cat != nil && !cat.HasPlan(p.ID) {
		return fmt.Errorf("%w: unknown plan %q", ErrInvalidInput, p.ID)
	}
	return nil
}

// Approval is the payload the provider passes after the payer approved.
// IntentID is the order id or the subscription id.
type Approval struct {
	IntentID string `json:"intentID"`
	PayerID  string `json:"payerID"`
}

func (a Approval) validate(expected string) error {
	if strings.TrimSpace(a.IntentID) == "" || strings.TrimSpace(a.PayerID) == "" {
		return fmt.Errorf("%w: missing order or payer information", ErrInvalidApprovalPayload)
	}
	if expected != "" && a.IntentID != expected {
		return fmt.Errorf("%w: approval for %q does not match intent %q", ErrInvalidApprovalPayload, a.IntentID, expected)
	}
	return nil
}
