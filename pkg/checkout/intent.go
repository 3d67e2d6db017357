package checkout

// IntentStatus tracks the provider-side intent through one attempt.
type IntentStatus string

const (
	IntentCreated  IntentStatus = "created"
	IntentApproved IntentStatus = "approved"
	IntentCaptured IntentStatus = "captured"
	IntentDeclined IntentStatus = "declined"
	IntentFailed   IntentStatus = "failed"
)

// Intent is a snapshot of the current payment intent.
type Intent struct {
	ID     string       `json:"id"`
	Kind   Kind         `json:"kind"`
	Status IntentStatus `json:"status"`
	// TransactionID is the capture, authorization or subscription id once succeeded.
	TransactionID string `json:"transaction_id,omitempty"`
}
