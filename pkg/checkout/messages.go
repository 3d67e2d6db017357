package checkout

// Outcome message texts.
const (
	MsgCreateFailed       = "Could not initiate PayPal Checkout..."
	MsgCaptureFailed      = "Sorry, your payment could not be processed..."
	MsgSubscriptionFailed = "Sorry, your subscription could not be processed..."
	MsgProviderError      = "There was an error processing your subscription. Please try again."
	MsgNotifyFailed       = "There was an error processing your subscription on our server."
	MsgNotifyDeferred     = "Your subscription is active. Our server is temporarily unavailable and will be updated shortly."
	MsgOrderSucceeded     = "Payment successful! Your transaction ID: "
	MsgSubscriptionActive = "Subscription successful! Your subscription ID: "
)

func withCause(prefix, cause string) string {
	if cause == "" {
		return prefix
	}
	return prefix + "\n\n" + cause
}
