package storefront

// Messages shown to the visitor by the analysis flow.
const (
	MsgInvalidURL      = "Please enter a valid website URL"
	MsgInvalidEmail    = "Please enter a valid email address"
	MsgAnalysisFailed  = "Failed to analyze website"
	MsgTrialFailed     = "Failed to start trial"
	MsgNetworkError    = "A network error occurred. Please try again."
	MsgSessionProblem  = "We could not load your trial session. Please try again."
)
