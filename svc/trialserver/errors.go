package trialserver

import "errors"

var (
	ErrAnalyzerUnavailable = errors.New("analyzer unavailable")
	ErrAnalyzerRejected    = errors.New("analyzer rejected the request")
)

// Response texts.
const (
	MsgEmailRequired       = "Email is required"
	MsgInvalidEmail        = "Please enter a valid email address"
	MsgURLRequired         = "URL is required"
	MsgAnalyzerUnavailable = "Analysis tool is currently unavailable."
	MsgAnalysisFailed      = "An unexpected error occurred during analysis."
	MsgInvalidBody         = "Invalid request body"
)
