package trialserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/checkoutkit/pkg/transport"
)

// Analysis is a single website analysis job.
type Analysis struct {
	URL           string `json:"url"`
	EmployeeCount *int   `json:"employee_count,omitempty"`
	Email         string `json:"email"`
}

// Analyzer produces the analysis report returned to the visitor as-is.
type Analyzer interface {
	Analyze(ctx context.Context, job Analysis) (json.RawMessage, error)
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(ctx context.Context, job Analysis) (json.RawMessage, error)

// Analyze implements Analyzer.
func (f AnalyzerFunc) Analyze(ctx context.Context, job Analysis) (json.RawMessage, error) {
	return f(ctx, job)
}

// RemoteAnalyzer forwards jobs to an analysis service over HTTP.
type RemoteAnalyzer struct {
	client *transport.Client
	path   string
}

// NewRemoteAnalyzer posts jobs to path on client's base URL.
func NewRemoteAnalyzer(client *transport.Client, path string) *RemoteAnalyzer {
	if path == "" {
		path = "/analyze"
	}
	return &RemoteAnalyzer{client: client, path: path}
}

// Analyze implements Analyzer.
func (a *RemoteAnalyzer) Analyze(ctx context.Context, job Analysis) (json.RawMessage, error) {
	resp, err := a.client.PostJSON(ctx, a.path, job)
	if err != nil {
		if transport.IsNetwork(err) {
			return nil, errors.Join(ErrAnalyzerUnavailable, err)
		}
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: status %d", ErrAnalyzerRejected, resp.StatusCode)
	}
	body := json.RawMessage(strings.TrimSpace(string(resp.Body)))
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: malformed report", ErrAnalyzerRejected)
	}
	return body, nil
}
