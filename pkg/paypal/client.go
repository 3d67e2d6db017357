package paypal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/dmitrymomot/checkoutkit/pkg/logger"
	"github.com/dmitrymomot/checkoutkit/pkg/transport"
)

// Client talks to the PayPal REST API with an OAuth2 client-credentials token.
type Client struct {
	api    *transport.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	httpClient *http.Client
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithHTTPClient sets the base HTTP client used for both token and API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// New creates a Client. The token is fetched lazily on the first call and
// refreshed automatically before it expires.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}

	o := &options{logger: logger.Discard()}
	for _, opt := range opts {
		opt(o)
	}

	base := strings.TrimRight(cfg.APIBaseURL(), "/")
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     base + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	tokenCtx := context.Background()
	if o.httpClient != nil {
		tokenCtx = context.WithValue(tokenCtx, oauth2.HTTPClient, o.httpClient)
	}

	api, err := transport.New(base,
		transport.WithHTTPClient(cc.Client(tokenCtx)),
		transport.WithTimeout(cfg.Timeout),
		transport.WithLogger(o.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("paypal: %w", err)
	}

	return &Client{api: api, logger: o.logger}, nil
}

// CreateSubscription creates a subscription for planID and returns its id.
// The payer still has to approve it through the checkout widget.
func (c *Client) CreateSubscription(ctx context.Context, planID string) (*Subscription, error) {
	if strings.TrimSpace(planID) == "" {
		return nil, ErrMissingPlan
	}

	resp, err := c.api.PostJSON(ctx, "/v1/billing/subscriptions",
		map[string]string{"plan_id": planID},
		transport.WithHeader("PayPal-Request-Id", uuid.NewString()),
		transport.WithHeader("Prefer", "return=representation"),
	)
	if err != nil {
		// token endpoint failures surface here too
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			apiErr := &APIError{Name: rerr.ErrorCode, Message: rerr.ErrorDescription}
			if rerr.Response != nil {
				apiErr.StatusCode = rerr.Response.StatusCode
			}
			return nil, apiErr
		}
		return nil, err
	}

	if !resp.OK() {
		return nil, decodeAPIError(resp)
	}

	var sub Subscription
	if err := resp.Decode(&sub); err != nil {
		return nil, errors.Join(ErrUnexpectedResponse, err)
	}
	if sub.ID == "" {
		return nil, fmt.Errorf("%w: subscription id missing", ErrUnexpectedResponse)
	}

	c.logger.InfoContext(ctx, "subscription created",
		logger.IntentID(sub.ID),
		slog.String("plan_id", planID),
		slog.String("status", sub.Status),
	)
	return &sub, nil
}

func decodeAPIError(resp *transport.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Name    string        `json:"name"`
		Message string        `json:"message"`
		DebugID string        `json:"debug_id"`
		Details []ErrorDetail `json:"details"`
	}
	if err := resp.Decode(&body); err != nil {
		apiErr.Message = string(resp.Body)
		return apiErr
	}
	apiErr.Name = body.Name
	apiErr.Message = body.Message
	apiErr.DebugID = body.DebugID
	apiErr.Details = body.Details
	return apiErr
}
