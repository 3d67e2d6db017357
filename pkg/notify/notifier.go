package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/checkoutkit/pkg/logger"
	"github.com/dmitrymomot/checkoutkit/pkg/sanitizer"
	"github.com/dmitrymomot/checkoutkit/pkg/transport"
)

// IdempotencyHeader carries one key for all attempts of a notification so the
// backend can drop duplicates produced by retries.
const IdempotencyHeader = "Idempotency-Key"

// Notifier posts JSON notifications to the backend with retries, backoff and
// an optional Breaker.
type Notifier struct {
	client   *transport.Client
	defaults []Option
}

// New creates a Notifier on top of client. opts become the defaults for every Send.
func New(client *transport.Client, opts ...Option) *Notifier {
	return &Notifier{client: client, defaults: opts}
}

// Send delivers data to path. 4xx answers other than 408, 425 and 429 are not
// retried. The context bounds the whole delivery including backoff waits.
func (n *Notifier) Send(ctx context.Context, path string, data any, opts ...Option) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return errors.Join(ErrInvalidPayload, err)
	}
	if len(payload) == 0 || string(payload) == "null" {
		return fmt.Errorf("%w: payload cannot be empty", ErrInvalidPayload)
	}

	o := defaultOptions()
	for _, opt := range n.defaults {
		opt(&o)
	}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = logger.Discard()
	}

	if o.breaker == nil {
		return n.deliver(ctx, path, payload, o, log)
	}
	if err := o.breaker.acquire(); err != nil {
		log.WarnContext(ctx, "notification refused by open breaker", slog.String("path", path), logger.Error(err))
		return err
	}
	err = n.deliver(ctx, path, payload, o, log)
	o.breaker.report(err)
	return err
}

// deliver makes the attempts of one Send under a shared idempotency key.
func (n *Notifier) deliver(ctx context.Context, path string, payload []byte, o options, log *slog.Logger) error {
	key := uuid.NewString()
	var lastErr error
	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.backoffStrategy.NextInterval(attempt)):
			}
		}

		result, err := n.attempt(ctx, path, json.RawMessage(payload), key, o.timeout)
		result.Attempt = attempt + 1
		if o.onDelivery != nil {
			o.onDelivery(result)
		}

		if err == nil {
			return nil
		}
		lastErr = err

		log.WarnContext(ctx, "notification attempt failed",
			slog.String("path", path),
			logger.RetryCount(attempt),
			logger.StatusCode(result.StatusCode),
			logger.Error(err),
		)

		if ctx.Err() != nil {
			return errors.Join(ctx.Err(), err)
		}
		if isPermanent(result.StatusCode) {
			return fmt.Errorf("%w: %w", ErrPermanentFailure, err)
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrDeliveryFailed, o.maxRetries+1, lastErr)
}

func (n *Notifier) attempt(ctx context.Context, path string, payload json.RawMessage, key string, timeout time.Duration) (DeliveryResult, error) {
	start := time.Now()
	result := DeliveryResult{}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := n.client.PostJSON(reqCtx, path, payload, transport.WithHeader(IdempotencyHeader, key))
	result.Duration = time.Since(start)

	if err != nil {
		result.Error = err
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) || errors.Is(err, transport.ErrTimeout) {
			return result, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return result, fmt.Errorf("%w: %w", ErrTemporaryFailure, err)
	}

	result.StatusCode = resp.StatusCode
	result.Success = resp.OK()
	if !result.Success {
		msg := fmt.Sprintf("backend returned status %d", resp.StatusCode)
		if len(resp.Body) > 0 {
			msg += ": " + sanitizer.LogSafe(string(resp.Body), 200)
		}
		result.Error = errors.New(msg)
		return result, result.Error
	}

	return result, nil
}

// isPermanent reports 4xx codes that will not change on retry.
func isPermanent(statusCode int) bool {
	if statusCode < 400 || statusCode >= 500 {
		return false
	}
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return false
	default:
		return true
	}
}
