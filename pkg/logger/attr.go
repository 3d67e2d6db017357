package logger

import (
	"log/slog"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// AttemptID records a checkout or analysis attempt identifier.
func AttemptID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("attempt_id", id)
}

// VisitorID records the anonymous visitor identifier.
func VisitorID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("visitor_id", id)
}

// IntentID records the provider-side intent (order or subscription) identifier.
func IntentID(id string) slog.Attr {
	return slog.String("intent_id", id)
}

// IntentKind records whether the intent is a one-time order or a subscription.
func IntentKind(kind string) slog.Attr {
	return slog.String("intent_kind", kind)
}

// Transition groups a state change under the key "transition".
func Transition(from, to, event string) slog.Attr {
	return slog.Group("transition",
		slog.String("from", from),
		slog.String("to", to),
		slog.String("event", event),
	)
}

// StatusCode records an HTTP status code.
func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

// RetryCount records the retry count under the key "retry_count".
func RetryCount(count int) slog.Attr {
	return slog.Int("retry_count", count)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}
