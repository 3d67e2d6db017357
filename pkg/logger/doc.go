// Package logger builds *slog.Logger instances with environment presets,
// static attributes and values pulled from context.Context on every record.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "storefront"),
//	    logger.WithContextValue("visitor_id", visitorKey{}),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "intent created",
//	    logger.IntentID(id),
//	    logger.IntentKind("order"),
//	)
//
// Attribute helpers in attr.go keep key names consistent across packages.
// Error returns an empty attribute for a nil error, so it can be passed
// unconditionally. Discard returns a logger used as the default by packages
// that accept an optional logger.
package logger
