// Package trialserver is the backend half of the free trial: it issues
// signed trial tokens, sends the welcome email and runs website analyses for
// holders of a valid token.
//
// Routes:
//
//	GET  /api/health     {"status":"ok"}
//	POST /api/subscribe  {"email": "..."} -> {"token": "..."}
//	POST /api/analyze    Bearer token; {"url": "...", "employee_count": 5} -> report
//
// Failures answer with {"error": "..."}; token rejections come from
// jwt.Middleware as 401 {"message": "..."}. The welcome email is sent in the
// background and never fails the subscribe call.
package trialserver
