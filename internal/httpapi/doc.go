// Package httpapi exposes the catalog over HTTP using gin.
//
// Every route lives under /api/v1 except the health and metrics endpoints.
// Domain errors are translated to status codes in one place (statusFor)
// and every failure body has the shape {"error": ..., "request_id": ...}.
//
// Middleware order:
//
//	request id -> access log -> recovery -> CORS (gin-contrib/cors) -> rate limit -> route auth
//
// Rate limiting counts requests per client IP in redis when a client is
// configured, and in a per-process token bucket otherwise. A redis outage
// lets requests through rather than rejecting them.
package httpapi
