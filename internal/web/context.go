package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/mineraly/internal/core"
)

// WithRequestMetadata adds the client IP and the reload trigger to context
// for the reload history.
func WithRequestMetadata(ctx context.Context, r *http.Request, trigger string) context.Context {
	ctx = core.ContextWithIPAddress(ctx, clientIP(r))
	return core.ContextWithTrigger(ctx, trigger)
}

// clientIP returns the request IP without port. RemoteAddr is already
// resolved by the TrustedRealIP middleware.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
