package core

import "context"

type contextKey string

const (
	ctxKeyIPAddress contextKey = "reload_ip"
	ctxKeyTrigger   contextKey = "reload_trigger"
)

// Reload triggers recorded in the history.
const (
	TriggerStartup   = "startup"
	TriggerScheduler = "scheduler"
	TriggerAPI       = "api"
	TriggerUpload    = "upload"
	TriggerCLI       = "cli"
)

// ContextWithIPAddress adds the client IP to context for the reload history.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// ContextWithTrigger records what started a reload.
func ContextWithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, ctxKeyTrigger, trigger)
}

// GetIPAddressFromContext extracts the client IP from context.
func GetIPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}

// GetTriggerFromContext extracts the reload trigger, defaulting to "api".
func GetTriggerFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyTrigger).(string); ok && v != "" {
		return v
	}
	return TriggerAPI
}
