package logging

import (
	"context"

	"github.com/google/uuid"
)

// Environment selects log output formatting.
type Environment string

const (
	EnvDev  Environment = "dev"
	EnvProd Environment = "prod"
)

// Module labels log records with the emitting component.
type Module string

// ServiceInfo identifies the running binary in logs and traces.
type ServiceInfo struct {
	Name     string
	Version  string
	Revision string
}

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	moduleKey    contextKey = "module"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ValidateAndExtractRequestID returns the given ID when it is a valid UUID,
// otherwise a freshly generated one. Inbound headers are untrusted.
func ValidateAndExtractRequestID(requestID string) string {
	if _, err := uuid.Parse(requestID); err != nil {
		return uuid.NewString()
	}
	return requestID
}

func WithModule(ctx context.Context, module Module) context.Context {
	return context.WithValue(ctx, moduleKey, module)
}

func ModuleFromContext(ctx context.Context) Module {
	if m, ok := ctx.Value(moduleKey).(Module); ok {
		return m
	}
	return ""
}
