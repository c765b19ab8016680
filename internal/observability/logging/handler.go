package logging

import (
	"context"
	"io"
	"log/slog"
)

// HandlerConfig configures the process-wide slog handler.
type HandlerConfig struct {
	Environment   Environment
	Service       ServiceInfo
	DefaultModule Module
	GCPProjectID  string
	Level         slog.Leveler
}

// NewHandler builds the slog handler: text output in dev, JSON elsewhere,
// both enriched with request ID, module and platform trace attributes taken
// from the record's context.
func NewHandler(w io.Writer, cfg HandlerConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var inner slog.Handler
	if cfg.Environment == EnvDev {
		inner = slog.NewTextHandler(w, opts)
	} else {
		inner = slog.NewJSONHandler(w, opts)
	}

	if cfg.Service.Name != "" {
		attrs := []slog.Attr{
			slog.String("service", cfg.Service.Name),
			slog.String("version", cfg.Service.Version),
		}
		if cfg.Service.Revision != "" {
			attrs = append(attrs, slog.String("revision", cfg.Service.Revision))
		}
		inner = inner.WithAttrs(attrs)
	}

	return &contextHandler{
		inner:         inner,
		defaultModule: cfg.DefaultModule,
		projectID:     cfg.GCPProjectID,
	}
}

type contextHandler struct {
	inner         slog.Handler
	defaultModule Module
	projectID     string
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, record slog.Record) error {
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		record.AddAttrs(slog.String("request_id", requestID))
	}

	module := ModuleFromContext(ctx)
	if module == "" {
		module = h.defaultModule
	}
	if module != "" {
		record.AddAttrs(slog.String("module", string(module)))
	}

	record.AddAttrs(gcpTraceAttrs(ctx, h.projectID)...)

	return h.inner.Handle(ctx, record)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{
		inner:         h.inner.WithAttrs(attrs),
		defaultModule: h.defaultModule,
		projectID:     h.projectID,
	}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{
		inner:         h.inner.WithGroup(name),
		defaultModule: h.defaultModule,
		projectID:     h.projectID,
	}
}
