package tracing

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const sweepTracerName = "github.com/sweepdreams/curbside-notifications/internal/service/sweep"

func SweepTracer() trace.Tracer {
	return otel.Tracer(sweepTracerName)
}

// InjectToHTTPRequest propagates the current trace context on an outgoing
// request's headers.
func InjectToHTTPRequest(ctx context.Context, req *http.Request) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
}

func StartRunSpan(ctx context.Context, runID string, windowStart, windowEnd time.Time) (context.Context, trace.Span) {
	return SweepTracer().Start(ctx, "sweep.run",
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.String("window.start", windowStart.Format(time.RFC3339)),
			attribute.String("window.end", windowEnd.Format(time.RFC3339)),
			attribute.Int64("window.minutes", int64(windowEnd.Sub(windowStart).Minutes())),
		),
	)
}

func StartExternalAPISpan(ctx context.Context, operation, url string) (context.Context, trace.Span) {
	return SweepTracer().Start(ctx, "sweep.external_api."+operation,
		trace.WithAttributes(
			attribute.String("url", url),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func StartRedisOperationSpan(ctx context.Context, operation, key string) (context.Context, trace.Span) {
	return SweepTracer().Start(ctx, "sweep.redis."+operation,
		trace.WithAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.operation", operation),
			attribute.String("db.key", key),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func RecordRunResult(span trace.Span, subscriptions, sent, skipped, failed int, err error) {
	span.SetAttributes(
		attribute.Int("run.subscriptions", subscriptions),
		attribute.Int("run.sent_count", sent),
		attribute.Int("run.skipped_count", skipped),
		attribute.Int("run.failed_count", failed),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}
