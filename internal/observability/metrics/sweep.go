package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	sweepMeterName = "sweep.service"
)

type SweepMetrics struct {
	subscriptionsEvaluated metric.Int64Counter
	notificationsSent      metric.Int64Counter
	runDuration            metric.Float64Histogram
}

func NewSweepMetrics() (*SweepMetrics, error) {
	meter := otel.Meter(sweepMeterName)

	subscriptionsEvaluated, err := meter.Int64Counter(
		"sweep_subscriptions_evaluated_total",
		metric.WithDescription("Total number of subscriptions evaluated"),
		metric.WithUnit("{subscription}"),
	)
	if err != nil {
		return nil, err
	}

	notificationsSent, err := meter.Int64Counter(
		"sweep_notifications_sent_total",
		metric.WithDescription("Total number of push notifications sent"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"sweep_run_duration_seconds",
		metric.WithDescription("Notification run duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
		),
	)
	if err != nil {
		return nil, err
	}

	return &SweepMetrics{
		subscriptionsEvaluated: subscriptionsEvaluated,
		notificationsSent:      notificationsSent,
		runDuration:            runDuration,
	}, nil
}

func (m *SweepMetrics) RecordSubscriptionEvaluated(ctx context.Context, subscriptionType, outcome string) {
	m.subscriptionsEvaluated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", subscriptionType),
		attribute.String("outcome", outcome),
	))
}

func (m *SweepMetrics) RecordNotificationSent(ctx context.Context, subscriptionType string, late bool) {
	m.notificationsSent.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", subscriptionType),
		attribute.Bool("late", late),
	))
}

func (m *SweepMetrics) RecordRunDuration(ctx context.Context, duration time.Duration) {
	m.runDuration.Record(ctx, duration.Seconds())
}
