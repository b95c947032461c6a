package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records operation counts and durations for the validation and vault
// domains.
type BusinessMetrics interface {
	// RecordOperation records an operation with its outcome.
	// Domains: "validation", "vault". Operations: "form_validate", "vault_encrypt", ...
	// Statuses are outcome words such as "valid", "invalid", "duplicate" or "error".
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records how long an operation took, in seconds, as a histogram.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)
}

// FindingRecorder counts security findings by code and severity. Implementations of
// BusinessMetrics may also implement it; decorators check with a type assertion.
type FindingRecorder interface {
	RecordFinding(ctx context.Context, code, severity string)
}

// businessMetrics implements BusinessMetrics and FindingRecorder using OpenTelemetry.
type businessMetrics struct {
	operationCounter metric.Int64Counter
	durationHisto    metric.Float64Histogram
	findingCounter   metric.Int64Counter
}

// NewBusinessMetrics creates a BusinessMetrics backed by meterProvider. namespace prefixes
// every metric name (e.g., "fieldguard").
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of business operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of business operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	findingCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_security_findings_total", namespace),
		metric.WithDescription("Security findings reported while screening input"),
		metric.WithUnit("{finding}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create finding counter: %w", err)
	}

	return &businessMetrics{
		operationCounter: operationCounter,
		durationHisto:    durationHisto,
		findingCounter:   findingCounter,
	}, nil
}

// RecordOperation increments the operation counter.
func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

// RecordDuration records the operation duration in seconds.
func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

// RecordFinding increments the security finding counter.
func (b *businessMetrics) RecordFinding(ctx context.Context, code, severity string) {
	b.findingCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("code", code),
			attribute.String("severity", severity),
		),
	)
}

// NoOpBusinessMetrics is used when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

// RecordOperation does nothing.
func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

// RecordDuration does nothing.
func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

// RecordFinding does nothing.
func (n *NoOpBusinessMetrics) RecordFinding(ctx context.Context, code, severity string) {}
