package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "graphql-datalayer"

// PlannerMetrics holds custom metrics for the mutation planner.
type PlannerMetrics struct {
	mutactionsPlanned metric.Int64Counter
	planDuration      metric.Float64Histogram
	planCounter       metric.Int64Counter
	planErrors        metric.Int64Counter
}

// InitPlannerMetrics initializes planner-specific metrics.
func InitPlannerMetrics() (*PlannerMetrics, error) {
	meter := otel.Meter(meterName)

	mutactionsPlanned, err := meter.Int64Counter(
		"planner.mutactions.total",
		metric.WithDescription("Total number of mutactions emitted by the planner"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mutaction counter: %w", err)
	}

	planDuration, err := meter.Float64Histogram(
		"planner.plan.duration",
		metric.WithDescription("Duration of planner invocations in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create plan duration histogram: %w", err)
	}

	planCounter, err := meter.Int64Counter(
		"planner.plans.total",
		metric.WithDescription("Total number of planner invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create plan counter: %w", err)
	}

	planErrors, err := meter.Int64Counter(
		"planner.plan.errors.total",
		metric.WithDescription("Total number of failed planner invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create plan error counter: %w", err)
	}

	return &PlannerMetrics{
		mutactionsPlanned: mutactionsPlanned,
		planDuration:      planDuration,
		planCounter:       planCounter,
		planErrors:        planErrors,
	}, nil
}

// MutactionsPlanned satisfies the planner's metrics collaborator: it
// advances the mutaction counter by the emitted vector length, tagged with
// the project.
func (m *PlannerMetrics) MutactionsPlanned(projectID string, count int) {
	m.mutactionsPlanned.Add(context.Background(), int64(count), metric.WithAttributes(
		attribute.String("project_id", projectID),
	))
}

// RecordPlan records one planner invocation with its duration and outcome.
func (m *PlannerMetrics) RecordPlan(ctx context.Context, projectID, operation string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("project_id", projectID),
		attribute.String("operation", operation),
	}
	m.planDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	m.planCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		m.planErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// InitMetrics initializes all custom metrics.
func InitMetrics(logger *slog.Logger) (*PlannerMetrics, error) {
	metrics, err := InitPlannerMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize planner metrics: %w", err)
	}
	logger.Info("planner metrics initialized")
	return metrics, nil
}
