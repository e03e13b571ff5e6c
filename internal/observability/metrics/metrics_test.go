package metrics

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("company_id", "123"),
		attribute.String("image_hash", "abc"),
		attribute.String("duplicate_type", "exact"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "company_id" && attrs[1].Key != "company_id" {
		t.Fatalf("expected company_id to be retained")
	}
	if attrs[0].Key != "duplicate_type" && attrs[1].Key != "duplicate_type" {
		t.Fatalf("expected duplicate_type to be retained")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordExpenseIngest(ctx, "created")
	m.RecordDuplicateVerdict(ctx, "ingest", "")
	m.RecordIngestConflict(ctx, "unique_violation")
	m.RecordRateLimitAllowed(ctx, "c1", "/expenses")
	m.RecordRateLimitDenied(ctx, "c1", "/expenses", "company-rate")
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{ServiceName: "receipts"}, noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.RecordDuplicateVerdict(context.Background(), "check", "similar")
}
