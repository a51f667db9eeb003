package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies business spans started by the application services
const TracerName = "florexport-backend"

// StartServiceSpan starts an internal span named {service}.{method}, e.g.
// "payment.apply". The caller must End the returned span.
func StartServiceSpan(ctx context.Context, service, method string) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// SetAttributes sets attributes from alternating key/value arguments. Keys
// that are not strings are skipped.
func SetAttributes(span trace.Span, keyValues ...interface{}) {
	if span == nil {
		return
	}
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, toAttribute(key, keyValues[i+1]))
	}
	span.SetAttributes(attrs...)
}

// SetAttribute sets a single attribute on the span
func SetAttribute(span trace.Span, key string, value interface{}) {
	if span == nil {
		return
	}
	span.SetAttributes(toAttribute(key, value))
}

// RecordError records the error on the span and marks the span failed.
// Nil span or nil error is a no-op.
func RecordError(span trace.Span, err error, opts ...trace.EventOption) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err, opts...)
	span.SetStatus(codes.Error, err.Error())
}

// AddEvent records a timestamped event with alternating key/value attributes
func AddEvent(span trace.Span, name string, keyValues ...interface{}) {
	if span == nil {
		return
	}
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, toAttribute(key, keyValues[i+1]))
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

func toAttribute(key string, value interface{}) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}

// Attribute keys used on business spans
const (
	SpanAttrInvoiceID     = "invoice_id"
	SpanAttrInvoiceNumber = "invoice_number"
	SpanAttrInvoiceStatus = "invoice_status"

	SpanAttrCustomerID = "customer_id"
	SpanAttrFarmID     = "farm_id"

	SpanAttrPaymentID     = "payment_id"
	SpanAttrPaymentNumber = "payment_number"
	SpanAttrAmount        = "amount"
	SpanAttrBulkID        = "bulk_id"
)
