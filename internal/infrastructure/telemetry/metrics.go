package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// metricExportInterval is how often buffered metrics are pushed to the
// collector.
const metricExportInterval = 15 * time.Second

// MeterProvider owns the SDK meter provider lifecycle.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
	config   Config
}

// NewMeterProvider builds a provider exporting over OTLP gRPC and installs it
// as the global otel meter provider. Disabled config yields a no-op provider.
func NewMeterProvider(ctx context.Context, cfg Config, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{logger: logger, config: cfg}

	if !cfg.Enabled {
		logger.Info("Telemetry disabled, using no-op meter provider")
		return mp, nil
	}

	exporterOpts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint),
	}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(metricExportInterval),
		)),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("Metrics initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", metricExportInterval),
	)
	return mp, nil
}

// Shutdown flushes pending metrics and releases the exporter. Call on exit.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}

	flushCtx, cancel := context.WithTimeout(ctx, shutdownFlushTimeout)
	defer cancel()

	if err := mp.provider.Shutdown(flushCtx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	mp.logger.Info("Meter provider shut down")
	return nil
}

// paymentMetrics lazily binds the payment instruments to the global meter, so
// they end up on the SDK provider once it is installed and on the no-op
// provider otherwise.
var paymentMetrics struct {
	once         sync.Once
	applied      metric.Int64Counter
	amount       metric.Float64Histogram
	bulkApplied  metric.Int64Counter
	bulkInvoices metric.Int64Histogram
}

func initPaymentMetrics() {
	meter := otel.GetMeterProvider().Meter(TracerName)
	paymentMetrics.applied, _ = meter.Int64Counter("payments_applied_total",
		metric.WithDescription("Payments recorded against invoices"))
	paymentMetrics.amount, _ = meter.Float64Histogram("payment_amount_usd",
		metric.WithDescription("Applied payment amount in USD"))
	paymentMetrics.bulkApplied, _ = meter.Int64Counter("bulk_payments_total",
		metric.WithDescription("Bulk payment allocations processed"))
	paymentMetrics.bulkInvoices, _ = meter.Int64Histogram("bulk_payment_invoices",
		metric.WithDescription("Invoices settled per bulk payment"))
}

// RecordPaymentApplied counts a single applied payment by method
func RecordPaymentApplied(ctx context.Context, method string, amount decimal.Decimal) {
	paymentMetrics.once.Do(initPaymentMetrics)
	attrs := metric.WithAttributes(attribute.String("payment_method", method))
	paymentMetrics.applied.Add(ctx, 1, attrs)
	paymentMetrics.amount.Record(ctx, amount.InexactFloat64(), attrs)
}

// RecordBulkPayment counts one bulk allocation and its invoice spread
func RecordBulkPayment(ctx context.Context, invoices int, totalApplied decimal.Decimal) {
	paymentMetrics.once.Do(initPaymentMetrics)
	paymentMetrics.bulkApplied.Add(ctx, 1)
	paymentMetrics.bulkInvoices.Record(ctx, int64(invoices))
	paymentMetrics.amount.Record(ctx, totalApplied.InexactFloat64(),
		metric.WithAttributes(attribute.String("payment_method", "bulk")))
}
