package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerProvider owns the SDK log provider lifecycle. Its zap bridge lets the
// existing structured logs flow to the collector alongside traces.
type LoggerProvider struct {
	provider *sdklog.LoggerProvider
	logger   *zap.Logger
	config   Config
}

// NewLoggerProvider builds a provider exporting over OTLP gRPC and installs
// it as the global otel log provider. Disabled config yields a no-op provider.
func NewLoggerProvider(ctx context.Context, cfg Config, logger *zap.Logger) (*LoggerProvider, error) {
	lp := &LoggerProvider{logger: logger, config: cfg}

	if !cfg.Enabled {
		logger.Info("Telemetry disabled, using no-op logger provider")
		return lp, nil
	}

	exporterOpts := []otlploggrpc.Option{
		otlploggrpc.WithEndpoint(cfg.CollectorEndpoint),
	}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
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

	lp.provider = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(lp.provider)

	logger.Info("Log export initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
	)
	return lp, nil
}

// Shutdown flushes pending log records and releases the exporter. Call on
// exit.
func (lp *LoggerProvider) Shutdown(ctx context.Context) error {
	if lp.provider == nil {
		return nil
	}

	flushCtx, cancel := context.WithTimeout(ctx, shutdownFlushTimeout)
	defer cancel()

	if err := lp.provider.Shutdown(flushCtx); err != nil {
		return fmt.Errorf("failed to shutdown logger provider: %w", err)
	}
	lp.logger.Info("Logger provider shut down")
	return nil
}

// BridgeZap tees the given zap logger into this provider, so every log line
// is both written locally and exported as an OTLP log record. With the
// provider disabled the logger is returned unchanged.
func (lp *LoggerProvider) BridgeZap(base *zap.Logger, serviceName string) *zap.Logger {
	if lp.provider == nil {
		return base
	}
	otelCore := otelzap.NewCore(serviceName, otelzap.WithLoggerProvider(lp.provider))
	return base.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, otelCore)
	}))
}
