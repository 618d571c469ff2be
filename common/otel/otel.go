package otel

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"basegraph.app/autofix/core/config"
)

// Telemetry holds the exporters' flush hooks. A nil Telemetry means export is
// off, and Shutdown on it is a no-op.
type Telemetry struct {
	shutdowns []func(context.Context) error
}

// Shutdown flushes logs before traces so the last run's records are not lost
// behind a stalled span export.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	for i := len(t.shutdowns) - 1; i >= 0; i-- {
		errs = append(errs, t.shutdowns[i](ctx))
	}
	return errors.Join(errs...)
}

// Setup installs global OTLP/HTTP trace and log providers for the relay.
// Returns nil when OTEL_EXPORTER_OTLP_ENDPOINT is unset.
func Setup(ctx context.Context, cfg config.Config) (*Telemetry, error) {
	if !cfg.OTel.Enabled() {
		return nil, nil
	}

	res, err := relayResource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	headers := ParseHeaders(cfg.OTel.Headers)
	t := &Telemetry{}

	tp, err := newTracerProvider(ctx, cfg.OTel, headers, res)
	if err != nil {
		return nil, err
	}
	t.shutdowns = append(t.shutdowns, wrapShutdown("tracer", tp.Shutdown))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	lp, err := newLoggerProvider(ctx, cfg.OTel, headers, res)
	if err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	t.shutdowns = append(t.shutdowns, wrapShutdown("logger", lp.Shutdown))
	global.SetLoggerProvider(lp)

	return t, nil
}

func relayResource(ctx context.Context, cfg config.Config) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(
			semconv.ServiceName(cfg.OTel.ServiceName),
			semconv.ServiceVersion(cfg.OTel.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Env),
			attribute.String("autofix.webhook_path", cfg.BasePath+"/github-webhook"),
			attribute.Bool("autofix.signature_required", cfg.GitHub.SignatureRequired()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}
	return res, nil
}

func newTracerProvider(ctx context.Context, cfg config.OTelConfig, headers map[string]string, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(SignalURL(cfg.Endpoint, "traces")),
		otlptracehttp.WithHeaders(headers),
	)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	// Webhook deliveries start their own traces; runs follow their parent.
	sampler := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sampler),
		sdktrace.WithResource(res),
	), nil
}

func newLoggerProvider(ctx context.Context, cfg config.OTelConfig, headers map[string]string, res *resource.Resource) (*sdklog.LoggerProvider, error) {
	exporter, err := otlploghttp.New(ctx,
		otlploghttp.WithEndpointURL(SignalURL(cfg.Endpoint, "logs")),
		otlploghttp.WithHeaders(headers),
	)
	if err != nil {
		return nil, fmt.Errorf("creating log exporter: %w", err)
	}

	return sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(res),
	), nil
}

func wrapShutdown(name string, fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return fmt.Errorf("%s shutdown: %w", name, err)
		}
		return nil
	}
}

// SignalURL joins the collector base endpoint with the OTLP/HTTP path of one
// signal, e.g. "http://collector:4318" + "traces".
func SignalURL(endpoint, signal string) string {
	return strings.TrimRight(endpoint, "/") + "/v1/" + signal
}

// ParseHeaders parses the OTEL_EXPORTER_OTLP_HEADERS format "k1=v1,k2=v2".
// Values are URL-decoded; malformed pairs are skipped.
func ParseHeaders(s string) map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			continue
		}
		v = strings.TrimSpace(v)
		if decoded, err := url.PathUnescape(v); err == nil {
			v = decoded
		}
		headers[k] = v
	}
	return headers
}
