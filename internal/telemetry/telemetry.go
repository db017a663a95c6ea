package telemetry

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	// ServiceName is the canonical telemetry service name.
	ServiceName = "termfolio"
	// DefaultEnvironment is used when no environment variable is configured.
	DefaultEnvironment = "dev"
	// BatchTimeout configures batch span processor flush interval.
	BatchTimeout = 5 * time.Second
	// BatchSize configures batch span processor max export batch size.
	BatchSize = 512
)

var (
	// ServiceVersion is set at build time via ldflags when available.
	ServiceVersion = "dev"

	exporterFactory = func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(endpoint)}
		certPath := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_CERTIFICATE"))
		if certPath != "" {
			tlsConfig, err := tlsConfigFromCertificate(certPath)
			if err != nil {
				return nil, err
			}
			opts = append(opts, otlptracehttp.WithTLSClientConfig(tlsConfig))
		}
		return otlptracehttp.New(ctx, opts...)
	}

	endpointOverrideMu sync.RWMutex
	endpointOverride   string
)

// Options selects where spans go.
type Options struct {
	// Endpoint is the configured OTLP/HTTP collector URL. The
	// OTEL_EXPORTER_OTLP_ENDPOINT variable and SetEndpointOverride win over it.
	Endpoint string
	// SpanDir receives a spans-<timestamp>.log file when no collector is
	// configured or the exporter cannot be created. Empty disables the file.
	SpanDir string
	// Warn receives non-fatal setup problems. Nil discards them.
	Warn func(msg string, keyvals ...any)
}

// Init installs a global tracer provider with resource attributes and batch
// processing. The returned shutdown flushes pending spans and is safe to call
// more than once.
func Init(ctx context.Context, options Options) (func(), error) {
	warn := options.Warn
	if warn == nil {
		warn = func(string, ...any) {}
	}

	exporter, err := resolveExporter(ctx, options, warn)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			attribute.String("service.name", ServiceName),
			attribute.String("service.version", resolveServiceVersion()),
			attribute.String("environment", resolveEnvironment()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create telemetry resource: %w", err)
	}

	providerOptions := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if exporter != nil {
		providerOptions = append(providerOptions, sdktrace.WithBatcher(
			exporter,
			sdktrace.WithBatchTimeout(BatchTimeout),
			sdktrace.WithMaxExportBatchSize(BatchSize),
		))
	}
	provider := sdktrace.NewTracerProvider(providerOptions...)
	otel.SetTracerProvider(provider)

	var once sync.Once
	shutdown := func() {
		once.Do(func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), BatchTimeout)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				otel.Handle(err)
			}
		})
	}

	return shutdown, nil
}

func resolveExporter(ctx context.Context, options Options, warn func(string, ...any)) (sdktrace.SpanExporter, error) {
	endpoint := resolveEndpoint(options.Endpoint)
	if endpoint != "" {
		exporter, err := exporterFactory(ctx, endpoint)
		if err == nil {
			return exporter, nil
		}
		warn("OTLP exporter unavailable; falling back to span file", "endpoint", endpoint, "err", err)
	}

	if strings.TrimSpace(options.SpanDir) == "" {
		return nil, nil
	}
	exporter, err := newFileSpanExporter(options.SpanDir, time.Now())
	if err != nil {
		return nil, err
	}
	return exporter, nil
}

func resolveEndpoint(configured string) string {
	endpointOverrideMu.RLock()
	override := endpointOverride
	endpointOverrideMu.RUnlock()
	if strings.TrimSpace(override) != "" {
		return strings.TrimSpace(override)
	}

	if endpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")); endpoint != "" {
		return endpoint
	}
	return strings.TrimSpace(configured)
}

func resolveEnvironment() string {
	for _, key := range []string{"TERMFOLIO_ENV", "ENVIRONMENT", "ENV"} {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return strings.ToLower(value)
		}
	}
	return DefaultEnvironment
}

func resolveServiceVersion() string {
	version := strings.TrimSpace(ServiceVersion)
	if version == "" {
		return "dev"
	}
	return version
}

// SetEndpointOverride sets a process-local endpoint override (used by CLI flag precedence).
func SetEndpointOverride(endpoint string) {
	endpointOverrideMu.Lock()
	defer endpointOverrideMu.Unlock()
	endpointOverride = strings.TrimSpace(endpoint)
}

func tlsConfigFromCertificate(path string) (*tls.Config, error) {
	// #nosec G304 -- certificate path is explicitly provided by OTEL_EXPORTER_OTLP_CERTIFICATE configuration.
	certPEM, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read OTEL certificate %q: %w", path, err)
	}
	pool := x509.NewCertPool()
	if ok := pool.AppendCertsFromPEM(certPEM); !ok {
		return nil, fmt.Errorf("parse OTEL certificate %q: no certificates found", path)
	}
	return &tls.Config{MinVersion: tls.VersionTLS12, RootCAs: pool}, nil
}

// lineSpanExporter writes one line per span, followed by its events and
// their attributes.
type lineSpanExporter struct {
	mu  sync.Mutex
	out io.Writer
}

func newFileSpanExporter(dir string, now time.Time) (*lineSpanExporter, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create span directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("spans-%s.log", now.UTC().Format("20060102-150405.000")))
	// #nosec G304 -- path is constructed from trusted local paths.
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open span file: %w", err)
	}
	return &lineSpanExporter{out: file}, nil
}

func (e *lineSpanExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	if e == nil || e.out == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, span := range spans {
		duration := span.EndTime().Sub(span.StartTime()).Round(time.Microsecond)
		if _, err := fmt.Fprintf(e.out, "[SPAN] %s %s %v%s\n", span.Name(), duration, span.Status().Code, formatAttrs(span.Attributes())); err != nil {
			return err
		}
		for _, event := range span.Events() {
			if _, err := fmt.Fprintf(e.out, "  [EVENT] %s%s\n", event.Name, formatAttrs(event.Attributes)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *lineSpanExporter) Shutdown(_ context.Context) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if closer, ok := e.out.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func formatAttrs(attrs []attribute.KeyValue) string {
	if len(attrs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, attr := range attrs {
		fmt.Fprintf(&b, " %s=%s", attr.Key, attr.Value.Emit())
	}
	return b.String()
}

func setExporterFactoryForTest(factory func(context.Context, string) (sdktrace.SpanExporter, error)) func() {
	previous := exporterFactory
	exporterFactory = factory
	return func() {
		exporterFactory = previous
	}
}

func setEndpointOverrideForTest(value string) func() {
	endpointOverrideMu.RLock()
	previous := endpointOverride
	endpointOverrideMu.RUnlock()
	SetEndpointOverride(value)
	return func() {
		SetEndpointOverride(previous)
	}
}
