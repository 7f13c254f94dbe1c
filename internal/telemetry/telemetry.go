package telemetry

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/unkn0wn-root/groupsort/internal/telemetry"

var (
	itemIDKey    = attribute.Key("groupsort.item.id")
	itemLabelKey = attribute.Key("groupsort.item.label")
	datasetKey   = attribute.Key("groupsort.dataset")
	valueKey     = attribute.Key("groupsort.value")
	oldValueKey  = attribute.Key("groupsort.value.old")
	newValueKey  = attribute.Key("groupsort.value.new")
	keyKey       = attribute.Key("groupsort.key")
	sortsKey     = attribute.Key("groupsort.sorts")
	reasonKey    = attribute.Key("groupsort.release.reason")
)

// Instrumenter traces grab sessions: one span from grab to release with an
// event per committed sort.
type Instrumenter interface {
	StartGrab(ctx context.Context, info GrabStart) (context.Context, GrabSpan)
	Shutdown(ctx context.Context) error
}

type GrabStart struct {
	Dataset string
	ItemID  string
	Label   string
	Value   float64
	Key     string
}

type SortRecord struct {
	Key      string
	OldValue float64
	NewValue float64
}

type GrabResult struct {
	Value  float64
	Reason string
	Err    error
}

type GrabSpan interface {
	RecordSort(rec SortRecord)
	End(result GrabResult)
}

type providerOptions struct {
	exporter       sdktrace.SpanExporter
	spanProcessors []sdktrace.SpanProcessor
}

type Option func(*providerOptions)

func WithSpanProcessor(proc sdktrace.SpanProcessor) Option {
	return func(opts *providerOptions) {
		if proc != nil {
			opts.spanProcessors = append(opts.spanProcessors, proc)
		}
	}
}

func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(opts *providerOptions) {
		if exp != nil {
			opts.exporter = exp
		}
	}
}

type manager struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	shutdown sync.Once
}

// New returns Noop when cfg has no endpoint and no exporter or processor
// was supplied.
func New(cfg Config, opts ...Option) (Instrumenter, error) {
	builder := providerOptions{}
	for _, opt := range opts {
		opt(&builder)
	}

	if !cfg.Enabled() && builder.exporter == nil && len(builder.spanProcessors) == 0 {
		return Noop(), nil
	}

	res, err := resource.New(
		context.Background(),
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(buildResourceAttributes(cfg)...),
	)
	if err != nil {
		return nil, err
	}

	exporter := builder.exporter
	if exporter == nil && cfg.Enabled() {
		exporter, err = newExporter(cfg)
		if err != nil {
			return nil, err
		}
	}

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if exporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	}
	for _, proc := range builder.spanProcessors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(proc))
	}

	tp := sdktrace.NewTracerProvider(tpOpts...)
	return &manager{tracer: tp.Tracer(tracerName), provider: tp}, nil
}

func (m *manager) StartGrab(ctx context.Context, info GrabStart) (context.Context, GrabSpan) {
	attrs := []attribute.KeyValue{
		itemIDKey.String(info.ItemID),
		valueKey.Float64(info.Value),
	}
	if label := strings.TrimSpace(info.Label); label != "" {
		attrs = append(attrs, itemLabelKey.String(label))
	}
	if ds := strings.TrimSpace(info.Dataset); ds != "" {
		attrs = append(attrs, datasetKey.String(ds))
	}
	if info.Key != "" {
		attrs = append(attrs, keyKey.String(info.Key))
	}
	ctx, span := m.tracer.Start(
		ctx,
		"groupsort.grab",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx, &grabSpan{span: span}
}

func (m *manager) Shutdown(ctx context.Context) error {
	if m == nil || m.provider == nil {
		return nil
	}
	var shutdownErr error
	m.shutdown.Do(func() {
		shutdownErr = m.provider.Shutdown(ctx)
	})
	return shutdownErr
}

type grabSpan struct {
	mu    sync.Mutex
	span  trace.Span
	sorts int
	ended bool
}

func (gs *grabSpan) RecordSort(rec SortRecord) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if gs.ended {
		return
	}
	gs.sorts++
	attrs := []attribute.KeyValue{
		oldValueKey.Float64(rec.OldValue),
		newValueKey.Float64(rec.NewValue),
	}
	if rec.Key != "" {
		attrs = append(attrs, keyKey.String(rec.Key))
	}
	gs.span.AddEvent("groupsort.sort", trace.WithAttributes(attrs...))
}

// End is idempotent.
func (gs *grabSpan) End(result GrabResult) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if gs.ended {
		return
	}
	gs.ended = true
	gs.span.SetAttributes(valueKey.Float64(result.Value), sortsKey.Int(gs.sorts))
	if result.Reason != "" {
		gs.span.SetAttributes(reasonKey.String(result.Reason))
	}
	if result.Err != nil {
		gs.span.RecordError(result.Err)
		gs.span.SetStatus(codes.Error, result.Err.Error())
	} else {
		gs.span.SetStatus(codes.Ok, "")
	}
	gs.span.End()
}

func Noop() Instrumenter {
	return noopInstrumenter{}
}

type noopInstrumenter struct{}

type noopSpan struct{}

func (noopInstrumenter) StartGrab(ctx context.Context, _ GrabStart) (context.Context, GrabSpan) {
	return ctx, noopSpan{}
}

func (noopInstrumenter) Shutdown(context.Context) error { return nil }

func (noopSpan) RecordSort(SortRecord) {}

func (noopSpan) End(GrabResult) {}

func newExporter(cfg Config) (sdktrace.SpanExporter, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("telemetry endpoint is required")
	}

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clientOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		clientOpts = append(clientOpts, otlptracegrpc.WithHeaders(cfg.Headers))
	}

	client := otlptracegrpc.NewClient(clientOpts...)
	return otlptrace.New(ctx, client)
}

func buildResourceAttributes(cfg Config) []attribute.KeyValue {
	name := cfg.ServiceName
	if strings.TrimSpace(name) == "" {
		name = defaultServiceName
	}
	attrs := []attribute.KeyValue{
		semconv.ServiceName(name),
	}
	if strings.TrimSpace(cfg.Version) != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.Version))
	}
	return attrs
}
