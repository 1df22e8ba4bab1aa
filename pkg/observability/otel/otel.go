// Package otel wires OpenTelemetry tracing around task execution.
// Initialize installs a global tracer provider; TaskMiddleware produces a
// task wrapper (for pool.Config.Wrap) that opens one span per execution.
package otel

import (
	"context"
	"fmt"
	"sync"

	otelglobal "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/taskpoolio/taskpool/pkg/pool"
)

const tracerName = "github.com/taskpoolio/taskpool"

// Config configures tracing
type Config struct {
	ServiceName    string  `yaml:"service_name" json:"service_name"`
	ServiceVersion string  `yaml:"service_version" json:"service_version"`
	Exporter       string  `yaml:"exporter" json:"exporter"` // "stdout" or "zipkin"
	Endpoint       string  `yaml:"endpoint" json:"endpoint"` // Zipkin collector URL
	SamplingRate   float64 `yaml:"sampling_rate" json:"sampling_rate"`
}

var (
	mu       sync.Mutex
	provider *sdktrace.TracerProvider
)

// Initialize sets up the global tracer provider according to cfg.
// Calling Initialize twice without an intervening Shutdown is an error.
func Initialize(ctx context.Context, cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	if provider != nil {
		return fmt.Errorf("tracing is already initialized")
	}

	var exporter sdktrace.SpanExporter
	var err error
	switch cfg.Exporter {
	case "", "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "zipkin":
		exporter, err = zipkin.New(cfg.Endpoint)
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.Exporter)
	}
	if err != nil {
		return fmt.Errorf("failed to create %s exporter: %w", cfg.Exporter, err)
	}

	sampling := cfg.SamplingRate
	if sampling <= 0 || sampling > 1 {
		sampling = 1
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "taskpool"
	}

	provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampling))),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", cfg.ServiceVersion),
		)),
	)
	otelglobal.SetTracerProvider(provider)
	return nil
}

// IsInitialized reports whether Initialize has installed a provider
func IsInitialized() bool {
	mu.Lock()
	defer mu.Unlock()
	return provider != nil
}

// Shutdown flushes and stops the tracer provider
func Shutdown(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if provider == nil {
		return nil
	}
	err := provider.Shutdown(ctx)
	provider = nil
	return err
}

// Tracer returns the tracer used for task spans
func Tracer() trace.Tracer {
	return otelglobal.Tracer(tracerName)
}

// TaskMiddleware returns a task wrapper for pool.Config.Wrap that records
// one span per task execution, carrying the task name and any fault.
func TaskMiddleware() func(pool.Task) pool.Task {
	return TaskMiddlewareWith(Tracer())
}

// TaskMiddlewareWith is TaskMiddleware with an explicit tracer
func TaskMiddlewareWith(tracer trace.Tracer) func(pool.Task) pool.Task {
	return func(t pool.Task) pool.Task {
		return pool.NewNamedTask(t.Name(), pool.TaskFunc(func() error {
			_, span := tracer.Start(context.Background(), t.Name())
			defer span.End()

			err := t.Execute()
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
			}
			return err
		}))
	}
}
