// Package tracing inicializa OpenTelemetry con exportador Jaeger.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/optica-core/pkg/logger"
)

const defaultEndpoint = "http://localhost:14268/api/traces"

// Init registra el TracerProvider y el propagador globales.
// El provider devuelto debe cerrarse con Shutdown al apagar el servicio.
func Init(serviceName, version, endpoint string, log *logger.Logger) (trace.TracerProvider, error) {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
	if err != nil {
		return nil, fmt.Errorf("crear exportador Jaeger: %w", err)
	}
	return initWith(serviceName, version, exporter, log)
}

func initWith(serviceName, version string, exporter sdktrace.SpanExporter, log *logger.Logger) (trace.TracerProvider, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("crear resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if log != nil {
		log.Info().Str("service", serviceName).Msg("tracing inicializado")
	}
	return tp, nil
}

// Shutdown vacía los spans pendientes.
func Shutdown(ctx context.Context, tp trace.TracerProvider) error {
	if provider, ok := tp.(*sdktrace.TracerProvider); ok {
		return provider.Shutdown(ctx)
	}
	return nil
}
