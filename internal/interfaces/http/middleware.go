package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/optica-core/internal/application/dto"
	"github.com/jhoicas/optica-core/internal/application/ports"
	"github.com/jhoicas/optica-core/pkg/logger"
)

// HeaderIdempotencyKey cabecera opcional en las operaciones que modifican estado.
const HeaderIdempotencyKey = "Idempotency-Key"

// requestObserver lo implementa *metrics.Prometheus.
type requestObserver interface {
	ObserveRequest(method, route, status string, elapsed time.Duration)
}

// TracingMiddleware abre un span SpanKindServer por petición y devuelve X-Trace-Id.
func TracingMiddleware(service string) fiber.Handler {
	tracer := otel.Tracer(service)
	return func(c *fiber.Ctx) error {
		ctx, span := tracer.Start(c.UserContext(), c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.target", c.Path()),
				attribute.String("http.user_agent", c.Get("User-Agent")),
				attribute.String("net.peer.ip", c.IP()),
			),
		)
		defer span.End()
		c.SetUserContext(ctx)

		if span.SpanContext().HasTraceID() {
			c.Set("X-Trace-Id", span.SpanContext().TraceID().String())
		}

		err := c.Next()

		status := c.Response().StatusCode()
		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.String("http.route", c.Route().Path),
		)
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case status >= 500:
			span.SetStatus(codes.Error, "server error")
		default:
			span.SetStatus(codes.Ok, "")
		}
		return err
	}
}

// MetricsMiddleware cuenta peticiones por ruta registrada (no por path, para acotar las etiquetas).
func MetricsMiddleware(obs requestObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		obs.ObserveRequest(c.Method(), c.Route().Path, strconv.Itoa(status), time.Since(start))
		return err
	}
}

// RequestLogger registra cada petición con zerolog.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		l := log.Ctx(c.UserContext())
		ev := l.Info()
		if status >= 500 || err != nil {
			ev = l.Error().Err(err)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("petición HTTP")
		return err
	}
}

// IdempotencyMiddleware reenvía la respuesta guardada cuando se repite una petición con la
// misma Idempotency-Key. Si la primera aún está en curso responde 409. Sin cabecera no hace nada.
// Las respuestas 5xx no se guardan para permitir el reintento.
func IdempotencyMiddleware(store ports.IdempotencyStore, ttl time.Duration, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" || c.Method() == fiber.MethodGet {
			return c.Next()
		}
		scoped := GetUserID(c) + ":" + c.Method() + ":" + c.Path() + ":" + key
		ctx := c.UserContext()

		stored, found, err := store.Get(ctx, scoped)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("idempotencia no disponible, se procesa sin ella")
			return c.Next()
		}
		if found {
			c.Set("Idempotent-Replayed", "true")
			if stored.ContentType != "" {
				c.Set(fiber.HeaderContentType, stored.ContentType)
			}
			return c.Status(stored.Status).Send(stored.Body)
		}

		reserved, err := store.Reserve(ctx, scoped, ttl)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("idempotencia no disponible, se procesa sin ella")
			return c.Next()
		}
		if !reserved {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_IN_PROGRESS", Message: "petición con la misma Idempotency-Key en curso"})
		}

		nextErr := c.Next()
		status := c.Response().StatusCode()
		if nextErr != nil || status >= 500 {
			if err := store.Release(ctx, scoped); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("liberar clave de idempotencia")
			}
			return nextErr
		}
		resp := ports.StoredResponse{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := store.Save(ctx, scoped, resp, ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("guardar respuesta idempotente")
		}
		return nil
	}
}
