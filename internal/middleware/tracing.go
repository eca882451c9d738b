package middleware

import (
	"context"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware opens a server span per request, continues incoming
// trace context and echoes the trace id in X-Trace-ID.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))

		ctx, span := observability.Tracer.Start(ctx, c.Method(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Method()),
				attribute.String("url.path", c.Path()),
				attribute.String("client.address", c.IP()),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Set("X-Trace-ID", traceID)
		c.SetUserContext(context.WithValue(ctx, TraceIDKey, traceID))

		err := c.Next()

		// The matched route is only known after routing.
		span.SetName(c.Method() + " " + c.Route().Path)
		status := c.Response().StatusCode()
		span.SetAttributes(
			attribute.String("http.route", c.Route().Path),
			attribute.Int("http.response.status_code", status),
		)
		if rid, ok := c.Locals("requestid").(string); ok {
			span.SetAttributes(attribute.String("request.id", rid))
		}
		if username, ok := c.Locals(usernameLocal).(string); ok {
			span.SetAttributes(attribute.String("user.name", username))
		}
		if err != nil {
			span.RecordError(err)
		}
		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, "server error")
		}
		return err
	}
}
